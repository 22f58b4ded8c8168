package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ko-stant/frontwatch/internal/config"
	"github.com/Ko-stant/frontwatch/internal/gameview/fixture"
	"github.com/Ko-stant/frontwatch/internal/observer"
	"github.com/Ko-stant/frontwatch/internal/ws"
)

func loadWorld(path string) (*fixture.World, error) {
	if path == "" {
		log.Printf("no FIXTURE_PATH set, using the built-in demo world")
		return fixture.DemoWorld()
	}
	log.Printf("loading world from %s", path)
	return fixture.LoadWorldFromFile(path)
}

// simulate steps the host world until ctx is done.
func simulate(ctx context.Context, world *fixture.World, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			world.Step()
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	world, err := loadWorld(cfg.FixturePath)
	if err != nil {
		log.Fatalf("world: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slot := &observer.Slot{}
	slot.Set(world)
	obs := observer.New([]observer.Source{slot}, observer.Options{
		DiscoveryRetry:  cfg.DiscoveryRetry,
		RefreshInterval: cfg.RefreshInterval,
	})

	metrics := NewPerformanceMetrics()
	srv := NewServer(obs, ws.NewHub(), metrics)
	unsubscribe := srv.Start(ctx)
	defer unsubscribe()

	go simulate(ctx, world, cfg.HostTick)
	go obs.Run(ctx)

	StartProfiling(cfg.Profiling)
	StartMetricsReporting(ctx, metrics, obs, cfg.MetricsInterval)

	httpServer := &http.Server{Addr: ":" + cfg.Port, Handler: srv.Routes("internal/web/static")}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on :%s", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	obs.Stop()
	log.Printf("shut down")
}
