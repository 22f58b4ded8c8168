package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/coder/websocket"

	"github.com/Ko-stant/frontwatch/internal/observer"
	"github.com/Ko-stant/frontwatch/internal/protocol"
	"github.com/Ko-stant/frontwatch/internal/web/views"
	"github.com/Ko-stant/frontwatch/internal/ws"
)

// Server exposes the observer over HTTP and websocket.
type Server struct {
	obs     *observer.Observer
	hub     *ws.Hub
	metrics *PerformanceMetrics
	pending chan protocol.GameSnapshot
}

func NewServer(obs *observer.Observer, hub *ws.Hub, metrics *PerformanceMetrics) *Server {
	return &Server{
		obs:     obs,
		hub:     hub,
		metrics: metrics,
		pending: make(chan protocol.GameSnapshot, 1),
	}
}

// Start subscribes to the observer and broadcasts every snapshot until ctx is
// done. Only the latest snapshot is kept while a broadcast is in flight, so
// the observer never waits on slow clients.
func (s *Server) Start(ctx context.Context) func() {
	unsubscribe := s.obs.Subscribe(s.enqueue)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-s.pending:
				s.broadcast(snap)
			}
		}
	}()
	return unsubscribe
}

func (s *Server) enqueue(snap protocol.GameSnapshot) {
	for {
		select {
		case s.pending <- snap:
			return
		default:
		}
		select {
		case <-s.pending:
		default:
		}
	}
}

func (s *Server) broadcast(snap protocol.GameSnapshot) {
	if err := s.hub.Publish(s.obs.Stats().Session, protocol.PatchSnapshotPublished, snap); err != nil {
		log.Printf("warn: encode snapshot: %v", err)
		return
	}
	s.metrics.TrackBroadcast()
}

func (s *Server) Routes(staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	fileServer := http.FileServer(http.Dir(staticDir))
	mux.Handle("/static/", http.StripPrefix("/static/", fileServer))
	mux.HandleFunc("/ws", s.handleStream)
	mux.HandleFunc("/snapshot.json", s.handleSnapshot)
	mux.HandleFunc("/", s.handleIndex)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	stats := s.obs.Stats()
	model := views.StatusModel{
		Snapshot:  s.obs.Snapshot(),
		State:     stats.State.String(),
		Session:   stats.Session,
		Refreshes: stats.Refreshes,
		Clients:   s.hub.Len(),
	}
	if err := views.StatusPage(model).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.obs.Snapshot()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		return
	}
	client := s.hub.Add(conn)
	defer func() {
		s.hub.Remove(conn)
		s.obs.SetLandmassTracking(client.ID, false)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	ctx := r.Context()
	session := s.obs.Stats().Session
	if err := s.hub.Send(ctx, client, session, protocol.PatchSnapshotPublished, s.obs.Snapshot()); err != nil {
		return
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		kind, payload := s.handleIntent(client, data)
		if err := s.hub.Send(ctx, client, s.obs.Stats().Session, kind, payload); err != nil {
			return
		}
	}
}

// handleIntent applies one client message and returns the reply envelope
// type and payload.
func (s *Server) handleIntent(client *ws.Client, data []byte) (string, any) {
	var env protocol.IntentEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return intentError("", fmt.Errorf("malformed intent: %w", err))
	}
	switch env.Type {
	case protocol.IntentSetLandmassTracking:
		var req protocol.RequestSetLandmassTracking
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return intentError(env.Type, err)
		}
		s.obs.SetLandmassTracking(client.ID, req.Active)
		return protocol.PatchTrackingChanged, protocol.TrackingChanged{Active: s.obs.LandmassTracking()}

	case protocol.IntentSetTradeStopped:
		var req protocol.RequestSetTradeStopped
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return intentError(env.Type, err)
		}
		if req.PlayerID == "" {
			return intentError(env.Type, errors.New("playerId is required"))
		}
		if err := s.obs.SetTradeStopped(req.PlayerID, req.Stopped); err != nil {
			log.Printf("warn: trade toggle for %s failed: %v", req.PlayerID, err)
			return intentError(env.Type, err)
		}
		return protocol.PatchTradeStoppedChanged, req

	default:
		return intentError(env.Type, fmt.Errorf("unknown intent %q", env.Type))
	}
}

func intentError(intent string, err error) (string, any) {
	return protocol.PatchError, protocol.ErrorPayload{Intent: intent, Message: err.Error()}
}
