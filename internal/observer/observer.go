// Package observer polls a live game handle and publishes immutable
// snapshots to subscribers.
package observer

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ko-stant/frontwatch/internal/alliance"
	"github.com/Ko-stant/frontwatch/internal/gameview"
	"github.com/Ko-stant/frontwatch/internal/landmass"
	"github.com/Ko-stant/frontwatch/internal/players"
	"github.com/Ko-stant/frontwatch/internal/protocol"
	"github.com/Ko-stant/frontwatch/internal/ships"
	"github.com/Ko-stant/frontwatch/internal/tiles"
)

const (
	DefaultDiscoveryRetry  = time.Second
	DefaultRefreshInterval = 500 * time.Millisecond
)

type Logger interface {
	Printf(format string, v ...interface{})
}

type Options struct {
	DiscoveryRetry  time.Duration
	RefreshInterval time.Duration
	Logger          Logger
}

type State int

const (
	Discovering State = iota
	Attached
)

func (s State) String() string {
	if s == Attached {
		return "attached"
	}
	return "discovering"
}

// Stats is a point-in-time view of the observer's bookkeeping.
type Stats struct {
	State        State
	Session      string
	Attaches     int64
	Refreshes    int64
	HandleLosses int64
	LastRefresh  time.Duration
	LastTick     int
	Subscribers  int
}

type listener struct {
	fn func(protocol.GameSnapshot)
}

// Observer owns the attach/refresh state machine and every piece of state
// kept across polls. Discover and Refresh each run one step; Run drives
// them on timers.
type Observer struct {
	sources []Source
	opts    Options
	logger  Logger

	// refreshMu serializes steps; game and the cross-poll state below are
	// only touched while it is held.
	refreshMu  sync.Mutex
	game       gameview.Game
	session    string
	ships      *ships.Synthesizer
	alliances  *alliance.Detector
	landmasses *landmass.Extractor

	// publishMu orders deliveries so a subscriber never sees an older
	// snapshot after a newer one.
	publishMu sync.Mutex

	mu        sync.RWMutex
	snapshot  protocol.GameSnapshot
	listeners []*listener
	stats     Stats

	stop     chan struct{}
	stopOnce sync.Once
}

func New(sources []Source, opts Options) *Observer {
	if opts.DiscoveryRetry <= 0 {
		opts.DiscoveryRetry = DefaultDiscoveryRetry
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Observer{
		sources:    slices.Clone(sources),
		opts:       opts,
		logger:     logger,
		ships:      ships.NewSynthesizer(logger),
		alliances:  alliance.NewDetector(logger),
		landmasses: landmass.NewExtractor(),
		snapshot:   protocol.EmptySnapshot(),
		stop:       make(chan struct{}),
	}
}

// Snapshot returns the latest published snapshot. It must not be modified.
func (o *Observer) Snapshot() protocol.GameSnapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.snapshot
}

// Subscribe calls fn with the current snapshot now and after every publish,
// in subscription order. fn runs on the publishing goroutine and must not
// block or call back into Subscribe, Update, Discover, Refresh or
// SetTradeStopped. The returned func unsubscribes.
func (o *Observer) Subscribe(fn func(protocol.GameSnapshot)) func() {
	l := &listener{fn: fn}
	o.publishMu.Lock()
	o.mu.Lock()
	o.listeners = append(o.listeners, l)
	current := o.snapshot
	o.mu.Unlock()
	fn(current)
	o.publishMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			o.listeners = slices.DeleteFunc(o.listeners, func(x *listener) bool { return x == l })
			o.mu.Unlock()
		})
	}
}

// Update publishes a snapshot built elsewhere, bypassing the game handle.
func (o *Observer) Update(s protocol.GameSnapshot) {
	o.publish(s)
}

func (o *Observer) publish(s protocol.GameSnapshot) {
	o.publishMu.Lock()
	defer o.publishMu.Unlock()
	o.mu.Lock()
	o.snapshot = s
	targets := slices.Clone(o.listeners)
	o.mu.Unlock()

	for _, l := range targets {
		l.fn(s)
	}
}

// SetLandmassTracking marks consumer as wanting landmasses or not and reports
// whether tracking as a whole switched on or off.
func (o *Observer) SetLandmassTracking(consumer string, active bool) bool {
	changed := o.landmasses.SetActive(consumer, active)
	if changed {
		o.logger.Printf("landmass tracking active=%v", active)
	}
	return changed
}

func (o *Observer) LandmassTracking() bool {
	return o.landmasses.Active()
}

// SetTradeStopped forwards an embargo toggle to the attached game.
func (o *Observer) SetTradeStopped(targetID string, stopped bool) error {
	o.refreshMu.Lock()
	defer o.refreshMu.Unlock()
	if o.game == nil {
		return ErrNotAttached
	}
	if err := o.game.SetEmbargo(targetID, stopped); err != nil {
		return fmt.Errorf("set embargo against %s: %w", targetID, err)
	}
	return nil
}

func (o *Observer) Stats() Stats {
	o.mu.RLock()
	s := o.stats
	s.Subscribers = len(o.listeners)
	o.mu.RUnlock()
	return s
}

func (o *Observer) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.stats.State
}

// Discover attaches to the first source that yields a game. It reports
// whether the observer is attached afterwards. Each attach gets a new session
// id and an empty landmass cache; ship memory and traitor history carry over,
// since a lost handle is usually the same game found again.
func (o *Observer) Discover() bool {
	o.refreshMu.Lock()
	defer o.refreshMu.Unlock()
	if o.game != nil {
		return true
	}
	for _, src := range o.sources {
		game, ok := src.Lookup()
		if !ok || game == nil {
			continue
		}
		o.game = game
		o.session = uuid.New().String()
		o.landmasses.Reset()

		o.mu.Lock()
		o.stats.State = Attached
		o.stats.Session = o.session
		o.stats.Attaches++
		o.mu.Unlock()
		o.logger.Printf("attached to game (session %s)", o.session)
		return true
	}
	return false
}

// Refresh reads the attached game once and publishes the result. Any read
// failure, panics included, drops the handle and returns a
// *HandleLostError; subscribers see nothing in that case.
func (o *Observer) Refresh() error {
	o.refreshMu.Lock()
	defer o.refreshMu.Unlock()
	if o.game == nil {
		return ErrNotAttached
	}

	start := time.Now()
	snap, err := o.capture(o.game)
	if err != nil {
		lost := &HandleLostError{Session: o.session, Err: err}
		o.detachLocked()
		o.logger.Printf("warn: %v; rediscovering", lost)
		return lost
	}

	o.mu.Lock()
	o.stats.Refreshes++
	o.stats.LastRefresh = time.Since(start)
	o.stats.LastTick = snap.Tick
	o.mu.Unlock()

	o.publish(snap)
	return nil
}

func (o *Observer) detachLocked() {
	o.game = nil
	o.mu.Lock()
	o.stats.State = Discovering
	o.stats.HandleLosses++
	o.mu.Unlock()
}

func (o *Observer) capture(game gameview.Game) (snap protocol.GameSnapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while reading game: %v", r)
		}
	}()
	return o.build(game)
}

func (o *Observer) build(game gameview.Game) (protocol.GameSnapshot, error) {
	tick, err := game.Ticks()
	if err != nil {
		return protocol.GameSnapshot{}, fmt.Errorf("read ticks: %w", err)
	}
	duration, err := game.AllianceDuration()
	if err != nil {
		return protocol.GameSnapshot{}, fmt.Errorf("read alliance duration: %w", err)
	}
	roster, err := game.Players()
	if err != nil {
		return protocol.GameSnapshot{}, fmt.Errorf("read players: %w", err)
	}

	resolver := tiles.NewResolver(game, o.logger)
	o.alliances.Observe(roster, tick, resolver)

	self, _ := game.MyPlayer()
	records := players.NewBuilder(resolver, o.alliances, self, o.logger).Records(roster)

	shipRecords, err := o.ships.Build(game, resolver)
	if err != nil {
		return protocol.GameSnapshot{}, err
	}

	return protocol.GameSnapshot{
		Players:            records,
		Ships:              shipRecords,
		Landmasses:         o.landmasses.Landmasses(game, tick, resolver),
		AllianceDurationMs: players.TicksToMs(duration),
		CurrentTimeMs:      players.TicksToMs(tick),
		Tick:               tick,
		Attached:           true,
	}, nil
}

// Run drives Discover and Refresh on their timers until ctx is done or Stop
// is called. Only one timer is live at a time.
func (o *Observer) Run(ctx context.Context) {
	for {
		if o.Discover() {
			if !o.runAttached(ctx) {
				return
			}
			continue
		}
		timer := time.NewTimer(o.opts.DiscoveryRetry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-o.stop:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// runAttached refreshes every interval until the handle is lost, returning
// true, or the loop is told to stop, returning false.
func (o *Observer) runAttached(ctx context.Context) bool {
	ticker := time.NewTicker(o.opts.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-o.stop:
			return false
		case <-ticker.C:
			if err := o.Refresh(); err != nil {
				return true
			}
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (o *Observer) Stop() {
	o.stopOnce.Do(func() { close(o.stop) })
}
