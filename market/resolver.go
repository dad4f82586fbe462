package market

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/web3guy0/crossarb/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// MARKET RESOLVER
// ═══════════════════════════════════════════════════════════════════════════════
//
// Answers "what is the active 15-minute BTC window right now" per venue.
// Clock-driven: a fixed-interval tick plus an extra tick right after each
// quarter-hour boundary passes. Feed updates are event-driven and live in
// feeds/; the two schedules stay separate on purpose.
//
// ═══════════════════════════════════════════════════════════════════════════════

// Finder locates a venue's active window for a point in time
type Finder interface {
	Find(now time.Time) (*types.MarketWindow, error)
}

// Resolver tracks the live window on both venues
type Resolver struct {
	mu sync.RWMutex

	finders map[types.Venue]Finder
	windows map[types.Venue]*types.MarketWindow

	refreshEvery time.Duration
	onRollover   func(types.Venue, *types.MarketWindow)

	running bool
	stopCh  chan struct{}
}

// NewResolver creates a resolver over the given per-venue finders
func NewResolver(pm, pf Finder, refreshEvery time.Duration) *Resolver {
	return &Resolver{
		finders: map[types.Venue]Finder{
			types.VenuePolymarket: pm,
			types.VenuePredictFun: pf,
		},
		windows:      make(map[types.Venue]*types.MarketWindow),
		refreshEvery: refreshEvery,
		stopCh:       make(chan struct{}),
	}
}

// OnRollover registers the callback fired when a venue's live window
// changes. Must be set before Start.
func (r *Resolver) OnRollover(cb func(types.Venue, *types.MarketWindow)) {
	r.onRollover = cb
}

// Start begins the refresh loop
func (r *Resolver) Start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	go r.refreshLoop()
	log.Info().Dur("every", r.refreshEvery).Msg("🔍 Market resolver started")
}

// Stop stops the refresh loop
func (r *Resolver) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.running = false
	close(r.stopCh)
}

// Window returns the live window for a venue, or nil
func (r *Resolver) Window(venue types.Venue) *types.MarketWindow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.windows[venue]
}

// InSync reports whether both venues currently resolve to the same
// quarter-hour window. False while either window is unknown.
func (r *Resolver) InSync() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pm := r.windows[types.VenuePolymarket]
	pf := r.windows[types.VenuePredictFun]
	if pm == nil || pf == nil {
		return false
	}
	return AreInSync(pm.Title, pf.Title)
}

func (r *Resolver) refreshLoop() {
	r.refreshAll()

	ticker := time.NewTicker(r.refreshEvery)
	defer ticker.Stop()

	// Extra refresh right after each quarter-hour boundary so the new
	// window is picked up without waiting out a full interval
	boundary := time.NewTimer(time.Until(NextBoundary(time.Now())) + time.Second)
	defer boundary.Stop()

	for {
		select {
		case <-ticker.C:
			r.refreshAll()
		case <-boundary.C:
			r.refreshAll()
			boundary.Reset(time.Until(NextBoundary(time.Now())) + time.Second)
		case <-r.stopCh:
			return
		}
	}
}

func (r *Resolver) refreshAll() {
	now := time.Now()
	for venue, finder := range r.finders {
		r.refreshVenue(venue, finder, now)
	}
}

func (r *Resolver) refreshVenue(venue types.Venue, finder Finder, now time.Time) {
	window, err := finder.Find(now)
	if err != nil {
		if errors.Is(err, ErrNoWindow) {
			log.Debug().Str("venue", string(venue)).Msg("No window yet, retrying next tick")
		} else {
			log.Warn().Err(err).Str("venue", string(venue)).Msg("Window lookup failed")
		}
		return
	}

	r.mu.Lock()
	prev := r.windows[venue]
	changed := prev == nil || prev.ID != window.ID
	if changed {
		r.windows[venue] = window
	}
	r.mu.Unlock()

	if changed {
		log.Info().
			Str("venue", string(venue)).
			Str("label", window.WindowLabel).
			Str("title", window.Title).
			Msg("🪟 New window resolved")

		if r.onRollover != nil {
			r.onRollover(venue, window)
		}
	}
}
