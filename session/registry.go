package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/mentor-portal/identity"
	"github.com/jrsteele09/mentor-portal/notify"
	"github.com/jrsteele09/mentor-portal/profile"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Entry is the state kept for one browser session
type Entry struct {
	ID            string
	Store         *Store
	Notifications *notify.Toaster

	lastSeen time.Time
}

// GaugeRecorder is told how many browser sessions are live
type GaugeRecorder interface {
	ActiveSessions(n int)
}

// Registry owns one Store per browser session id
type Registry struct {
	providers identity.Factory
	keeper    identity.SessionKeeper
	profiles  profile.RecordProvider
	logger    zerolog.Logger
	recorder  Recorder
	gauge     GaugeRecorder
	toastTTL  time.Duration
	nowTime   func() time.Time

	mu      sync.Mutex
	entries map[string]*Entry
}

// RegistryOption defines a function type to modify the Registry instance.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger handed to each store
func WithRegistryLogger(logger zerolog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithRegistryRecorder sets the recorder for stores and the live session gauge
func WithRegistryRecorder(rec Recorder, gauge GaugeRecorder) RegistryOption {
	return func(r *Registry) {
		if rec != nil {
			r.recorder = rec
		}
		r.gauge = gauge
	}
}

// WithNotificationDuration sets how long notifications stay visible
func WithNotificationDuration(d time.Duration) RegistryOption {
	return func(r *Registry) {
		r.toastTTL = d
	}
}

// WithRegistryNowTime sets the now time function (primarily for testing)
func WithRegistryNowTime(nowFunc func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.nowTime = nowFunc
	}
}

func NewRegistry(providers identity.Factory, profiles profile.RecordProvider, options ...RegistryOption) (*Registry, error) {
	if providers == nil {
		return nil, errors.New("[session.NewRegistry] identity provider factory is required")
	}
	if profiles == nil {
		return nil, errors.New("[session.NewRegistry] profile record provider is required")
	}

	r := &Registry{
		providers: providers,
		profiles:  profiles,
		logger:    log.Logger,
		recorder:  nopRecorder{},
		toastTTL:  notify.DefaultDuration,
		nowTime:   time.Now,
		entries:   make(map[string]*Entry),
	}
	if keeper, ok := providers.(identity.SessionKeeper); ok {
		r.keeper = keeper
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// Get returns the entry for sessionID, creating and booting a store when
// there is none. created reports whether a new entry was made.
func (r *Registry) Get(ctx context.Context, sessionID string) (entry *Entry, created bool, err error) {
	if sessionID == "" {
		return nil, false, errors.New("[session.Registry.Get] session id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[sessionID]; ok {
		e.lastSeen = r.nowTime()
		return e, false, nil
	}

	toaster := notify.NewToaster(notify.WithDuration(r.toastTTL), notify.WithNowTime(r.nowTime))
	store, err := New(r.providers.ForSession(sessionID), r.profiles, toaster,
		WithLogger(r.logger.With().Str("session", shortID(sessionID)).Logger()),
		WithRecorder(r.recorder),
	)
	if err != nil {
		return nil, false, err
	}

	e := &Entry{ID: sessionID, Store: store.Boot(ctx), Notifications: toaster, lastSeen: r.nowTime()}
	r.entries[sessionID] = e
	r.reportLocked()
	return e, true, nil
}

// Lookup returns an existing entry without creating one
func (r *Registry) Lookup(sessionID string) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sessionID]
	return e, ok
}

// Attach returns the entry for a session id presented by a browser. An id is
// only adopted when it is live in the registry or the identity provider holds
// a sign-in for it; any other id is replaced by a freshly minted one.
func (r *Registry) Attach(ctx context.Context, sessionID string) (entry *Entry, created bool, err error) {
	if sessionID != "" {
		if _, ok := r.Lookup(sessionID); ok {
			return r.Get(ctx, sessionID)
		}
		if r.keeper != nil {
			known, err := r.keeper.HasSession(ctx, sessionID)
			if err != nil {
				r.logger.Warn().Err(err).Str("session", shortID(sessionID)).Msg("Unable to check stored sign-in")
			} else if known {
				return r.Get(ctx, sessionID)
			}
		}
	}
	return r.Get(ctx, uuid.NewString())
}

// Rotate moves a browser session to a new id and returns the new entry. The
// store and its notifications carry over, and the old id no longer resolves.
func (r *Registry) Rotate(ctx context.Context, sessionID string) (*Entry, error) {
	newID := uuid.NewString()

	r.mu.Lock()
	old, ok := r.entries[sessionID]
	if !ok {
		r.mu.Unlock()
		return nil, errors.New("[session.Registry.Rotate] unknown session")
	}
	if r.keeper != nil {
		if err := r.keeper.MoveSession(ctx, sessionID, newID); err != nil {
			r.mu.Unlock()
			return nil, errors.Wrap(err, "[session.Registry.Rotate] MoveSession")
		}
	}
	e := &Entry{ID: newID, Store: old.Store, Notifications: old.Notifications, lastSeen: r.nowTime()}
	delete(r.entries, sessionID)
	r.entries[newID] = e
	r.mu.Unlock()

	old.Store.rebind(r.providers.ForSession(newID))
	return e, nil
}

// Sweep drops sessions not seen for idle and returns how many were removed
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.nowTime().Add(-idle)
	removed := 0
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			removed++
		}
	}
	if removed > 0 {
		r.reportLocked()
	}
	return removed
}

// RunSweeper sweeps every interval until ctx is done
func (r *Registry) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				r.logger.Debug().Int("removed", n).Msg("Evicted idle browser sessions")
			}
		}
	}
}

// Len returns the number of live browser sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) reportLocked() {
	if r.gauge != nil {
		r.gauge.ActiveSessions(len(r.entries))
	}
}

// shortID keeps session ids out of logs in full
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
