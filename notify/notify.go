// Package notify carries short-lived user notifications ("toasts") from the
// session operations to whatever view renders them next.
package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind is the severity of a notification
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// DefaultDuration is how long a notification stays visible
const DefaultDuration = 4 * time.Second

// Handle identifies a posted notification
type Handle string

// Notification is a single visible message
type Notification struct {
	Handle    Handle    `json:"handle"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	Key       string    `json:"key,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Sink receives notifications. Posting with a dedupe key already visible
// replaces that notification instead of adding a second one.
type Sink interface {
	Notify(message string, kind Kind, dedupeKey string) Handle
	Dismiss(h Handle)
}

// Toaster is an in-memory Sink holding the notifications of one browser session
type Toaster struct {
	mu       sync.Mutex
	items    map[Handle]*Notification
	byKey    map[string]Handle
	duration time.Duration
	nowTime  func() time.Time
}

var _ Sink = (*Toaster)(nil)

// Option defines a function type to modify the Toaster instance.
type Option func(*Toaster)

// WithDuration sets how long notifications stay visible
func WithDuration(d time.Duration) Option {
	return func(t *Toaster) {
		if d > 0 {
			t.duration = d
		}
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(t *Toaster) {
		t.nowTime = nowFunc
	}
}

func NewToaster(options ...Option) *Toaster {
	t := &Toaster{
		items:    make(map[Handle]*Notification),
		byKey:    make(map[string]Handle),
		duration: DefaultDuration,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

func (t *Toaster) Notify(message string, kind Kind, dedupeKey string) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.nowTime()
	t.expireLocked(now)

	if dedupeKey != "" {
		if h, ok := t.byKey[dedupeKey]; ok {
			n := t.items[h]
			n.Message = message
			n.Kind = kind
			n.CreatedAt = now
			n.ExpiresAt = now.Add(t.duration)
			return h
		}
	}

	h := Handle(uuid.NewString())
	t.items[h] = &Notification{
		Handle:    h,
		Message:   message,
		Kind:      kind,
		Key:       dedupeKey,
		CreatedAt: now,
		ExpiresAt: now.Add(t.duration),
	}
	if dedupeKey != "" {
		t.byKey[dedupeKey] = h
	}
	return h
}

func (t *Toaster) Dismiss(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocked(h)
}

// Active returns the visible notifications, oldest first
func (t *Toaster) Active() []Notification {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.expireLocked(t.nowTime())
	return t.snapshotLocked()
}

// Drain returns the visible notifications and dismisses them. Server rendered
// pages use it so each notification is shown once.
func (t *Toaster) Drain() []Notification {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.expireLocked(t.nowTime())
	out := t.snapshotLocked()
	for _, n := range out {
		t.removeLocked(n.Handle)
	}
	return out
}

func (t *Toaster) snapshotLocked() []Notification {
	out := make([]Notification, 0, len(t.items))
	for _, n := range t.items {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Handle < out[j].Handle
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (t *Toaster) expireLocked(now time.Time) {
	for h, n := range t.items {
		if !now.Before(n.ExpiresAt) {
			t.removeLocked(h)
		}
	}
}

func (t *Toaster) removeLocked(h Handle) {
	n, ok := t.items[h]
	if !ok {
		return
	}
	delete(t.items, h)
	if n.Key != "" && t.byKey[n.Key] == h {
		delete(t.byKey, n.Key)
	}
}
