package diary

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an untouched session survives.
const DefaultSessionTTL = time.Hour

// Step is the result of advancing a session by one event.
type Step struct {
	Output Output
	State  State
	Prompt Prompt
	// Record is set only when Output is OutputFinalize.
	Record *Record
}

// Registry owns every in-progress session. Events for one session are
// applied one at a time; different sessions proceed independently.
type Registry struct {
	mu       sync.Mutex
	sessions map[int64]*entry
	ttl      time.Duration
	now      func() time.Time
}

type entry struct {
	mu       sync.Mutex
	session  *Session
	lastSeen atomic.Int64
	closed   atomic.Bool
}

type RegistryOption func(*Registry)

// WithTTL sets the inactivity expiry. Zero or negative disables expiry.
func WithTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) { r.ttl = ttl }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions: make(map[int64]*entry),
		ttl:      DefaultSessionTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start begins a fresh log for id, discarding any log already in progress.
func (r *Registry) Start(id int64) Prompt {
	e := r.newEntry(id)

	r.mu.Lock()
	if old, ok := r.sessions[id]; ok {
		old.closed.Store(true)
		slog.Info("diary: restarting active session", "chatId", id)
	}
	r.sessions[id] = e
	r.mu.Unlock()

	return e.session.Machine.Prompt()
}

// GetOrCreate returns the active session for id, creating one if there is none.
func (r *Registry) GetOrCreate(id int64) (View, bool) {
	now := r.now()

	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok && r.expired(e, now) {
		e.closed.Store(true)
		delete(r.sessions, id)
		ok = false
	}
	if !ok {
		e = r.newEntry(id)
		r.sessions[id] = e
	}
	r.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.session.Machine.View()
	v.SessionID = id
	return v, !ok
}

// Advance applies ev to the session for id.
func (r *Registry) Advance(ctx context.Context, id int64, ev Event) (Step, error) {
	e, ok := r.lookup(id)
	if !ok {
		return Step{}, ErrNoActiveSession
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed.Load() {
		return Step{}, ErrNoActiveSession
	}
	now := r.now()
	if r.expired(e, now) {
		r.remove(id, e)
		return Step{}, fmt.Errorf("%w: expired after %s", ErrNoActiveSession, r.ttl)
	}

	m := e.session.Machine
	out, err := m.Apply(ctx, ev)
	// any event, accepted or not, counts as activity
	e.lastSeen.Store(now.UnixNano())
	if err != nil {
		return Step{Output: OutputNone, State: m.State(), Prompt: m.Prompt()}, err
	}
	e.session.UpdatedAt = now

	step := Step{Output: out, State: m.State(), Prompt: m.Prompt()}
	switch out {
	case OutputFinalize:
		step.Record = &Record{
			ID:         uuid.New(),
			SessionID:  id,
			RecordedAt: now,
			Answers:    m.answers.Clone(),
		}
		r.remove(id, e)
	case OutputCancelled:
		r.remove(id, e)
	}
	return step, nil
}

// Current re-renders the prompt of the active session for id.
func (r *Registry) Current(id int64) (Prompt, error) {
	e, ok := r.lookup(id)
	if !ok {
		return Prompt{}, ErrNoActiveSession
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed.Load() {
		return Prompt{}, ErrNoActiveSession
	}
	if r.expired(e, r.now()) {
		r.remove(id, e)
		return Prompt{}, fmt.Errorf("%w: expired after %s", ErrNoActiveSession, r.ttl)
	}
	return e.session.Machine.Prompt(), nil
}

// Destroy drops the session for id, if any.
func (r *Registry) Destroy(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		e.closed.Store(true)
		delete(r.sessions, id)
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many went.
func (r *Registry) Sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.sessions {
		if r.expired(e, now) {
			e.closed.Store(true)
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if r.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(r.now()); n > 0 {
				slog.Info("diary: expired idle sessions", "count", n, "remaining", r.Len())
			}
		}
	}
}

func (r *Registry) newEntry(id int64) *entry {
	now := r.now()
	e := &entry{session: &Session{
		ID:        id,
		Machine:   NewMachine(),
		CreatedAt: now,
		UpdatedAt: now,
	}}
	e.lastSeen.Store(now.UnixNano())
	return e
}

func (r *Registry) lookup(id int64) (*entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	return e, ok
}

// remove deletes e if it is still the entry registered for id.
// Callers may hold e.mu but never r.mu.
func (r *Registry) remove(id int64, e *entry) {
	e.closed.Store(true)
	r.mu.Lock()
	if r.sessions[id] == e {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
}

func (r *Registry) expired(e *entry, now time.Time) bool {
	if r.ttl <= 0 {
		return false
	}
	return now.Sub(time.Unix(0, e.lastSeen.Load())) > r.ttl
}
