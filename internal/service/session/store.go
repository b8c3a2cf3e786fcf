package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"totem-kiosk/internal/domain"
)

const DefaultIdleTTL = 30 * time.Minute

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Store keeps sessions in memory and forgets them after an idle period.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	gate     AdminGate
	now      func() time.Time
	newID    func() string
}

func NewStore(ttl time.Duration, gate AdminGate) *Store {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		gate:     gate,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (st *Store) Create() *Session {
	s := newSession(st.newID(), st.gate)
	st.mu.Lock()
	st.sessions[s.ID] = &entry{session: s, lastSeen: st.now()}
	st.mu.Unlock()
	return s
}

// Get returns a live session and marks it as used.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	now := st.now()
	if now.Sub(e.lastSeen) > st.ttl {
		delete(st.sessions, id)
		return nil, domain.ErrNotFound
	}
	e.lastSeen = now
	return e.session, nil
}

func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(st.sessions, id)
	return nil
}

// Sweep drops idle sessions and reports how many were removed.
func (st *Store) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	removed := 0
	for id, e := range st.sessions {
		if now.Sub(e.lastSeen) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Run sweeps every interval until ctx is done.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Sweep()
		}
	}
}
