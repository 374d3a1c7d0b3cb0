// Package session gives every visitor their own modal controller, keyed by a cookie id.
package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/modal"
)

// Factory builds the controller for a new session.
type Factory func() *modal.Controller

type entry struct {
	ctl      *modal.Controller
	lastSeen time.Time
}

type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	factory  Factory
	idle     time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewStore(factory Factory, idle time.Duration, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		sessions: make(map[string]*entry),
		factory:  factory,
		idle:     idle,
		now:      time.Now,
		log:      log.Named("session"),
	}
}

// Get returns the controller for id, creating a session when id is empty or unknown.
// The returned id is the one the caller should keep.
func (s *Store) Get(id string) (string, *modal.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.sessions[id]; ok && id != "" {
		e.lastSeen = s.now()
		return id, e.ctl
	}
	id = uuid.NewString()
	e := &entry{ctl: s.factory(), lastSeen: s.now()}
	s.sessions[id] = e
	s.log.Debug("session created", zap.String("session", id))
	return id, e.ctl
}

// Lookup returns an existing session without creating one.
func (s *Store) Lookup(id string) (*modal.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.ctl, true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep closes and forgets sessions idle for longer than the idle timeout. It returns how
// many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	var expired []*modal.Controller
	cutoff := s.now().Add(-s.idle)
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e.ctl)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, ctl := range expired {
		ctl.Close()
	}
	if len(expired) > 0 {
		s.log.Info("idle sessions closed", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done, then closes every remaining session.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.CloseAll()
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

// CloseAll closes every session.
func (s *Store) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*entry)
	s.mu.Unlock()

	for _, e := range all {
		e.ctl.Close()
	}
}

// ForceClearAll runs the emergency chart clear on every session.
func (s *Store) ForceClearAll() int {
	ctls := s.controllers()
	for _, ctl := range ctls {
		ctl.ForceClear()
	}
	return len(ctls)
}

// Info describes one session for the admin dashboard.
type Info struct {
	ID       string       `json:"id"`
	LastSeen time.Time    `json:"last_seen"`
	Modal    modal.Status `json:"modal"`
}

// Snapshot lists sessions, most recently seen first.
func (s *Store) Snapshot() []Info {
	s.mu.Lock()
	type item struct {
		id string
		e  entry
	}
	items := make([]item, 0, len(s.sessions))
	for id, e := range s.sessions {
		items = append(items, item{id: id, e: *e})
	}
	s.mu.Unlock()

	out := make([]Info, 0, len(items))
	for _, it := range items {
		out = append(out, Info{ID: it.id, LastSeen: it.e.lastSeen, Modal: it.e.ctl.Status()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeen.After(out[j].LastSeen) })
	return out
}

func (s *Store) controllers() []*modal.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*modal.Controller, 0, len(s.sessions))
	for _, e := range s.sessions {
		out = append(out, e.ctl)
	}
	return out
}
