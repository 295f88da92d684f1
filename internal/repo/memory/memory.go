package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hamed0406/pinger/internal/domain"
	"github.com/hamed0406/pinger/internal/repo"
)

// Store keeps one MonitorState per endpoint, keyed by URL, and remembers
// registry order for snapshots.
type Store struct {
	mu     sync.RWMutex
	order  []string
	states map[string]domain.MonitorState
}

func New(endpoints []domain.Endpoint) *Store {
	s := &Store{
		order:  make([]string, 0, len(endpoints)),
		states: make(map[string]domain.MonitorState, len(endpoints)),
	}
	for _, ep := range endpoints {
		if _, ok := s.states[ep.URL]; ok {
			continue
		}
		s.order = append(s.order, ep.URL)
		s.states[ep.URL] = domain.NewMonitorState(ep)
	}
	return s
}

// Apply replaces the endpoint's record as a whole, so readers see either the
// previous or the next state.
func (m *Store) Apply(ctx context.Context, url string, res domain.ProbeResult, at time.Time) (domain.MonitorState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.states[url]
	if !ok {
		return domain.MonitorState{}, fmt.Errorf("%w: %s", repo.ErrEndpointNotTracked, url)
	}
	next := prev.Apply(res, at)
	m.states[url] = next
	return next, nil
}

func (m *Store) Get(ctx context.Context, url string) (domain.MonitorState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.states[url]
	if !ok {
		return domain.MonitorState{}, fmt.Errorf("%w: %s", repo.ErrEndpointNotTracked, url)
	}
	return st, nil
}

// Snapshot returns every state in registry order.
func (m *Store) Snapshot(ctx context.Context) ([]domain.MonitorState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.MonitorState, 0, len(m.order))
	for _, url := range m.order {
		out = append(out, m.states[url])
	}
	return out, nil
}
