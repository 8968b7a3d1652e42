package repair

import (
	"context"
	"sync"
	"time"

	"github.com/leofalp/jsonmend/providers/completion"
)

// reply is one scripted completion result.
type reply struct {
	text string
	err  error
}

// scriptedService returns its replies in order and repeats the last one once
// the script runs out.
type scriptedService struct {
	mu      sync.Mutex
	replies []reply
	calls   int
	tiers   []string
	prompts []string
}

func script(replies ...reply) *scriptedService {
	return &scriptedService{replies: replies}
}

func (s *scriptedService) Complete(_ context.Context, tier, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tiers = append(s.tiers, tier)
	s.prompts = append(s.prompts, prompt)
	idx := min(s.calls, len(s.replies)-1)
	s.calls++
	if idx < 0 {
		return "", nil
	}
	return s.replies[idx].text, s.replies[idx].err
}

func (s *scriptedService) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// blockingService waits for the call context to end.
var blockingService = completion.Func(func(ctx context.Context, _, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
})

// mapStore is a minimal cache.Store.
type mapStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newMapStore() *mapStore {
	return &mapStore{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *mapStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *mapStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mapStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// waits records backoff delays instead of sleeping.
type waits struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (w *waits) wait(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	w.delays = append(w.delays, d)
	w.mu.Unlock()
	return ctx.Err()
}

// newTestLoader builds a loader whose backoff waits are recorded, not slept.
func newTestLoader(service completion.Service, opts Options, options ...Option) (*Loader, *waits) {
	w := &waits{}
	l := NewLoader(service, opts, options...)
	l.wait = w.wait
	return l, w
}
