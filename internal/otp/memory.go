package otp

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	code      string
	expiresAt time.Time
}

// MemoryStore keeps codes in process memory. Codes do not survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	opts    options
}

func NewMemoryStore(ttl time.Duration, opts ...Option) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{entries: map[string]entry{}, ttl: ttl, opts: buildOptions(opts)}
}

func (s *MemoryStore) Issue(_ context.Context, key Key) (string, error) {
	code, err := s.opts.generate()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.entries[key.String()] = entry{code: code, expiresAt: s.opts.now().Add(s.ttl)}
	s.mu.Unlock()
	return code, nil
}

func (s *MemoryStore) Consume(_ context.Context, key Key, code string) error {
	k := key.String()
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[k]
	if !ok {
		return errNotFound()
	}
	if s.opts.now().After(e.expiresAt) {
		delete(s.entries, k)
		return errExpired()
	}
	if !sameCode(e.code, code) {
		return errMismatch()
	}
	delete(s.entries, k)
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.opts.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}
