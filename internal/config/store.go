package config

import "sync"

// Store guards the live configuration. Readers take immutable
// snapshots; a reload swaps the whole config at once.
type Store struct {
	mu  sync.RWMutex
	cfg *Config
}

func NewStore(cfg *Config) *Store {
	return &Store{cfg: cfg}
}

// Snapshot returns a deep copy safe to read without further locking.
func (s *Store) Snapshot() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Apply replaces the live configuration.
func (s *Store) Apply(cfg *Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}
