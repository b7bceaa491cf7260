package config

import (
	"sync/atomic"

	"github.com/brettbedarf/explorerfs/internal/util"
)

// Store holds the live configuration. Readers always get an immutable
// snapshot; writers swap in a modified copy.
type Store struct {
	cur atomic.Pointer[Config]
}

// NewStore creates a Store seeded with cfg, or the defaults when cfg is nil
func NewStore(cfg *Config) *Store {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	s := &Store{}
	s.cur.Store(cfg.Clone())
	return s
}

// Load returns the current snapshot. Callers must not modify it.
func (s *Store) Load() *Config {
	return s.cur.Load()
}

// Replace swaps in a copy of cfg
func (s *Store) Replace(cfg *Config) {
	s.cur.Store(cfg.Clone())
}

// Update merges override onto a copy of the current snapshot and publishes it.
// The published snapshot is returned.
func (s *Store) Update(override *ConfigOverride) *Config {
	for {
		old := s.cur.Load()
		next := old.Clone()
		next.Merge(override)
		if s.cur.CompareAndSwap(old, next) {
			return next
		}
	}
}

// ReloadFile re-reads an override file on top of the defaults and publishes it.
// The current snapshot is kept if the file cannot be loaded.
func (s *Store) ReloadFile(path string) error {
	logger := util.GetLogger("Config.ReloadFile")
	cfg, err := NewConfigFromFile(path)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Failed to reload config")
		return err
	}
	s.cur.Store(cfg)
	logger.Debug().Str("path", path).Msg("Config reloaded")
	return nil
}
