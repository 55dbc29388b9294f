package storage

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

type PebbleKV struct {
	db *pebble.DB
}

func NewPebbleKV(path string) (*PebbleKV, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", path, err)
	}
	return &PebbleKV{db: db}, nil
}

func (s *PebbleKV) Close() error { return s.db.Close() }

// Get returns a copy of the stored value; pebble's buffer is only valid until
// the closer is released.
func (s *PebbleKV) Get(key string) ([]byte, bool, error) {
	val, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer closer.Close()

	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

func (s *PebbleKV) Set(key string, value []byte) error {
	if err := s.db.Set([]byte(key), value, pebble.Sync); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

var _ Store = (*PebbleKV)(nil)
