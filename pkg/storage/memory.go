package storage

import "sync"

// MemoryKV keeps values in a map. Values are copied on the way in and out so
// callers cannot mutate stored bytes.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

func (s *MemoryKV) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryKV) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryKV) Close() error { return nil }

var _ Store = (*MemoryKV)(nil)
