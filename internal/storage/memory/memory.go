package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"calbook-service/internal/storage"
)

// Storage is an in-process Store used by tests and throwaway dev setups.
type Storage struct {
	mu         sync.RWMutex
	partitions map[string]map[string][]byte
}

func New() *Storage {
	return &Storage{
		partitions: make(map[string]map[string][]byte),
	}
}

func (s *Storage) Get(_ context.Context, pk, sk string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.partitions[pk][sk]
	if !ok {
		return nil, storage.ErrNotFound
	}

	out := make([]byte, len(value))
	copy(out, value)

	return out, nil
}

func (s *Storage) Put(_ context.Context, pk, sk string, value []byte, cond storage.PutCondition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	part, ok := s.partitions[pk]
	if !ok {
		part = make(map[string][]byte)
		s.partitions[pk] = part
	}

	if cond == storage.CondIfAbsent {
		if _, exists := part[sk]; exists {
			return storage.ErrConditionFailed
		}
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	part[sk] = stored

	return nil
}

func (s *Storage) Delete(_ context.Context, pk, sk string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.partitions[pk], sk)

	return nil
}

func (s *Storage) QueryPrefix(_ context.Context, pk, skPrefix string) ([]storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(pk, func(sk string) bool {
		return strings.HasPrefix(sk, skPrefix)
	}), nil
}

func (s *Storage) QueryRange(_ context.Context, pk, skFrom, skTo string) ([]storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(pk, func(sk string) bool {
		return sk >= skFrom && sk <= skTo
	}), nil
}

func (s *Storage) collect(pk string, match func(sk string) bool) []storage.Record {
	records := make([]storage.Record, 0)
	for sk, value := range s.partitions[pk] {
		if !match(sk) {
			continue
		}

		out := make([]byte, len(value))
		copy(out, value)
		records = append(records, storage.Record{SK: sk, Value: out})
	}

	sort.Slice(records, func(i, j int) bool { return records[i].SK < records[j].SK })

	return records
}

func (s *Storage) Close() error {
	return nil
}
