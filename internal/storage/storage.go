package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("item not found")
	ErrConditionFailed = errors.New("condition failed")
)

type PutCondition string

const (
	CondNone     PutCondition = "none"
	CondIfAbsent PutCondition = "insert-if-absent"
)

type Record struct {
	SK    string
	Value []byte
}

// Store is a key-value store addressed by partition key + sort key.
// Put with CondIfAbsent must be atomic: it is the only concurrency-safety
// primitive the calendar core relies on. Query results are ordered by sort
// key ascending.
type Store interface {
	Get(ctx context.Context, pk, sk string) ([]byte, error)
	Put(ctx context.Context, pk, sk string, value []byte, cond PutCondition) error
	Delete(ctx context.Context, pk, sk string) error
	QueryPrefix(ctx context.Context, pk, skPrefix string) ([]Record, error)
	QueryRange(ctx context.Context, pk, skFrom, skTo string) ([]Record, error)
	Close() error
}
