package memory

import (
	"context"
	"errors"
	"testing"

	"calbook-service/internal/storage"
)

func TestPut_InsertIfAbsent(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Put(ctx, "USER#p1", "BOOKING#2024-03-15#T0900", []byte(`{"a":1}`), storage.CondIfAbsent); err != nil {
		t.Fatalf("first put error: %v", err)
	}

	err := s.Put(ctx, "USER#p1", "BOOKING#2024-03-15#T0900", []byte(`{"a":2}`), storage.CondIfAbsent)
	if !errors.Is(err, storage.ErrConditionFailed) {
		t.Fatalf("second put error = %v, want ErrConditionFailed", err)
	}

	// The losing write must not have touched the stored value.
	value, err := s.Get(ctx, "USER#p1", "BOOKING#2024-03-15#T0900")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if string(value) != `{"a":1}` {
		t.Fatalf("value = %s, want original", value)
	}

	// Unconditional put overwrites.
	if err := s.Put(ctx, "USER#p1", "BOOKING#2024-03-15#T0900", []byte(`{"a":3}`), storage.CondNone); err != nil {
		t.Fatalf("unconditional put error: %v", err)
	}
}

func TestGet_Missing(t *testing.T) {
	s := New()

	_, err := s.Get(context.Background(), "USER#p1", "SETTINGS#GLOBAL")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestQueryPrefixAndRange_Ordering(t *testing.T) {
	s := New()
	ctx := context.Background()

	sortKeys := []string{
		"BOOKING#2024-03-16#T0900",
		"BOOKING#2024-03-15#T1030",
		"BOOKING#2024-03-15#T0900",
		"RULE#DOM#15",
	}
	for _, sk := range sortKeys {
		if err := s.Put(ctx, "USER#p1", sk, []byte(sk), storage.CondNone); err != nil {
			t.Fatalf("put %s error: %v", sk, err)
		}
	}
	// Another partition must not leak in.
	if err := s.Put(ctx, "USER#p2", "BOOKING#2024-03-15#T0900", []byte("other"), storage.CondNone); err != nil {
		t.Fatalf("put error: %v", err)
	}

	records, err := s.QueryPrefix(ctx, "USER#p1", "BOOKING#2024-03-15#")
	if err != nil {
		t.Fatalf("query prefix error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].SK != "BOOKING#2024-03-15#T0900" || records[1].SK != "BOOKING#2024-03-15#T1030" {
		t.Fatalf("records not ordered by sort key: %v", records)
	}

	records, err = s.QueryRange(ctx, "USER#p1", "BOOKING#2024-03-15#T0000", "BOOKING#2024-03-16#T2359")
	if err != nil {
		t.Fatalf("query range error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	if records[2].SK != "BOOKING#2024-03-16#T0900" {
		t.Fatalf("records[2].SK = %q", records[2].SK)
	}
}
