package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"calbook-service/internal/models"
	"calbook-service/internal/storage"
	"calbook-service/internal/storage/memory"
	"calbook-service/pkg/response"
)

func TestPutBooking_KeyLayout(t *testing.T) {
	store := memory.New()
	repo := New(store)
	ctx := context.Background()

	_, err := repo.PutBooking(ctx, "p1", &models.Booking{
		Date:         "2024-03-15",
		Time:         "09:30",
		ClientMobile: "+15550001111",
		Status:       models.BookingPending,
	}, storage.CondIfAbsent)
	if err != nil {
		t.Fatalf("PutBooking error: %v", err)
	}

	if _, err := store.Get(ctx, "USER#p1", "BOOKING#2024-03-15#T0930"); err != nil {
		t.Fatalf("expected item at BOOKING#2024-03-15#T0930: %v", err)
	}
}

func TestPutBooking_ConditionalConflict(t *testing.T) {
	repo := New(memory.New())
	ctx := context.Background()

	booking := &models.Booking{Date: "2024-03-15", Time: "09:00", Status: models.BookingPending}

	if _, err := repo.PutBooking(ctx, "p1", booking, storage.CondIfAbsent); err != nil {
		t.Fatalf("first PutBooking error: %v", err)
	}

	_, err := repo.PutBooking(ctx, "p1", booking, storage.CondIfAbsent)
	if !errors.Is(err, response.ErrConflict) {
		t.Fatalf("second PutBooking error = %v, want ErrConflict", err)
	}
}

func TestPutBooking_PreservesCreatedAt(t *testing.T) {
	repo := New(memory.New())
	ctx := context.Background()

	first, err := repo.PutBooking(ctx, "p1", &models.Booking{
		Date: "2024-03-15", Time: "09:00", Status: models.BookingPending,
	}, storage.CondIfAbsent)
	if err != nil {
		t.Fatalf("PutBooking error: %v", err)
	}
	if first.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt not set on create")
	}

	time.Sleep(5 * time.Millisecond)

	second, err := repo.PutBooking(ctx, "p1", &models.Booking{
		Date: "2024-03-15", Time: "09:00", Status: models.BookingConfirmed,
		CreatedAt: first.CreatedAt,
	}, storage.CondNone)
	if err != nil {
		t.Fatalf("rewrite error: %v", err)
	}

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("CreatedAt changed on rewrite: %v != %v", second.CreatedAt, first.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("UpdatedAt not refreshed: %v <= %v", second.UpdatedAt, first.UpdatedAt)
	}

	stored, err := repo.GetBooking(ctx, "p1", "2024-03-15", "0900")
	if err != nil {
		t.Fatalf("GetBooking error: %v", err)
	}
	if !stored.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("stored CreatedAt = %v, want %v", stored.CreatedAt, first.CreatedAt)
	}
}

func TestListBookingsForRange_OrderedByDateThenTime(t *testing.T) {
	repo := New(memory.New())
	ctx := context.Background()

	for _, b := range []struct{ date, slot string }{
		{"2024-03-16", "09:00"},
		{"2024-03-15", "10:30"},
		{"2024-03-15", "09:00"},
		{"2024-03-17", "08:00"},
	} {
		_, err := repo.PutBooking(ctx, "p1", &models.Booking{
			Date: b.date, Time: b.slot, Status: models.BookingPending,
		}, storage.CondIfAbsent)
		if err != nil {
			t.Fatalf("PutBooking %s %s error: %v", b.date, b.slot, err)
		}
	}

	bookings, err := repo.ListBookingsForRange(ctx, "p1", "2024-03-15", "2024-03-16")
	if err != nil {
		t.Fatalf("ListBookingsForRange error: %v", err)
	}

	want := []struct{ date, slot string }{
		{"2024-03-15", "09:00"},
		{"2024-03-15", "10:30"},
		{"2024-03-16", "09:00"},
	}
	if len(bookings) != len(want) {
		t.Fatalf("len(bookings) = %d, want %d", len(bookings), len(want))
	}
	for i, w := range want {
		if bookings[i].Date != w.date || bookings[i].Time != w.slot {
			t.Fatalf("bookings[%d] = %s %s, want %s %s", i, bookings[i].Date, bookings[i].Time, w.date, w.slot)
		}
	}
}

func TestListBookingsForDate(t *testing.T) {
	repo := New(memory.New())
	ctx := context.Background()

	for _, b := range []struct{ date, slot string }{
		{"2024-03-15", "09:00"},
		{"2024-03-15", "10:00"},
		{"2024-03-16", "09:00"},
	} {
		if _, err := repo.PutBooking(ctx, "p1", &models.Booking{
			Date: b.date, Time: b.slot, Status: models.BookingPending,
		}, storage.CondIfAbsent); err != nil {
			t.Fatalf("PutBooking error: %v", err)
		}
	}

	bookings, err := repo.ListBookingsForDate(ctx, "p1", "2024-03-15")
	if err != nil {
		t.Fatalf("ListBookingsForDate error: %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("len(bookings) = %d, want 2", len(bookings))
	}
}

func TestSettings_RoundTripAndPartialUpdate(t *testing.T) {
	repo := New(memory.New())
	ctx := context.Background()

	if _, err := repo.GetSettings(ctx, "p1"); !errors.Is(err, response.ErrNotFound) {
		t.Fatalf("GetSettings on empty store error = %v, want ErrNotFound", err)
	}

	if _, err := repo.PutSettings(ctx, "p1", 30, 2, ""); err != nil {
		t.Fatalf("PutSettings error: %v", err)
	}

	horizon := 14
	cutoff := "2024-06-30"
	updated, err := repo.UpdateSettings(ctx, "p1", &horizon, nil, &cutoff)
	if err != nil {
		t.Fatalf("UpdateSettings error: %v", err)
	}
	if updated.HorizonDays != 14 {
		t.Fatalf("HorizonDays = %d, want 14", updated.HorizonDays)
	}
	if updated.MinNoticeHours != 2 {
		t.Fatalf("MinNoticeHours = %d, want 2 (untouched)", updated.MinNoticeHours)
	}
	if updated.HardCutoffDate != "2024-06-30" {
		t.Fatalf("HardCutoffDate = %q, want 2024-06-30", updated.HardCutoffDate)
	}
}

func TestRules_KeyPaddingAndList(t *testing.T) {
	store := memory.New()
	repo := New(store)
	ctx := context.Background()

	if _, err := repo.PutRule(ctx, "p1", 5, []string{"09:00"}); err != nil {
		t.Fatalf("PutRule error: %v", err)
	}
	if _, err := repo.PutRule(ctx, "p1", 15, []string{"10:00"}); err != nil {
		t.Fatalf("PutRule error: %v", err)
	}

	// Single-digit days are zero padded in the sort key.
	if _, err := store.Get(ctx, "USER#p1", "RULE#DOM#05"); err != nil {
		t.Fatalf("expected item at RULE#DOM#05: %v", err)
	}

	rules, err := repo.ListRules(ctx, "p1")
	if err != nil {
		t.Fatalf("ListRules error: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("len(rules) = %d, want 2", len(rules))
	}

	if err := repo.DeleteRule(ctx, "p1", 5); err != nil {
		t.Fatalf("DeleteRule error: %v", err)
	}
	if _, err := repo.GetRule(ctx, "p1", 5); !errors.Is(err, response.ErrNotFound) {
		t.Fatalf("GetRule after delete error = %v, want ErrNotFound", err)
	}
}

func TestOverrides_InclusiveRange(t *testing.T) {
	repo := New(memory.New())
	ctx := context.Background()

	for _, d := range []string{"2024-03-14", "2024-03-15", "2024-03-16", "2024-03-17"} {
		if _, err := repo.PutOverride(ctx, "p1", d, models.OverrideBlocked, nil); err != nil {
			t.Fatalf("PutOverride %s error: %v", d, err)
		}
	}

	overrides, err := repo.ListOverrides(ctx, "p1", "2024-03-15", "2024-03-16")
	if err != nil {
		t.Fatalf("ListOverrides error: %v", err)
	}
	if len(overrides) != 2 {
		t.Fatalf("len(overrides) = %d, want 2", len(overrides))
	}
	if overrides[0].Date != "2024-03-15" || overrides[1].Date != "2024-03-16" {
		t.Fatalf("unexpected overrides: %v, %v", overrides[0].Date, overrides[1].Date)
	}
}
