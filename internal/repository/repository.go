// Package repository translates calendar domain operations into partition/
// sort-key reads and writes. Single-table layout, partitioned per provider:
//
//	PK USER#{providerID}
//	SK SETTINGS#GLOBAL
//	SK RULE#DOM#{dayOfMonth:02d}
//	SK DATE#{YYYY-MM-DD}
//	SK BOOKING#{YYYY-MM-DD}#T{HHMM}
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"calbook-service/internal/models"
	"calbook-service/internal/storage"
	"calbook-service/internal/timeslot"
	"calbook-service/pkg/response"
)

type Repository struct {
	store storage.Store
}

func New(store storage.Store) *Repository {
	return &Repository{store: store}
}

func pk(providerID string) string {
	return "USER#" + providerID
}

const settingsSK = "SETTINGS#GLOBAL"

func ruleSK(dayOfMonth int) string {
	return fmt.Sprintf("RULE#DOM#%02d", dayOfMonth)
}

func overrideSK(date string) string {
	return "DATE#" + date
}

func bookingSK(date, timeKey string) string {
	return "BOOKING#" + date + "#T" + timeKey
}

// --- Settings ---

func (r *Repository) GetSettings(ctx context.Context, providerID string) (*models.GlobalSettings, error) {
	const op = "repository.GetSettings"

	raw, err := r.store.Get(ctx, pk(providerID), settingsSK)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var settings models.GlobalSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &settings, nil
}

func (r *Repository) PutSettings(ctx context.Context, providerID string, horizonDays, minNoticeHours int, hardCutoffDate string) (*models.GlobalSettings, error) {
	const op = "repository.PutSettings"

	now := time.Now().UTC()
	settings := &models.GlobalSettings{
		HorizonDays:    horizonDays,
		MinNoticeHours: minNoticeHours,
		HardCutoffDate: hardCutoffDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := r.putItem(ctx, providerID, settingsSK, settings); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return settings, nil
}

func (r *Repository) UpdateSettings(ctx context.Context, providerID string, horizonDays, minNoticeHours *int, hardCutoffDate *string) (*models.GlobalSettings, error) {
	const op = "repository.UpdateSettings"

	settings, err := r.GetSettings(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if horizonDays != nil {
		settings.HorizonDays = *horizonDays
	}
	if minNoticeHours != nil {
		settings.MinNoticeHours = *minNoticeHours
	}
	if hardCutoffDate != nil {
		settings.HardCutoffDate = *hardCutoffDate
	}
	settings.UpdatedAt = time.Now().UTC()

	if err := r.putItem(ctx, providerID, settingsSK, settings); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return settings, nil
}

// --- Rules ---

func (r *Repository) GetRule(ctx context.Context, providerID string, dayOfMonth int) (*models.RecurringRule, error) {
	const op = "repository.GetRule"

	raw, err := r.store.Get(ctx, pk(providerID), ruleSK(dayOfMonth))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var rule models.RecurringRule
	if err := json.Unmarshal(raw, &rule); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &rule, nil
}

func (r *Repository) PutRule(ctx context.Context, providerID string, dayOfMonth int, availableSlots []string) (*models.RecurringRule, error) {
	const op = "repository.PutRule"

	now := time.Now().UTC()
	rule := &models.RecurringRule{
		DayOfMonth:     dayOfMonth,
		AvailableSlots: availableSlots,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := r.putItem(ctx, providerID, ruleSK(dayOfMonth), rule); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rule, nil
}

func (r *Repository) ListRules(ctx context.Context, providerID string) ([]*models.RecurringRule, error) {
	const op = "repository.ListRules"

	records, err := r.store.QueryPrefix(ctx, pk(providerID), "RULE#DOM#")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rules := make([]*models.RecurringRule, 0, len(records))
	for _, rec := range records {
		var rule models.RecurringRule
		if err := json.Unmarshal(rec.Value, &rule); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		rules = append(rules, &rule)
	}

	return rules, nil
}

func (r *Repository) DeleteRule(ctx context.Context, providerID string, dayOfMonth int) error {
	const op = "repository.DeleteRule"

	if err := r.store.Delete(ctx, pk(providerID), ruleSK(dayOfMonth)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// --- Date Overrides ---

func (r *Repository) GetOverride(ctx context.Context, providerID, date string) (*models.DateOverride, error) {
	const op = "repository.GetOverride"

	raw, err := r.store.Get(ctx, pk(providerID), overrideSK(date))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var override models.DateOverride
	if err := json.Unmarshal(raw, &override); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &override, nil
}

func (r *Repository) PutOverride(ctx context.Context, providerID, date string, overrideType models.OverrideType, overrideSlots []string) (*models.DateOverride, error) {
	const op = "repository.PutOverride"

	now := time.Now().UTC()
	override := &models.DateOverride{
		Date:          date,
		Type:          overrideType,
		OverrideSlots: overrideSlots,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := r.putItem(ctx, providerID, overrideSK(date), override); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return override, nil
}

func (r *Repository) ListOverrides(ctx context.Context, providerID, startDate, endDate string) ([]*models.DateOverride, error) {
	const op = "repository.ListOverrides"

	records, err := r.store.QueryRange(ctx, pk(providerID), overrideSK(startDate), overrideSK(endDate))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	overrides := make([]*models.DateOverride, 0, len(records))
	for _, rec := range records {
		var override models.DateOverride
		if err := json.Unmarshal(rec.Value, &override); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		overrides = append(overrides, &override)
	}

	return overrides, nil
}

func (r *Repository) DeleteOverride(ctx context.Context, providerID, date string) error {
	const op = "repository.DeleteOverride"

	if err := r.store.Delete(ctx, pk(providerID), overrideSK(date)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// --- Bookings ---

// PutBooking writes a booking at its date/time key. Booking.Time must be the
// normalized HH:MM form. CreatedAt is set once and carried through later
// writes of the same logical booking; UpdatedAt is refreshed on every write.
// With CondIfAbsent an occupied key yields response.ErrConflict.
func (r *Repository) PutBooking(ctx context.Context, providerID string, booking *models.Booking, cond storage.PutCondition) (*models.Booking, error) {
	const op = "repository.PutBooking"

	timeKey, err := timeslot.Key(booking.Time)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	stored := *booking
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	if stored.AppointmentDetails == nil {
		stored.AppointmentDetails = map[string]any{}
	}

	raw, err := json.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = r.store.Put(ctx, pk(providerID), bookingSK(stored.Date, timeKey), raw, cond)
	if err != nil {
		if errors.Is(err, storage.ErrConditionFailed) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &stored, nil
}

func (r *Repository) GetBooking(ctx context.Context, providerID, date, slot string) (*models.Booking, error) {
	const op = "repository.GetBooking"

	timeKey, err := timeslot.Key(slot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	raw, err := r.store.Get(ctx, pk(providerID), bookingSK(date, timeKey))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var booking models.Booking
	if err := json.Unmarshal(raw, &booking); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &booking, nil
}

func (r *Repository) DeleteBooking(ctx context.Context, providerID, date, slot string) error {
	const op = "repository.DeleteBooking"

	timeKey, err := timeslot.Key(slot)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.store.Delete(ctx, pk(providerID), bookingSK(date, timeKey)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *Repository) ListBookingsForDate(ctx context.Context, providerID, date string) ([]*models.Booking, error) {
	const op = "repository.ListBookingsForDate"

	records, err := r.store.QueryPrefix(ctx, pk(providerID), "BOOKING#"+date+"#")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	bookings, err := decodeBookings(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

func (r *Repository) ListBookingsForRange(ctx context.Context, providerID, startDate, endDate string) ([]*models.Booking, error) {
	const op = "repository.ListBookingsForRange"

	records, err := r.store.QueryRange(ctx, pk(providerID),
		"BOOKING#"+startDate+"#T0000",
		"BOOKING#"+endDate+"#T2359",
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	bookings, err := decodeBookings(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

func decodeBookings(records []storage.Record) ([]*models.Booking, error) {
	bookings := make([]*models.Booking, 0, len(records))
	for _, rec := range records {
		var booking models.Booking
		if err := json.Unmarshal(rec.Value, &booking); err != nil {
			return nil, err
		}
		bookings = append(bookings, &booking)
	}

	return bookings, nil
}

func (r *Repository) putItem(ctx context.Context, providerID, sk string, item any) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return err
	}

	return r.store.Put(ctx, pk(providerID), sk, raw, storage.CondNone)
}
