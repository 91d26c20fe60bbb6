package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"calbook-service/internal/models"
	"calbook-service/internal/storage"
	"calbook-service/internal/timeslot"
	"calbook-service/pkg/response"
)

const (
	defaultHorizonDays    = 30
	defaultMinNoticeHours = 2
)

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

type Store interface {
	// Settings
	GetSettings(ctx context.Context, providerID string) (*models.GlobalSettings, error)
	PutSettings(ctx context.Context, providerID string, horizonDays, minNoticeHours int, hardCutoffDate string) (*models.GlobalSettings, error)
	UpdateSettings(ctx context.Context, providerID string, horizonDays, minNoticeHours *int, hardCutoffDate *string) (*models.GlobalSettings, error)

	// Rules
	GetRule(ctx context.Context, providerID string, dayOfMonth int) (*models.RecurringRule, error)
	PutRule(ctx context.Context, providerID string, dayOfMonth int, availableSlots []string) (*models.RecurringRule, error)
	ListRules(ctx context.Context, providerID string) ([]*models.RecurringRule, error)
	DeleteRule(ctx context.Context, providerID string, dayOfMonth int) error

	// Date Overrides
	GetOverride(ctx context.Context, providerID, date string) (*models.DateOverride, error)
	PutOverride(ctx context.Context, providerID, date string, overrideType models.OverrideType, overrideSlots []string) (*models.DateOverride, error)
	ListOverrides(ctx context.Context, providerID, startDate, endDate string) ([]*models.DateOverride, error)
	DeleteOverride(ctx context.Context, providerID, date string) error

	// Bookings
	GetBooking(ctx context.Context, providerID, date, slot string) (*models.Booking, error)
	PutBooking(ctx context.Context, providerID string, booking *models.Booking, cond storage.PutCondition) (*models.Booking, error)
	DeleteBooking(ctx context.Context, providerID, date, slot string) error
	ListBookingsForDate(ctx context.Context, providerID, date string) ([]*models.Booking, error)
	ListBookingsForRange(ctx context.Context, providerID, startDate, endDate string) ([]*models.Booking, error)
}

// --- Settings ---

func (s *Service) GetOrCreateSettings(ctx context.Context, providerID string) (*models.GlobalSettings, error) {
	const op = "service.GetOrCreateSettings"

	settings, err := s.store.GetSettings(ctx, providerID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, response.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	settings, err = s.store.PutSettings(ctx, providerID, defaultHorizonDays, defaultMinNoticeHours, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, providerID string, horizonDays, minNoticeHours *int, hardCutoffDate *string) (*models.GlobalSettings, error) {
	const op = "service.UpdateSettings"

	if horizonDays != nil && *horizonDays < 1 {
		return nil, fmt.Errorf("%s: horizon_days must be >= 1: %w", op, response.ErrValidation)
	}
	if minNoticeHours != nil && *minNoticeHours < 0 {
		return nil, fmt.Errorf("%s: min_notice_hours must be >= 0: %w", op, response.ErrValidation)
	}
	if hardCutoffDate != nil && *hardCutoffDate != "" {
		if _, err := timeslot.ParseDate(*hardCutoffDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	settings, err := s.store.UpdateSettings(ctx, providerID, horizonDays, minNoticeHours, hardCutoffDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return settings, nil
}

// --- Rules ---

func (s *Service) PutRule(ctx context.Context, providerID string, dayOfMonth int, availableSlots []string) (*models.RecurringRule, error) {
	const op = "service.PutRule"

	if dayOfMonth < 1 || dayOfMonth > 31 {
		return nil, fmt.Errorf("%s: day_of_month must be 1-31: %w", op, response.ErrValidation)
	}

	slots, err := normalizeSlots(availableSlots)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rule, err := s.store.PutRule(ctx, providerID, dayOfMonth, slots)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rule, nil
}

func (s *Service) GetRule(ctx context.Context, providerID string, dayOfMonth int) (*models.RecurringRule, error) {
	const op = "service.GetRule"

	rule, err := s.store.GetRule(ctx, providerID, dayOfMonth)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rule, nil
}

func (s *Service) ListRules(ctx context.Context, providerID string) ([]*models.RecurringRule, error) {
	const op = "service.ListRules"

	rules, err := s.store.ListRules(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rules, nil
}

func (s *Service) DeleteRule(ctx context.Context, providerID string, dayOfMonth int) error {
	const op = "service.DeleteRule"

	if dayOfMonth < 1 || dayOfMonth > 31 {
		return fmt.Errorf("%s: day_of_month must be 1-31: %w", op, response.ErrValidation)
	}

	if err := s.store.DeleteRule(ctx, providerID, dayOfMonth); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// --- Date Overrides ---

func (s *Service) PutOverride(ctx context.Context, providerID, date string, overrideType models.OverrideType, overrideSlots []string) (*models.DateOverride, error) {
	const op = "service.PutOverride"

	if _, err := timeslot.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !overrideType.Valid() {
		return nil, fmt.Errorf("%s: type must be BLOCKED or MODIFIED: %w", op, response.ErrValidation)
	}

	slots, err := normalizeSlots(overrideSlots)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	override, err := s.store.PutOverride(ctx, providerID, date, overrideType, slots)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return override, nil
}

func (s *Service) GetOverride(ctx context.Context, providerID, date string) (*models.DateOverride, error) {
	const op = "service.GetOverride"

	override, err := s.store.GetOverride(ctx, providerID, date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return override, nil
}

func (s *Service) DeleteOverride(ctx context.Context, providerID, date string) error {
	const op = "service.DeleteOverride"

	if err := s.store.DeleteOverride(ctx, providerID, date); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// --- Availability ---

// ComputeAvailability returns the open slots per date over the inclusive
// range, skipping dates with none. Evaluated against wall-clock time, so the
// same range can shrink between calls as the min-notice window advances;
// callers must not cache results across that boundary.
func (s *Service) ComputeAvailability(ctx context.Context, providerID, startDate, endDate string) ([]models.DayAvailability, error) {
	const op = "service.ComputeAvailability"

	dates, err := timeslot.DatesBetween(startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	settings, err := s.GetOrCreateSettings(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ruleItems, err := s.store.ListRules(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rules := make(map[int][]string, len(ruleItems))
	for _, rule := range ruleItems {
		rules[rule.DayOfMonth] = rule.AvailableSlots
	}

	overrideItems, err := s.store.ListOverrides(ctx, providerID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	overrides := make(map[string]*models.DateOverride, len(overrideItems))
	for _, override := range overrideItems {
		overrides[override.Date] = override
	}

	bookings, err := s.store.ListBookingsForRange(ctx, providerID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	booked := make(map[string]map[string]struct{})
	for _, b := range bookings {
		if !b.Status.Active() {
			continue
		}
		if booked[b.Date] == nil {
			booked[b.Date] = make(map[string]struct{})
		}
		booked[b.Date][b.Time] = struct{}{}
	}

	var noticeCutoff time.Time
	if settings.MinNoticeHours > 0 {
		noticeCutoff = s.now().UTC().Add(time.Duration(settings.MinNoticeHours) * time.Hour)
	}

	result := make([]models.DayAvailability, 0)
	for _, d := range dates {
		if settings.HardCutoffDate != "" && d > settings.HardCutoffDate {
			continue
		}

		var baseSlots []string
		if override, ok := overrides[d]; ok {
			if override.Type == models.OverrideBlocked {
				continue
			}
			baseSlots = override.OverrideSlots
		} else {
			day, err := timeslot.ParseDate(d)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			baseSlots = rules[day.Day()]
		}

		taken := booked[d]
		open := make([]string, 0, len(baseSlots))
		for _, raw := range baseSlots {
			slot, err := timeslot.Normalize(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			if _, isTaken := taken[slot]; isTaken {
				continue
			}

			if settings.MinNoticeHours > 0 {
				instant, err := timeslot.Instant(d, slot)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", op, err)
				}
				// A slot starting exactly at the notice cutoff is not
				// bookable; the boundary is exclusive.
				if !instant.After(noticeCutoff) {
					continue
				}
			}

			open = append(open, slot)
		}

		if len(open) == 0 {
			continue
		}

		sort.Strings(open)
		result = append(result, models.DayAvailability{Date: d, Slots: open})
	}

	return result, nil
}

// --- Bookings ---

func (s *Service) CreateBooking(ctx context.Context, providerID, date, slot, clientMobile string, details map[string]any, status models.BookingStatus) (*models.Booking, error) {
	const op = "service.CreateBooking"

	if _, err := timeslot.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	normalized, err := timeslot.Normalize(slot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if status == "" {
		status = models.BookingPending
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%s: invalid status %q: %w", op, status, response.ErrValidation)
	}

	booking := &models.Booking{
		Date:               date,
		Time:               normalized,
		ClientMobile:       clientMobile,
		Status:             status,
		AppointmentDetails: details,
	}

	stored, err := s.store.PutBooking(ctx, providerID, booking, storage.CondIfAbsent)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stored, nil
}

func (s *Service) GetBooking(ctx context.Context, providerID, date, slot string) (*models.Booking, error) {
	const op = "service.GetBooking"

	booking, err := s.store.GetBooking(ctx, providerID, date, slot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return booking, nil
}

// RescheduleBooking moves an active booking to a new slot, carrying its
// createdAt, client and details across. The delete+insert pair is not atomic
// in the store: if the insert hits an occupied key, the original booking is
// re-inserted at the old key before the conflict is reported. If that
// re-insert fails too the booking is gone from both keys, which surfaces as
// response.ErrInconsistent and must be escalated, never retried.
func (s *Service) RescheduleBooking(ctx context.Context, providerID, oldDate, oldSlot, newDate, newSlot string) (*models.Booking, error) {
	const op = "service.RescheduleBooking"

	if _, err := timeslot.ParseDate(newDate); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	normalizedNew, err := timeslot.Normalize(newSlot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	old, err := s.store.GetBooking(ctx, providerID, oldDate, oldSlot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if old.Status == models.BookingCancelled {
		return nil, fmt.Errorf("%s: booking already cancelled: %w", op, response.ErrNotFound)
	}

	if err := s.store.DeleteBooking(ctx, providerID, oldDate, oldSlot); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	moved := &models.Booking{
		Date:               newDate,
		Time:               normalizedNew,
		ClientMobile:       old.ClientMobile,
		Status:             old.Status,
		AppointmentDetails: old.AppointmentDetails,
		CreatedAt:          old.CreatedAt,
	}

	stored, err := s.store.PutBooking(ctx, providerID, moved, storage.CondIfAbsent)
	if err != nil {
		if _, restoreErr := s.store.PutBooking(ctx, providerID, old, storage.CondNone); restoreErr != nil {
			return nil, fmt.Errorf("%s: insert failed (%v) and restore of %s %s failed (%v): %w",
				op, err, oldDate, oldSlot, restoreErr, response.ErrInconsistent)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stored, nil
}

// CancelBooking soft-deletes: status becomes CANCELLED and the row stays as
// a tombstone. Missing booking returns (nil, nil); cancelling twice is a
// state no-op.
func (s *Service) CancelBooking(ctx context.Context, providerID, date, slot string) (*models.Booking, error) {
	const op = "service.CancelBooking"

	booking, err := s.store.GetBooking(ctx, providerID, date, slot)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	booking.Status = models.BookingCancelled

	stored, err := s.store.PutBooking(ctx, providerID, booking, storage.CondNone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stored, nil
}

// UpdateBooking is a plain read-modify-write with no version guard: last
// writer wins. Concurrent updates to the same booking can interleave; that
// window is accepted, not worked around here.
func (s *Service) UpdateBooking(ctx context.Context, providerID, date, slot string, status *models.BookingStatus, details map[string]any) (*models.Booking, error) {
	const op = "service.UpdateBooking"

	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%s: invalid status %q: %w", op, *status, response.ErrValidation)
	}

	booking, err := s.store.GetBooking(ctx, providerID, date, slot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if status != nil {
		booking.Status = *status
	}
	if details != nil {
		booking.AppointmentDetails = details
	}

	stored, err := s.store.PutBooking(ctx, providerID, booking, storage.CondNone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stored, nil
}

func normalizeSlots(slots []string) ([]string, error) {
	normalized := make([]string, 0, len(slots))
	for _, raw := range slots {
		slot, err := timeslot.Normalize(raw)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, slot)
	}

	return normalized, nil
}
