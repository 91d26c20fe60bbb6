package api

import (
	"time"

	"calbook-service/internal/models"
)

// --- Global Settings ---

type GlobalSettingsUpdateRequest struct {
	HorizonDays    *int    `json:"horizon_days,omitempty"`
	MinNoticeHours *int    `json:"min_notice_hours,omitempty"`
	HardCutoffDate *string `json:"hard_cutoff_date,omitempty"`
}

type GlobalSettingsResponse struct {
	HorizonDays    int       `json:"horizon_days"`
	MinNoticeHours int       `json:"min_notice_hours"`
	HardCutoffDate string    `json:"hard_cutoff_date,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func FromSettings(s *models.GlobalSettings) GlobalSettingsResponse {
	return GlobalSettingsResponse{
		HorizonDays:    s.HorizonDays,
		MinNoticeHours: s.MinNoticeHours,
		HardCutoffDate: s.HardCutoffDate,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// --- Monthly Recurring Rules ---

type RuleCreateRequest struct {
	DayOfMonth     int      `json:"day_of_month"`
	AvailableSlots []string `json:"available_slots"`
}

type RuleUpdateRequest struct {
	AvailableSlots []string `json:"available_slots"`
}

type RuleResponse struct {
	DayOfMonth     int       `json:"day_of_month"`
	AvailableSlots []string  `json:"available_slots"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func FromRule(r *models.RecurringRule) RuleResponse {
	return RuleResponse{
		DayOfMonth:     r.DayOfMonth,
		AvailableSlots: r.AvailableSlots,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// --- Date Overrides ---

type OverrideUpsertRequest struct {
	Date          string   `json:"date"`
	Type          string   `json:"type"`
	OverrideSlots []string `json:"override_slots"`
}

type OverrideResponse struct {
	Date          string    `json:"date"`
	Type          string    `json:"type"`
	OverrideSlots []string  `json:"override_slots"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func FromOverride(o *models.DateOverride) OverrideResponse {
	return OverrideResponse{
		Date:          o.Date,
		Type:          string(o.Type),
		OverrideSlots: o.OverrideSlots,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// --- Availability ---

type DayAvailability struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

type AvailabilityResponse struct {
	Available []DayAvailability `json:"available"`
}

// --- Appointments ---

type AppointmentCreateRequest struct {
	Date               string         `json:"date"`
	Time               string         `json:"time"`
	ClientMobile       string         `json:"client_mobile"`
	AppointmentDetails map[string]any `json:"appointment_details,omitempty"`
	Status             string         `json:"status,omitempty"`
}

type AppointmentUpdateRequest struct {
	Date               *string        `json:"date,omitempty"`
	Time               *string        `json:"time,omitempty"`
	Status             *string        `json:"status,omitempty"`
	AppointmentDetails map[string]any `json:"appointment_details,omitempty"`
}

type AppointmentResponse struct {
	Date               string         `json:"date"`
	Time               string         `json:"time"`
	ClientMobile       string         `json:"client_mobile"`
	Status             string         `json:"status"`
	AppointmentDetails map[string]any `json:"appointment_details"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func FromBooking(b *models.Booking) AppointmentResponse {
	return AppointmentResponse{
		Date:               b.Date,
		Time:               b.Time,
		ClientMobile:       b.ClientMobile,
		Status:             string(b.Status),
		AppointmentDetails: b.AppointmentDetails,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}
