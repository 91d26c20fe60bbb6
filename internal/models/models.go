package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

// Active reports whether the booking still occupies its slot. CANCELLED
// rows stay in the store as tombstones and do not block availability.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

type OverrideType string

const (
	OverrideBlocked  OverrideType = "BLOCKED"
	OverrideModified OverrideType = "MODIFIED"
)

func (t OverrideType) Valid() bool {
	return t == OverrideBlocked || t == OverrideModified
}

// GlobalSettings is the per-provider booking policy. At most one exists per
// provider; it is created lazily with defaults on first access.
type GlobalSettings struct {
	HorizonDays    int       `json:"horizonDays"`
	MinNoticeHours int       `json:"minNoticeHours"`
	HardCutoffDate string    `json:"hardCutoffDate,omitempty"` // YYYY-MM-DD, empty = no cutoff
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// RecurringRule holds the slot list for one day of month (1-31), applied to
// every month unless a date override says otherwise.
type RecurringRule struct {
	DayOfMonth     int       `json:"dayOfMonth"`
	AvailableSlots []string  `json:"availableSlots"` // HH:MM
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// DateOverride replaces the rule-derived slots for one specific date.
// BLOCKED removes the whole day; MODIFIED substitutes OverrideSlots.
type DateOverride struct {
	Date          string       `json:"date"` // YYYY-MM-DD
	Type          OverrideType `json:"type"`
	OverrideSlots []string     `json:"overrideSlots"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// Booking occupies exactly one provider/date/time slot. The date+time pair
// is the uniqueness key; there is no synthetic ID.
type Booking struct {
	Date               string         `json:"date"` // YYYY-MM-DD
	Time               string         `json:"time"` // HH:MM
	ClientMobile       string         `json:"clientMobile"`
	Status             BookingStatus  `json:"status"`
	AppointmentDetails map[string]any `json:"appointmentDetails"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// DayAvailability is one entry of the availability computation: the open
// slots for a single date, sorted ascending.
type DayAvailability struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}
