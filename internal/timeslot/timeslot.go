// Package timeslot converts between the two slot spellings the system uses:
// display form HH:MM and key form HHMM (as embedded in booking sort keys).
// All times are UTC civil times; there is no timezone handling anywhere.
package timeslot

import (
	"fmt"
	"strings"
	"time"

	"calbook-service/pkg/response"
)

const DateLayout = "2006-01-02"

// Normalize reduces a slot to HH:MM ("0930" -> "09:30", "09:30" -> "09:30").
func Normalize(s string) (string, error) {
	key, err := Key(s)
	if err != nil {
		return "", err
	}

	return key[:2] + ":" + key[2:], nil
}

// Key reduces a slot to the 4-digit HHMM form used in sort keys.
func Key(s string) (string, error) {
	const op = "timeslot.Key"

	s = strings.TrimSpace(strings.ReplaceAll(s, ":", ""))
	if len(s) != 4 {
		return "", fmt.Errorf("%s: time must be HHMM (e.g. 0930): %w", op, response.ErrValidation)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("%s: time must be HHMM (e.g. 0930): %w", op, response.ErrValidation)
		}
	}
	if s[:2] > "23" || s[2:] > "59" {
		return "", fmt.Errorf("%s: time out of range: %w", op, response.ErrValidation)
	}

	return s, nil
}

// ParseDate validates a YYYY-MM-DD date.
func ParseDate(d string) (time.Time, error) {
	const op = "timeslot.ParseDate"

	t, err := time.Parse(DateLayout, d)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: date must be YYYY-MM-DD: %w", op, response.ErrValidation)
	}

	return t, nil
}

// DatesBetween lists every date from start to end inclusive.
func DatesBetween(startDate, endDate string) ([]string, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return nil, err
	}

	dates := make([]string, 0)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}

	return dates, nil
}

// Instant combines a date and an HH:MM slot into its UTC instant.
func Instant(date, slot string) (time.Time, error) {
	const op = "timeslot.Instant"

	t, err := time.Parse(DateLayout+"T15:04", date+"T"+slot)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, response.ErrValidation)
	}

	return t, nil
}
