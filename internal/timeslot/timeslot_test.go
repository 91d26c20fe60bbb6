package timeslot

import (
	"errors"
	"testing"
	"time"

	"calbook-service/pkg/response"
)

func TestKeyAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantKey  string
		wantNorm string
		wantErr  bool
	}{
		{name: "compact form", in: "0930", wantKey: "0930", wantNorm: "09:30"},
		{name: "colon form", in: "09:30", wantKey: "0930", wantNorm: "09:30"},
		{name: "midnight", in: "00:00", wantKey: "0000", wantNorm: "00:00"},
		{name: "last slot", in: "2359", wantKey: "2359", wantNorm: "23:59"},
		{name: "surrounding spaces", in: " 0930 ", wantKey: "0930", wantNorm: "09:30"},
		{name: "too short", in: "930", wantErr: true},
		{name: "too long", in: "09300", wantErr: true},
		{name: "not digits", in: "ab:cd", wantErr: true},
		{name: "hour out of range", in: "2400", wantErr: true},
		{name: "minute out of range", in: "0960", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := Key(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Key(%q): expected error", tt.in)
				}
				if !errors.Is(err, response.ErrValidation) {
					t.Fatalf("Key(%q) error = %v, want ErrValidation", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Key(%q) error: %v", tt.in, err)
			}
			if key != tt.wantKey {
				t.Fatalf("Key(%q) = %q, want %q", tt.in, key, tt.wantKey)
			}

			norm, err := Normalize(tt.in)
			if err != nil {
				t.Fatalf("Normalize(%q) error: %v", tt.in, err)
			}
			if norm != tt.wantNorm {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, norm, tt.wantNorm)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2024-03-15"); err != nil {
		t.Fatalf("ParseDate error: %v", err)
	}

	for _, bad := range []string{"2024-3-15", "15-03-2024", "2024-03-15T00:00:00Z", ""} {
		_, err := ParseDate(bad)
		if !errors.Is(err, response.ErrValidation) {
			t.Fatalf("ParseDate(%q) error = %v, want ErrValidation", bad, err)
		}
	}
}

func TestDatesBetween(t *testing.T) {
	dates, err := DatesBetween("2024-03-30", "2024-04-02")
	if err != nil {
		t.Fatalf("DatesBetween error: %v", err)
	}

	want := []string{"2024-03-30", "2024-03-31", "2024-04-01", "2024-04-02"}
	if len(dates) != len(want) {
		t.Fatalf("len(dates) = %d, want %d", len(dates), len(want))
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("dates[%d] = %q, want %q", i, dates[i], want[i])
		}
	}

	single, err := DatesBetween("2024-03-15", "2024-03-15")
	if err != nil {
		t.Fatalf("DatesBetween error: %v", err)
	}
	if len(single) != 1 || single[0] != "2024-03-15" {
		t.Fatalf("single-day range = %v, want [2024-03-15]", single)
	}

	empty, err := DatesBetween("2024-03-16", "2024-03-15")
	if err != nil {
		t.Fatalf("DatesBetween error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("inverted range = %v, want empty", empty)
	}
}

func TestInstant(t *testing.T) {
	instant, err := Instant("2024-03-15", "09:30")
	if err != nil {
		t.Fatalf("Instant error: %v", err)
	}

	want := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	if !instant.Equal(want) {
		t.Fatalf("Instant = %v, want %v", instant, want)
	}
}
