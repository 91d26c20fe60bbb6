package create

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"calbook-service/internal/models"
	"calbook-service/pkg/response"
)

type fakeCreator struct {
	err      error
	lastDate string
	lastSlot string
}

func (f *fakeCreator) CreateBooking(ctx context.Context, providerID, date, slot, clientMobile string, details map[string]any, status models.BookingStatus) (*models.Booking, error) {
	f.lastDate, f.lastSlot = date, slot
	if f.err != nil {
		return nil, f.err
	}

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if status == "" {
		status = models.BookingPending
	}
	return &models.Booking{
		Date:               date,
		Time:               slot,
		ClientMobile:       clientMobile,
		Status:             status,
		AppointmentDetails: details,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

func post(t *testing.T, creator BookingCreator, providerID, body string) *httptest.ResponseRecorder {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := chi.NewRouter()
	router.Post("/providers/{providerID}/appointments", New(log, creator))

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/providers/%s/appointments", providerID),
		bytes.NewBufferString(body))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestCreate_Success(t *testing.T) {
	creator := &fakeCreator{}

	rec := post(t, creator, "p1",
		`{"date":"2024-03-15","time":"09:30","client_mobile":"+15550001111","appointment_details":{"service":"consult"}}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Appointment struct {
			Date         string `json:"date"`
			Time         string `json:"time"`
			ClientMobile string `json:"client_mobile"`
			Status       string `json:"status"`
		} `json:"appointment"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Appointment.Date != "2024-03-15" || resp.Appointment.Time != "09:30" {
		t.Fatalf("appointment = %+v", resp.Appointment)
	}
	if resp.Appointment.Status != string(models.BookingPending) {
		t.Fatalf("status = %q, want PENDING", resp.Appointment.Status)
	}
}

func TestCreate_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no date", body: `{"time":"09:30","client_mobile":"+1555"}`},
		{name: "no time", body: `{"date":"2024-03-15","client_mobile":"+1555"}`},
		{name: "no client_mobile", body: `{"date":"2024-03-15","time":"09:30"}`},
		{name: "not json", body: `date=2024-03-15`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, &fakeCreator{}, "p1", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body)
			}
		})
	}
}

func TestCreate_ValidationMapsTo400(t *testing.T) {
	creator := &fakeCreator{err: fmt.Errorf("service.CreateBooking: %w", response.ErrValidation)}

	rec := post(t, creator, "p1",
		`{"date":"2024-03-15","time":"9:3","client_mobile":"+1555"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body)
	}

	var resp response.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != string(response.VALIDATION) {
		t.Fatalf("code = %q, want %q", resp.Code, response.VALIDATION)
	}
}

func TestCreate_ConflictMapsTo409(t *testing.T) {
	creator := &fakeCreator{err: fmt.Errorf("service.CreateBooking: %w", response.ErrConflict)}

	rec := post(t, creator, "p1",
		`{"date":"2024-03-15","time":"09:30","client_mobile":"+1555"}`)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", rec.Code, rec.Body)
	}

	var resp response.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != string(response.CONFLICT) {
		t.Fatalf("code = %q, want %q", resp.Code, response.CONFLICT)
	}
}

func TestCreate_StorageFailureMapsTo500(t *testing.T) {
	creator := &fakeCreator{err: fmt.Errorf("storage unavailable")}

	rec := post(t, creator, "p1",
		`{"date":"2024-03-15","time":"09:30","client_mobile":"+1555"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500: %s", rec.Code, rec.Body)
	}
}
