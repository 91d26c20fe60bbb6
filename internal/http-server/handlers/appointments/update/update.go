package update

import (
	"calbook-service/api"
	"calbook-service/internal/models"
	"calbook-service/pkg/response"
	"calbook-service/pkg/sl"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type BookingUpdater interface {
	GetBooking(ctx context.Context, providerID, date, slot string) (*models.Booking, error)
	UpdateBooking(ctx context.Context, providerID, date, slot string, status *models.BookingStatus, details map[string]any) (*models.Booking, error)
	RescheduleBooking(ctx context.Context, providerID, oldDate, oldSlot, newDate, newSlot string) (*models.Booking, error)
	CancelBooking(ctx context.Context, providerID, date, slot string) (*models.Booking, error)
}

type Request struct {
	api.AppointmentUpdateRequest
}

type Response struct {
	response.Response
	Appointment *api.AppointmentResponse `json:"appointment,omitempty"`
}

// New handles PATCH on an appointment. When both date and time are present
// in the body it is a reschedule to that slot; otherwise status and details
// are updated in place, with status=CANCELLED routed through the soft-delete
// cancel path.
func New(log *slog.Logger, updater BookingUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.update.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		providerID := chi.URLParam(r, "providerID")
		if providerID == "" {
			log.Error("provider_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "provider_id is required"))
			return
		}

		date := chi.URLParam(r, "date")
		slot := chi.URLParam(r, "time")

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		if req.Date != nil && req.Time != nil {
			booking, err := updater.RescheduleBooking(r.Context(), providerID,
				date, slot, *req.Date, *req.Time)
			if err != nil {
				writeError(w, r, log, err, "failed to reschedule appointment")
				return
			}

			log.Info("Appointment rescheduled",
				slog.String("date", booking.Date),
				slog.String("time", booking.Time),
			)
			responseOK(w, r, booking)
			return
		}

		var booking *models.Booking
		var err error

		if req.Status != nil {
			status := models.BookingStatus(*req.Status)
			if status == models.BookingCancelled {
				booking, err = updater.CancelBooking(r.Context(), providerID, date, slot)
				if err == nil && booking == nil {
					err = response.ErrNotFound
				}
			} else {
				booking, err = updater.UpdateBooking(r.Context(), providerID, date, slot, &status, nil)
			}
			if err != nil {
				writeError(w, r, log, err, "failed to update appointment")
				return
			}
		}

		if req.AppointmentDetails != nil {
			booking, err = updater.UpdateBooking(r.Context(), providerID, date, slot, nil, req.AppointmentDetails)
			if err != nil {
				writeError(w, r, log, err, "failed to update appointment")
				return
			}
		}

		if booking == nil {
			// Nothing to change; report the current state.
			booking, err = updater.GetBooking(r.Context(), providerID, date, slot)
			if err != nil {
				writeError(w, r, log, err, "failed to update appointment")
				return
			}
		}

		log.Info("Appointment updated",
			slog.String("date", booking.Date),
			slog.String("time", booking.Time),
		)
		responseOK(w, r, booking)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, msg string) {
	if errors.Is(err, response.ErrValidation) {
		log.Error("Invalid request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(string(response.VALIDATION), "invalid date or time"))
		return
	}

	if errors.Is(err, response.ErrNotFound) {
		log.Error("resource not found")
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error(string(response.NOT_FOUND), "appointment not found"))
		return
	}

	if errors.Is(err, response.ErrConflict) {
		log.Error("slot already booked")
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error(string(response.CONFLICT), "slot already booked"))
		return
	}

	if errors.Is(err, response.ErrInconsistent) {
		// Data loss, not a business rejection. Must stand out in the logs.
		log.Error("BOOKING STATE INCONSISTENT after failed reschedule compensation", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(string(response.INCONSISTENT), "booking state inconsistent, escalate"))
		return
	}

	log.Error(msg, sl.Err(err))
	w.WriteHeader(http.StatusInternalServerError)
	render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), msg))
}

func responseOK(w http.ResponseWriter, r *http.Request, booking *models.Booking) {
	resp := api.FromBooking(booking)
	render.JSON(w, r, Response{Appointment: &resp})
}
