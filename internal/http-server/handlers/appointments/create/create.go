package create

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

type BookingCreator interface {
	CreateBooking(ctx context.Context, providerID, date, slot, clientMobile string, details map[string]any, status models.BookingStatus) (*models.Booking, error)
}

type Request struct {
	api.AppointmentCreateRequest
}

type Response struct {
	response.Response
	Appointment *api.AppointmentResponse `json:"appointment,omitempty"`
}

func New(log *slog.Logger, creator BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.create.New"

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

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		if req.Date == "" {
			log.Error("date is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "date is required"))
			return
		}

		if req.Time == "" {
			log.Error("time is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "time is required"))
			return
		}

		if req.ClientMobile == "" {
			log.Error("client_mobile is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "client_mobile is required"))
			return
		}

		booking, err := creator.CreateBooking(r.Context(), providerID,
			req.Date, req.Time, req.ClientMobile, req.AppointmentDetails,
			models.BookingStatus(req.Status))

		if errors.Is(err, response.ErrValidation) {
			log.Error("Invalid appointment", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION), "invalid date or time"))
			return
		}

		if errors.Is(err, response.ErrConflict) {
			log.Error("slot already booked")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), "slot already booked"))
			return
		}

		if err != nil {
			log.Error("Failed to create appointment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create appointment"))
			return
		}

		log.Info("Appointment created",
			slog.String("date", booking.Date),
			slog.String("time", booking.Time),
		)

		resp := api.FromBooking(booking)
		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Appointment: &resp})
	}
}
