package get

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

type AvailabilityComputer interface {
	ComputeAvailability(ctx context.Context, providerID, startDate, endDate string) ([]models.DayAvailability, error)
}

type Response struct {
	response.Response
	api.AvailabilityResponse
}

func New(log *slog.Logger, computer AvailabilityComputer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.get.New"

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

		startDate := r.URL.Query().Get("start_date")
		endDate := r.URL.Query().Get("end_date")

		if startDate == "" || endDate == "" {
			log.Error("start_date or end_date is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "start_date and end_date are required"))
			return
		}

		days, err := computer.ComputeAvailability(r.Context(), providerID, startDate, endDate)

		if errors.Is(err, response.ErrValidation) {
			log.Error("Invalid date range", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION), "dates must be YYYY-MM-DD"))
			return
		}

		if err != nil {
			log.Error("Failed to compute availability", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to compute availability"))
			return
		}

		log.Info("Availability computed",
			slog.String("start_date", startDate),
			slog.String("end_date", endDate),
			slog.Int("days", len(days)),
		)

		available := make([]api.DayAvailability, len(days))
		for i, day := range days {
			available[i] = api.DayAvailability{Date: day.Date, Slots: day.Slots}
		}
		render.JSON(w, r, Response{
			AvailabilityResponse: api.AvailabilityResponse{Available: available},
		})
	}
}
