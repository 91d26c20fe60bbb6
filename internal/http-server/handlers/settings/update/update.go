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

type SettingsUpdater interface {
	UpdateSettings(ctx context.Context, providerID string, horizonDays, minNoticeHours *int, hardCutoffDate *string) (*models.GlobalSettings, error)
}

type Request struct {
	api.GlobalSettingsUpdateRequest
}

type Response struct {
	response.Response
	Settings *api.GlobalSettingsResponse `json:"settings,omitempty"`
}

func New(log *slog.Logger, updater SettingsUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.settings.update.New"

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

		settings, err := updater.UpdateSettings(r.Context(), providerID,
			req.HorizonDays, req.MinNoticeHours, req.HardCutoffDate)

		if errors.Is(err, response.ErrValidation) {
			log.Error("Invalid settings", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION), "invalid settings"))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "settings not found"))
			return
		}

		if err != nil {
			log.Error("Failed to update settings", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to update settings"))
			return
		}

		log.Info("Settings updated", slog.String("provider_id", providerID))

		resp := api.FromSettings(settings)
		render.JSON(w, r, Response{Settings: &resp})
	}
}
