package get

import (
	"calbook-service/api"
	"calbook-service/internal/models"
	"calbook-service/pkg/response"
	"calbook-service/pkg/sl"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type SettingsProvider interface {
	GetOrCreateSettings(ctx context.Context, providerID string) (*models.GlobalSettings, error)
}

type Response struct {
	response.Response
	Settings *api.GlobalSettingsResponse `json:"settings,omitempty"`
}

func New(log *slog.Logger, provider SettingsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.settings.get.New"

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

		settings, err := provider.GetOrCreateSettings(r.Context(), providerID)
		if err != nil {
			log.Error("Failed to get settings", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get settings"))
			return
		}

		log.Info("Settings retrieved", slog.String("provider_id", providerID))

		resp := api.FromSettings(settings)
		render.JSON(w, r, Response{Settings: &resp})
	}
}
