package upsert

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

type OverrideUpserter interface {
	PutOverride(ctx context.Context, providerID, date string, overrideType models.OverrideType, overrideSlots []string) (*models.DateOverride, error)
}

type Request struct {
	api.OverrideUpsertRequest
}

type Response struct {
	response.Response
	Override *api.OverrideResponse `json:"override,omitempty"`
}

func New(log *slog.Logger, upserter OverrideUpserter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.overrides.upsert.New"

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

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		if req.Date != date {
			log.Error("Date in path does not match body",
				slog.String("path", date), slog.String("body", req.Date))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "date in path must match body"))
			return
		}

		override, err := upserter.PutOverride(r.Context(), providerID, date,
			models.OverrideType(req.Type), req.OverrideSlots)

		if errors.Is(err, response.ErrValidation) {
			log.Error("Invalid override", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION), "invalid override"))
			return
		}

		if err != nil {
			log.Error("Failed to upsert override", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to upsert override"))
			return
		}

		log.Info("Override upserted", slog.String("date", date), slog.String("type", req.Type))

		resp := api.FromOverride(override)
		render.JSON(w, r, Response{Override: &resp})
	}
}
