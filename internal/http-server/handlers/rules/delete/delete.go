package delete

import (
	"calbook-service/pkg/response"
	"calbook-service/pkg/sl"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type RuleDeleter interface {
	DeleteRule(ctx context.Context, providerID string, dayOfMonth int) error
}

func New(log *slog.Logger, deleter RuleDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.rules.delete.New"

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

		dayOfMonth, err := strconv.Atoi(chi.URLParam(r, "dayOfMonth"))
		if err != nil {
			log.Error("day_of_month is not a number")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "day_of_month must be a number"))
			return
		}

		err = deleter.DeleteRule(r.Context(), providerID, dayOfMonth)

		if errors.Is(err, response.ErrValidation) {
			log.Error("Invalid day_of_month", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION), "day_of_month must be 1-31"))
			return
		}

		if err != nil {
			log.Error("Failed to delete rule", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to delete rule"))
			return
		}

		log.Info("Rule deleted", slog.Int("day_of_month", dayOfMonth))
		w.WriteHeader(http.StatusNoContent)
	}
}
