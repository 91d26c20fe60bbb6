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
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type RuleUpdater interface {
	GetRule(ctx context.Context, providerID string, dayOfMonth int) (*models.RecurringRule, error)
	PutRule(ctx context.Context, providerID string, dayOfMonth int, availableSlots []string) (*models.RecurringRule, error)
}

type Request struct {
	api.RuleUpdateRequest
}

type Response struct {
	response.Response
	Rule *api.RuleResponse `json:"rule,omitempty"`
}

func New(log *slog.Logger, updater RuleUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.rules.update.New"

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

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		// Rule update is a full replacement of the slot list; the rule must
		// already exist.
		if _, err := updater.GetRule(r.Context(), providerID, dayOfMonth); err != nil {
			if errors.Is(err, response.ErrNotFound) {
				log.Error("resource not found")
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error(string(response.NOT_FOUND), "rule not found"))
				return
			}

			log.Error("Failed to get rule", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to update rule"))
			return
		}

		rule, err := updater.PutRule(r.Context(), providerID, dayOfMonth, req.AvailableSlots)

		if errors.Is(err, response.ErrValidation) {
			log.Error("Invalid rule", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION), "invalid rule"))
			return
		}

		if err != nil {
			log.Error("Failed to update rule", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to update rule"))
			return
		}

		log.Info("Rule updated", slog.Int("day_of_month", dayOfMonth))

		resp := api.FromRule(rule)
		render.JSON(w, r, Response{Rule: &resp})
	}
}
