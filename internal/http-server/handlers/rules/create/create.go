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

type RuleCreator interface {
	PutRule(ctx context.Context, providerID string, dayOfMonth int, availableSlots []string) (*models.RecurringRule, error)
}

type Request struct {
	api.RuleCreateRequest
}

type Response struct {
	response.Response
	Rule *api.RuleResponse `json:"rule,omitempty"`
}

func New(log *slog.Logger, creator RuleCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.rules.create.New"

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

		rule, err := creator.PutRule(r.Context(), providerID, req.DayOfMonth, req.AvailableSlots)

		if errors.Is(err, response.ErrValidation) {
			log.Error("Invalid rule", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION), "invalid rule"))
			return
		}

		if err != nil {
			log.Error("Failed to create rule", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create rule"))
			return
		}

		log.Info("Rule created", slog.Int("day_of_month", rule.DayOfMonth))

		resp := api.FromRule(rule)
		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Rule: &resp})
	}
}
