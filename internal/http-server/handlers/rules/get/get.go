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
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type RuleGetter interface {
	GetRule(ctx context.Context, providerID string, dayOfMonth int) (*models.RecurringRule, error)
	ListRules(ctx context.Context, providerID string) ([]*models.RecurringRule, error)
}

type Response struct {
	response.Response
	Rules []api.RuleResponse `json:"rules,omitempty"`
	Rule  *api.RuleResponse  `json:"rule,omitempty"`
}

func New(log *slog.Logger, getter RuleGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.rules.get.New"

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

		dayParam := chi.URLParam(r, "dayOfMonth")
		if dayParam != "" {
			dayOfMonth, err := strconv.Atoi(dayParam)
			if err != nil {
				log.Error("day_of_month is not a number")
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "day_of_month must be a number"))
				return
			}

			rule, err := getter.GetRule(r.Context(), providerID, dayOfMonth)

			if errors.Is(err, response.ErrNotFound) {
				log.Error("resource not found")
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error(string(response.NOT_FOUND), "rule not found"))
				return
			}

			if err != nil {
				log.Error("Failed to get rule", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get rule"))
				return
			}

			log.Info("Rule retrieved", slog.Int("day_of_month", dayOfMonth))

			resp := api.FromRule(rule)
			render.JSON(w, r, Response{Rule: &resp})
			return
		}

		rules, err := getter.ListRules(r.Context(), providerID)
		if err != nil {
			log.Error("Failed to list rules", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list rules"))
			return
		}

		log.Info("Rules retrieved", slog.Int("count", len(rules)))

		rulesResponse := make([]api.RuleResponse, len(rules))
		for i, rule := range rules {
			rulesResponse[i] = api.FromRule(rule)
		}
		render.JSON(w, r, Response{Rules: rulesResponse})
	}
}
