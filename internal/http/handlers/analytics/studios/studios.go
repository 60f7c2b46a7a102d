// Package studios реализует HTTP-обработчик среза оттока по студиям за текущий месяц.
package studios

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/studio-churn/internal/http/request"
	"github.com/magabrotheeeer/studio-churn/internal/http/response"
	"github.com/magabrotheeeer/studio-churn/internal/lib/sl"
	"github.com/magabrotheeeer/studio-churn/internal/models"
	"github.com/magabrotheeeer/studio-churn/internal/segment"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	StudioBreakdown(ctx context.Context, now time.Time, preds []segment.Predicate) ([]models.StudioChurnMetric, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отток по студиям
// @Tags Analytics
// @Produce json
// @Param preset query string false "Быстрый фильтр"
// @Param now query string false "Момент отчёта, YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /analytics/studios [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analytics.studios"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	rows, err := h.breakdown(r)
	if err != nil {
		code, msg := request.ErrorStatus(err)
		log.Error("failed to build studio breakdown", sl.Err(err))
		w.WriteHeader(code)
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("studio breakdown built", slog.Int("studios", len(rows)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"studios": rows,
	}))
}

func (h *Handler) breakdown(r *http.Request) ([]models.StudioChurnMetric, error) {
	now, err := request.Now(r)
	if err != nil {
		return nil, err
	}
	filter, err := request.Filter(r)
	if err != nil {
		return nil, err
	}
	preds, err := segment.FromRequest(filter)
	if err != nil {
		return nil, err
	}
	return h.service.StudioBreakdown(r.Context(), now, preds)
}
