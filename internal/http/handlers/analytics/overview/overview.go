// Package overview отдает сводку для главной панели: итоги по участникам,
// текущий месяц, изменение оттока и истекающие абонементы.
package overview

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

// Handler обрабатывает запросы сводки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает бизнес-логику сводки.
type Service interface {
	Overview(ctx context.Context, now time.Time, preds []segment.Predicate) (*models.Overview, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сводка по участникам
// @Tags Analytics
// @Produce json
// @Param preset query string false "Быстрый фильтр"
// @Param now query string false "Момент отчёта, YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /analytics/overview [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analytics.overview"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.overview(r)
	if err != nil {
		code, msg := request.ErrorStatus(err)
		log.Error("failed to build overview", sl.Err(err))
		w.WriteHeader(code)
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("overview built", slog.Int("total", res.TotalMembers))
	render.JSON(w, r, response.StatusOKWithData(res))
}

func (h *Handler) overview(r *http.Request) (*models.Overview, error) {
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
	return h.service.Overview(r.Context(), now, preds)
}
