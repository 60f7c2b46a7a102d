// Package churn реализует HTTP-обработчик помесячного отчёта по оттоку.
package churn

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

// Handler обрабатывает запросы на построение ряда оттока.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает бизнес-логику построения ряда.
type Service interface {
	MonthlySeries(ctx context.Context, now time.Time, window int, preds []segment.Predicate) (*models.ChurnReport, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Помесячный отток
// @Tags Analytics
// @Produce json
// @Param window query int false "Размер окна в месяцах"
// @Param preset query string false "Быстрый фильтр"
// @Param location query string false "Студия"
// @Param status query string false "Статус"
// @Param now query string false "Момент отчёта, YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /analytics/churn [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analytics.churn"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	now, err := request.Now(r)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	window, err := request.Window(r)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	filter, err := request.Filter(r)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	preds, err := segment.FromRequest(filter)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}

	report, err := h.service.MonthlySeries(r.Context(), now, window, preds)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}

	log.Info("churn series built", slog.Int("window", report.Window))
	render.JSON(w, r, response.StatusOKWithData(report))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	code, msg := request.ErrorStatus(err)
	log.Error("failed to build churn series", sl.Err(err))
	w.WriteHeader(code)
	render.JSON(w, r, response.Error(msg))
}
