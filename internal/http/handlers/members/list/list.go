// Package list реализует HTTP-обработчик списка участников с быстрыми фильтрами
// из query-параметров.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/studio-churn/internal/http/request"
	"github.com/magabrotheeeer/studio-churn/internal/http/response"
	"github.com/magabrotheeeer/studio-churn/internal/lib/sl"
	"github.com/magabrotheeeer/studio-churn/internal/models"
	"github.com/magabrotheeeer/studio-churn/internal/segment"
)

// Handler обрабатывает запросы на получение списка участников.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику выборки участников.
type Service interface {
	Members(ctx context.Context, now time.Time, preds []segment.Predicate, limit, offset int) (*models.MemberPage, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Список участников
// @Tags Members
// @Produce json
// @Param preset query string false "Быстрый фильтр"
// @Param q query string false "Поиск по имени, email или ID"
// @Param location query string false "Студия"
// @Param status query string false "Статус"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /members [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.members.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter, err := request.Filter(r)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	if err := h.validate.Struct(filter); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	now, err := request.Now(r)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	preds, err := segment.FromRequest(filter)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}

	page, err := h.service.Members(r.Context(), now, preds, filter.Limit, filter.Offset)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}

	log.Info("members listed", slog.Int("total", page.Total), slog.Int("count", len(page.Items)))
	render.JSON(w, r, response.StatusOKWithData(page))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	code, msg := request.ErrorStatus(err)
	log.Error("failed to list members", sl.Err(err))
	w.WriteHeader(code)
	render.JSON(w, r, response.Error(msg))
}
