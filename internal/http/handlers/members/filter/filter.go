// Package filter реализует HTTP-обработчик выборки участников по явному
// набору условий из тела запроса.
package filter

import (
	"context"
	"encoding/json"
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

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	Members(ctx context.Context, now time.Time, preds []segment.Predicate, limit, offset int) (*models.MemberPage, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Выборка участников по условиям
// @Tags Members
// @Accept json
// @Produce json
// @Param request body models.DummySegmentFilter true "Условия сегмента"
// @Param now query string false "Момент отчёта, YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /members/filter [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.members.filter"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummySegmentFilter
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Debug("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	page, err := h.members(r, req)
	if err != nil {
		code, msg := request.ErrorStatus(err)
		log.Error("failed to filter members", sl.Err(err))
		w.WriteHeader(code)
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("members filtered", slog.Int("total", page.Total))
	render.JSON(w, r, response.StatusOKWithData(page))
}

func (h *Handler) members(r *http.Request, req models.DummySegmentFilter) (*models.MemberPage, error) {
	now, err := request.Now(r)
	if err != nil {
		return nil, err
	}
	preds, err := segment.FromRequest(req)
	if err != nil {
		return nil, err
	}
	return h.service.Members(r.Context(), now, preds, req.Limit, req.Offset)
}
