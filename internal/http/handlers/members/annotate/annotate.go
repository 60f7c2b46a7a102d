// Package annotate реализует HTTP-обработчик сохранения комментариев,
// заметок и тегов участника.
package annotate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/studio-churn/internal/http/middlewarectx"
	"github.com/magabrotheeeer/studio-churn/internal/http/request"
	"github.com/magabrotheeeer/studio-churn/internal/http/response"
	"github.com/magabrotheeeer/studio-churn/internal/lib/sl"
	"github.com/magabrotheeeer/studio-churn/internal/models"
)

// Handler обрабатывает запросы на обновление аннотаций.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику аннотаций.
type Service interface {
	Annotate(ctx context.Context, uniqueID string, req models.DummyAnnotations) error
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
// @Summary Аннотации участника
// @Tags Members
// @Accept json
// @Produce json
// @Param id path string true "UniqueID абонемента"
// @Param request body models.DummyAnnotations true "Комментарии, заметки, теги"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /members/{id}/annotations [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.members.annotate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		log.Error("empty id in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	var req models.DummyAnnotations
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.Annotate(r.Context(), id, req); err != nil {
		code, msg := request.ErrorStatus(err)
		log.Error("failed to save annotations", sl.Err(err))
		w.WriteHeader(code)
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("annotations saved",
		slog.String("unique_id", id),
		slog.String("username", middlewarectx.Username(r.Context())),
	)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"unique_id": id,
	}))
}
