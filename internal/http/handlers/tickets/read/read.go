// Package read реализует HTTP-обработчик получения тикета по ID.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/studio-churn/internal/http/request"
	"github.com/magabrotheeeer/studio-churn/internal/http/response"
	"github.com/magabrotheeeer/studio-churn/internal/lib/sl"
	"github.com/magabrotheeeer/studio-churn/internal/models"
)

// Handler обрабатывает запросы на получение тикета.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения тикета.
type Service interface {
	Read(ctx context.Context, id string) (*models.Ticket, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Тикет по ID
// @Tags Tickets
// @Produce json
// @Param id path string true "ID тикета"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /tickets/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tickets.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.Read(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		code, msg := request.ErrorStatus(err)
		log.Error("failed to read ticket", sl.Err(err))
		w.WriteHeader(code)
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("success to read ticket", slog.String("id", res.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"ticket": res,
	}))
}
