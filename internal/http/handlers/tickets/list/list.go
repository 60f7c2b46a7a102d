package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/studio-churn/internal/http/request"
	"github.com/magabrotheeeer/studio-churn/internal/http/response"
	"github.com/magabrotheeeer/studio-churn/internal/lib/sl"
	"github.com/magabrotheeeer/studio-churn/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	List(ctx context.Context, limit, offset int) ([]models.Ticket, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список тикетов, новые первыми
// @Tags Tickets
// @Produce json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response
// @Router /tickets [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tickets.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, offset, err := request.Page(r)
	if err == nil {
		var res []models.Ticket
		if res, err = h.service.List(r.Context(), limit, offset); err == nil {
			log.Info("list tickets", "count", len(res))
			render.JSON(w, r, response.StatusOKWithData(map[string]any{
				"list_count": len(res),
				"tickets":    res,
			}))
			return
		}
	}

	code, msg := request.ErrorStatus(err)
	log.Error("failed to list tickets", sl.Err(err))
	w.WriteHeader(code)
	render.JSON(w, r, response.Error(msg))
}
