// Package facets отдает счётчики быстрых фильтров и список студий.
package facets

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
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Facets(ctx context.Context, now time.Time) (*models.Facets, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Счётчики быстрых фильтров
// @Tags Members
// @Produce json
// @Param now query string false "Момент отчёта, YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Router /members/facets [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.members.facets"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	now, err := request.Now(r)
	if err == nil {
		var res *models.Facets
		if res, err = h.service.Facets(r.Context(), now); err == nil {
			render.JSON(w, r, response.StatusOKWithData(res))
			return
		}
	}

	code, msg := request.ErrorStatus(err)
	log.Error("failed to count facets", sl.Err(err))
	w.WriteHeader(code)
	render.JSON(w, r, response.Error(msg))
}
