// Package read отдает карточку участника вместе с аннотациями.
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

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Member(ctx context.Context, uniqueID string) (*models.Membership, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Карточка участника
// @Tags Members
// @Produce json
// @Param id path string true "UniqueID абонемента"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /members/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.members.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.Member(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		code, msg := request.ErrorStatus(err)
		log.Error("failed to read member", sl.Err(err))
		w.WriteHeader(code)
		render.JSON(w, r, response.Error(msg))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"member": res,
	}))
}
