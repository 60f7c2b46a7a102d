package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/studio-churn/internal/http/response"
	"github.com/magabrotheeeer/studio-churn/internal/lib/sl"
)

// CheckFunc проверяет готовность зависимости.
type CheckFunc func(ctx context.Context) error

type Handler struct {
	log   *slog.Logger
	check CheckFunc
}

func New(log *slog.Logger, check CheckFunc) *Handler {
	return &Handler{
		log:   log,
		check: check,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	if h.check != nil {
		if err := h.check(r.Context()); err != nil {
			h.log.Error("dependency is not ready", sl.Op(op), sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "ok",
	}))
}
