package overview

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/studio-churn/internal/models"
	"github.com/magabrotheeeer/studio-churn/internal/segment"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Overview(ctx context.Context, now time.Time, preds []segment.Predicate) (*models.Overview, error) {
	args := m.Called(ctx, now, preds)
	res, _ := args.Get(0).(*models.Overview)
	return res, args.Error(1)
}

func TestOverviewHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("ok", func(t *testing.T) {
		svc := new(MockService)
		now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
		svc.On("Overview", mock.Anything, now, []segment.Predicate(nil)).Return(&models.Overview{
			TotalMembers:      4,
			ActiveMembers:     2,
			ExpiredMembers:    2,
			ExpiringThisMonth: 1,
			Delta:             models.ChurnDelta{Available: true, CurrentRate: 50, Change: 50},
		}, nil).Once()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/analytics/overview?now=2024-05-15T12:00:00Z", nil)
		New(logger, svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var got struct {
			Status string          `json:"status"`
			Data   models.Overview `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, "OK", got.Status)
		assert.Equal(t, 4, got.Data.TotalMembers)
		assert.Equal(t, 1, got.Data.ExpiringThisMonth)
		assert.Equal(t, 50.0, got.Data.Delta.Change)
		svc.AssertExpectations(t)
	})

	t.Run("bad preset", func(t *testing.T) {
		svc := new(MockService)
		rec := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analytics/overview?preset=nope", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Overview", mock.Anything, mock.Anything, mock.Anything)
	})
}
