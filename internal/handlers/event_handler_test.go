package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tixbay/internal/models"
	"tixbay/internal/services"
)

type stubEventsRepo struct {
	events []models.Event
}

func (s *stubEventsRepo) ListPublished(ctx context.Context, category models.EventCategory, offset, limit int) ([]models.Event, int64, error) {
	total := int64(len(s.events))
	if offset >= len(s.events) {
		return []models.Event{}, total, nil
	}
	end := offset + limit
	if end > len(s.events) {
		end = len(s.events)
	}
	return s.events[offset:end], total, nil
}

func (s *stubEventsRepo) GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return nil, nil
}

func (s *stubEventsRepo) ListTicketTypes(ctx context.Context, eventID uuid.UUID) ([]models.TicketType, error) {
	return nil, nil
}

func (s *stubEventsRepo) ListByOrganizer(ctx context.Context, organizerID uuid.UUID, accessToken string) ([]models.Event, error) {
	return nil, nil
}

func (s *stubEventsRepo) CreateEvent(ctx context.Context, event *models.Event, accessToken string) (*models.Event, error) {
	return event, nil
}

func (s *stubEventsRepo) UpdateEventStatus(ctx context.Context, eventID, organizerID uuid.UUID, status models.EventStatus, accessToken string) (*models.Event, error) {
	return nil, nil
}

func (s *stubEventsRepo) DeleteEvent(ctx context.Context, eventID, organizerID uuid.UUID, accessToken string) (bool, error) {
	return false, nil
}

func listEventsRouter(repo *stubEventsRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := services.NewCatalogService(repo, nil, slog.Default())
	r := gin.New()
	r.GET("/api/v1/events", ListEvents(svc))
	return r
}

func TestListEventsReturnsPaginatedEnvelope(t *testing.T) {
	repo := &stubEventsRepo{}
	for i := 0; i < 5; i++ {
		repo.events = append(repo.events, models.Event{ID: uuid.New(), Status: models.EventPublished})
	}
	router := listEventsRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events?limit=2&offset=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body models.ApiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 2, body.Limit)
	assert.Equal(t, 5, body.Total)

	rows, ok := body.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, rows, 2)
}

func TestListEventsRejectsMalformedPaging(t *testing.T) {
	router := listEventsRouter(&stubEventsRepo{})

	for _, q := range []string{"limit=abc", "limit=0", "offset=-1"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/events?"+q, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "query %q", q)
	}
}
