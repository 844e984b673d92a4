package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"tixbay/internal/models"
)

const (
	defaultSearchLimit = 50
	defaultListLimit   = 20
	maxListLimit       = 100
)

// CatalogService serves the public event surfaces: the browse list, the
// detail view, and text search. Browse reads come from Postgres; search
// queries hit the Mongo mirror kept current by the search mirror worker.
type CatalogService struct {
	eventsRepo models.EventsRepo
	searchRepo models.SearchRepo
	logger     *slog.Logger
}

func NewCatalogService(eventsRepo models.EventsRepo, searchRepo models.SearchRepo, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		eventsRepo: eventsRepo,
		searchRepo: searchRepo,
		logger:     logger,
	}
}

// ListPublished returns one page of the browse list plus the total count
// across all pages. Out-of-range paging inputs fall back to the defaults
// rather than erroring.
func (cs *CatalogService) ListPublished(ctx context.Context, category models.EventCategory, offset, limit int) ([]models.Event, int64, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	events, total, err := cs.eventsRepo.ListPublished(ctx, category, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, total, nil
}

func (cs *CatalogService) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return cs.eventsRepo.GetEventByID(ctx, id)
}

func (cs *CatalogService) Search(ctx context.Context, query string, filters models.SearchFilters, limit int) ([]models.Event, error) {
	if limit <= 0 || limit > defaultSearchLimit {
		limit = defaultSearchLimit
	}
	events, err := cs.searchRepo.Search(ctx, query, filters, limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}
