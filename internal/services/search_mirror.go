package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"tixbay/internal/models"
	"tixbay/internal/realtime"
)

// SearchMirror keeps the Mongo search index in step with the events
// collection by consuming the events change stream. Only published events
// are searchable; anything that leaves the published state leaves the
// index.
type SearchMirror struct {
	feed       *realtime.Feed
	searchRepo models.SearchRepo
	logger     *slog.Logger
}

func NewSearchMirror(feed *realtime.Feed, searchRepo models.SearchRepo, logger *slog.Logger) *SearchMirror {
	return &SearchMirror{
		feed:       feed,
		searchRepo: searchRepo,
		logger:     logger,
	}
}

// Run consumes the events change stream until ctx is cancelled. Individual
// indexing failures are logged and skipped; the next change to the same
// event reconverges the index.
func (sm *SearchMirror) Run(ctx context.Context) error {
	sub, err := sm.feed.Subscribe(ctx, models.EventsTable)
	if err != nil {
		return err
	}
	defer sub.Close()

	sm.logger.Info("Search mirror started", "collection", models.EventsTable)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case change, ok := <-sub.C:
			if !ok {
				return nil
			}
			sm.apply(ctx, change)
		}
	}
}

func (sm *SearchMirror) apply(ctx context.Context, change realtime.Change) {
	switch change.Op {
	case realtime.OpInsert, realtime.OpUpdate:
		var event models.Event
		if err := json.Unmarshal(change.Row, &event); err != nil {
			sm.logger.Error("Search mirror: undecodable event row", "id", change.ID, "error", err)
			return
		}
		if event.Status == models.EventPublished {
			if err := sm.searchRepo.UpsertEvent(ctx, &event); err != nil {
				sm.logger.Error("Search mirror: upsert failed", "event_id", event.ID, "error", err)
			}
			return
		}
		// Draft or cancelled: make sure it is not searchable.
		if err := sm.searchRepo.RemoveEvent(ctx, event.ID); err != nil {
			sm.logger.Error("Search mirror: remove failed", "event_id", event.ID, "error", err)
		}
	case realtime.OpDelete:
		id, err := uuid.Parse(change.ID)
		if err != nil {
			sm.logger.Error("Search mirror: bad event id in delete", "id", change.ID, "error", err)
			return
		}
		if err := sm.searchRepo.RemoveEvent(ctx, id); err != nil {
			sm.logger.Error("Search mirror: remove failed", "event_id", id, "error", err)
		}
	}
}
