package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SearchDbName  = "tixbay"
	SearchColName = "event_search"
)

// SearchFilters narrows a text search over the published-event mirror.
type SearchFilters struct {
	Category  EventCategory
	StartDate string // YYYY-MM-DD, inclusive
	EndDate   string
	MinPrice  float64
	MaxPrice  float64
}

type SearchRepo interface {
	// UpsertEvent mirrors a published event into the search index.
	UpsertEvent(ctx context.Context, event *Event) error
	RemoveEvent(ctx context.Context, eventID uuid.UUID) error
	Search(ctx context.Context, query string, filters SearchFilters, limit int) ([]Event, error)
	EnsureIndexes(ctx context.Context) error
}

func (mdb *MongodbRepo) GetCollection(ctx context.Context, dbName, colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	client := mdb.mongodbClient.Database(dbName).Collection(colName)
	return client, nil
}

func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, SearchDbName, SearchColName)
	if err != nil {
		return err
	}

	_, err = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "title", Value: "text"},
			{Key: "description", Value: "text"},
			{Key: "venue", Value: "text"},
		},
	})
	if err != nil {
		return fmt.Errorf("error creating text index: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) UpsertEvent(ctx context.Context, event *Event) error {
	col, err := mdb.GetCollection(ctx, SearchDbName, SearchColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"event_id": event.ID.String()}
	update := bson.M{
		"$set": bson.M{
			"event_id":     event.ID.String(),
			"title":        event.Title,
			"description":  event.Description,
			"category":     event.Category,
			"date":         event.Date,
			"time":         event.Time,
			"venue":        event.Venue,
			"ticket_price": event.TicketPrice,
			"capacity":     event.Capacity,
			"poster_url":   event.PosterURL,
			"organizer_id": event.OrganizerID.String(),
			"updated_at":   time.Now(),
		},
		"$setOnInsert": bson.M{
			"created_at": time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := col.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("error upserting search document: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) RemoveEvent(ctx context.Context, eventID uuid.UUID) error {
	col, err := mdb.GetCollection(ctx, SearchDbName, SearchColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	_, err = col.DeleteOne(ctx, bson.M{"event_id": eventID.String()})
	return err
}

func (mdb *MongodbRepo) Search(ctx context.Context, query string, filters SearchFilters, limit int) ([]Event, error) {
	col, err := mdb.GetCollection(ctx, SearchDbName, SearchColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{}
	if query != "" {
		filter["$text"] = bson.M{"$search": query}
	}
	if filters.Category != "" {
		filter["category"] = filters.Category
	}
	if filters.StartDate != "" || filters.EndDate != "" {
		dateRange := bson.M{}
		if filters.StartDate != "" {
			dateRange["$gte"] = filters.StartDate
		}
		if filters.EndDate != "" {
			dateRange["$lte"] = filters.EndDate
		}
		filter["date"] = dateRange
	}
	if filters.MinPrice > 0 || filters.MaxPrice > 0 {
		priceRange := bson.M{}
		if filters.MinPrice > 0 {
			priceRange["$gte"] = filters.MinPrice
		}
		if filters.MaxPrice > 0 {
			priceRange["$lte"] = filters.MaxPrice
		}
		filter["ticket_price"] = priceRange
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error searching events: %v", err)
	}
	defer cursor.Close(ctx)

	type searchDoc struct {
		EventID     string        `bson:"event_id"`
		Title       string        `bson:"title"`
		Description string        `bson:"description"`
		Category    EventCategory `bson:"category"`
		Date        string        `bson:"date"`
		Time        string        `bson:"time"`
		Venue       string        `bson:"venue"`
		TicketPrice float64       `bson:"ticket_price"`
		Capacity    int           `bson:"capacity"`
		PosterURL   string        `bson:"poster_url"`
		OrganizerID string        `bson:"organizer_id"`
	}

	var events []Event
	for cursor.Next(ctx) {
		var doc searchDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("error decoding search document: %v", err)
		}

		id, err := uuid.Parse(doc.EventID)
		if err != nil {
			continue
		}
		organizerID, _ := uuid.Parse(doc.OrganizerID)

		events = append(events, Event{
			ID:          id,
			OrganizerID: organizerID,
			Title:       doc.Title,
			Description: doc.Description,
			Category:    doc.Category,
			Status:      EventPublished,
			Date:        doc.Date,
			Time:        doc.Time,
			Venue:       doc.Venue,
			TicketPrice: doc.TicketPrice,
			Capacity:    doc.Capacity,
			PosterURL:   doc.PosterURL,
		})
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return events, nil
}
