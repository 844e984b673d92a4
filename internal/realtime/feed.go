// Package realtime carries row-change notifications between writers and
// live views. Writers publish a tagged change after every insert, update,
// or delete; subscribers receive them over Redis pub/sub, one channel per
// collection, and reconcile their lists with Apply.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"tixbay/internal/monitoring"
)

type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// Change is the tagged variant delivered to subscribers: Inserted and
// Updated carry the row, Deleted carries only the id.
type Change struct {
	Op         Op              `json:"op"`
	Collection string          `json:"collection"`
	ID         string          `json:"id"`
	Row        json.RawMessage `json:"row,omitempty"`
}

func channelFor(collection string) string {
	return "changes:" + collection
}

type Feed struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewFeed(rdb *redis.Client, logger *slog.Logger) *Feed {
	return &Feed{rdb: rdb, logger: logger}
}

// Publish fans a change out to every subscriber of the collection. Rows
// are marshalled once here so subscribers only ever see well-formed
// payloads.
func (f *Feed) Publish(ctx context.Context, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	if err := f.rdb.Publish(ctx, channelFor(change.Collection), payload).Err(); err != nil {
		return err
	}
	monitoring.TrackChangeEvent(change.Collection, string(change.Op))
	return nil
}

// PublishRow is the common case: marshal the row, extract nothing, tag it.
func (f *Feed) PublishRow(ctx context.Context, collection string, op Op, id string, row any) {
	var raw json.RawMessage
	if row != nil {
		data, err := json.Marshal(row)
		if err != nil {
			f.logger.Error("failed to marshal change row", "collection", collection, "op", op, "error", err)
			return
		}
		raw = data
	}

	if err := f.Publish(ctx, Change{Op: op, Collection: collection, ID: id, Row: raw}); err != nil {
		// A missed notification degrades liveness, not correctness; the
		// next full fetch reconverges.
		f.logger.Error("failed to publish change", "collection", collection, "op", op, "error", err)
	}
}

// Subscription is a scoped resource: Close must run on every exit path of
// the consuming view. C is closed once the subscription ends.
type Subscription struct {
	C      <-chan Change
	pubsub *redis.PubSub
	cancel context.CancelFunc
}

func (s *Subscription) Close() error {
	s.cancel()
	return s.pubsub.Close()
}

// Subscribe opens a change stream for one collection. The stream ends when
// ctx is cancelled or Close is called.
func (f *Feed) Subscribe(ctx context.Context, collection string) (*Subscription, error) {
	pubsub := f.rdb.Subscribe(ctx, channelFor(collection))

	// Force the subscription onto the wire before returning so callers do
	// not miss changes racing with their initial fetch.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	out := make(chan Change)

	go func() {
		defer close(out)
		in := pubsub.Channel()
		for {
			select {
			case <-streamCtx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				var change Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					f.logger.Error("dropping malformed change payload", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case out <- change:
				case <-streamCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{C: out, pubsub: pubsub, cancel: cancel}, nil
}
