package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"go-restaurant-pos/src/services/events"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const orderEventsCollection = "order_events"

// OrderEvent is a broker publish that failed and waits for replay.
type OrderEvent struct {
	ID         string     `bson:"_id,omitempty"`
	OrderID    string     `bson:"orderId"`
	RoutingKey string     `bson:"routingKey"`
	EventData  []byte     `bson:"eventData"`
	CreatedAt  time.Time  `bson:"createdAt"`
	Replayed   bool       `bson:"replayed"`
	ReplayedAt *time.Time `bson:"replayedAt,omitempty"`
	Status     string     `bson:"status"`
}

type OrderEventRepository struct {
	collection *mongo.Collection
}

func NewOrderEventRepository(db *mongo.Database) *OrderEventRepository {
	return &OrderEventRepository{collection: db.Collection(orderEventsCollection)}
}

func (r *OrderEventRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("replay_queue"),
	})
	return err
}

// StoreEventForReplay parks an event that could not reach the broker.
func (r *OrderEventRepository) StoreEventForReplay(ctx context.Context, orderID, routingKey string, eventData []byte) error {
	evt, err := newParkedEvent(orderID, routingKey, eventData)
	if err != nil {
		return err
	}
	_, err = r.collection.InsertOne(ctx, evt)
	return err
}

// GetUnreplayedEvents fetches events that have not been replayed yet
// Events are returned in FIFO order (oldest first) based on createdAt timestamp
func (r *OrderEventRepository) GetUnreplayedEvents(ctx context.Context, limit int64) ([]OrderEvent, error) {
	filter := bson.M{
		"replayed": bson.M{"$ne": true},
		"status":   bson.M{"$in": []string{events.EventStatusPending, events.EventStatusFailed}},
	}
	opts := options.Find().SetLimit(limit).SetSort(bson.D{bson.E{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var parked []OrderEvent
	for cursor.Next(ctx) {
		var evt OrderEvent
		if err := cursor.Decode(&evt); err != nil {
			return nil, err
		}
		parked = append(parked, evt)
	}
	return parked, cursor.Err()
}

func (r *OrderEventRepository) MarkEventAsReplaying(ctx context.Context, eventID string) error {
	return r.setStatus(ctx, eventID, bson.M{"status": events.EventStatusReplaying})
}

func (r *OrderEventRepository) MarkEventAsCompleted(ctx context.Context, eventID string) error {
	return r.setStatus(ctx, eventID, bson.M{
		"status":     events.EventStatusCompleted,
		"replayed":   true,
		"replayedAt": time.Now(),
	})
}

// MarkEventAsFailed puts the event back in the replay queue.
func (r *OrderEventRepository) MarkEventAsFailed(ctx context.Context, eventID string) error {
	return r.setStatus(ctx, eventID, bson.M{"status": events.EventStatusFailed})
}

func (r *OrderEventRepository) setStatus(ctx context.Context, eventID string, fields bson.M) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": eventID}, bson.M{"$set": fields})
	return err
}

func newParkedEvent(orderID, routingKey string, eventData []byte) (OrderEvent, error) {
	if !json.Valid(eventData) {
		return OrderEvent{}, errors.New("invalid JSON event data")
	}
	if routingKey == "" {
		return OrderEvent{}, errors.New("routing key is required")
	}
	return OrderEvent{
		ID:         primitive.NewObjectID().Hex(),
		OrderID:    orderID,
		RoutingKey: routingKey,
		EventData:  eventData,
		CreatedAt:  time.Now(),
		Status:     events.EventStatusFailed,
	}, nil
}
