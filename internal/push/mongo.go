package push

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultCollection is where MongoStore keeps subscriptions.
const DefaultCollection = "push_subscriptions"

// MongoStore keeps subscriptions in a MongoDB collection with a unique
// (recipient_id, endpoint) index.
type MongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &MongoStore{coll: db.Collection(collection), now: time.Now}
}

// EnsureIndexes creates the unique compound index. It is safe to call on
// every start.
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "recipient_id", Value: 1}, {Key: "endpoint", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("recipient_endpoint_unique"),
	})
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}

func (m *MongoStore) Save(ctx context.Context, s Subscription) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.now().UTC()
	}

	filter := bson.D{{Key: "recipient_id", Value: s.RecipientID}, {Key: "endpoint", Value: s.Endpoint}}
	update := bson.D{
		{Key: "$set", Value: bson.D{{Key: "keys", Value: s.Keys}}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "created_at", Value: s.CreatedAt}}},
	}
	_, err := m.coll.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}

func (m *MongoStore) Delete(ctx context.Context, recipientID, endpoint string) error {
	_, err := m.coll.DeleteOne(ctx, bson.D{
		{Key: "recipient_id", Value: recipientID},
		{Key: "endpoint", Value: endpoint},
	})
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}

func (m *MongoStore) ListByRecipient(ctx context.Context, recipientID string) ([]Subscription, error) {
	cur, err := m.coll.Find(ctx,
		bson.D{{Key: "recipient_id", Value: recipientID}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}

	var subs []Subscription
	if err := cur.All(ctx, &subs); err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	return subs, nil
}
