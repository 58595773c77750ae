package status

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultCollection = "status_checks"

// mongoStatusDoc is the stored shape. The timestamp is written as ISO-8601 text.
type mongoStatusDoc struct {
	ID         string `bson:"id"`
	ClientName string `bson:"client_name"`
	Timestamp  string `bson:"timestamp"`
}

// mongoStatusRow is the read shape. Timestamps may be text or a native datetime
// depending on who wrote the document.
type mongoStatusRow struct {
	ID         string        `bson:"id"`
	ClientName string        `bson:"client_name"`
	Timestamp  bson.RawValue `bson:"timestamp"`
}

// MongoStore keeps status checks in a MongoDB collection
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoStore(client *mongo.Client, database, collection string) *MongoStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
}

func (s *MongoStore) Init(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_id"),
	})
	if err != nil {
		return fmt.Errorf("create id index: %w", err)
	}
	return nil
}

func (s *MongoStore) Insert(ctx context.Context, sc *StatusCheck) error {
	doc := &mongoStatusDoc{
		ID:         sc.ID,
		ClientName: sc.ClientName,
		Timestamp:  FormatTimestamp(sc.Timestamp),
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert status check: %w", err)
	}
	return nil
}

func (s *MongoStore) FindRecent(ctx context.Context, limit int) ([]*StatusCheck, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "_id", Value: 0}}).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find status checks: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []mongoStatusRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode status checks: %w", err)
	}

	checks := make([]*StatusCheck, 0, len(rows))
	for _, row := range rows {
		ts, err := decodeMongoTimestamp(row.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("status check %s: %w", row.ID, err)
		}
		checks = append(checks, &StatusCheck{
			ID:         row.ID,
			ClientName: row.ClientName,
			Timestamp:  ts,
		})
	}
	return checks, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func decodeMongoTimestamp(v bson.RawValue) (time.Time, error) {
	if str, ok := v.StringValueOK(); ok {
		return ParseTimestamp(str)
	}
	if ms, ok := v.DateTimeOK(); ok {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: bson type %s", ErrInvalidTimestamp, v.Type)
}
