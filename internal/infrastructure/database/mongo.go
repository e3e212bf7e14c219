package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names shared by the mongo repositories.
const (
	UsersCollection         = "users"
	ConversationsCollection = "conversations"
	MessagesCollection      = "messages"
)

// ConnectMongo opens a client for uri, verifies it with a ping and returns the named database.
func ConnectMongo(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return client, client.Database(dbName), nil
}

// EnsureMongoIndexes creates the indexes the repositories rely on. The unique
// index on conversations.pairKey is what makes the conversation upsert race-free.
// participants only gets a plain multikey index for per-user lookups.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	conversations := db.Collection(ConversationsCollection)
	if err := dropUniqueParticipantsIndex(ctx, conversations); err != nil {
		return err
	}
	if err := backfillPairKeys(ctx, conversations); err != nil {
		return err
	}
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ConversationsCollection: {
			{Keys: bson.D{{Key: "pairKey", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "participants", Value: 1}}},
		},
		MessagesCollection: {
			{Keys: bson.D{{Key: "conversationId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo: create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// dropUniqueParticipantsIndex removes the unique participants_1 index older deployments created,
// which would reject a user's second conversation and clash with the plain index above.
func dropUniqueParticipantsIndex(ctx context.Context, coll *mongo.Collection) error {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return fmt.Errorf("mongo: list indexes: %w", err)
	}
	var specs []struct {
		Name   string `bson:"name"`
		Unique bool   `bson:"unique"`
	}
	if err := cur.All(ctx, &specs); err != nil {
		return fmt.Errorf("mongo: list indexes: %w", err)
	}
	for _, spec := range specs {
		if spec.Name == "participants_1" && spec.Unique {
			if _, err := coll.Indexes().DropOne(ctx, spec.Name); err != nil {
				return fmt.Errorf("mongo: drop %s: %w", spec.Name, err)
			}
		}
	}
	return nil
}

// backfillPairKeys derives pairKey for conversations stored before it existed. participants
// is always written sorted, so joining it reproduces the key.
func backfillPairKeys(ctx context.Context, coll *mongo.Collection) error {
	derive := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{"pairKey": bson.M{"$concat": bson.A{
			bson.M{"$arrayElemAt": bson.A{"$participants", 0}},
			"|",
			bson.M{"$arrayElemAt": bson.A{"$participants", 1}},
		}}}}},
	}
	if _, err := coll.UpdateMany(ctx, bson.M{"pairKey": bson.M{"$exists": false}}, derive); err != nil {
		return fmt.Errorf("mongo: backfill pairKey: %w", err)
	}
	return nil
}
