package adapter

import (
	"context"
	"errors"
	"time"

	"cht-gateway/internal/infrastructure/database"
	chat "cht-gateway/internal/pkg/chat/application/domain"
	repository "cht-gateway/internal/pkg/chat/persistence/repository/port"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type conversationDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	PairKey      string             `bson:"pairKey"`
	Participants []string           `bson:"participants"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

type messageDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	ConversationID string             `bson:"conversationId"`
	From           string             `bson:"from"`
	To             string             `bson:"to"`
	Content        string             `bson:"content"`
	CreatedAt      time.Time          `bson:"createdAt"`
}

func (d messageDoc) toDomain() chat.Message {
	return chat.Message{
		ID:             d.ID.Hex(),
		ConversationID: d.ConversationID,
		SenderID:       d.From,
		RecipientID:    d.To,
		Content:        d.Content,
		CreatedAt:      d.CreatedAt,
	}
}

// MongoChatRepository keeps conversations keyed by the scalar pairKey. A unique index on the
// participants array would be multikey and forbid a user's second conversation.
type MongoChatRepository struct {
	db            *mongo.Database
	conversations *mongo.Collection
	messages      *mongo.Collection
	now           func() time.Time
}

var _ repository.ChatRepository = (*MongoChatRepository)(nil)

func NewMongoChatRepository(db *mongo.Database) *MongoChatRepository {
	return &MongoChatRepository{
		db:            db,
		conversations: db.Collection(database.ConversationsCollection),
		messages:      db.Collection(database.MessagesCollection),
		now:           time.Now,
	}
}

func (r *MongoChatRepository) ResolveConversation(ctx context.Context, pair chat.Pair) (string, error) {
	filter := bson.M{"pairKey": pair.Key()}
	now := r.now()
	update := bson.M{"$setOnInsert": bson.M{
		"participants": pair.Slice(),
		"createdAt":    now,
		"updatedAt":    now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc conversationDoc
	err := r.conversations.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// lost the insert race against the unique index; the winner's row is there now
		err = r.conversations.FindOne(ctx, filter).Decode(&doc)
	}
	if err != nil {
		return "", err
	}
	return doc.ID.Hex(), nil
}

func (r *MongoChatRepository) FindConversation(ctx context.Context, pair chat.Pair) (string, error) {
	var doc conversationDoc
	err := r.conversations.FindOne(ctx, bson.M{"pairKey": pair.Key()},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", repository.ErrConversationNotFound
	}
	if err != nil {
		return "", err
	}
	return doc.ID.Hex(), nil
}

func (r *MongoChatRepository) AppendMessage(ctx context.Context, m chat.Message) (chat.Message, error) {
	convID, err := primitive.ObjectIDFromHex(m.ConversationID)
	if err != nil {
		return chat.Message{}, repository.ErrConversationNotFound
	}

	// updatedAt = max(now, updatedAt + 1ms) evaluated server-side, giving each
	// message of the conversation a strictly later createdAt.
	bump := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"updatedAt": bson.M{"$max": bson.A{r.now(), bson.M{"$add": bson.A{"$updatedAt", 1}}}},
		}}},
	}
	var conv conversationDoc
	err = r.conversations.FindOneAndUpdate(ctx, bson.M{"_id": convID}, bump,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return chat.Message{}, repository.ErrConversationNotFound
	}
	if err != nil {
		return chat.Message{}, err
	}

	doc := messageDoc{
		ConversationID: m.ConversationID,
		From:           m.SenderID,
		To:             m.RecipientID,
		Content:        m.Content,
		CreatedAt:      conv.UpdatedAt,
	}
	res, err := r.messages.InsertOne(ctx, doc)
	if err != nil {
		return chat.Message{}, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *MongoChatRepository) ListMessages(ctx context.Context, conversationID string, q repository.HistoryQuery) ([]chat.Message, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	filter := bson.M{"conversationId": conversationID}
	if q.Before != nil {
		filter["createdAt"] = bson.M{"$lt": *q.Before}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(q.Limit))

	cur, err := r.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	msgs := make([]chat.Message, len(docs))
	for i, d := range docs {
		msgs[i] = d.toDomain()
	}
	return msgs, nil
}

func (r *MongoChatRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}
