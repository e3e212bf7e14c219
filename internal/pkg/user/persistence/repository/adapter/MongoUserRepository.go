package adapter

import (
	"context"
	"errors"
	"time"

	"cht-gateway/internal/infrastructure/database"
	user "cht-gateway/internal/pkg/user/application/domain"
	repository "cht-gateway/internal/pkg/user/persistence/repository/port"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"passwordHash"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d userDoc) toDomain() user.User {
	return user.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

// MongoUserRepository stores users with ObjectID identities.
type MongoUserRepository struct {
	db    *mongo.Database
	users *mongo.Collection
}

var _ repository.UserRepository = (*MongoUserRepository)(nil)

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{db: db, users: db.Collection(database.UsersCollection)}
}

// Canonical lower-cases the hex form; ObjectIDFromHex accepts either case.
func (r *MongoUserRepository) Canonical(id string) (string, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", false
	}
	return oid.Hex(), true
}

func (r *MongoUserRepository) Create(ctx context.Context, u user.User) (string, error) {
	doc := userDoc{Name: u.Name, Username: u.Username, PasswordHash: u.PasswordHash, CreatedAt: time.Now()}
	res, err := r.users.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return "", repository.ErrDuplicateUsername
	}
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("MongoUserRepository: unexpected inserted id type")
	}
	return oid.Hex(), nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (user.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return user.User{}, repository.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (user.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (user.User, error) {
	var doc userDoc
	err := r.users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user.User{}, repository.ErrUserNotFound
	}
	if err != nil {
		return user.User{}, err
	}
	return doc.toDomain(), nil
}

func (r *MongoUserRepository) List(ctx context.Context) ([]user.User, error) {
	cur, err := r.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]user.User, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *MongoUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	n, err := r.users.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoUserRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}
