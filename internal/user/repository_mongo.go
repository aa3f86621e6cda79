package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const usersCollection = "users"

type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(usersCollection)}
}

// EnsureMongoIndexes creates the unique indexes the repository relies on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_name", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func (r *mongoRepository) Create(ctx context.Context, u *User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserExists
		}
		return fmt.Errorf("repository: failed to insert user: %w", err)
	}
	return nil
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.D) (*User, error) {
	var u User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("repository: failed to find user: %w", err)
	}
	return &u, nil
}

func (r *mongoRepository) GetByID(ctx context.Context, userID string) (*User, error) {
	return r.findOne(ctx, bson.D{{Key: "user_id", Value: userID}})
}

func (r *mongoRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *mongoRepository) ExistsByEmailOrUserName(ctx context.Context, email, userName string) (bool, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "email", Value: email}},
		bson.D{{Key: "user_name", Value: userName}},
	}}}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("repository: failed to check user existence: %w", err)
	}
	return n > 0, nil
}

func (r *mongoRepository) UpdateImage(ctx context.Context, userID, publicID string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "user_id", Value: userID}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "image_public_id", Value: publicID}}}},
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update image: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *mongoRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("repository: failed to count users: %w", err)
	}
	return n, nil
}

// ListExcluding orders by _id, which grows with insertion time.
func (r *mongoRepository) ListExcluding(ctx context.Context, excludeUserID string, offset, limit int) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit)).
		SetProjection(bson.D{
			{Key: "_id", Value: 0},
			{Key: "user_id", Value: 1},
			{Key: "user_name", Value: 1},
			{Key: "first_name", Value: 1},
			{Key: "image_public_id", Value: 1},
		})

	cur, err := r.coll.Find(ctx, bson.D{{Key: "user_id", Value: bson.D{{Key: "$ne", Value: excludeUserID}}}}, opts)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list users: %w", err)
	}

	summaries := make([]Summary, 0, limit)
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("repository: failed to decode users: %w", err)
	}
	return summaries, nil
}
