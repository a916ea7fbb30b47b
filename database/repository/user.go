package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tourify/models"
	"tourify/utils"
)

// UserRepository defines the credential-store access used by the auth
// service and the access gate.
type UserRepository interface {
	// FindByID retrieves an active user by id.
	FindByID(ctx context.Context, id string) (*models.User, error)
	// FindByEmail retrieves an active user by email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByResetTokenHash retrieves a user whose stored reset-token hash
	// matches and whose token has not expired.
	FindByResetTokenHash(ctx context.Context, hash string, now time.Time) (*models.User, error)
	// Create inserts a new user record.
	Create(ctx context.Context, u *models.User) error
	// UpdateFields applies a raw $set/$unset patch without re-running
	// full validation (used by the reset-token lifecycle).
	UpdateFields(ctx context.Context, id string, set bson.M, unset bson.M) error
	// UpdateProfile applies a $set patch and returns the updated user.
	UpdateProfile(ctx context.Context, id string, set bson.M) (*models.User, error)
}

// MongoUserRepo implements UserRepository. The base filter hides
// soft-deleted (active=false) accounts from every default read.
type MongoUserRepo struct {
	*Repo[models.User]
}

func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	repo := &MongoUserRepo{
		Repo: NewRepo[models.User](db.Collection("users"), bson.M{"active": bson.M{"$ne": false}}),
	}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("users: failed to create indexes: %v", err)
	}
	return repo
}

func (r *MongoUserRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	_, err := r.Collection().Indexes().CreateMany(ctx, indexModels)
	return err
}

func (r *MongoUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.FindOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepo) FindByResetTokenHash(ctx context.Context, hash string, now time.Time) (*models.User, error) {
	return r.FindOne(ctx, bson.M{
		"passwordResetToken":   hash,
		"passwordResetExpires": bson.M{"$gt": now},
	})
}

func (r *MongoUserRepo) Create(ctx context.Context, u *models.User) error {
	return r.InsertOne(ctx, u)
}

func (r *MongoUserRepo) UpdateFields(ctx context.Context, id string, set bson.M, unset bson.M) error {
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		return nil
	}

	res, err := r.Collection().UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoUserRepo) UpdateProfile(ctx context.Context, id string, set bson.M) (*models.User, error) {
	return r.UpdateByID(ctx, id, set)
}
