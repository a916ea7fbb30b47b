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

// BookingRepository defines booking access used by the checkout flow and
// the my-tours page.
type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	FindByUser(ctx context.Context, userID string) ([]models.Booking, error)
}

type MongoBookingRepo struct {
	*Repo[models.Booking]
}

func NewMongoBookingRepo(db *mongo.Database) *MongoBookingRepo {
	repo := &MongoBookingRepo{
		Repo: NewRepo[models.Booking](db.Collection("bookings"), nil),
	}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("bookings: failed to create indexes: %v", err)
	}
	return repo
}

func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "tour", Value: 1}}},
	}
	_, err := r.Collection().Indexes().CreateMany(ctx, indexModels)
	return err
}

func (r *MongoBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	return r.InsertOne(ctx, b)
}

func (r *MongoBookingRepo) FindByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	q := NewListOptions()
	q.Filter["user"] = userID
	q.Sort = bson.D{{Key: "createdAt", Value: -1}}
	return r.Find(ctx, q)
}
