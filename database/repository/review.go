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

// ReviewRepository defines review access used by the rating recompute
// and the page rendering.
type ReviewRepository interface {
	FindByID(ctx context.Context, id string) (*models.Review, error)
	// FindForTourWithAuthors resolves each review's author document.
	FindForTourWithAuthors(ctx context.Context, tourID string) ([]models.ReviewWithAuthor, error)
	// RatingStats computes the average rating and count over all reviews
	// of a tour. ok is false when the tour has no reviews.
	RatingStats(ctx context.Context, tourID string) (avg float64, qty int, ok bool, err error)
}

type MongoReviewRepo struct {
	*Repo[models.Review]
}

func NewMongoReviewRepo(db *mongo.Database) *MongoReviewRepo {
	repo := &MongoReviewRepo{
		Repo: NewRepo[models.Review](db.Collection("reviews"), nil),
	}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("reviews: failed to create indexes: %v", err)
	}
	return repo
}

func (r *MongoReviewRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		// One review per (user, tour) pair.
		{Keys: bson.D{{Key: "tour", Value: 1}, {Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	_, err := r.Collection().Indexes().CreateMany(ctx, indexModels)
	return err
}

func (r *MongoReviewRepo) FindForTourWithAuthors(ctx context.Context, tourID string) ([]models.ReviewWithAuthor, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tour": tourID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "user",
			"foreignField": "id",
			"as":           "author",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$author", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"author.password":             0,
			"author.passwordChangedAt":    0,
			"author.passwordResetToken":   0,
			"author.passwordResetExpires": 0,
		}}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
	}

	var reviews []models.ReviewWithAuthor
	if err := r.Aggregate(ctx, pipeline, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *MongoReviewRepo) RatingStats(ctx context.Context, tourID string) (float64, int, bool, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tour": tourID}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$tour",
			"numRating": bson.M{"$sum": 1},
			"avgRating": bson.M{"$avg": "$rating"},
		}}},
	}

	var stats []struct {
		NumRating int     `bson:"numRating"`
		AvgRating float64 `bson:"avgRating"`
	}
	if err := r.Aggregate(ctx, pipeline, &stats); err != nil {
		return 0, 0, false, err
	}
	if len(stats) == 0 {
		return 0, 0, false, nil
	}
	return stats[0].AvgRating, stats[0].NumRating, true, nil
}
