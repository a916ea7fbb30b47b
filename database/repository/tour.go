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

// guideProjection strips credential fields from resolved guide documents.
var guideProjection = bson.M{
	"guideDocs.password":             0,
	"guideDocs.passwordChangedAt":    0,
	"guideDocs.passwordResetToken":   0,
	"guideDocs.passwordResetExpires": 0,
}

// TourRepository defines tour access, including the explicit
// relation-resolving reads and the aggregation queries.
type TourRepository interface {
	FindByID(ctx context.Context, id string) (*models.Tour, error)
	FindByIDWithGuides(ctx context.Context, id string) (*models.TourWithGuides, error)
	FindBySlugWithGuides(ctx context.Context, slug string) (*models.TourWithGuides, error)
	List(ctx context.Context, q ListOptions) ([]models.Tour, error)
	// UpdateRatingStats writes the derived rating aggregate. It bypasses
	// the secret-tour filter so hidden tours keep accurate stats.
	UpdateRatingStats(ctx context.Context, id string, avg float64, qty int) error
	Stats(ctx context.Context) ([]models.TourStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]models.MonthlyPlanEntry, error)
	Within(ctx context.Context, lat, lng, radius float64) ([]models.Tour, error)
	Distances(ctx context.Context, lat, lng, multiplier float64) ([]models.TourDistance, error)
}

// MongoTourRepo implements TourRepository. The base filter hides secret
// tours from every default read and aggregate.
type MongoTourRepo struct {
	*Repo[models.Tour]
}

func NewMongoTourRepo(db *mongo.Database) *MongoTourRepo {
	repo := &MongoTourRepo{
		Repo: NewRepo[models.Tour](db.Collection("tours"), bson.M{"secretTour": bson.M{"$ne": true}}),
	}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("tours: failed to create indexes: %v", err)
	}
	return repo
}

func (r *MongoTourRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "slug", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}, {Key: "ratingsAverage", Value: -1}}},
		{Keys: bson.D{{Key: "startLocation", Value: "2dsphere"}}},
	}
	_, err := r.Collection().Indexes().CreateMany(ctx, indexModels)
	return err
}

func (r *MongoTourRepo) List(ctx context.Context, q ListOptions) ([]models.Tour, error) {
	return r.Find(ctx, q)
}

func (r *MongoTourRepo) FindByIDWithGuides(ctx context.Context, id string) (*models.TourWithGuides, error) {
	return r.findOneWithGuides(ctx, bson.M{"id": id})
}

func (r *MongoTourRepo) FindBySlugWithGuides(ctx context.Context, slug string) (*models.TourWithGuides, error) {
	return r.findOneWithGuides(ctx, bson.M{"slug": slug})
}

func (r *MongoTourRepo) findOneWithGuides(ctx context.Context, match bson.M) (*models.TourWithGuides, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "guides",
			"foreignField": "id",
			"as":           "guideDocs",
		}}},
		{{Key: "$project", Value: guideProjection}},
		{{Key: "$limit", Value: 1}},
	}

	var tours []models.TourWithGuides
	if err := r.Aggregate(ctx, pipeline, &tours); err != nil {
		return nil, err
	}
	if len(tours) == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return &tours[0], nil
}

func (r *MongoTourRepo) UpdateRatingStats(ctx context.Context, id string, avg float64, qty int) error {
	_, err := r.Collection().UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{
		"ratingsAverage":  avg,
		"ratingsQuantity": qty,
	}})
	return err
}

// Stats groups published tours by difficulty over the well-rated subset.
func (r *MongoTourRepo) Stats(ctx context.Context) ([]models.TourStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ratingsAverage": bson.M{"$gte": 4.5}}}},
		{{Key: "$group", Value: bson.M{
			"_id":        bson.M{"$toUpper": "$difficulty"},
			"numTours":   bson.M{"$sum": 1},
			"numRatings": bson.M{"$sum": "$ratingsQuantity"},
			"avgRating":  bson.M{"$avg": "$ratingsAverage"},
			"avgPrice":   bson.M{"$avg": "$price"},
			"minPrice":   bson.M{"$min": "$price"},
			"maxPrice":   bson.M{"$max": "$price"},
		}}},
		{{Key: "$sort", Value: bson.M{"avgPrice": 1}}},
	}

	var stats []models.TourStats
	if err := r.Aggregate(ctx, pipeline, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// MonthlyPlan unwinds start dates within the given year and groups the
// departures per month, busiest month first.
func (r *MongoTourRepo) MonthlyPlan(ctx context.Context, year int) ([]models.MonthlyPlanEntry, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$startDates"}},
		{{Key: "$match", Value: bson.M{"startDates": bson.M{"$gte": from, "$lte": to}}}},
		{{Key: "$group", Value: bson.M{
			"_id":           bson.M{"$month": "$startDates"},
			"numTourStarts": bson.M{"$sum": 1},
			"tours":         bson.M{"$push": "$name"},
		}}},
		{{Key: "$addFields", Value: bson.M{"month": "$_id"}}},
		{{Key: "$project", Value: bson.M{"_id": 0}}},
		{{Key: "$sort", Value: bson.M{"numTourStarts": -1}}},
		{{Key: "$limit", Value: 12}},
	}

	var plan []models.MonthlyPlanEntry
	if err := r.Aggregate(ctx, pipeline, &plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Within finds tours whose start location falls inside the sphere of the
// given radius (in radians) around the center point.
func (r *MongoTourRepo) Within(ctx context.Context, lat, lng, radius float64) ([]models.Tour, error) {
	q := NewListOptions()
	q.Filter["startLocation"] = bson.M{
		"$geoWithin": bson.M{"$centerSphere": bson.A{bson.A{lng, lat}, radius}},
	}
	return r.Find(ctx, q)
}

// Distances computes the distance from the given point to every tour's
// start location. $geoNear must be the first stage, so the secret-tour
// exclusion is applied as its query instead.
func (r *MongoTourRepo) Distances(ctx context.Context, lat, lng, multiplier float64) ([]models.TourDistance, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.M{
			"near": bson.M{
				"type":        "Point",
				"coordinates": bson.A{lng, lat},
			},
			"distanceField":      "distance",
			"distanceMultiplier": multiplier,
			"query":              bson.M{"secretTour": bson.M{"$ne": true}},
		}}},
		{{Key: "$project", Value: bson.M{"distance": 1, "name": 1, "id": 1}}},
	}

	var distances []models.TourDistance
	if err := r.Aggregate(ctx, pipeline, &distances); err != nil {
		return nil, err
	}
	return distances, nil
}
