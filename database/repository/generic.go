package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repo is a generic Mongo-backed repository. The base filter is merged
// into every read so soft-deleted users and secret tours never leak from
// a call site that forgot to exclude them.
type Repo[T any] struct {
	coll       *mongo.Collection
	baseFilter bson.M
}

func NewRepo[T any](coll *mongo.Collection, baseFilter bson.M) *Repo[T] {
	return &Repo[T]{coll: coll, baseFilter: baseFilter}
}

func (r *Repo[T]) Collection() *mongo.Collection { return r.coll }

func (r *Repo[T]) merged(filter bson.M) bson.M {
	out := bson.M{}
	for k, v := range r.baseFilter {
		out[k] = v
	}
	for k, v := range filter {
		out[k] = v
	}
	return out
}

func (r *Repo[T]) FindByID(ctx context.Context, id string) (*T, error) {
	return r.FindOne(ctx, bson.M{"id": id})
}

func (r *Repo[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	if err := r.coll.FindOne(ctx, r.merged(filter)).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *Repo[T]) Find(ctx context.Context, q ListOptions) ([]T, error) {
	findOpts := options.Find().
		SetSkip((q.Page - 1) * q.Limit).
		SetLimit(q.Limit)
	if len(q.Sort) > 0 {
		findOpts.SetSort(q.Sort)
	}
	if len(q.Fields) > 0 {
		findOpts.SetProjection(q.Fields)
	}

	cursor, err := r.coll.Find(ctx, r.merged(q.Filter), findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *Repo[T]) InsertOne(ctx context.Context, doc *T) error {
	_, err := r.coll.InsertOne(ctx, doc)
	return err
}

// UpdateByID applies a $set patch and returns the updated document.
// Missing ids surface as mongo.ErrNoDocuments.
func (r *Repo[T]) UpdateByID(ctx context.Context, id string, set bson.M) (*T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc T
	err := r.coll.FindOneAndUpdate(ctx, r.merged(bson.M{"id": id}), bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *Repo[T]) DeleteByID(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, r.merged(bson.M{"id": id}))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Aggregate runs a pipeline with the base filter prepended as a $match
// stage, except when the pipeline opens with $geoNear, which Mongo
// requires to stay first.
func (r *Repo[T]) Aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	if len(r.baseFilter) > 0 {
		prepend := true
		if len(pipeline) > 0 {
			for _, stage := range pipeline[0] {
				if stage.Key == "$geoNear" {
					prepend = false
				}
			}
		}
		if prepend {
			pipeline = append(mongo.Pipeline{{{Key: "$match", Value: r.baseFilter}}}, pipeline...)
		}
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}
