package review

import (
	"context"
	"math"

	"tourify/database/repository"
	"tourify/models"
)

// CanModifyReview is the ownership capability check: a review may only
// be mutated by its author or by an admin.
func CanModifyReview(actorID, ownerID, actorRole string) bool {
	if actorRole == models.RoleAdmin {
		return true
	}
	return actorID != "" && actorID == ownerID
}

// Service owns review side effects, chiefly the derived rating
// aggregate on the owning tour.
type Service struct {
	Reviews repository.ReviewRepository
	Tours   repository.TourRepository
}

// Defaults applied when a tour has no reviews left.
const (
	defaultRatingsAverage  = 4.5
	defaultRatingsQuantity = 0
)

// RecalcTourRatings recomputes ratingsAverage/ratingsQuantity of a tour
// after any review write. The recomputation is last-writer-wins: the
// aggregate is a derived statistic, not a source of truth.
func (s *Service) RecalcTourRatings(ctx context.Context, tourID string) error {
	avg, qty, ok, err := s.Reviews.RatingStats(ctx, tourID)
	if err != nil {
		return err
	}
	if !ok {
		avg, qty = defaultRatingsAverage, defaultRatingsQuantity
	}
	// Ratings are constrained to 1..5, so the average must land on the
	// same scale even if an out-of-range value slipped into the store.
	avg = math.Round(avg*10) / 10
	if avg < 1 {
		avg = 1
	} else if avg > 5 {
		avg = 5
	}
	return s.Tours.UpdateRatingStats(ctx, tourID, avg, qty)
}
