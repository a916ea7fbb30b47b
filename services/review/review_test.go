package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"tourify/database/repository"
	"tourify/models"
)

func TestCanModifyReview(t *testing.T) {
	tests := []struct {
		name      string
		actorID   string
		ownerID   string
		actorRole string
		want      bool
	}{
		{"owner", "u1", "u1", models.RoleUser, true},
		{"other user", "u2", "u1", models.RoleUser, false},
		{"admin", "u2", "u1", models.RoleAdmin, true},
		{"guide", "u2", "u1", models.RoleGuide, false},
		{"lead guide", "u2", "u1", models.RoleLeadGuide, false},
		{"empty actor", "", "", models.RoleUser, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanModifyReview(tt.actorID, tt.ownerID, tt.actorRole))
		})
	}
}

type fakeReviewRepo struct {
	avg float64
	qty int
	ok  bool
}

func (f *fakeReviewRepo) FindByID(context.Context, string) (*models.Review, error) {
	return nil, mongo.ErrNoDocuments
}

func (f *fakeReviewRepo) FindForTourWithAuthors(context.Context, string) ([]models.ReviewWithAuthor, error) {
	return nil, nil
}

func (f *fakeReviewRepo) RatingStats(context.Context, string) (float64, int, bool, error) {
	return f.avg, f.qty, f.ok, nil
}

type statsRecordingTourRepo struct {
	repository.TourRepository

	id  string
	avg float64
	qty int
}

func (f *statsRecordingTourRepo) UpdateRatingStats(_ context.Context, id string, avg float64, qty int) error {
	f.id, f.avg, f.qty = id, avg, qty
	return nil
}

func TestRecalcTourRatings(t *testing.T) {
	tours := &statsRecordingTourRepo{}
	svc := &Service{
		Reviews: &fakeReviewRepo{avg: 4.666666, qty: 3, ok: true},
		Tours:   tours,
	}

	require.NoError(t, svc.RecalcTourRatings(context.Background(), "t1"))
	assert.Equal(t, "t1", tours.id)
	assert.Equal(t, 4.7, tours.avg)
	assert.Equal(t, 3, tours.qty)
}

func TestRecalcTourRatingsStaysOnRatingScale(t *testing.T) {
	tours := &statsRecordingTourRepo{}
	svc := &Service{
		Reviews: &fakeReviewRepo{avg: 99, qty: 2, ok: true},
		Tours:   tours,
	}

	require.NoError(t, svc.RecalcTourRatings(context.Background(), "t1"))
	assert.Equal(t, 5.0, tours.avg)

	svc.Reviews = &fakeReviewRepo{avg: 0.2, qty: 1, ok: true}
	require.NoError(t, svc.RecalcTourRatings(context.Background(), "t1"))
	assert.Equal(t, 1.0, tours.avg)
}

func TestRecalcTourRatingsNoReviews(t *testing.T) {
	tours := &statsRecordingTourRepo{}
	svc := &Service{
		Reviews: &fakeReviewRepo{ok: false},
		Tours:   tours,
	}

	require.NoError(t, svc.RecalcTourRatings(context.Background(), "t1"))
	assert.Equal(t, 4.5, tours.avg)
	assert.Equal(t, 0, tours.qty)
}
