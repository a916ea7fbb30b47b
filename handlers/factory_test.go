package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"tourify/models"
	"tourify/utils"
)

func storedReview() *models.Review {
	return &models.Review{
		ID:     "r1",
		Review: "Loved it",
		Rating: 4,
		Tour:   "t1",
		User:   "u1",
	}
}

func storedTour() *models.Tour {
	return &models.Tour{
		ID:             "t1",
		Name:           "The Forest Hiker",
		Slug:           "the-forest-hiker",
		Duration:       5,
		MaxGroupSize:   25,
		Difficulty:     "easy",
		RatingsAverage: 4.5,
		Price:          397,
		Summary:        "Breathtaking hike through the Canadian Banff National Park",
	}
}

func TestValidatePatchedRejectsOutOfRangeRating(t *testing.T) {
	err := validatePatched(storedReview(), bson.M{"rating": 99.0})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, utils.Translate(err).Code)

	err = validatePatched(storedReview(), bson.M{"rating": 0.5})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, utils.Translate(err).Code)
}

func TestValidatePatchedAcceptsValidPatch(t *testing.T) {
	assert.NoError(t, validatePatched(storedReview(), bson.M{"rating": 5.0}))
	assert.NoError(t, validatePatched(storedReview(), bson.M{"review": "Even better the second time"}))
	assert.NoError(t, validatePatched(storedTour(), bson.M{"price": 450.0}))
}

func TestValidatePatchedEnforcesTourRules(t *testing.T) {
	for name, patch := range map[string]bson.M{
		"difficulty outside enum": {"difficulty": "impossible"},
		"price not positive":      {"price": -10.0},
		"name too short":          {"name": "short"},
		"ratingsAverage too high": {"ratingsAverage": 9.0},
	} {
		t.Run(name, func(t *testing.T) {
			err := validatePatched(storedTour(), patch)
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, utils.Translate(err).Code)
		})
	}
}

func TestValidatePatchedRejectsWrongType(t *testing.T) {
	err := validatePatched(storedReview(), bson.M{"rating": "five"})
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}
