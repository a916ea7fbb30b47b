package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"tourify/utils"
)

func TestTourPreUpdateReslugsOnNameChange(t *testing.T) {
	patch := bson.M{"name": "The Updated Hiker"}
	require.NoError(t, tourPreUpdate(nil, "t1", patch))

	assert.Equal(t, "the-updated-hiker", patch["slug"])
	assert.Contains(t, patch, "updatedAt")
}

func TestTourPreUpdateKeepsSlugWithoutNameChange(t *testing.T) {
	patch := bson.M{"price": 500.0}
	require.NoError(t, tourPreUpdate(nil, "t1", patch))
	assert.NotContains(t, patch, "slug")
}

func TestTourPreUpdateRejectsDiscountAbovePrice(t *testing.T) {
	err := tourPreUpdate(nil, "t1", bson.M{"price": 400.0, "discountPrice": 450.0})
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)

	assert.NoError(t, tourPreUpdate(nil, "t1", bson.M{"price": 400.0, "discountPrice": 350.0}))
}
