package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"tourify/utils"
)

func TestAdminUserPreUpdateStripsPasswordFields(t *testing.T) {
	patch := bson.M{
		"name":               "New Name",
		"password":           "injected",
		"passwordChangedAt":  "1970-01-01T00:00:00Z",
		"passwordResetToken": "stolen",
	}
	require.NoError(t, adminUserPreUpdate(nil, "u1", patch))

	assert.Equal(t, "New Name", patch["name"])
	assert.NotContains(t, patch, "password")
	assert.NotContains(t, patch, "passwordChangedAt")
	assert.NotContains(t, patch, "passwordResetToken")
	assert.Contains(t, patch, "updatedAt")
}

func TestAdminUserPreUpdateRejectsPasswordOnlyPatch(t *testing.T) {
	err := adminUserPreUpdate(nil, "u1", bson.M{"password": "injected"})
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}
