package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestTranslatePassesThroughAppError(t *testing.T) {
	orig := NewAppError(http.StatusTeapot, "teapot")
	assert.Same(t, orig, Translate(orig))
}

func TestTranslateNoDocuments(t *testing.T) {
	appErr := Translate(mongo.ErrNoDocuments)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
	assert.Equal(t, "resource not found", appErr.Message)
}

func TestTranslateDuplicateKey(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	appErr := Translate(dup)
	assert.Equal(t, http.StatusConflict, appErr.Code)
}

func TestTranslateValidation(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
	}
	err := validator.New().Struct(payload{Email: "not-an-email"})
	require.Error(t, err)

	appErr := Translate(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Contains(t, appErr.Message, "Email")
}

func TestTranslateTokenErrors(t *testing.T) {
	appErr := Translate(jwt.NewValidationError("expired", jwt.ValidationErrorExpired))
	assert.Equal(t, http.StatusUnauthorized, appErr.Code)

	appErr = Translate(ErrInvalidToken)
	assert.Equal(t, http.StatusUnauthorized, appErr.Code)
}

func TestTranslateUnknown(t *testing.T) {
	cause := errors.New("boom")
	appErr := Translate(cause)
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.Equal(t, "something went wrong", appErr.Message)
	assert.ErrorIs(t, appErr, cause)
}

func TestStatusWord(t *testing.T) {
	assert.Equal(t, "fail", statusWord(http.StatusNotFound))
	assert.Equal(t, "fail", statusWord(http.StatusBadRequest))
	assert.Equal(t, "error", statusWord(http.StatusInternalServerError))
}

func abortOnAPI(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)

	AbortWithError(c, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestAbortWithErrorAPIShape(t *testing.T) {
	w, body := abortOnAPI(t, NewAppError(http.StatusNotFound, "resource not found"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "resource not found", body["message"])
}

func TestAbortWithErrorHidesDetailInProduction(t *testing.T) {
	SetEnv("production")
	defer SetEnv("development")

	w, body := abortOnAPI(t, errors.New("connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "something went wrong", body["message"])
	assert.NotContains(t, body, "error")
}

func TestAbortWithJSONOutsideAPIPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/webhook-checkout", nil)

	AbortWithJSON(c, NewAppError(http.StatusBadRequest, "webhook signature verification failed"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "webhook signature verification failed", body["message"])
}

func TestAbortWithErrorExposesDetailInDevelopment(t *testing.T) {
	SetEnv("development")

	_, body := abortOnAPI(t, errors.New("connection refused"))
	assert.Equal(t, "connection refused", body["error"])
}
