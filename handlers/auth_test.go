package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/users/signIn", nil)
	c.Request.Host = "tourify.dev"
	return c
}

func TestRequestBaseURL(t *testing.T) {
	c := testContext(t)
	assert.Equal(t, "http://tourify.dev", requestBaseURL(c))

	c.Request.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://tourify.dev", requestBaseURL(c))
}

func TestRequestIsSecure(t *testing.T) {
	c := testContext(t)
	assert.False(t, requestIsSecure(c))

	c.Request.Header.Set("X-Forwarded-Proto", "https")
	assert.True(t, requestIsSecure(c))
}
