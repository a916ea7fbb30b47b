package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"tourify/models"
	"tourify/utils"
)

var testSecret = []byte("test-secret")

type fakeUserRepo struct {
	users map[string]*models.User
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) FindByResetTokenHash(context.Context, string, time.Time) (*models.User, error) {
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) UpdateFields(context.Context, string, bson.M, bson.M) error { return nil }

func (f *fakeUserRepo) UpdateProfile(_ context.Context, id string, _ bson.M) (*models.User, error) {
	return f.FindByID(nil, id)
}

func protectedRouter(repo *fakeUserRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/secure", Protect(repo, testSecret), func(c *gin.Context) {
		u, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": u.ID})
	})
	return r
}

func TestProtectRejectsMissingToken(t *testing.T) {
	r := protectedRouter(&fakeUserRepo{users: map[string]*models.User{}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/secure", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "you are not logged in")
}

func TestProtectRejectsMalformedToken(t *testing.T) {
	r := protectedRouter(&fakeUserRepo{users: map[string]*models.User{}})

	req := httptest.NewRequest(http.MethodGet, "/api/secure", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectRejectsDeletedUser(t *testing.T) {
	r := protectedRouter(&fakeUserRepo{users: map[string]*models.User{}})

	token, err := utils.GenerateToken("ghost", testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "no longer exists")
}

func TestProtectRejectsTokenIssuedBeforePasswordChange(t *testing.T) {
	changed := time.Now().Add(time.Hour)
	repo := &fakeUserRepo{users: map[string]*models.User{
		"u1": {ID: "u1", PasswordChangedAt: &changed},
	}}
	r := protectedRouter(repo)

	token, err := utils.GenerateToken("u1", testSecret, 2*time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "password was changed recently")
}

func TestProtectAttachesUser(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Role: models.RoleUser},
	}}
	r := protectedRouter(repo)

	token, err := utils.GenerateToken("u1", testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u1")
}

func TestProtectReadsSessionCookie(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*models.User{
		"u1": {ID: "u1"},
	}}
	r := protectedRouter(repo)

	token, err := utils.GenerateToken("u1", testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/secure", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginStateIsNonBlocking(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeUserRepo{users: map[string]*models.User{}}

	r := gin.New()
	r.GET("/page", LoginState(repo, testSecret), func(c *gin.Context) {
		_, ok := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"loggedIn": ok})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/page", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "false")
}

func TestRestrictTo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeUserRepo{users: map[string]*models.User{
		"admin": {ID: "admin", Role: models.RoleAdmin},
		"plain": {ID: "plain", Role: models.RoleUser},
	}}

	r := gin.New()
	r.DELETE("/api/tours/:id", Protect(repo, testSecret), RestrictTo(models.RoleAdmin, models.RoleLeadGuide),
		func(c *gin.Context) { c.Status(http.StatusNoContent) })

	call := func(userID string) int {
		token, err := utils.GenerateToken(userID, testSecret, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodDelete, "/api/tours/t1", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, call("admin"))
	assert.Equal(t, http.StatusForbidden, call("plain"))
}
