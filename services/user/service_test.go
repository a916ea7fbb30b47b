package user

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"tourify/models"
	"tourify/utils"
)

type memoryUserRepo struct {
	users map[string]*models.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[string]*models.User{}}
}

func (r *memoryUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := r.users[id]; ok && u.Active {
		return u, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.Active {
			return u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memoryUserRepo) FindByResetTokenHash(_ context.Context, hash string, now time.Time) (*models.User, error) {
	for _, u := range r.users {
		if u.PasswordResetToken == hash && u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now) {
			return u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memoryUserRepo) Create(_ context.Context, u *models.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *memoryUserRepo) UpdateFields(_ context.Context, id string, set bson.M, unset bson.M) error {
	u, ok := r.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for k, v := range set {
		switch k {
		case "password":
			u.PasswordHash = v.(string)
		case "passwordChangedAt":
			ts := v.(time.Time)
			u.PasswordChangedAt = &ts
		case "passwordResetToken":
			u.PasswordResetToken = v.(string)
		case "passwordResetExpires":
			ts := v.(time.Time)
			u.PasswordResetExpires = &ts
		case "active":
			u.Active = v.(bool)
		}
	}
	for k := range unset {
		switch k {
		case "passwordResetToken":
			u.PasswordResetToken = ""
		case "passwordResetExpires":
			u.PasswordResetExpires = nil
		}
	}
	return nil
}

func (r *memoryUserRepo) UpdateProfile(_ context.Context, id string, set bson.M) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if v, ok := set["name"].(string); ok {
		u.Name = v
	}
	if v, ok := set["email"].(string); ok {
		u.Email = v
	}
	if v, ok := set["photo"].(string); ok {
		u.Photo = v
	}
	return u, nil
}

type recordingSender struct {
	welcomes  []string
	resetURLs []string
	fail      bool
}

func (s *recordingSender) SendWelcome(to, _, _ string) error {
	if s.fail {
		return errors.New("smtp unavailable")
	}
	s.welcomes = append(s.welcomes, to)
	return nil
}

func (s *recordingSender) SendPasswordReset(_, _, resetURL string) error {
	if s.fail {
		return errors.New("smtp unavailable")
	}
	s.resetURLs = append(s.resetURLs, resetURL)
	return nil
}

func newTestService() (*Service, *memoryUserRepo, *recordingSender) {
	repo := newMemoryUserRepo()
	sender := &recordingSender{}
	svc := &Service{
		Repo:     repo,
		Email:    sender,
		Secret:   []byte("test-secret"),
		TokenTTL: time.Hour,
	}
	return svc, repo, sender
}

func signUp(t *testing.T, svc *Service) *models.User {
	t.Helper()
	u, _, err := svc.SignUp(context.Background(), SignUpInput{
		Name:            "Test User",
		Email:           "Test@Example.COM",
		Password:        "password123",
		PasswordConfirm: "password123",
	}, "http://localhost/me")
	require.NoError(t, err)
	return u
}

func TestSignUp(t *testing.T) {
	svc, _, sender := newTestService()
	u := signUp(t, svc)

	assert.Equal(t, "test@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.True(t, u.Active)
	assert.NotEqual(t, "password123", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")))
	assert.Equal(t, []string{"test@example.com"}, sender.welcomes)
}

func TestSignUpIssuesVerifiableToken(t *testing.T) {
	svc, _, _ := newTestService()

	u, token, err := svc.SignUp(context.Background(), SignUpInput{
		Name: "Test User", Email: "a@b.com",
		Password: "password123", PasswordConfirm: "password123",
	}, "")
	require.NoError(t, err)

	userID, _, err := utils.VerifyToken(token, svc.Secret)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
}

func TestSignIn(t *testing.T) {
	svc, _, _ := newTestService()
	u := signUp(t, svc)

	got, token, err := svc.SignIn(context.Background(), "TEST@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NotEmpty(t, token)
}

func TestSignInWrongPassword(t *testing.T) {
	svc, _, _ := newTestService()
	signUp(t, svc)

	_, _, err := svc.SignIn(context.Background(), "test@example.com", "wrong-password")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.Code)
	assert.Equal(t, "incorrect email or password", appErr.Message)
}

func TestSignInUnknownEmailSameMessage(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.SignIn(context.Background(), "nobody@example.com", "password123")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "incorrect email or password", appErr.Message)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, _, sender := newTestService()

	err := svc.ForgotPassword(context.Background(), "nobody@example.com", "http://localhost/reset")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
	assert.Empty(t, sender.resetURLs)
}

func TestForgotPasswordStoresHashedToken(t *testing.T) {
	svc, repo, sender := newTestService()
	u := signUp(t, svc)

	require.NoError(t, svc.ForgotPassword(context.Background(), u.Email, "http://localhost/reset"))
	require.Len(t, sender.resetURLs, 1)

	parts := strings.Split(sender.resetURLs[0], "/")
	plain := parts[len(parts)-1]

	stored := repo.users[u.ID]
	assert.Equal(t, utils.HashToken(plain), stored.PasswordResetToken)
	require.NotNil(t, stored.PasswordResetExpires)
	assert.True(t, stored.PasswordResetExpires.After(time.Now()))
}

func TestForgotPasswordRollsBackOnEmailFailure(t *testing.T) {
	svc, repo, sender := newTestService()
	u := signUp(t, svc)
	sender.fail = true

	err := svc.ForgotPassword(context.Background(), u.Email, "http://localhost/reset")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)

	stored := repo.users[u.ID]
	assert.Empty(t, stored.PasswordResetToken)
	assert.Nil(t, stored.PasswordResetExpires)
}

func TestResetPasswordIsSingleUse(t *testing.T) {
	svc, _, sender := newTestService()
	u := signUp(t, svc)

	require.NoError(t, svc.ForgotPassword(context.Background(), u.Email, "http://localhost/reset"))
	parts := strings.Split(sender.resetURLs[0], "/")
	plain := parts[len(parts)-1]

	got, token, err := svc.ResetPassword(context.Background(), plain, "newpassword1", "newpassword1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte("newpassword1")))

	_, _, err = svc.ResetPassword(context.Background(), plain, "newpassword2", "newpassword2")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, "token is invalid or has expired", appErr.Message)
}

func TestResetPasswordBadToken(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.ResetPassword(context.Background(), "bogus", "newpassword1", "newpassword1")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestUpdatePassword(t *testing.T) {
	svc, _, _ := newTestService()
	u := signUp(t, svc)

	got, _, err := svc.UpdatePassword(context.Background(), u.ID, "password123", "newpassword1", "newpassword1")
	require.NoError(t, err)

	// passwordChangedAt is backdated so the fresh token stays valid.
	require.NotNil(t, got.PasswordChangedAt)
	assert.False(t, got.PasswordChangedAfter(time.Now()))

	_, _, err = svc.SignIn(context.Background(), u.Email, "newpassword1")
	assert.NoError(t, err)
}

func TestUpdatePasswordWrongCurrent(t *testing.T) {
	svc, _, _ := newTestService()
	u := signUp(t, svc)

	_, _, err := svc.UpdatePassword(context.Background(), u.ID, "wrong", "newpassword1", "newpassword1")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, "your current password is wrong", appErr.Message)
}

func TestUpdatePasswordConfirmMismatch(t *testing.T) {
	svc, _, _ := newTestService()
	u := signUp(t, svc)

	_, _, err := svc.UpdatePassword(context.Background(), u.ID, "password123", "newpassword1", "different1")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestDeactivateHidesUser(t *testing.T) {
	svc, repo, _ := newTestService()
	u := signUp(t, svc)

	require.NoError(t, svc.Deactivate(context.Background(), u.ID))
	assert.False(t, repo.users[u.ID].Active)

	_, err := repo.FindByID(context.Background(), u.ID)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}
