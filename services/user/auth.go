package user

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tourify/models"
	"tourify/utils"
)

// SignUpInput is the public registration payload. The confirm field is a
// shadow field: it is validated against the password and never persisted.
type SignUpInput struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

// SignUp creates a user with role "user", hashes the password and issues
// a session token. The welcome email is best-effort.
func (s *Service) SignUp(ctx context.Context, in SignUpInput, profileURL string) (*models.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        normalizeEmail(in.Email),
		Photo:        "default.jpg",
		Role:         models.RoleUser,
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, "", err
	}

	if err := s.Email.SendWelcome(u.Email, u.Name, profileURL); err != nil {
		utils.GetLogger().Warn("welcome email failed", zap.String("email", u.Email), zap.Error(err))
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// SignIn checks the credentials and issues a session token.
func (s *Service) SignIn(ctx context.Context, emailAddr, password string) (*models.User, string, error) {
	if emailAddr == "" || password == "" {
		return nil, "", utils.NewAppError(http.StatusBadRequest, "please provide email and password")
	}

	u, err := s.Repo.FindByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		return nil, "", utils.NewAppError(http.StatusUnauthorized, "incorrect email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", utils.NewAppError(http.StatusUnauthorized, "incorrect email or password")
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// UpdatePassword rotates the password of a signed-in user after checking
// the current one, then issues a fresh session token.
func (s *Service) UpdatePassword(ctx context.Context, userID, current, newPassword, confirm string) (*models.User, string, error) {
	u, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return nil, "", utils.NewAppError(http.StatusBadRequest, "your current password is wrong")
	}
	return s.setPassword(ctx, u, newPassword, confirm)
}

// setPassword hashes and persists a new password, backdating
// passwordChangedAt by one second so a token issued in the same instant
// is not rejected by the access gate, and clears any reset token. A
// fresh session token is issued.
func (s *Service) setPassword(ctx context.Context, u *models.User, newPassword, confirm string) (*models.User, string, error) {
	if len(newPassword) < 8 {
		return nil, "", utils.NewAppError(http.StatusBadRequest, "password must be at least 8 characters")
	}
	if newPassword != confirm {
		return nil, "", utils.NewAppError(http.StatusBadRequest, "passwords do not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return nil, "", err
	}

	changedAt := time.Now().Add(-time.Second)
	set := bson.M{
		"password":          string(hash),
		"passwordChangedAt": changedAt,
		"updatedAt":         time.Now(),
	}
	unset := bson.M{"passwordResetToken": "", "passwordResetExpires": ""}
	if err := s.Repo.UpdateFields(ctx, u.ID, set, unset); err != nil {
		return nil, "", err
	}

	u.PasswordHash = string(hash)
	u.PasswordChangedAt = &changedAt
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil

	token, err := s.issueToken(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// UpdateMe applies a whitelisted profile patch (name, email, photo).
func (s *Service) UpdateMe(ctx context.Context, userID string, name, emailAddr, photo string) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	if name != "" {
		set["name"] = name
	}
	if emailAddr != "" {
		set["email"] = normalizeEmail(emailAddr)
	}
	if photo != "" {
		set["photo"] = photo
	}
	return s.Repo.UpdateProfile(ctx, userID, set)
}

// Deactivate soft-deletes the account. The record is never physically
// removed; default queries exclude it from then on.
func (s *Service) Deactivate(ctx context.Context, userID string) error {
	return s.Repo.UpdateFields(ctx, userID, bson.M{"active": false, "updatedAt": time.Now()}, nil)
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
