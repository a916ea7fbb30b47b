package user

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"tourify/models"
	"tourify/utils"
)

// ForgotPassword generates a single-use reset token, stores only its
// hash with a 10-minute expiry, and emails the plaintext token. If the
// email cannot be sent the stored token is rolled back.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr, resetURLBase string) error {
	u, err := s.Repo.FindByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.NewAppError(http.StatusNotFound, "there is no user with that email address")
		}
		return err
	}

	plain, hash, err := utils.NewResetToken()
	if err != nil {
		return err
	}

	expires := time.Now().Add(resetTokenTTL)
	set := bson.M{
		"passwordResetToken":   hash,
		"passwordResetExpires": expires,
	}
	if err := s.Repo.UpdateFields(ctx, u.ID, set, nil); err != nil {
		return err
	}

	resetURL := resetURLBase + "/" + plain
	if err := s.Email.SendPasswordReset(u.Email, u.Name, resetURL); err != nil {
		// Best-effort rollback so the orphaned token cannot be consumed.
		unset := bson.M{"passwordResetToken": "", "passwordResetExpires": ""}
		if rbErr := s.Repo.UpdateFields(ctx, u.ID, nil, unset); rbErr != nil {
			utils.GetLogger().Error("failed to roll back reset token", zap.String("user", u.ID), zap.Error(rbErr))
		}
		return utils.NewAppError(http.StatusInternalServerError, "there was an error sending the email, please try again later")
	}
	return nil
}

// ResetPassword consumes a plaintext reset token: it must hash to a
// stored token that has not expired. On success the password is
// replaced, the token cleared, and a fresh session token issued.
func (s *Service) ResetPassword(ctx context.Context, plainToken, newPassword, confirm string) (*models.User, string, error) {
	hash := utils.HashToken(plainToken)

	u, err := s.Repo.FindByResetTokenHash(ctx, hash, time.Now())
	if err != nil {
		return nil, "", utils.NewAppError(http.StatusBadRequest, "token is invalid or has expired")
	}
	return s.setPassword(ctx, u, newPassword, confirm)
}
