package user

import (
	"time"

	"tourify/database/repository"
	"tourify/services/email"
	"tourify/utils"
)

const bcryptCost = 12

// resetTokenTTL is how long a password-reset token stays valid.
const resetTokenTTL = 10 * time.Minute

// Service owns the credential-store business rules: signup/signin,
// password hashing, the reset-token lifecycle and profile updates.
type Service struct {
	Repo     repository.UserRepository
	Email    email.Sender
	Secret   []byte
	TokenTTL time.Duration
}

func (s *Service) issueToken(userID string) (string, error) {
	return utils.GenerateToken(userID, s.Secret, s.TokenTTL)
}
