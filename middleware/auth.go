package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tourify/database/repository"
	"tourify/models"
	"tourify/utils"
)

// SessionCookieName is the HTTP-only cookie carrying the session token.
const SessionCookieName = "jwt"

const userContextKey = "currentUser"

// Protect is the access gate: it resolves the bearer token from the
// Authorization header or the session cookie, verifies it, loads the
// user, and rejects tokens issued before the last password change.
func Protect(users repository.UserRepository, jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveUser(c, users, jwtSecret)
		if err != nil {
			utils.AbortWithError(c, err)
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// LoginState is the non-blocking gate variant used by page rendering: on
// any failure the request silently proceeds as anonymous.
func LoginState(users repository.UserRepository, jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := resolveUser(c, users, jwtSecret); err == nil {
			c.Set(userContextKey, user)
		}
		c.Next()
	}
}

// CurrentUser returns the identity attached by Protect or LoginState.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func resolveUser(c *gin.Context, users repository.UserRepository, secret []byte) (*models.User, error) {
	var token string
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimPrefix(h, "Bearer ")
	} else if cookie, err := c.Cookie(SessionCookieName); err == nil {
		token = cookie
	}
	if token == "" {
		return nil, utils.NewAppError(http.StatusUnauthorized, "you are not logged in, please log in to get access")
	}

	userID, issuedAt, err := utils.VerifyToken(token, secret)
	if err != nil {
		return nil, utils.NewAppError(http.StatusUnauthorized, "invalid or expired token, please log in again")
	}

	user, err := users.FindByID(c.Request.Context(), userID)
	if err != nil {
		return nil, utils.NewAppError(http.StatusUnauthorized, "the user belonging to this token no longer exists")
	}

	if user.PasswordChangedAfter(issuedAt) {
		return nil, utils.NewAppError(http.StatusUnauthorized, "password was changed recently, please log in again")
	}
	return user, nil
}
