package utils

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AppError is an operational error: an anticipated failure condition that
// carries an HTTP status and a message safe to show to the client.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// statusWord follows the response envelope convention: client failures
// are "fail", server errors are "error".
func statusWord(code int) string {
	if code >= 400 && code < 500 {
		return "fail"
	}
	return "error"
}

// Translate normalizes store-specific and token-specific error shapes
// into the operational taxonomy. Unrecognized errors come back as a 500
// with Err preserved so the renderer can decide how much to reveal.
func Translate(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return &AppError{Code: http.StatusNotFound, Message: "resource not found", Err: err}
	}
	if mongo.IsDuplicateKeyError(err) {
		return &AppError{Code: http.StatusConflict, Message: "duplicate field value, please use another value", Err: err}
	}

	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		msgs := make([]string, 0, len(vErrs))
		for _, fe := range vErrs {
			msgs = append(msgs, "invalid value for "+fe.Field())
		}
		return &AppError{Code: http.StatusBadRequest, Message: strings.Join(msgs, ". "), Err: err}
	}

	var jwtErr *jwt.ValidationError
	if errors.As(err, &jwtErr) || errors.Is(err, ErrInvalidToken) {
		return &AppError{Code: http.StatusUnauthorized, Message: "invalid or expired token, please log in again", Err: err}
	}

	return &AppError{Code: http.StatusInternalServerError, Message: "something went wrong", Err: err}
}

// AbortWithError renders an error response. API routes (path prefix
// /api) receive JSON; everything else receives the rendered error page.
// In production, only the operational message is exposed.
func AbortWithError(c *gin.Context, err error) {
	if strings.HasPrefix(c.Request.URL.Path, "/api") {
		AbortWithJSON(c, err)
		return
	}

	appErr := Translate(err)
	logAppError(c, appErr, err)

	msg := appErr.Message
	if IsProduction() && appErr.Code >= 500 {
		msg = "Something went wrong, please try again later."
	}
	c.HTML(appErr.Code, "error.html", gin.H{"title": "Something went wrong!", "msg": msg})
	c.Abort()
}

// AbortWithJSON renders the error as JSON regardless of the request
// path. Machine callers outside the /api prefix (the payment webhook)
// use this directly.
func AbortWithJSON(c *gin.Context, err error) {
	appErr := Translate(err)
	logAppError(c, appErr, err)

	body := gin.H{"status": statusWord(appErr.Code), "message": appErr.Message}
	if !IsProduction() && appErr.Err != nil {
		body["error"] = appErr.Err.Error()
	}
	c.AbortWithStatusJSON(appErr.Code, body)
}

func logAppError(c *gin.Context, appErr *AppError, err error) {
	logger := GetLogger()
	if appErr.Code >= 500 {
		logger.Error("request failed",
			zap.String("path", c.Request.URL.Path), zap.Error(err))
	} else {
		logger.Warn(appErr.Message,
			zap.String("path", c.Request.URL.Path), zap.Int("status", appErr.Code))
	}
}
