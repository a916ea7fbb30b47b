package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tourify/config"
	"tourify/middleware"
	user "tourify/services/user"
	"tourify/utils"
)

// AuthHandler exposes the authentication endpoints. Session tokens are
// returned both in the JSON body and as an http-only cookie so the API
// and the rendered pages share one session mechanism.
type AuthHandler struct {
	Svc *user.Service
	Cfg *config.Config
}

func NewAuthHandler(svc *user.Service, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Svc: svc, Cfg: cfg}
}

// sendToken writes the session cookie and the token envelope.
func (h *AuthHandler) sendToken(c *gin.Context, status int, token string, data gin.H) {
	maxAge := h.Cfg.CookieExpiresDays * 24 * 3600
	c.SetCookie(middleware.SessionCookieName, token, maxAge, "/", "", requestIsSecure(c), true)
	body := gin.H{"status": "success", "token": token}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(status, body)
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var in user.SignUpInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	u, token, err := h.Svc.SignUp(c.Request.Context(), in, requestBaseURL(c)+"/me")
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	h.sendToken(c, http.StatusCreated, token, gin.H{"data": gin.H{"user": u}})
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.AbortWithError(c, utils.NewAppError(http.StatusBadRequest, "please provide email and password"))
		return
	}

	u, token, err := h.Svc.SignIn(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, token, gin.H{"data": gin.H{"user": u}})
}

// LogOut overwrites the session cookie with a short-lived sentinel. The
// issued token itself stays valid until it expires.
func (h *AuthHandler) LogOut(c *gin.Context) {
	c.SetCookie(middleware.SessionCookieName, "loggedout", 10, "/", "", requestIsSecure(c), true)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var in struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	resetURLBase := requestBaseURL(c) + "/api/v1/users/resetPassword"
	if err := h.Svc.ForgotPassword(c.Request.Context(), in.Email, resetURLBase); err != nil {
		utils.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "token sent to email"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var in struct {
		Password        string `json:"password" binding:"required"`
		PasswordConfirm string `json:"passwordConfirm" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	u, token, err := h.Svc.ResetPassword(c.Request.Context(), c.Param("token"), in.Password, in.PasswordConfirm)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, token, gin.H{"data": gin.H{"user": u}})
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	cur, ok := middleware.CurrentUser(c)
	if !ok {
		utils.AbortWithError(c, utils.NewAppError(http.StatusUnauthorized, "you are not logged in, please log in to get access"))
		return
	}

	var in struct {
		PasswordCurrent string `json:"passwordCurrent" binding:"required"`
		Password        string `json:"password" binding:"required"`
		PasswordConfirm string `json:"passwordConfirm" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	u, token, err := h.Svc.UpdatePassword(c.Request.Context(), cur.ID, in.PasswordCurrent, in.Password, in.PasswordConfirm)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, token, gin.H{"data": gin.H{"user": u}})
}

// requestBaseURL reconstructs the externally visible origin of the
// request, honoring the proxy protocol header.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if requestIsSecure(c) {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}

func requestIsSecure(c *gin.Context) bool {
	return c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
}
