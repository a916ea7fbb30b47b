package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"tourify/database/repository"
	"tourify/middleware"
	"tourify/models"
	user "tourify/services/user"
	"tourify/utils"
)

// UserHandler serves the self-service account endpoints.
type UserHandler struct {
	Svc *user.Service
}

func NewUserHandler(svc *user.Service) *UserHandler {
	return &UserHandler{Svc: svc}
}

func (h *UserHandler) Me(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		utils.AbortWithError(c, utils.NewAppError(http.StatusUnauthorized, "you are not logged in, please log in to get access"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"user": u}})
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		utils.AbortWithError(c, utils.NewAppError(http.StatusUnauthorized, "you are not logged in, please log in to get access"))
		return
	}

	var in struct {
		Name            string `json:"name"`
		Email           string `json:"email" binding:"omitempty,email"`
		Photo           string `json:"photo"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"passwordConfirm"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.AbortWithError(c, err)
		return
	}
	if in.Password != "" || in.PasswordConfirm != "" {
		utils.AbortWithError(c, utils.NewAppError(http.StatusBadRequest,
			"this route is not for password updates, please use /updatePassword"))
		return
	}

	updated, err := h.Svc.UpdateMe(c.Request.Context(), u.ID, in.Name, in.Email, in.Photo)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"user": updated}})
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		utils.AbortWithError(c, utils.NewAppError(http.StatusUnauthorized, "you are not logged in, please log in to get access"))
		return
	}
	if err := h.Svc.Deactivate(c.Request.Context(), u.ID); err != nil {
		utils.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// adminUserPreUpdate strips the password lifecycle fields from admin
// patches so the hashing path cannot be bypassed, and stamps the
// modification time.
func adminUserPreUpdate(c *gin.Context, id string, patch bson.M) error {
	for _, k := range []string{"password", "passwordConfirm", "passwordChangedAt", "passwordResetToken", "passwordResetExpires"} {
		delete(patch, k)
	}
	if len(patch) == 0 {
		return utils.NewAppError(http.StatusBadRequest, "nothing to update")
	}
	patch["updatedAt"] = time.Now()
	return nil
}

// NewUserCRUD builds the admin-only user endpoints. Creation is refused
// so the password hashing path in signUp cannot be bypassed, and password
// fields are stripped from admin patches for the same reason.
func NewUserCRUD(repo *repository.MongoUserRepo) *CRUD[models.User] {
	return NewCRUD(repo.Repo, Hooks[models.User]{
		PreCreate: func(c *gin.Context, doc *models.User) error {
			return utils.NewAppError(http.StatusInternalServerError,
				"this route is not defined, please use /signUp instead")
		},
		PreUpdate: adminUserPreUpdate,
	})
}
