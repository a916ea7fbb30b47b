package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"tourify/database/repository"
	"tourify/middleware"
	"tourify/models"
	review "tourify/services/review"
	"tourify/utils"
)

// reviewTourKey carries the owning tour id from a pre hook to the
// post-delete hook, where the review document is already gone.
const reviewTourKey = "reviewTour"

// ReviewHandler serves the review reads that need author population.
type ReviewHandler struct {
	Repo repository.ReviewRepository
}

func NewReviewHandler(repo repository.ReviewRepository) *ReviewHandler {
	return &ReviewHandler{Repo: repo}
}

// ListForTour lists the reviews of one tour with author name and photo
// resolved.
func (h *ReviewHandler) ListForTour(c *gin.Context) {
	reviews, err := h.Repo.FindForTourWithAuthors(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": len(reviews), "data": reviews})
}

// NewReviewCRUD builds the review endpoints. Creation defaults the tour
// from the nested route and the author from the session; every write
// recomputes the owning tour's rating aggregate. Mutations are gated on
// ownership: only the author or an admin may touch a review.
func NewReviewCRUD(repo *repository.MongoReviewRepo, svc *review.Service) *CRUD[models.Review] {
	guard := func(c *gin.Context, id string) error {
		r, err := repo.FindByID(c.Request.Context(), id)
		if err != nil {
			return err
		}

		u, ok := middleware.CurrentUser(c)
		if !ok || !review.CanModifyReview(u.ID, r.User, u.Role) {
			return utils.NewAppError(http.StatusForbidden, "you do not have permission to perform this action")
		}
		c.Set(reviewTourKey, r.Tour)
		return nil
	}

	recalc := func(c *gin.Context, tourID string) {
		logHookFailure("recalc tour ratings", svc.RecalcTourRatings(c.Request.Context(), tourID))
	}

	return NewCRUD(repo.Repo, Hooks[models.Review]{
		PreCreate: func(c *gin.Context, doc *models.Review) error {
			doc.ID = uuid.NewString()
			doc.CreatedAt = time.Now()
			if doc.Tour == "" {
				doc.Tour = c.Param("id")
			}
			if u, ok := middleware.CurrentUser(c); ok {
				doc.User = u.ID
			}
			if doc.Tour == "" || doc.User == "" {
				return utils.NewAppError(http.StatusBadRequest, "review must belong to a tour and a user")
			}
			return nil
		},
		PostCreate: func(c *gin.Context, doc *models.Review) {
			recalc(c, doc.Tour)
		},
		PreList: func(c *gin.Context, q *repository.ListOptions) error {
			if tourID := c.Param("id"); tourID != "" {
				q.Filter["tour"] = tourID
			}
			return nil
		},
		PreUpdate: func(c *gin.Context, id string, patch bson.M) error {
			for _, k := range []string{"tour", "user"} {
				delete(patch, k)
			}
			if len(patch) == 0 {
				return utils.NewAppError(http.StatusBadRequest, "nothing to update")
			}
			return guard(c, id)
		},
		PostUpdate: func(c *gin.Context, doc *models.Review) {
			recalc(c, doc.Tour)
		},
		PreDelete: guard,
		PostDelete: func(c *gin.Context, id string) {
			if tourID := c.GetString(reviewTourKey); tourID != "" {
				recalc(c, tourID)
			}
		},
	})
}
