package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"tourify/database/repository"
	"tourify/models"
	tour "tourify/services/tour"
	"tourify/utils"
)

// TourHandler serves the tour endpoints that fall outside the generic
// CRUD surface: populated reads, aggregations and geo queries.
type TourHandler struct {
	Repo repository.TourRepository
	Svc  *tour.Service
}

func NewTourHandler(repo repository.TourRepository, svc *tour.Service) *TourHandler {
	return &TourHandler{Repo: repo, Svc: svc}
}

// NewTourCRUD builds the tour CRUD endpoints. Creation derives the slug
// and id server-side; any mutation invalidates the overview cache.
func NewTourCRUD(repo *repository.MongoTourRepo, svc *tour.Service) *CRUD[models.Tour] {
	return NewCRUD(repo.Repo, Hooks[models.Tour]{
		PreCreate: func(c *gin.Context, doc *models.Tour) error {
			if doc.DiscountPrice != 0 && doc.DiscountPrice >= doc.Price {
				return utils.NewAppError(http.StatusBadRequest, "discount price should be below the regular price")
			}
			now := time.Now()
			doc.ID = uuid.NewString()
			doc.Slug = tour.Slugify(doc.Name)
			if doc.RatingsAverage == 0 {
				doc.RatingsAverage = 4.5
			}
			doc.RatingsQuantity = 0
			doc.CreatedAt = now
			doc.UpdatedAt = now
			return nil
		},
		PostCreate: func(c *gin.Context, doc *models.Tour) {
			svc.InvalidateOverviewCache(c.Request.Context())
		},
		PreUpdate: tourPreUpdate,
		PostUpdate: func(c *gin.Context, doc *models.Tour) {
			svc.InvalidateOverviewCache(c.Request.Context())
		},
		PostDelete: func(c *gin.Context, id string) {
			svc.InvalidateOverviewCache(c.Request.Context())
		},
	})
}

// tourPreUpdate re-derives the slug when the name changes and stamps the
// modification time. Tours carry an updatedAt field; the generic update
// path does not stamp it because not every model declares one.
func tourPreUpdate(c *gin.Context, id string, patch bson.M) error {
	if name, ok := patch["name"].(string); ok {
		patch["slug"] = tour.Slugify(name)
	}
	if price, hasPrice := patch["price"].(float64); hasPrice {
		if discount, hasDiscount := patch["discountPrice"].(float64); hasDiscount && discount >= price {
			return utils.NewAppError(http.StatusBadRequest, "discount price should be below the regular price")
		}
	}
	patch["updatedAt"] = time.Now()
	return nil
}

// TopTours presets the query to the five best cheap tours, then falls
// through to the normal list pipeline.
func TopTours(crud *CRUD[models.Tour]) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Request.URL.Query()
		q.Set("limit", "5")
		q.Set("sort", "-ratingsAverage,price")
		q.Set("fields", "name,price,ratingsAverage,summary,difficulty")
		c.Request.URL.RawQuery = q.Encode()
		crud.List(c)
	}
}

// Get resolves a tour by id with its guides populated.
func (h *TourHandler) Get(c *gin.Context) {
	t, err := h.Repo.FindByIDWithGuides(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": t})
}

func (h *TourHandler) Stats(c *gin.Context) {
	stats, err := h.Repo.Stats(c.Request.Context())
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": stats})
}

func (h *TourHandler) MonthlyPlan(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		utils.AbortWithError(c, utils.NewAppError(http.StatusBadRequest, "please provide a valid year"))
		return
	}

	plan, err := h.Repo.MonthlyPlan(c.Request.Context(), year)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": len(plan), "data": plan})
}

// ToursWithin handles /tours-within/:distance/center/:latlng/unit/:unit.
func (h *TourHandler) ToursWithin(c *gin.Context) {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil || distance <= 0 {
		utils.AbortWithError(c, utils.NewAppError(http.StatusBadRequest, "please provide a positive distance"))
		return
	}

	tours, err := h.Svc.Within(c.Request.Context(), distance, c.Param("latlng"), c.Param("unit"))
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": len(tours), "data": tours})
}

// Distances handles /distances/:latlng/unit/:unit.
func (h *TourHandler) Distances(c *gin.Context) {
	distances, err := h.Svc.Distances(c.Request.Context(), c.Param("latlng"), c.Param("unit"))
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": distances})
}
