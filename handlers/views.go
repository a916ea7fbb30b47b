package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tourify/database/repository"
	"tourify/middleware"
	"tourify/models"
	booking "tourify/services/booking"
	tour "tourify/services/tour"
	"tourify/utils"
)

// ViewHandler renders the server-side pages. Every page receives the
// logged-in user (or nil) resolved by the non-blocking session check.
type ViewHandler struct {
	Tours    *tour.Service
	TourRepo repository.TourRepository
	Reviews  repository.ReviewRepository
	Bookings *booking.Service
}

func NewViewHandler(tours *tour.Service, tourRepo repository.TourRepository, reviews repository.ReviewRepository, bookings *booking.Service) *ViewHandler {
	return &ViewHandler{Tours: tours, TourRepo: tourRepo, Reviews: reviews, Bookings: bookings}
}

func pageUser(c *gin.Context) *models.User {
	if u, ok := middleware.CurrentUser(c); ok {
		return u
	}
	return nil
}

// Overview is the landing page listing all tours.
func (h *ViewHandler) Overview(c *gin.Context) {
	tours, err := h.Tours.Overview(c.Request.Context())
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	c.HTML(http.StatusOK, "overview.html", gin.H{
		"title": "All Tours",
		"user":  pageUser(c),
		"tours": tours,
	})
}

// Tour renders one tour detail page by slug, with guides and reviews.
func (h *ViewHandler) Tour(c *gin.Context) {
	t, err := h.TourRepo.FindBySlugWithGuides(c.Request.Context(), c.Param("slug"))
	if err != nil {
		utils.AbortWithError(c, utils.NewAppError(http.StatusNotFound, "there is no tour with that name"))
		return
	}

	reviews, err := h.Reviews.FindForTourWithAuthors(c.Request.Context(), t.ID)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	c.HTML(http.StatusOK, "tour.html", gin.H{
		"title":   t.Name + " Tour",
		"user":    pageUser(c),
		"tour":    t,
		"reviews": reviews,
	})
}

func (h *ViewHandler) Login(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"title": "Log into your account",
		"user":  pageUser(c),
	})
}

func (h *ViewHandler) Account(c *gin.Context) {
	u := pageUser(c)
	if u == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.HTML(http.StatusOK, "account.html", gin.H{
		"title": "Your account",
		"user":  u,
	})
}

// MyTours lists the tours the user has booked. Outside production the
// checkout success redirect lands here carrying mint parameters, which
// are consumed and stripped before rendering.
func (h *ViewHandler) MyTours(c *gin.Context) {
	u := pageUser(c)
	if u == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	if h.Bookings.AllowRedirectMint && c.Query("tour") != "" {
		price, _ := strconv.ParseFloat(c.Query("price"), 64)
		if err := h.Bookings.MintFromRedirect(c.Request.Context(), c.Query("tour"), c.Query("user"), price); err != nil {
			utils.AbortWithError(c, err)
			return
		}
		c.Redirect(http.StatusFound, "/my-tours")
		return
	}

	tours, err := h.Bookings.ToursForUser(c.Request.Context(), u.ID)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	c.HTML(http.StatusOK, "my_tours.html", gin.H{
		"title": "My Tours",
		"user":  u,
		"tours": tours,
	})
}
