package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tourify/database/repository"
	"tourify/middleware"
	"tourify/models"
	booking "tourify/services/booking"
	"tourify/utils"
)

// BookingHandler serves the checkout flow.
type BookingHandler struct {
	Svc *booking.Service
}

func NewBookingHandler(svc *booking.Service) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

// GetCheckoutSession creates a hosted checkout session for the tour in
// the path and returns it to the client for redirection.
func (h *BookingHandler) GetCheckoutSession(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		utils.AbortWithError(c, utils.NewAppError(http.StatusUnauthorized, "you are not logged in, please log in to get access"))
		return
	}

	sess, err := h.Svc.CreateCheckoutSession(c.Request.Context(), c.Param("tourId"), u, requestBaseURL(c))
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "session": sess})
}

// WebhookCheckout receives the signed payment events. The raw body is
// needed for signature verification, so no JSON binding happens here.
func (h *BookingHandler) WebhookCheckout(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		utils.AbortWithJSON(c, utils.NewAppError(http.StatusBadRequest, "could not read webhook payload"))
		return
	}

	if err := h.Svc.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		utils.AbortWithJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// NewBookingCRUD builds the admin booking endpoints.
func NewBookingCRUD(repo *repository.MongoBookingRepo) *CRUD[models.Booking] {
	return NewCRUD(repo.Repo, Hooks[models.Booking]{
		PreCreate: func(c *gin.Context, doc *models.Booking) error {
			doc.ID = uuid.NewString()
			doc.CreatedAt = time.Now()
			return nil
		},
	})
}
