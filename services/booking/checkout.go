package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"tourify/database/repository"
	"tourify/models"
	"tourify/utils"
)

// Service drives the payment checkout flow. The signed Stripe webhook is
// the authoritative path that mints bookings; the redirect-based mint is
// only honored outside production (see AllowRedirectMint).
type Service struct {
	Tours    repository.TourRepository
	Users    repository.UserRepository
	Bookings repository.BookingRepository

	WebhookSecret string
	// AllowRedirectMint enables the legacy query-parameter booking mint
	// used for local development without a webhook tunnel.
	AllowRedirectMint bool

	Logger *zap.Logger
}

// CreateCheckoutSession requests a hosted checkout session for one seat
// on the tour and returns the session descriptor.
func (s *Service) CreateCheckoutSession(ctx context.Context, tourID string, user *models.User, baseURL string) (*stripe.CheckoutSession, error) {
	tour, err := s.Tours.FindByID(ctx, tourID)
	if err != nil {
		return nil, err
	}

	successURL := fmt.Sprintf("%s/my-tours?tour=%s&user=%s&price=%g", baseURL, tour.ID, user.ID, tour.Price)
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(fmt.Sprintf("%s/tour/%s", baseURL, tour.Slug)),
		CustomerEmail:     stripe.String(user.Email),
		ClientReferenceID: stripe.String(tour.ID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(int64(tour.Price * 100)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(tour.Name + " Tour"),
						Description: stripe.String(tour.Summary),
						Images:      stripe.StringSlice([]string{fmt.Sprintf("%s/img/tours/%s", baseURL, tour.ImageCover)}),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}

	sess, err := session.New(params)
	if err != nil {
		s.Logger.Error("failed to create checkout session",
			zap.String("tour", tour.ID), zap.String("user", user.ID), zap.Error(err))
		return nil, err
	}
	return sess, nil
}

// HandleWebhook verifies the signed payment-completion event and mints
// the booking on checkout.session.completed.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.WebhookSecret)
	if err != nil {
		return utils.NewAppError(http.StatusBadRequest, "webhook signature verification failed")
	}

	if event.Type != "checkout.session.completed" {
		return nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return utils.NewAppError(http.StatusBadRequest, "malformed webhook payload")
	}
	return s.createBookingFromSession(ctx, &sess)
}

func (s *Service) createBookingFromSession(ctx context.Context, sess *stripe.CheckoutSession) error {
	email := sess.CustomerEmail
	if email == "" && sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}
	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	b := &models.Booking{
		ID:        uuid.NewString(),
		Tour:      sess.ClientReferenceID,
		User:      user.ID,
		Price:     float64(sess.AmountTotal) / 100,
		Paid:      true,
		CreatedAt: time.Now(),
	}
	if err := s.Bookings.Create(ctx, b); err != nil {
		return err
	}
	s.Logger.Info("booking created from checkout",
		zap.String("booking", b.ID), zap.String("tour", b.Tour), zap.String("user", b.User))
	return nil
}

// MintFromRedirect synthesizes a booking from the success-redirect query
// parameters. The parameters are client-supplied and unverified, so this
// path is rejected in production.
func (s *Service) MintFromRedirect(ctx context.Context, tourID, userID string, price float64) error {
	if !s.AllowRedirectMint {
		return utils.NewAppError(http.StatusForbidden, "checkout confirmation is handled by the payment provider")
	}

	b := &models.Booking{
		ID:        uuid.NewString(),
		Tour:      tourID,
		User:      userID,
		Price:     price,
		Paid:      true,
		CreatedAt: time.Now(),
	}
	return s.Bookings.Create(ctx, b)
}

// ToursForUser resolves the tours a user has booked, for the my-tours
// page. Orphaned bookings (deleted tours) are skipped.
func (s *Service) ToursForUser(ctx context.Context, userID string) ([]models.Tour, error) {
	bookings, err := s.Bookings.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	tours := make([]models.Tour, 0, len(bookings))
	for _, b := range bookings {
		tour, err := s.Tours.FindByID(ctx, b.Tour)
		if err != nil {
			continue
		}
		tours = append(tours, *tour)
	}
	return tours, nil
}
