package routes

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tourify/config"
	"tourify/database/repository"
	"tourify/handlers"
	"tourify/middleware"
	"tourify/models"
	"tourify/utils"
)

// Deps bundles everything the route table needs. It is assembled once in
// main and threaded through here so the registry stays declarative.
type Deps struct {
	Cfg   *config.Config
	Users repository.UserRepository

	Auth     *handlers.AuthHandler
	User     *handlers.UserHandler
	UserCRUD *handlers.CRUD[models.User]

	Tour     *handlers.TourHandler
	TourCRUD *handlers.CRUD[models.Tour]

	Review     *handlers.ReviewHandler
	ReviewCRUD *handlers.CRUD[models.Review]

	Booking     *handlers.BookingHandler
	BookingCRUD *handlers.CRUD[models.Booking]

	Views *handlers.ViewHandler
}

// Register wires every route onto the engine.
func Register(r *gin.Engine, d Deps) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	secret := []byte(d.Cfg.JWTSecret)
	protect := middleware.Protect(d.Users, secret)
	loginState := middleware.LoginState(d.Users, secret)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})

	// Stripe posts here with a signed body, so the webhook sits outside
	// the rate-limited API group.
	r.POST("/webhook-checkout", d.Booking.WebhookCheckout)

	api := r.Group("/api/v1", middleware.RateLimit(d.Cfg.RateLimitPerHour))

	tours := api.Group("/tours")
	{
		tours.GET("/top-5-cheap", handlers.TopTours(d.TourCRUD))
		tours.GET("/tour-stats", d.Tour.Stats)
		tours.GET("/monthly-plan/:year", protect,
			middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide, models.RoleGuide), d.Tour.MonthlyPlan)
		tours.GET("/tours-within/:distance/center/:latlng/unit/:unit", d.Tour.ToursWithin)
		tours.GET("/distances/:latlng/unit/:unit", d.Tour.Distances)

		tours.GET("", d.TourCRUD.List)
		tours.GET("/:id", d.Tour.Get)
		tours.POST("", protect, middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide), d.TourCRUD.Create)
		tours.PATCH("/:id", protect, middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide), d.TourCRUD.Update)
		tours.DELETE("/:id", protect, middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide), d.TourCRUD.Delete)

		// Nested reviews reuse the ":id" segment as the tour id.
		tours.GET("/:id/reviews", d.Review.ListForTour)
		tours.POST("/:id/reviews", protect, middleware.RestrictTo(models.RoleUser), d.ReviewCRUD.Create)
	}

	users := api.Group("/users")
	{
		users.POST("/signUp", d.Auth.SignUp)
		users.POST("/signIn", d.Auth.SignIn)
		users.GET("/logOut", d.Auth.LogOut)
		users.POST("/forgotPassword", d.Auth.ForgotPassword)
		users.PATCH("/resetPassword/:token", d.Auth.ResetPassword)

		authed := users.Group("", protect)
		authed.PATCH("/updatePassword", d.Auth.UpdatePassword)
		authed.GET("/me", d.User.Me)
		authed.PATCH("/updateMe", d.User.UpdateMe)
		authed.DELETE("/deleteMe", d.User.DeleteMe)

		admin := users.Group("", protect, middleware.RestrictTo(models.RoleAdmin))
		admin.GET("", d.UserCRUD.List)
		admin.GET("/:id", d.UserCRUD.Get)
		admin.POST("", d.UserCRUD.Create)
		admin.PATCH("/:id", d.UserCRUD.Update)
		admin.DELETE("/:id", d.UserCRUD.Delete)
	}

	reviews := api.Group("/reviews", protect)
	{
		reviews.GET("", d.ReviewCRUD.List)
		reviews.GET("/:id", d.ReviewCRUD.Get)
		reviews.POST("", middleware.RestrictTo(models.RoleUser), d.ReviewCRUD.Create)
		reviews.PATCH("/:id", middleware.RestrictTo(models.RoleUser, models.RoleAdmin), d.ReviewCRUD.Update)
		reviews.DELETE("/:id", middleware.RestrictTo(models.RoleUser, models.RoleAdmin), d.ReviewCRUD.Delete)
	}

	bookings := api.Group("/bookings")
	{
		bookings.GET("/checkout-session/:tourId", protect, d.Booking.GetCheckoutSession)

		admin := bookings.Group("", protect, middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide))
		admin.GET("", d.BookingCRUD.List)
		admin.GET("/:id", d.BookingCRUD.Get)
		admin.POST("", d.BookingCRUD.Create)
		admin.PATCH("/:id", d.BookingCRUD.Update)
		admin.DELETE("/:id", d.BookingCRUD.Delete)
	}

	pages := r.Group("", loginState)
	{
		pages.GET("/", d.Views.Overview)
		pages.GET("/tour/:slug", d.Views.Tour)
		pages.GET("/login", d.Views.Login)
		pages.GET("/me", d.Views.Account)
		pages.GET("/my-tours", d.Views.MyTours)
	}

	r.NoRoute(func(c *gin.Context) {
		utils.AbortWithError(c, utils.NewAppError(http.StatusNotFound,
			fmt.Sprintf("can't find %s on this server", c.Request.URL.Path)))
	})
}
