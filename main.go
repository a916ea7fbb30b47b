package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"

	"tourify/config"
	"tourify/database"
	"tourify/database/repository"
	"tourify/handlers"
	"tourify/routes"
	booking "tourify/services/booking"
	"tourify/services/email"
	review "tourify/services/review"
	tour "tourify/services/tour"
	user "tourify/services/user"
	"tourify/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	utils.SetEnv(cfg.Env)
	utils.InitializeLogger()
	logger := utils.GetLogger()
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	client, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logger.Warn("mongodb disconnect failed", zap.Error(err))
		}
	}()
	db := client.Database(cfg.DatabaseName)

	utils.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisCacheDB)
	stripe.Key = cfg.StripeKey

	userRepo := repository.NewMongoUserRepo(db)
	tourRepo := repository.NewMongoTourRepo(db)
	reviewRepo := repository.NewMongoReviewRepo(db)
	bookingRepo := repository.NewMongoBookingRepo(db)

	mailer := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom, logger)

	userSvc := &user.Service{
		Repo:     userRepo,
		Email:    mailer,
		Secret:   []byte(cfg.JWTSecret),
		TokenTTL: cfg.TokenTTL(),
	}
	tourSvc := &tour.Service{Repo: tourRepo}
	reviewSvc := &review.Service{Reviews: reviewRepo, Tours: tourRepo}
	bookingSvc := &booking.Service{
		Tours:             tourRepo,
		Users:             userRepo,
		Bookings:          bookingRepo,
		WebhookSecret:     cfg.StripeWebhookSecret,
		AllowRedirectMint: !cfg.IsProduction(),
		Logger:            logger,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if !cfg.IsProduction() {
		r.Use(gin.Logger())
	}
	r.LoadHTMLGlob("templates/*.html")

	routes.Register(r, routes.Deps{
		Cfg:   cfg,
		Users: userRepo,

		Auth:     handlers.NewAuthHandler(userSvc, cfg),
		User:     handlers.NewUserHandler(userSvc),
		UserCRUD: handlers.NewUserCRUD(userRepo),

		Tour:     handlers.NewTourHandler(tourRepo, tourSvc),
		TourCRUD: handlers.NewTourCRUD(tourRepo, tourSvc),

		Review:     handlers.NewReviewHandler(reviewRepo),
		ReviewCRUD: handlers.NewReviewCRUD(reviewRepo, reviewSvc),

		Booking:     handlers.NewBookingHandler(bookingSvc),
		BookingCRUD: handlers.NewBookingCRUD(bookingRepo),

		Views: handlers.NewViewHandler(tourSvc, tourRepo, reviewRepo, bookingSvc),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.AppPort), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
