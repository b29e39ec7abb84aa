package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roaddarts/config"
	"roaddarts/cron"
	"roaddarts/database"
	listingRepo "roaddarts/database/repository/listing"
	reviewRepo "roaddarts/database/repository/review"
	userRepo "roaddarts/database/repository/user"
	"roaddarts/handlers"
	"roaddarts/middleware"
	"roaddarts/routes"
	"roaddarts/services/analytics"
	"roaddarts/services/geocode"
	"roaddarts/services/listing"
	"roaddarts/services/review"
	"roaddarts/services/search"
	"roaddarts/services/socialauth"
	"roaddarts/services/storage"
	"roaddarts/services/subscription"
	"roaddarts/services/tasks"
	"roaddarts/services/user"
	"roaddarts/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	database.InitDB()
	cache := utils.GetCacheClient()
	authCache := utils.GetAuthCacheClient()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Background mail delivery.
	queueOpts := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
	queueClient := asynq.NewClient(queueOpts)
	defer queueClient.Close()
	mailQueue := tasks.NewMailQueue(queueClient)

	mailWorker := cron.NewMailWorker(queueOpts, tasks.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom))
	if err := mailWorker.Start(); err != nil {
		logger.Fatal("main: failed to start mail worker", zap.Error(err))
	}

	mediaStorage, err := storage.NewCloudinaryStorage(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		logger.Fatal("main: failed to initialize cloudinary storage", zap.Error(err))
	}

	// repositories.
	listings := listingRepo.NewMongoListingRepo()
	reviews := reviewRepo.NewMongoReviewRepo()
	users := userRepo.NewMongoUserRepo()

	// services.
	geocoder := geocode.NewCachedGeocoder(geocode.NewGoogleGeocoder(cfg.GoogleAPIKey), cache, cfg.GeocodeCacheTTL)
	searchService := search.NewSearchService(listings, geocoder, cfg.GeocodeTimeout)

	billing := subscription.NewStripeSubscriptionService(subscription.Options{
		SecretKey:          cfg.StripeSecretKey,
		FrontendURL:        cfg.FrontendURL,
		SpecialEmails:      cfg.SpecialEmails(),
		SpecialMaxListings: cfg.SpecialMaxListings,
	})

	listingService := &listing.DefaultListingService{
		Repo:        listings,
		Reviews:     reviews,
		Users:       users,
		Allowance:   billing,
		Storage:     mediaStorage,
		Mail:        mailQueue,
		MediaFolder: "businesses",
	}

	reviewService := &review.DefaultReviewService{
		Repo:     reviews,
		Listings: listings,
	}

	tokens := utils.NewTokenIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userService := &user.DefaultUserService{
		Repo:        users,
		Tokens:      tokens,
		Store:       utils.NewTokenStore(authCache),
		Billing:     billing,
		Listings:    listings,
		Google:      socialauth.NewGoogleVerifier(cfg.GoogleClientID),
		Mail:        mailQueue,
		FrontendURL: cfg.FrontendURL,
		PublicURL:   cfg.PublicURL,
	}

	analyticsService := &analytics.DefaultAnalyticsService{}
	if cfg.GAPropertyID != "" {
		runner, err := analytics.NewGA4Runner(context.Background(), cfg.GAPropertyID, cfg.GoogleCredentialsB64)
		if err != nil {
			logger.Warn("main: analytics disabled", zap.Error(err))
		} else {
			analyticsService.Runner = runner
		}
	}

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Tokens: tokens,
		Search: handlers.NewSearchHandler(searchService, search.Paging{
			DefaultPageSize: cfg.SearchDefaultPageSize,
			MaxPageSize:     cfg.SearchMaxPageSize,
		}),
		Listing: handlers.NewListingHandler(listingService),
		Review:  handlers.NewReviewHandler(reviewService),
		Auth: handlers.NewAuthHandler(userService, handlers.CookieConfig{
			Domain:     cfg.CookieDomain,
			Secure:     cfg.CookieSecure,
			AccessTTL:  cfg.AccessTokenTTL,
			RefreshTTL: cfg.RefreshTokenTTL,
		}, cfg.FrontendURL),
		Subscription: handlers.NewSubscriptionHandler(billing, users),
		Analytics:    handlers.NewAnalyticsHandler(analyticsService),
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	routes.RegisterRoutes(router, handlerBundle, []string{cfg.FrontendURL})

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	utils.StartHealthMonitor(monitorCtx, 30*time.Second, []*redis.Client{cache, authCache}, database.MongoClient)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}

	mailWorker.Shutdown()
	utils.CloseCaches()
	if err := database.MongoClient.Disconnect(ctx); err != nil {
		logger.Warn("main: failed to disconnect from MongoDB", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}
