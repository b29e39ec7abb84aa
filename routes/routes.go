package routes

import (
	"time"

	"roaddarts/handlers"
	"roaddarts/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterListingRoutes registers search and listing management endpoints.
func RegisterListingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	auth := middleware.JWTAuthMiddleware(hb.Tokens)
	api := r.Group("/api/businesses")
	{
		api.GET("", hb.Search.SearchListings)
		api.GET("/:slug", hb.Listing.GetBySlug)
		api.POST("/check-name", hb.Listing.CheckName)
		api.POST("/contact/:id", hb.Listing.ContactOwner)

		api.GET("/check-edit-business/:slug", auth, hb.Listing.CheckEdit)
		api.GET("/addslug", auth, middleware.RequireAdmin(), hb.Listing.BackfillSlugs)
		api.POST("", auth, hb.Listing.Create)
		api.POST("/bulk", auth, hb.Listing.BulkCreate)
		api.PATCH("/:id", auth, hb.Listing.Update)
		api.DELETE("/:id", auth, hb.Listing.Delete)
		api.PATCH("/media/:id", auth, hb.Listing.UploadMedia)
		api.DELETE("/media/:id", auth, hb.Listing.DeleteMedia)
	}
}

// RegisterReviewRoutes registers review endpoints.
func RegisterReviewRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reviews")
	{
		api.GET("/:listingId", hb.Review.List)
		api.POST("/:listingId", middleware.JWTAuthMiddleware(hb.Tokens), hb.Review.Create)
	}
}

// RegisterAuthRoutes registers account endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/signup", hb.Auth.Signup)
		api.POST("/login", middleware.LoginRateLimitMiddleware(), hb.Auth.Login)
		api.POST("/google", middleware.LoginRateLimitMiddleware(), hb.Auth.Google)
		api.POST("/resend", hb.Auth.ResendVerification)
		api.GET("/verify-email", hb.Auth.VerifyEmail)
		api.GET("/verify-token", hb.Auth.Refresh)
		api.POST("/forgot-password", middleware.LoginRateLimitMiddleware(), hb.Auth.ForgotPassword)
		api.POST("/reset-password", hb.Auth.ResetPassword)
		api.POST("/logout", hb.Auth.Logout)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(hb.Tokens))
		protected.GET("/me", hb.Auth.Me)
		protected.POST("/change-password", hb.Auth.ChangePassword)
	}
}

// RegisterSubscriptionRoutes registers billing endpoints.
func RegisterSubscriptionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/subscription")
	{
		api.GET("/plans", hb.Subscription.Plans)
		api.POST("/apply-promo", hb.Subscription.ApplyPromo)
		api.POST("/checkout", hb.Subscription.Checkout)
		api.GET("/checkout/:sessionId", hb.Subscription.CheckoutSession)
		api.POST("/create-payment-intent", hb.Subscription.PaymentIntent)
		api.GET("/session_status", hb.Subscription.SessionStatus)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(hb.Tokens))
		protected.GET("", hb.Subscription.Current)
		protected.POST("/upgrade", hb.Subscription.Upgrade)
		protected.POST("/cancel", hb.Subscription.Cancel)
	}
}

// RegisterAnalyticsRoutes registers the admin-only report endpoints.
func RegisterAnalyticsRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/analytics")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.Tokens), middleware.RequireAdmin())
		api.GET("/:report", hb.Analytics.Report)
	}
}

// RegisterHealthRoute registers the health check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, allowOrigins []string) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterListingRoutes(r, hb)
	RegisterReviewRoutes(r, hb)
	RegisterAuthRoutes(r, hb)
	RegisterSubscriptionRoutes(r, hb)
	RegisterAnalyticsRoutes(r, hb)
	RegisterHealthRoute(r)
}
