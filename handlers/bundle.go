package handlers

import "roaddarts/utils"

// HandlerBundle groups the endpoint handlers wired in main.
type HandlerBundle struct {
	// Tokens validates access tokens on protected routes.
	Tokens *utils.TokenIssuer

	Search       *SearchHandler
	Listing      *ListingHandler
	Review       *ReviewHandler
	Auth         *AuthHandler
	Subscription *SubscriptionHandler
	Analytics    *AnalyticsHandler
}
