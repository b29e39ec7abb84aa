package handlers

import (
	"net/http"

	userRepo "roaddarts/database/repository/user"
	"roaddarts/middleware"
	"roaddarts/models"
	"roaddarts/services/subscription"
	"roaddarts/utils"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	Service subscription.SubscriptionService
	Users   userRepo.UserRepository
}

func NewSubscriptionHandler(svc subscription.SubscriptionService, users userRepo.UserRepository) *SubscriptionHandler {
	return &SubscriptionHandler{Service: svc, Users: users}
}

func (h *SubscriptionHandler) Plans(c *gin.Context) {
	plans, err := h.Service.ListPlans(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch plans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": plans})
}

func (h *SubscriptionHandler) ApplyPromo(c *gin.Context) {
	var req models.PromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondError(c, err, "")
		return
	}
	res, err := h.Service.ApplyPromo(c.Request.Context(), req.PromoCode, req.PriceID)
	if err != nil {
		respondError(c, err, "Failed to apply promo code")
		return
	}
	if res == nil {
		utils.JSONError(c, http.StatusNotFound, "Invalid or expired promo code", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *SubscriptionHandler) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondError(c, err, "")
		return
	}
	secret, err := h.Service.CreateCheckout(c.Request.Context(), req.Email, req.Plan, req)
	if err != nil {
		respondError(c, err, "Failed to create checkout session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": secret})
}

func (h *SubscriptionHandler) SessionStatus(c *gin.Context) {
	id := c.Query("sessionId")
	if id == "" {
		utils.JSONError(c, http.StatusBadRequest, "Missing sessionId", nil)
		return
	}
	status, email, err := h.Service.SessionStatus(c.Request.Context(), id)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid session ID", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "customer_email": email})
}

func (h *SubscriptionHandler) CheckoutSession(c *gin.Context) {
	session, err := h.Service.CheckoutSession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		respondError(c, err, "Error fetching session details")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SubscriptionHandler) PaymentIntent(c *gin.Context) {
	var req models.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondError(c, err, "")
		return
	}
	secret, err := h.Service.CreatePaymentIntent(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create payment intent")
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": secret})
}

func (h *SubscriptionHandler) subscriptionID(c *gin.Context) (string, bool) {
	u, err := h.Users.GetByID(c.Request.Context(), middleware.ActorFrom(c).UserID)
	if err != nil {
		respondError(c, err, "Failed to load account")
		return "", false
	}
	if u.StripeSubID == "" {
		respondError(c, subscription.ErrNoSubscription, "")
		return "", false
	}
	return u.StripeSubID, true
}

func (h *SubscriptionHandler) Current(c *gin.Context) {
	id, ok := h.subscriptionID(c)
	if !ok {
		return
	}
	sub, err := h.Service.Current(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch subscription")
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *SubscriptionHandler) Upgrade(c *gin.Context) {
	var req models.UpgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondError(c, err, "")
		return
	}
	id, ok := h.subscriptionID(c)
	if !ok {
		return
	}
	sub, err := h.Service.Upgrade(c.Request.Context(), id, req.PriceID)
	if err != nil {
		respondError(c, err, "Failed to upgrade subscription")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscription upgraded successfully", "subscription": sub})
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	id, ok := h.subscriptionID(c)
	if !ok {
		return
	}
	if err := h.Service.Cancel(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to cancel subscription")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscription will be canceled at the end of the billing period"})
}
