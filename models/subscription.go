package models

import "time"

// PlanPrice is one recurring price of a plan.
type PlanPrice struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Interval string `json:"interval"`
}

// Plan is an active subscription product.
type Plan struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Monthly     *PlanPrice        `json:"monthly,omitempty"`
	Yearly      *PlanPrice        `json:"yearly,omitempty"`
}

// SubscriptionDetails describes a customer's current subscription.
type SubscriptionDetails struct {
	ID                string    `json:"id"`
	Status            string    `json:"status"`
	PlanName          string    `json:"planName"`
	PriceID           string    `json:"priceId"`
	ProductID         string    `json:"productId"`
	CurrentPeriodEnd  time.Time `json:"currentPeriodEnd"`
	CancelAtPeriodEnd bool      `json:"cancelAtPeriodEnd"`
}

// Permissions are the account limits derived from the subscription.
type Permissions struct {
	MaxListings int `json:"maxListings"`
}

// PromoResult is the outcome of applying a promotion code to a price.
type PromoResult struct {
	Code          string  `json:"code"`
	PercentOff    float64 `json:"percentOff"`
	OriginalPrice int64   `json:"originalPrice"`
	FinalPrice    int64   `json:"finalPrice"`
	Currency      string  `json:"currency"`
}

// CheckoutRequest starts an embedded checkout for a plan tier.
type CheckoutRequest struct {
	PriceID   string `json:"priceId" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Plan      string `json:"plan"`
	PromoCode string `json:"promoCode"`
}

type PromoRequest struct {
	PromoCode string `json:"promoCode" validate:"required"`
	PriceID   string `json:"priceId" validate:"required"`
}

type UpgradeRequest struct {
	PriceID string `json:"priceId" validate:"required"`
}

// PaymentIntentRequest prices a one-off payment, optionally discounted by a promo code.
type PaymentIntentRequest struct {
	PriceID   string `json:"priceId" validate:"required"`
	PromoCode string `json:"promoCode"`
}

// CheckoutSession summarizes a Stripe checkout session.
type CheckoutSession struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	PaymentStatus  string `json:"paymentStatus"`
	CustomerEmail  string `json:"customerEmail,omitempty"`
	SubscriptionID string `json:"subscriptionId,omitempty"`
	AmountTotal    int64  `json:"amountTotal"`
	Currency       string `json:"currency"`
}
