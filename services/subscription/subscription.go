package subscription

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"roaddarts/models"
	"roaddarts/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

var (
	// ErrNoSubscription is returned when the account has no subscription.
	ErrNoSubscription = errors.New("no subscription found for this user")
	// ErrNotActive is returned when an upgrade targets an inactive subscription.
	ErrNotActive = errors.New("active subscription not found")
	// ErrPriceNotFound is returned for unknown price IDs.
	ErrPriceNotFound = errors.New("price not found")
	// ErrSessionNotFound is returned for unknown checkout session IDs.
	ErrSessionNotFound = errors.New("checkout session not found")
)

// SubscriptionService wraps the billing provider.
type SubscriptionService interface {
	ListPlans(ctx context.Context) ([]models.Plan, error)
	ApplyPromo(ctx context.Context, promoCode, priceID string) (*models.PromoResult, error)
	CreateCheckout(ctx context.Context, email, plan string, req models.CheckoutRequest) (string, error)
	SessionStatus(ctx context.Context, sessionID string) (status, email string, err error)
	CheckoutSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error)
	CreatePaymentIntent(ctx context.Context, req models.PaymentIntentRequest) (string, error)
	Upgrade(ctx context.Context, subscriptionID, priceID string) (*models.SubscriptionDetails, error)
	Current(ctx context.Context, subscriptionID string) (*models.SubscriptionDetails, error)
	Cancel(ctx context.Context, subscriptionID string) error
	SubscriptionIDByEmail(ctx context.Context, email string) (string, error)
	Permissions(ctx context.Context, email, subscriptionID string) (models.Permissions, error)
}

// Options configures StripeSubscriptionService.
type Options struct {
	SecretKey          string
	FrontendURL        string
	SpecialEmails      []string
	SpecialMaxListings int
}

// StripeSubscriptionService implements SubscriptionService with Stripe.
type StripeSubscriptionService struct {
	sc   *client.API
	opts Options
}

func NewStripeSubscriptionService(opts Options) *StripeSubscriptionService {
	return &StripeSubscriptionService{sc: client.New(opts.SecretKey, nil), opts: opts}
}

func (s *StripeSubscriptionService) ListPlans(ctx context.Context) ([]models.Plan, error) {
	var products []*stripe.Product
	pi := s.sc.Products.List(&stripe.ProductListParams{
		ListParams: stripe.ListParams{Context: ctx},
		Active:     stripe.Bool(true),
	})
	for pi.Next() {
		products = append(products, pi.Product())
	}
	if err := pi.Err(); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	var prices []*stripe.Price
	ri := s.sc.Prices.List(&stripe.PriceListParams{
		ListParams: stripe.ListParams{Context: ctx},
		Active:     stripe.Bool(true),
	})
	for ri.Next() {
		prices = append(prices, ri.Price())
	}
	if err := ri.Err(); err != nil {
		return nil, fmt.Errorf("failed to list prices: %w", err)
	}
	return assemblePlans(products, prices), nil
}

// assemblePlans attaches monthly and yearly recurring prices to their products.
func assemblePlans(products []*stripe.Product, prices []*stripe.Price) []models.Plan {
	plans := make([]models.Plan, 0, len(products))
	for _, p := range products {
		plan := models.Plan{ID: p.ID, Name: p.Name, Description: p.Description, Metadata: p.Metadata}
		for _, pr := range prices {
			if pr.Product == nil || pr.Product.ID != p.ID || pr.Recurring == nil {
				continue
			}
			pp := &models.PlanPrice{
				ID:       pr.ID,
				Amount:   pr.UnitAmount,
				Currency: string(pr.Currency),
				Interval: string(pr.Recurring.Interval),
			}
			switch pr.Recurring.Interval {
			case stripe.PriceRecurringIntervalMonth:
				plan.Monthly = pp
			case stripe.PriceRecurringIntervalYear:
				plan.Yearly = pp
			}
		}
		plans = append(plans, plan)
	}
	return plans
}

func notFound(err error) bool {
	var serr *stripe.Error
	return errors.As(err, &serr) && serr.HTTPStatusCode == 404
}

func (s *StripeSubscriptionService) price(ctx context.Context, priceID string) (*stripe.Price, error) {
	price, err := s.sc.Prices.Get(priceID, &stripe.PriceParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		if notFound(err) {
			return nil, ErrPriceNotFound
		}
		return nil, fmt.Errorf("failed to retrieve price: %w", err)
	}
	return price, nil
}

// percentOff looks up an active promotion code. ok is false when there is none.
func (s *StripeSubscriptionService) percentOff(ctx context.Context, promoCode string) (percent float64, ok bool, err error) {
	it := s.sc.PromotionCodes.List(&stripe.PromotionCodeListParams{
		ListParams: stripe.ListParams{Context: ctx, Limit: stripe.Int64(1)},
		Code:       stripe.String(promoCode),
		Active:     stripe.Bool(true),
	})
	if !it.Next() {
		if err := it.Err(); err != nil {
			return 0, false, fmt.Errorf("failed to look up promotion code: %w", err)
		}
		return 0, false, nil
	}
	if promo := it.PromotionCode(); promo.Coupon != nil {
		percent = promo.Coupon.PercentOff
	}
	return percent, true, nil
}

// ApplyPromo prices priceID with an active promotion code. It returns nil
// when the code is unknown or inactive.
func (s *StripeSubscriptionService) ApplyPromo(ctx context.Context, promoCode, priceID string) (*models.PromoResult, error) {
	price, err := s.price(ctx, priceID)
	if err != nil {
		return nil, err
	}
	percent, ok, err := s.percentOff(ctx, promoCode)
	if err != nil || !ok {
		return nil, err
	}
	return &models.PromoResult{
		Code:          promoCode,
		PercentOff:    percent,
		OriginalPrice: price.UnitAmount,
		FinalPrice:    discounted(price.UnitAmount, percent),
		Currency:      string(price.Currency),
	}, nil
}

// CreatePaymentIntent charges the price once, less any promo discount, and
// returns the intent's client secret.
func (s *StripeSubscriptionService) CreatePaymentIntent(ctx context.Context, req models.PaymentIntentRequest) (string, error) {
	price, err := s.price(ctx, req.PriceID)
	if err != nil {
		return "", err
	}
	amount := price.UnitAmount
	if code := strings.TrimSpace(req.PromoCode); code != "" {
		percent, ok, err := s.percentOff(ctx, code)
		if err != nil {
			return "", err
		}
		if ok {
			amount = discounted(amount, percent)
		}
	}
	intent, err := s.sc.PaymentIntents.New(&stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(string(price.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create payment intent: %w", err)
	}
	return intent.ClientSecret, nil
}

func discounted(amount int64, percentOff float64) int64 {
	return int64(math.Round(float64(amount) * (1 - percentOff/100)))
}

// promoCoupons maps public promo codes to the coupon applied per plan tier.
var promoCoupons = map[string]map[string]string{
	"DARTCLUB10": {"basic": "basic-1-month", "standard": "standard-1-month", "premium": "premium-1-month"},
	"DARTVENUE":  {"basic": "basic-1-month", "standard": "standard-1-month", "premium": "premium-1-month"},
	"FREEAD365":  {"standard": "free-ad-365"},
}

func couponFor(promoCode, plan string) string {
	return promoCoupons[strings.ToUpper(strings.TrimSpace(promoCode))][strings.ToLower(strings.TrimSpace(plan))]
}

// CreateCheckout opens an embedded subscription checkout and returns its client secret.
func (s *StripeSubscriptionService) CreateCheckout(ctx context.Context, email, plan string, req models.CheckoutRequest) (string, error) {
	email = strings.TrimSpace(email)
	customer, err := s.findCustomer(ctx, email)
	if err != nil {
		return "", err
	}
	if customer == nil {
		customer, err = s.sc.Customers.New(&stripe.CustomerParams{
			Params: stripe.Params{Context: ctx},
			Email:  stripe.String(email),
		})
		if err != nil {
			return "", fmt.Errorf("failed to create customer: %w", err)
		}
	}

	params := &stripe.CheckoutSessionParams{
		Params:   stripe.Params{Context: ctx},
		UIMode:   stripe.String(string(stripe.CheckoutSessionUIModeEmbedded)),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customer.ID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
		},
		ReturnURL: stripe.String(s.opts.FrontendURL + "/return?session_id={CHECKOUT_SESSION_ID}"),
	}
	if coupon := couponFor(req.PromoCode, plan); coupon != "" {
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{{Coupon: stripe.String(coupon)}}
	}
	params.AddMetadata("email", email)

	session, err := s.sc.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return session.ClientSecret, nil
}

func (s *StripeSubscriptionService) SessionStatus(ctx context.Context, sessionID string) (string, string, error) {
	session, err := s.sc.CheckoutSessions.Get(sessionID, &stripe.CheckoutSessionParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return "", "", fmt.Errorf("invalid session ID: %w", err)
	}
	email := ""
	if session.CustomerDetails != nil {
		email = session.CustomerDetails.Email
	}
	return string(session.Status), email, nil
}

func (s *StripeSubscriptionService) CheckoutSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	session, err := s.sc.CheckoutSessions.Get(sessionID, &stripe.CheckoutSessionParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		if notFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}
	return sessionSummary(session), nil
}

func sessionSummary(cs *stripe.CheckoutSession) *models.CheckoutSession {
	out := &models.CheckoutSession{
		ID:            cs.ID,
		Status:        string(cs.Status),
		PaymentStatus: string(cs.PaymentStatus),
		AmountTotal:   cs.AmountTotal,
		Currency:      string(cs.Currency),
	}
	if cs.CustomerDetails != nil {
		out.CustomerEmail = cs.CustomerDetails.Email
	}
	if cs.Subscription != nil {
		out.SubscriptionID = cs.Subscription.ID
	}
	return out
}

func (s *StripeSubscriptionService) getSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{Params: stripe.Params{Context: ctx}}
	params.AddExpand("items.data.price.product")
	sub, err := s.sc.Subscriptions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve subscription: %w", err)
	}
	return sub, nil
}

func (s *StripeSubscriptionService) Upgrade(ctx context.Context, subscriptionID, priceID string) (*models.SubscriptionDetails, error) {
	sub, err := s.getSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != stripe.SubscriptionStatusActive || sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil, ErrNotActive
	}

	params := &stripe.SubscriptionParams{
		Params: stripe.Params{Context: ctx},
		Items: []*stripe.SubscriptionItemsParams{
			{ID: stripe.String(sub.Items.Data[0].ID), Price: stripe.String(priceID)},
		},
		ProrationBehavior: stripe.String("create_prorations"),
	}
	params.AddExpand("items.data.price.product")
	updated, err := s.sc.Subscriptions.Update(sub.ID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade subscription: %w", err)
	}
	return details(updated), nil
}

func (s *StripeSubscriptionService) Current(ctx context.Context, subscriptionID string) (*models.SubscriptionDetails, error) {
	if subscriptionID == "" {
		return nil, ErrNoSubscription
	}
	sub, err := s.getSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	return details(sub), nil
}

// Cancel schedules cancellation at the end of the billing period.
func (s *StripeSubscriptionService) Cancel(ctx context.Context, subscriptionID string) error {
	if subscriptionID == "" {
		return ErrNoSubscription
	}
	_, err := s.sc.Subscriptions.Update(subscriptionID, &stripe.SubscriptionParams{
		Params:            stripe.Params{Context: ctx},
		CancelAtPeriodEnd: stripe.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	return nil
}

func (s *StripeSubscriptionService) findCustomer(ctx context.Context, email string) (*stripe.Customer, error) {
	it := s.sc.Customers.List(&stripe.CustomerListParams{
		ListParams: stripe.ListParams{Context: ctx, Limit: stripe.Int64(1)},
		Email:      stripe.String(email),
	})
	if it.Next() {
		return it.Customer(), nil
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}
	return nil, nil
}

// SubscriptionIDByEmail returns the most recent subscription of the customer
// with this email, or "" when there is none.
func (s *StripeSubscriptionService) SubscriptionIDByEmail(ctx context.Context, email string) (string, error) {
	customer, err := s.findCustomer(ctx, strings.TrimSpace(email))
	if err != nil || customer == nil {
		return "", err
	}
	it := s.sc.Subscriptions.List(&stripe.SubscriptionListParams{
		ListParams: stripe.ListParams{Context: ctx, Limit: stripe.Int64(1)},
		Customer:   stripe.String(customer.ID),
		Status:     stripe.String("all"),
	})
	if it.Next() {
		return it.Subscription().ID, nil
	}
	if err := it.Err(); err != nil {
		return "", fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return "", nil
}

// Permissions derives account limits. Special accounts get the configured
// allowance; otherwise maxListings comes from the subscribed product's metadata.
func (s *StripeSubscriptionService) Permissions(ctx context.Context, email, subscriptionID string) (models.Permissions, error) {
	if isSpecial(s.opts.SpecialEmails, email) {
		return models.Permissions{MaxListings: s.opts.SpecialMaxListings}, nil
	}
	if subscriptionID == "" {
		return models.Permissions{}, nil
	}
	sub, err := s.getSubscription(ctx, subscriptionID)
	if err != nil {
		utils.GetLogger().Warn("Permissions: subscription lookup failed", zap.String("subscription", subscriptionID), zap.Error(err))
		return models.Permissions{}, err
	}
	return permissionsFor(sub), nil
}

func isSpecial(special []string, email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range special {
		if e == email {
			return true
		}
	}
	return false
}

func subscribed(sub *stripe.Subscription) bool {
	return sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing
}

// permissionsFor reads "maxListings" from the product metadata. An active
// subscription without the key allows one listing.
func permissionsFor(sub *stripe.Subscription) models.Permissions {
	if sub == nil || !subscribed(sub) {
		return models.Permissions{}
	}
	max := 1
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		if price := sub.Items.Data[0].Price; price != nil && price.Product != nil {
			if n, err := strconv.Atoi(price.Product.Metadata["maxListings"]); err == nil && n >= 0 {
				max = n
			}
		}
	}
	return models.Permissions{MaxListings: max}
}

func details(sub *stripe.Subscription) *models.SubscriptionDetails {
	d := &models.SubscriptionDetails{
		ID:                sub.ID,
		Status:            string(sub.Status),
		CurrentPeriodEnd:  time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		price := sub.Items.Data[0].Price
		d.PriceID = price.ID
		d.PlanName = price.Nickname
		if price.Product != nil {
			d.ProductID = price.Product.ID
			if price.Product.Name != "" {
				d.PlanName = price.Product.Name
			}
		}
		if d.PlanName == "" {
			d.PlanName = price.ID
		}
	}
	return d
}
