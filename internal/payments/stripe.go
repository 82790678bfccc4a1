package payments

import (
	"context"
	"fmt"

	"github.com/claimsaver/go-services/internal/config"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
)

// CheckoutInput describes one payment to collect.
type CheckoutInput struct {
	AmountCents   int64
	Description   string
	ClaimID       string
	UserID        string
	CustomerEmail string
}

// Checkout is the created hosted-checkout handle returned to the frontend.
type Checkout struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// SessionStatus is the result of validating a checkout session.
type SessionStatus struct {
	SessionID   string `json:"sessionId"`
	Status      string `json:"status"`
	Paid        bool   `json:"paid"`
	AmountTotal int64  `json:"amountTotal"`
}

// CheckoutProvider creates and validates hosted checkout sessions.
// Satisfied by *StripeProvider and by test fakes.
type CheckoutProvider interface {
	CreateCheckout(ctx context.Context, in CheckoutInput) (*Checkout, error)
	ValidateSession(ctx context.Context, sessionID string) (*SessionStatus, error)
}

// StripeProvider implements CheckoutProvider on the Stripe API.
type StripeProvider struct {
	cfg config.StripeConfig
}

func NewStripeProvider(cfg config.StripeConfig) *StripeProvider {
	stripe.Key = cfg.SecretKey
	return &StripeProvider{cfg: cfg}
}

func (p *StripeProvider) CreateCheckout(ctx context.Context, in CheckoutInput) (*Checkout, error) {
	if in.AmountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if in.Description == "" {
		in.Description = "ClaimSaver+ filing fee"
	}
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(in.AmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(in.Description),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(p.cfg.SuccessURL),
		CancelURL:  stripe.String(p.cfg.CancelURL),
	}
	params.Context = ctx
	if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}
	params.AddMetadata("userId", in.UserID)
	if in.ClaimID != "" {
		params.AddMetadata("claimId", in.ClaimID)
	}

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout create: %w", err)
	}
	return &Checkout{SessionID: s.ID, URL: s.URL}, nil
}

func (p *StripeProvider) ValidateSession(ctx context.Context, sessionID string) (*SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := session.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe session fetch: %w", err)
	}
	return &SessionStatus{
		SessionID:   s.ID,
		Status:      string(s.Status),
		Paid:        s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal: s.AmountTotal,
	}, nil
}
