// Package gateway talks to the card payment provider.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StatusSucceeded is the intent status of a captured payment
const StatusSucceeded = "succeeded"

// ErrIntentNotFound is returned when the provider has no intent with the id
var ErrIntentNotFound = errors.New("payment intent not found")

// Intent is the part of a provider payment intent the service relies on
type Intent struct {
	ID       string
	Status   string
	Amount   int64
	Currency string
}

// Stripe creates and looks up card payment intents
type Stripe struct {
	api *client.API
}

// NewStripe builds a client for key. A nil backends uses Stripe's public API.
func NewStripe(key string, backends *stripe.Backends) *Stripe {
	return &Stripe{api: client.New(key, backends)}
}

// CreateIntent opens a card payment intent and returns its client secret
func (s *Stripe) CreateIntent(ctx context.Context, amountCents int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(amountCents),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return pi.ClientSecret, nil
}

// GetIntent fetches an intent by id
func (s *Stripe) GetIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}}
	pi, err := s.api.PaymentIntents.Get(id, params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.Code == stripe.ErrorCodeResourceMissing {
			return nil, fmt.Errorf("%w: %s", ErrIntentNotFound, id)
		}
		return nil, fmt.Errorf("get payment intent %s: %w", id, err)
	}
	return &Intent{
		ID:       pi.ID,
		Status:   string(pi.Status),
		Amount:   pi.Amount,
		Currency: string(pi.Currency),
	}, nil
}
