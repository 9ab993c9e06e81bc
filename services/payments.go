package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"parcel-delivery-api/gateway"
	"parcel-delivery-api/models"
	"parcel-delivery-api/statemachine"
	"parcel-delivery-api/store"
)

type PaymentService struct {
	store    store.Store
	gateway  PaymentGateway
	currency string
	verify   bool
	log      *slog.Logger
	now      func() time.Time
}

// Confirmation is what the client reports after the gateway took the payment
type Confirmation struct {
	ParcelID      string  `json:"parcelId"`
	Email         string  `json:"email"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod"`
	TransactionID string  `json:"transactionId"`
}

func (c Confirmation) validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"parcelId", c.ParcelID},
		{"email", c.Email},
		{"paymentMethod", c.PaymentMethod},
		{"transactionId", c.TransactionID},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return newError(ErrValidation, "missing required fields: %s", strings.Join(missing, ", "))
	}
	if c.Amount <= 0 || math.IsNaN(c.Amount) || math.IsInf(c.Amount, 0) {
		return newError(ErrValidation, "amount must be positive")
	}
	return nil
}

// CreateIntent opens a gateway payment for amountCents and returns the
// client secret the browser completes it with
func (s *PaymentService) CreateIntent(ctx context.Context, amountCents int64) (string, error) {
	if amountCents <= 0 {
		return "", newError(ErrValidation, "amountInCents must be positive")
	}
	secret, err := s.gateway.CreateIntent(ctx, amountCents, s.currency)
	if err != nil {
		return "", wrapError(ErrGateway, err, err.Error())
	}
	return secret, nil
}

// Confirm marks the parcel paid and records the ledger entry in one
// transaction. It returns the payment id. A transaction id pays for at most
// one parcel, and a verified intent must cover the parcel's cost.
func (s *PaymentService) Confirm(ctx context.Context, c Confirmation) (string, error) {
	if err := c.validate(); err != nil {
		return "", err
	}
	var intent *gateway.Intent
	if s.verify {
		var err error
		if intent, err = s.verifyIntent(ctx, c); err != nil {
			return "", err
		}
	}

	now := s.now()
	payment := &models.Payment{
		ParcelID:      c.ParcelID,
		Email:         c.Email,
		Amount:        c.Amount,
		PaymentMethod: c.PaymentMethod,
		TransactionID: c.TransactionID,
		PaidAtString:  now.Format(time.RFC3339),
		PaidAt:        now,
	}

	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		to := models.PaymentPaid
		parcel, err := s.store.Parcels().ByID(ctx, c.ParcelID)
		if err != nil {
			return notFound(err, "Parcel not found or already paid")
		}
		if statemachine.ParcelPayment.CanTransition(parcel.PaymentStatus, to) != nil {
			return newError(ErrNotFound, "Parcel not found or already paid")
		}
		if intent != nil && intent.Amount != cents(parcel.Cost) {
			return newError(ErrValidation, "payment does not cover the parcel cost")
		}
		if _, err := s.store.Payments().ByTransactionID(ctx, c.TransactionID); err == nil {
			return newError(ErrConflict, "transaction already recorded")
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		res, err := s.store.Parcels().SetPaymentStatus(ctx, c.ParcelID, statemachine.ParcelPayment.SourcesOf(to), to)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err != nil || !res.Modified() {
			return newError(ErrNotFound, "Parcel not found or already paid")
		}
		return s.store.Payments().Insert(ctx, payment)
	})
	if errors.Is(err, store.ErrDuplicate) {
		return "", wrapError(ErrConflict, err, "transaction already recorded")
	}
	if err != nil {
		return "", err
	}
	s.log.Info("payment recorded", "payment", payment.ID, "parcel", c.ParcelID, "amount", c.Amount)
	return payment.ID, nil
}

func (s *PaymentService) verifyIntent(ctx context.Context, c Confirmation) (*gateway.Intent, error) {
	intent, err := s.gateway.GetIntent(ctx, c.TransactionID)
	if errors.Is(err, gateway.ErrIntentNotFound) {
		return nil, wrapError(ErrValidation, err, "unknown transaction")
	}
	if err != nil {
		return nil, wrapError(ErrGateway, err, err.Error())
	}
	if intent.Status != gateway.StatusSucceeded {
		return nil, newError(ErrValidation, "payment has not succeeded (status %s)", intent.Status)
	}
	if intent.Amount != cents(c.Amount) {
		return nil, newError(ErrValidation, "amount does not match the payment")
	}
	return intent, nil
}

func cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// List returns the payments made by email, newest first
func (s *PaymentService) List(ctx context.Context, email string) ([]models.Payment, error) {
	return s.store.Payments().ListByEmail(ctx, email)
}
