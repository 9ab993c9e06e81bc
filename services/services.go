// Package services holds the parcel lifecycle, rider workflow, payment and
// user directory operations on top of a store.Store.
package services

import (
	"context"
	"log/slog"
	"time"

	"parcel-delivery-api/gateway"
	"parcel-delivery-api/models"
	"parcel-delivery-api/store"
)

//go:generate mockgen -destination=../mocks/services.go -package=mocks parcel-delivery-api/services PaymentGateway,RoleCache

// PaymentGateway creates and verifies card payment intents
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string) (string, error)
	GetIntent(ctx context.Context, id string) (*gateway.Intent, error)
}

// RoleCache remembers email to role lookups. Get reports a miss with ok=false.
type RoleCache interface {
	Get(ctx context.Context, email string) (role models.UserRole, ok bool, err error)
	Set(ctx context.Context, email string, role models.UserRole) error
	Delete(ctx context.Context, email string) error
}

type Options struct {
	// Currency of created payment intents
	Currency string
	// VerifyPayments checks each confirmed transaction against the gateway
	VerifyPayments bool
	Logger         *slog.Logger
}

type Services struct {
	Users    *UserService
	Parcels  *ParcelService
	Riders   *RiderService
	Payments *PaymentService
}

// New wires every service to st. cache may be nil.
func New(st store.Store, gw PaymentGateway, cache RoleCache, opts Options) *Services {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	if cache == nil {
		cache = noCache{}
	}
	now := func() time.Time { return time.Now().UTC() }

	users := &UserService{store: st, cache: cache, log: log, now: now}
	return &Services{
		Users:   users,
		Parcels: &ParcelService{store: st, log: log, now: now},
		Riders:  &RiderService{store: st, users: users, log: log, now: now},
		Payments: &PaymentService{
			store:    st,
			gateway:  gw,
			currency: opts.Currency,
			verify:   opts.VerifyPayments,
			log:      log,
			now:      now,
		},
	}
}

type noCache struct{}

func (noCache) Get(context.Context, string) (models.UserRole, bool, error) { return "", false, nil }
func (noCache) Set(context.Context, string, models.UserRole) error        { return nil }
func (noCache) Delete(context.Context, string) error                      { return nil }
