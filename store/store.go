// Package store defines the document collections the service works on.
//
// Two backends implement it: mongostore (MongoDB, one collection per entity)
// and sqlstore (GORM over SQLite or PostgreSQL, one table per entity). Both
// resolve every call against the transaction carried by ctx when there is one,
// so code running inside WithTx needs no special handles.
package store

import (
	"context"
	"errors"

	"parcel-delivery-api/models"
)

// ErrNotFound is returned when no document has the requested id or key.
var ErrNotFound = errors.New("document not found")

// ErrDuplicate is returned when a write collides with a unique key.
var ErrDuplicate = errors.New("duplicate key")

// UpdateResult reports the outcome of a state-guarded update. MatchedCount is
// 1 when the document exists; ModifiedCount is 1 only if the guard held and
// the new state was written.
type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// Modified reports whether the update changed the document.
func (r UpdateResult) Modified() bool {
	return r.ModifiedCount > 0
}

type UserStore interface {
	// Insert stores u unless a user with the same email exists. It reports
	// whether a new document was written. An empty u.ID is filled in.
	Insert(ctx context.Context, u *models.User) (bool, error)
	ByID(ctx context.Context, id string) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	// SearchEmail matches fragment case-insensitively anywhere in the email.
	SearchEmail(ctx context.Context, fragment string, limit int) ([]models.User, error)
	SetRole(ctx context.Context, id string, role models.UserRole) error
	SetRoleByEmail(ctx context.Context, email string, role models.UserRole) (UpdateResult, error)
}

type ParcelStore interface {
	Insert(ctx context.Context, p *models.Parcel) error
	ByID(ctx context.Context, id string) (*models.Parcel, error)
	// List returns matching parcels, newest first.
	List(ctx context.Context, f models.ParcelFilter) ([]models.Parcel, error)
	Delete(ctx context.Context, id string) error
	// SetPaymentStatus writes to only while the parcel is in one of from.
	SetPaymentStatus(ctx context.Context, id string, from []models.PaymentStatus, to models.PaymentStatus) (UpdateResult, error)
	// AssignRider sets the rider and moves the delivery status to to, only
	// while the parcel is in one of from.
	AssignRider(ctx context.Context, id, riderID string, from []models.DeliveryStatus, to models.DeliveryStatus) (UpdateResult, error)
}

type RiderStore interface {
	Insert(ctx context.Context, r *models.Rider) error
	ByID(ctx context.Context, id string) (*models.Rider, error)
	// List returns matching riders, most recently submitted first.
	List(ctx context.Context, f models.RiderFilter) ([]models.Rider, error)
	SetStatus(ctx context.Context, id string, from []models.RiderStatus, to models.RiderStatus) (UpdateResult, error)
	SetWorkStatus(ctx context.Context, id string, status models.WorkStatus) (UpdateResult, error)
}

type PaymentStore interface {
	// Insert fails with ErrDuplicate when the transaction id is already
	// recorded.
	Insert(ctx context.Context, p *models.Payment) error
	ByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error)
	// ListByEmail returns the ledger for email, newest first. An empty email
	// lists every payment.
	ListByEmail(ctx context.Context, email string) ([]models.Payment, error)
}

type Store interface {
	Users() UserStore
	Parcels() ParcelStore
	Riders() RiderStore
	Payments() PaymentStore

	// WithTx runs fn so that every store call made with the ctx it receives
	// commits or rolls back together. Calls nested in an open transaction
	// join it.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Strings converts a typed status slice for use in query filters.
func Strings[S ~string](in []S) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}
