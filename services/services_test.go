package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"parcel-delivery-api/models"
	"parcel-delivery-api/store/sqlstore"

	"gorm.io/gorm/logger"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	svc   *Services
	store *sqlstore.Store
}

func newTestEnv(t *testing.T, gw PaymentGateway, cache RoleCache, verify bool) *testEnv {
	t.Helper()
	st, err := sqlstore.Open("sqlite", ":memory:", logger.Silent)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	svc := New(st, gw, cache, Options{
		VerifyPayments: verify,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	clock := func() time.Time { return fixedNow }
	svc.Users.now = clock
	svc.Parcels.now = clock
	svc.Riders.now = clock
	svc.Payments.now = clock
	return &testEnv{svc: svc, store: st}
}

func (e *testEnv) createParcel(t *testing.T, createdBy string) string {
	t.Helper()
	id, err := e.svc.Parcels.Create(context.Background(), &models.Parcel{
		Type:         "document",
		Title:        "Contract",
		CreatedBy:    createdBy,
		Cost:         12.5,
		SenderName:   "Rahim",
		ReceiverName: "Karim",
	})
	if err != nil {
		t.Fatalf("create parcel: %v", err)
	}
	return id
}

func (e *testEnv) createRider(t *testing.T, email, district string) string {
	t.Helper()
	id, err := e.svc.Riders.Register(context.Background(), &models.Rider{
		Name:     "Rider " + email,
		Email:    email,
		District: district,
	})
	if err != nil {
		t.Fatalf("register rider: %v", err)
	}
	return id
}

func (e *testEnv) approvedRider(t *testing.T, email, district string) string {
	t.Helper()
	id := e.createRider(t, email, district)
	if _, err := e.svc.Riders.Approve(context.Background(), id, ""); err != nil {
		t.Fatalf("approve rider: %v", err)
	}
	return id
}
