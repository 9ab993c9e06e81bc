package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"parcel-delivery-api/gateway"
	"parcel-delivery-api/mocks"
	"parcel-delivery-api/models"

	"go.uber.org/mock/gomock"
)

func TestCreateIntent(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockPaymentGateway(ctrl)
	env := newTestEnv(t, gw, nil, false)

	gw.EXPECT().CreateIntent(gomock.Any(), int64(1500), "usd").Return("pi_1_secret", nil)
	secret, err := env.svc.Payments.CreateIntent(ctx, 1500)
	if err != nil || secret != "pi_1_secret" {
		t.Fatalf("CreateIntent = %q, %v", secret, err)
	}

	if _, err := env.svc.Payments.CreateIntent(ctx, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("zero amount: err = %v, want ErrValidation", err)
	}

	gw.EXPECT().CreateIntent(gomock.Any(), int64(900), "usd").Return("", errors.New("card_declined"))
	if _, err := env.svc.Payments.CreateIntent(ctx, 900); !errors.Is(err, ErrGateway) {
		t.Errorf("gateway failure: err = %v, want ErrGateway", err)
	}
}

func TestConfirmPayment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil, nil, false)
	parcelID := env.createParcel(t, "a@b.com")

	c := Confirmation{
		ParcelID:      parcelID,
		Email:         "a@b.com",
		Amount:        12.5,
		PaymentMethod: "card",
		TransactionID: "pi_123",
	}
	id, err := env.svc.Payments.Confirm(ctx, c)
	if err != nil || id == "" {
		t.Fatalf("Confirm = %q, %v", id, err)
	}

	p, _ := env.svc.Parcels.Get(ctx, parcelID)
	if p.PaymentStatus != models.PaymentPaid {
		t.Errorf("payment_status = %s, want paid", p.PaymentStatus)
	}
	ledger, err := env.svc.Payments.List(ctx, "a@b.com")
	if err != nil || len(ledger) != 1 {
		t.Fatalf("List = %d, %v; want 1", len(ledger), err)
	}
	entry := ledger[0]
	if entry.ParcelID != parcelID || entry.Amount != 12.5 || entry.TransactionID != "pi_123" {
		t.Errorf("unexpected ledger entry %+v", entry)
	}
	if entry.PaidAtString != fixedNow.Format(time.RFC3339) || !entry.PaidAt.Equal(fixedNow) {
		t.Errorf("paid at = %q / %v", entry.PaidAtString, entry.PaidAt)
	}

	// paying twice is refused and leaves the ledger alone
	if _, err := env.svc.Payments.Confirm(ctx, c); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Confirm: err = %v, want ErrNotFound", err)
	}
	ledger, _ = env.svc.Payments.List(ctx, "a@b.com")
	if len(ledger) != 1 {
		t.Errorf("ledger has %d entries after double payment, want 1", len(ledger))
	}
}

func TestConfirmPaymentUnknownParcel(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil, nil, false)

	_, err := env.svc.Payments.Confirm(ctx, Confirmation{
		ParcelID: "nope", Email: "a@b.com", Amount: 1, PaymentMethod: "card", TransactionID: "pi_1",
	})
	if !errors.Is(err, ErrNotFound) || err.Error() != "Parcel not found or already paid" {
		t.Fatalf("err = %v", err)
	}
	ledger, _ := env.svc.Payments.List(ctx, "")
	if len(ledger) != 0 {
		t.Errorf("ledger has %d entries, want 0", len(ledger))
	}
}

func TestConfirmPaymentValidation(t *testing.T) {
	env := newTestEnv(t, nil, nil, false)
	valid := Confirmation{ParcelID: "p", Email: "a@b.com", Amount: 10, PaymentMethod: "card", TransactionID: "pi"}

	tests := []struct {
		name   string
		mutate func(*Confirmation)
	}{
		{"missing parcel", func(c *Confirmation) { c.ParcelID = "" }},
		{"missing email", func(c *Confirmation) { c.Email = "" }},
		{"missing method", func(c *Confirmation) { c.PaymentMethod = "" }},
		{"missing transaction", func(c *Confirmation) { c.TransactionID = " " }},
		{"zero amount", func(c *Confirmation) { c.Amount = 0 }},
		{"negative amount", func(c *Confirmation) { c.Amount = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if _, err := env.svc.Payments.Confirm(context.Background(), c); !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestConfirmPaymentVerifiesIntent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		intent   *gateway.Intent
		err      error
		wantErr  error
		wantPaid bool
	}{
		{"succeeded", &gateway.Intent{ID: "pi_1", Status: gateway.StatusSucceeded, Amount: 1250}, nil, nil, true},
		{"not captured", &gateway.Intent{ID: "pi_1", Status: "requires_payment_method", Amount: 1250}, nil, ErrValidation, false},
		{"amount mismatch", &gateway.Intent{ID: "pi_1", Status: gateway.StatusSucceeded, Amount: 100}, nil, ErrValidation, false},
		{"unknown intent", nil, gateway.ErrIntentNotFound, ErrValidation, false},
		{"gateway down", nil, errors.New("timeout"), ErrGateway, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			gw := mocks.NewMockPaymentGateway(ctrl)
			env := newTestEnv(t, gw, nil, true)
			parcelID := env.createParcel(t, "a@b.com")

			gw.EXPECT().GetIntent(gomock.Any(), "pi_1").Return(tt.intent, tt.err)
			_, err := env.svc.Payments.Confirm(ctx, Confirmation{
				ParcelID: parcelID, Email: "a@b.com", Amount: 12.5, PaymentMethod: "card", TransactionID: "pi_1",
			})
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Confirm: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}

			p, _ := env.svc.Parcels.Get(ctx, parcelID)
			if paid := p.PaymentStatus == models.PaymentPaid; paid != tt.wantPaid {
				t.Errorf("paid = %v, want %v", paid, tt.wantPaid)
			}
		})
	}
}

func TestConfirmPaymentRejectsReusedTransaction(t *testing.T) {
	ctx := context.Background()

	for _, verify := range []bool{true, false} {
		t.Run(fmt.Sprintf("verify=%v", verify), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			gw := mocks.NewMockPaymentGateway(ctrl)
			env := newTestEnv(t, gw, nil, verify)
			first := env.createParcel(t, "a@b.com")
			second := env.createParcel(t, "a@b.com")

			if verify {
				gw.EXPECT().GetIntent(gomock.Any(), "pi_paid").
					Return(&gateway.Intent{ID: "pi_paid", Status: gateway.StatusSucceeded, Amount: 1250}, nil).
					Times(2)
			}
			c := Confirmation{Email: "a@b.com", Amount: 12.5, PaymentMethod: "card", TransactionID: "pi_paid"}

			c.ParcelID = first
			if _, err := env.svc.Payments.Confirm(ctx, c); err != nil {
				t.Fatalf("first Confirm: %v", err)
			}
			c.ParcelID = second
			_, err := env.svc.Payments.Confirm(ctx, c)
			if !errors.Is(err, ErrConflict) {
				t.Fatalf("second Confirm: err = %v, want ErrConflict", err)
			}

			p, _ := env.svc.Parcels.Get(ctx, second)
			if p.PaymentStatus != models.PaymentUnpaid {
				t.Errorf("second parcel payment_status = %s, want unpaid", p.PaymentStatus)
			}
			ledger, _ := env.svc.Payments.List(ctx, "")
			if len(ledger) != 1 || ledger[0].ParcelID != first {
				t.Errorf("ledger = %+v, want one entry for the first parcel", ledger)
			}
		})
	}
}

func TestConfirmPaymentTransactionAlreadyInLedger(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil, nil, false)
	parcelID := env.createParcel(t, "a@b.com")

	if err := env.store.Payments().Insert(ctx, &models.Payment{ParcelID: "other", Email: "b@b.com", TransactionID: "pi_seen"}); err != nil {
		t.Fatal(err)
	}
	_, err := env.svc.Payments.Confirm(ctx, Confirmation{
		ParcelID: parcelID, Email: "a@b.com", Amount: 12.5, PaymentMethod: "card", TransactionID: "pi_seen",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	p, _ := env.svc.Parcels.Get(ctx, parcelID)
	if p.PaymentStatus != models.PaymentUnpaid {
		t.Errorf("payment_status = %s, want unpaid", p.PaymentStatus)
	}
}

func TestConfirmPaymentChecksParcelCost(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockPaymentGateway(ctrl)
	env := newTestEnv(t, gw, nil, true)
	parcelID := env.createParcel(t, "a@b.com")

	// the intent matches what the client claims but not what the parcel costs
	gw.EXPECT().GetIntent(gomock.Any(), "pi_cheap").
		Return(&gateway.Intent{ID: "pi_cheap", Status: gateway.StatusSucceeded, Amount: 50}, nil)
	_, err := env.svc.Payments.Confirm(ctx, Confirmation{
		ParcelID: parcelID, Email: "a@b.com", Amount: 0.5, PaymentMethod: "card", TransactionID: "pi_cheap",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	p, _ := env.svc.Parcels.Get(ctx, parcelID)
	if p.PaymentStatus != models.PaymentUnpaid {
		t.Errorf("payment_status = %s, want unpaid", p.PaymentStatus)
	}
	ledger, _ := env.svc.Payments.List(ctx, "")
	if len(ledger) != 0 {
		t.Errorf("ledger has %d entries, want 0", len(ledger))
	}
}
