package sqlstore

import (
	"context"

	"parcel-delivery-api/models"

	"github.com/google/uuid"
)

type paymentStore struct{ s *Store }

func (p paymentStore) Insert(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	return duplicate(p.s.conn(ctx).Create(payment).Error)
}

func (p paymentStore) ByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	var payment models.Payment
	if err := p.s.conn(ctx).First(&payment, "transaction_id = ?", transactionID).Error; err != nil {
		return nil, notFound(err)
	}
	return &payment, nil
}

func (p paymentStore) ListByEmail(ctx context.Context, email string) ([]models.Payment, error) {
	query := p.s.conn(ctx).Model(&models.Payment{})
	if email != "" {
		query = query.Where("email = ?", email)
	}

	payments := []models.Payment{}
	err := query.Order("paid_at desc").Find(&payments).Error
	return payments, err
}
