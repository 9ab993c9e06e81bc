package sqlstore

import (
	"context"

	"parcel-delivery-api/models"
	"parcel-delivery-api/store"

	"github.com/google/uuid"
)

type parcelStore struct{ s *Store }

func (p parcelStore) Insert(ctx context.Context, parcel *models.Parcel) error {
	if parcel.ID == "" {
		parcel.ID = uuid.NewString()
	}
	return p.s.conn(ctx).Create(parcel).Error
}

func (p parcelStore) ByID(ctx context.Context, id string) (*models.Parcel, error) {
	var parcel models.Parcel
	if err := p.s.conn(ctx).First(&parcel, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &parcel, nil
}

func (p parcelStore) List(ctx context.Context, f models.ParcelFilter) ([]models.Parcel, error) {
	query := p.s.conn(ctx).Model(&models.Parcel{})
	if f.CreatedBy != "" {
		query = query.Where("created_by = ?", f.CreatedBy)
	}
	if f.PaymentStatus != "" {
		query = query.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.DeliveryStatus != "" {
		query = query.Where("delivery_status = ?", f.DeliveryStatus)
	}

	parcels := []models.Parcel{}
	err := query.Order("created_at desc").Find(&parcels).Error
	return parcels, err
}

func (p parcelStore) Delete(ctx context.Context, id string) error {
	res := p.s.conn(ctx).Delete(&models.Parcel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (p parcelStore) SetPaymentStatus(ctx context.Context, id string, from []models.PaymentStatus, to models.PaymentStatus) (store.UpdateResult, error) {
	return p.s.transition(ctx, &models.Parcel{}, id, "payment_status", store.Strings(from), map[string]any{
		"payment_status": to,
	})
}

func (p parcelStore) AssignRider(ctx context.Context, id, riderID string, from []models.DeliveryStatus, to models.DeliveryStatus) (store.UpdateResult, error) {
	return p.s.transition(ctx, &models.Parcel{}, id, "delivery_status", store.Strings(from), map[string]any{
		"assigned_rider":  riderID,
		"delivery_status": to,
	})
}
