package sqlstore

import (
	"context"

	"parcel-delivery-api/models"
	"parcel-delivery-api/store"

	"github.com/google/uuid"
)

type riderStore struct{ s *Store }

func (r riderStore) Insert(ctx context.Context, rider *models.Rider) error {
	if rider.ID == "" {
		rider.ID = uuid.NewString()
	}
	return r.s.conn(ctx).Create(rider).Error
}

func (r riderStore) ByID(ctx context.Context, id string) (*models.Rider, error) {
	var rider models.Rider
	if err := r.s.conn(ctx).First(&rider, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &rider, nil
}

func (r riderStore) List(ctx context.Context, f models.RiderFilter) ([]models.Rider, error) {
	query := r.s.conn(ctx).Model(&models.Rider{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.District != "" {
		query = query.Where("district = ?", f.District)
	}

	riders := []models.Rider{}
	err := query.Order("submitted_at desc").Find(&riders).Error
	return riders, err
}

func (r riderStore) SetStatus(ctx context.Context, id string, from []models.RiderStatus, to models.RiderStatus) (store.UpdateResult, error) {
	return r.s.transition(ctx, &models.Rider{}, id, "status", store.Strings(from), map[string]any{
		"status": to,
	})
}

func (r riderStore) SetWorkStatus(ctx context.Context, id string, status models.WorkStatus) (store.UpdateResult, error) {
	res := r.s.conn(ctx).Model(&models.Rider{}).Where("id = ?", id).Update("work_status", status)
	if res.Error != nil {
		return store.UpdateResult{}, res.Error
	}
	if res.RowsAffected == 0 {
		return store.UpdateResult{}, store.ErrNotFound
	}
	return store.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}
