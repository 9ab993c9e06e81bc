package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"parcel-delivery-api/models"
	"parcel-delivery-api/statemachine"
	"parcel-delivery-api/store"

	"github.com/google/uuid"
)

type ParcelService struct {
	store store.Store
	log   *slog.Logger
	now   func() time.Time
}

// Create stores a new unpaid, pending parcel and returns its id
func (s *ParcelService) Create(ctx context.Context, p *models.Parcel) (string, error) {
	p.CreatedBy = strings.TrimSpace(p.CreatedBy)
	if p.CreatedBy == "" {
		return "", newError(ErrValidation, "created_by is required")
	}
	now := s.now()
	p.ID = ""
	p.PaymentStatus = models.PaymentUnpaid
	p.DeliveryStatus = models.DeliveryPending
	p.AssignedRider = nil
	p.CreatedAt = now
	if p.TrackingID == "" {
		p.TrackingID = newTrackingID(now)
	}

	if err := s.store.Parcels().Insert(ctx, p); err != nil {
		return "", err
	}
	s.log.Info("parcel created", "parcel", p.ID, "tracking_id", p.TrackingID, "created_by", p.CreatedBy)
	return p.ID, nil
}

// List returns parcels matching every set filter field, newest first
func (s *ParcelService) List(ctx context.Context, f models.ParcelFilter) ([]models.Parcel, error) {
	return s.store.Parcels().List(ctx, f)
}

func (s *ParcelService) Get(ctx context.Context, id string) (*models.Parcel, error) {
	p, err := s.store.Parcels().ByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "parcel not found")
	}
	return p, nil
}

func (s *ParcelService) Delete(ctx context.Context, id string) error {
	if err := s.store.Parcels().Delete(ctx, id); err != nil {
		return notFound(err, "Parcel not found or already deleted")
	}
	s.log.Info("parcel deleted", "parcel", id)
	return nil
}

// AssignRider hands a pending parcel to an approved rider. The parcel moves
// in transit and the rider to in-delivery together or not at all.
func (s *ParcelService) AssignRider(ctx context.Context, parcelID, riderID string) error {
	if strings.TrimSpace(riderID) == "" {
		return newError(ErrValidation, "Rider ID required")
	}

	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		rider, err := s.store.Riders().ByID(ctx, riderID)
		if err != nil {
			return notFound(err, "rider not found")
		}
		if rider.Status != models.RiderApproved {
			return newError(ErrConflict, "rider is %s, only approved riders can be assigned", rider.Status)
		}

		to := models.DeliveryInTransit
		res, err := s.store.Parcels().AssignRider(ctx, parcelID, riderID, statemachine.ParcelDelivery.SourcesOf(to), to)
		if err != nil {
			return notFound(err, "parcel not found")
		}
		if !res.Modified() {
			return s.assignConflict(ctx, parcelID, to)
		}

		if _, err := s.store.Riders().SetWorkStatus(ctx, riderID, models.WorkInDelivery); err != nil {
			return notFound(err, "rider not found")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("rider assigned", "parcel", parcelID, "rider", riderID)
	return nil
}

func (s *ParcelService) assignConflict(ctx context.Context, parcelID string, to models.DeliveryStatus) error {
	p, err := s.store.Parcels().ByID(ctx, parcelID)
	if err != nil {
		return notFound(err, "parcel not found")
	}
	cause := statemachine.ParcelDelivery.CanTransition(p.DeliveryStatus, to)
	if cause == nil {
		cause = errors.New("parcel changed concurrently")
	}
	return wrapError(ErrConflict, cause, fmt.Sprintf("parcel is %s and cannot be assigned", p.DeliveryStatus))
}

func newTrackingID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "PCL-" + now.Format("20060102") + "-" + suffix
}
