package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"parcel-delivery-api/models"
	"parcel-delivery-api/statemachine"
	"parcel-delivery-api/store"
)

type RiderService struct {
	store store.Store
	users *UserService
	log   *slog.Logger
	now   func() time.Time
}

// ApproveResult is the outcome of an approval. RoleUpdated is false when no
// user account matched the rider's email.
type ApproveResult struct {
	store.UpdateResult
	RoleUpdated bool `json:"roleUpdated"`
}

// Register files a rider application, pending review
func (s *RiderService) Register(ctx context.Context, r *models.Rider) (string, error) {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return "", newError(ErrValidation, "email is required")
	}
	r.ID = ""
	r.Status = models.RiderPending
	r.WorkStatus = models.WorkIdle
	r.SubmittedAt = s.now()

	if err := s.store.Riders().Insert(ctx, r); err != nil {
		return "", err
	}
	s.log.Info("rider application submitted", "rider", r.ID, "email", r.Email, "district", r.District)
	return r.ID, nil
}

func (s *RiderService) ListPending(ctx context.Context) ([]models.Rider, error) {
	return s.store.Riders().List(ctx, models.RiderFilter{Status: models.RiderPending})
}

func (s *RiderService) ListActive(ctx context.Context) ([]models.Rider, error) {
	return s.store.Riders().List(ctx, models.RiderFilter{Status: models.RiderApproved})
}

// ListAvailable returns approved riders, limited to district when set
func (s *RiderService) ListAvailable(ctx context.Context, district string) ([]models.Rider, error) {
	return s.store.Riders().List(ctx, models.RiderFilter{Status: models.RiderApproved, District: district})
}

// Approve accepts a pending application and makes the matching user a
// rider. email falls back to the address on the application.
func (s *RiderService) Approve(ctx context.Context, id, email string) (ApproveResult, error) {
	var out ApproveResult
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		res, err := s.setStatus(ctx, id, models.RiderApproved)
		if err != nil {
			return err
		}
		out = ApproveResult{UpdateResult: res}
		if !res.Modified() {
			return nil
		}

		if email == "" {
			rider, err := s.store.Riders().ByID(ctx, id)
			if err != nil {
				return notFound(err, "rider not found")
			}
			email = rider.Email
		}
		roleRes, err := s.store.Users().SetRoleByEmail(ctx, email, models.RoleRider)
		if err != nil {
			return err
		}
		out.RoleUpdated = roleRes.MatchedCount > 0
		return nil
	})
	if err != nil {
		return ApproveResult{}, err
	}

	if out.Modified() {
		s.users.forget(ctx, email)
		if out.RoleUpdated {
			s.log.Info("rider approved", "rider", id, "email", email)
		} else {
			s.log.Warn("rider approved without a user account", "rider", id, "email", email)
		}
	}
	return out, nil
}

// Reject closes a pending application. Other states are left alone.
func (s *RiderService) Reject(ctx context.Context, id string) (store.UpdateResult, error) {
	return s.setStatus(ctx, id, models.RiderRejected)
}

// Deactivate retires an approved rider. Other states are left alone.
func (s *RiderService) Deactivate(ctx context.Context, id string) (store.UpdateResult, error) {
	return s.setStatus(ctx, id, models.RiderDeactivated)
}

func (s *RiderService) setStatus(ctx context.Context, id string, to models.RiderStatus) (store.UpdateResult, error) {
	res, err := s.store.Riders().SetStatus(ctx, id, statemachine.RiderApproval.SourcesOf(to), to)
	if err != nil {
		return store.UpdateResult{}, notFound(err, "rider not found")
	}
	if res.Modified() {
		s.log.Info("rider status changed", "rider", id, "status", to)
	}
	return res, nil
}
