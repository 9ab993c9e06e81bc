package sqlstore

import (
	"context"
	"strings"

	"parcel-delivery-api/models"
	"parcel-delivery-api/store"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

type userStore struct{ s *Store }

func (u userStore) Insert(ctx context.Context, user *models.User) (bool, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	res := u.s.conn(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(user)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (u userStore) ByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := u.s.conn(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (u userStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := u.s.conn(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (u userStore) SearchEmail(ctx context.Context, fragment string, limit int) ([]models.User, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(fragment)) + "%"
	users := []models.User{}
	err := u.s.conn(ctx).
		Where(`LOWER(email) LIKE ? ESCAPE '\'`, pattern).
		Order("email").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (u userStore) SetRole(ctx context.Context, id string, role models.UserRole) error {
	res := u.s.conn(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (u userStore) SetRoleByEmail(ctx context.Context, email string, role models.UserRole) (store.UpdateResult, error) {
	var matched int64
	if err := u.s.conn(ctx).Model(&models.User{}).Where("email = ?", email).Count(&matched).Error; err != nil {
		return store.UpdateResult{}, err
	}
	res := u.s.conn(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Where("(role IS NULL OR role <> ?)", role).
		Update("role", role)
	if res.Error != nil {
		return store.UpdateResult{}, res.Error
	}
	return store.UpdateResult{MatchedCount: matched, ModifiedCount: res.RowsAffected}, nil
}
