package mongostore

import (
	"context"
	"regexp"

	"parcel-delivery-api/models"
	"parcel-delivery-api/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userStore struct{ coll *mongo.Collection }

func (u userStore) Insert(ctx context.Context, user *models.User) (bool, error) {
	if user.ID == "" {
		user.ID = newID()
	}
	res, err := u.coll.UpdateOne(ctx,
		bson.M{"email": user.Email},
		bson.M{"$setOnInsert": user},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func (u userStore) ByID(ctx context.Context, id string) (*models.User, error) {
	return findOne[models.User](ctx, u.coll, idFilter(id))
}

func (u userStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, u.coll, bson.M{"email": email})
}

func (u userStore) SearchEmail(ctx context.Context, fragment string, limit int) ([]models.User, error) {
	filter := bson.M{"email": bson.M{"$regex": regexp.QuoteMeta(fragment), "$options": "i"}}
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "email", Value: 1}})
	return findAll[models.User](ctx, u.coll, filter, opts)
}

func (u userStore) SetRole(ctx context.Context, id string, role models.UserRole) error {
	res, err := u.coll.UpdateOne(ctx, idFilter(id), bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (u userStore) SetRoleByEmail(ctx context.Context, email string, role models.UserRole) (store.UpdateResult, error) {
	res, err := u.coll.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return store.UpdateResult{}, err
	}
	return store.UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}
