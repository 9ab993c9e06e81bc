package mongostore

import (
	"context"

	"parcel-delivery-api/models"
	"parcel-delivery-api/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type riderStore struct{ coll *mongo.Collection }

func (r riderStore) Insert(ctx context.Context, rider *models.Rider) error {
	if rider.ID == "" {
		rider.ID = newID()
	}
	_, err := r.coll.InsertOne(ctx, rider)
	return err
}

func (r riderStore) ByID(ctx context.Context, id string) (*models.Rider, error) {
	return findOne[models.Rider](ctx, r.coll, idFilter(id))
}

func (r riderStore) List(ctx context.Context, f models.RiderFilter) ([]models.Rider, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.District != "" {
		filter["district"] = f.District
	}
	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: -1}})
	return findAll[models.Rider](ctx, r.coll, filter, opts)
}

func (r riderStore) SetStatus(ctx context.Context, id string, from []models.RiderStatus, to models.RiderStatus) (store.UpdateResult, error) {
	return transition(ctx, r.coll, id, "status", store.Strings(from), bson.M{
		"status": to,
	})
}

func (r riderStore) SetWorkStatus(ctx context.Context, id string, status models.WorkStatus) (store.UpdateResult, error) {
	res, err := r.coll.UpdateOne(ctx, idFilter(id), bson.M{"$set": bson.M{"work_status": status}})
	if err != nil {
		return store.UpdateResult{}, err
	}
	if res.MatchedCount == 0 {
		return store.UpdateResult{}, store.ErrNotFound
	}
	return store.UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}
