package mongostore

import (
	"context"

	"parcel-delivery-api/models"
	"parcel-delivery-api/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type parcelStore struct{ coll *mongo.Collection }

func (p parcelStore) Insert(ctx context.Context, parcel *models.Parcel) error {
	if parcel.ID == "" {
		parcel.ID = newID()
	}
	_, err := p.coll.InsertOne(ctx, parcel)
	return err
}

func (p parcelStore) ByID(ctx context.Context, id string) (*models.Parcel, error) {
	return findOne[models.Parcel](ctx, p.coll, idFilter(id))
}

func (p parcelStore) List(ctx context.Context, f models.ParcelFilter) ([]models.Parcel, error) {
	filter := bson.M{}
	if f.CreatedBy != "" {
		filter["created_by"] = f.CreatedBy
	}
	if f.PaymentStatus != "" {
		filter["payment_status"] = f.PaymentStatus
	}
	if f.DeliveryStatus != "" {
		filter["delivery_status"] = f.DeliveryStatus
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findAll[models.Parcel](ctx, p.coll, filter, opts)
}

func (p parcelStore) Delete(ctx context.Context, id string) error {
	res, err := p.coll.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (p parcelStore) SetPaymentStatus(ctx context.Context, id string, from []models.PaymentStatus, to models.PaymentStatus) (store.UpdateResult, error) {
	return transition(ctx, p.coll, id, "payment_status", store.Strings(from), bson.M{
		"payment_status": to,
	})
}

func (p parcelStore) AssignRider(ctx context.Context, id, riderID string, from []models.DeliveryStatus, to models.DeliveryStatus) (store.UpdateResult, error) {
	return transition(ctx, p.coll, id, "delivery_status", store.Strings(from), bson.M{
		"assignedRider":   riderID,
		"delivery_status": to,
	})
}
