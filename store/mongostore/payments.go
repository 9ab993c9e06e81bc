package mongostore

import (
	"context"
	"fmt"

	"parcel-delivery-api/models"
	"parcel-delivery-api/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type paymentStore struct{ coll *mongo.Collection }

func (p paymentStore) Insert(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = newID()
	}
	_, err := p.coll.InsertOne(ctx, payment)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}

func (p paymentStore) ByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	return findOne[models.Payment](ctx, p.coll, bson.M{"transactionId": transactionID})
}

func (p paymentStore) ListByEmail(ctx context.Context, email string) ([]models.Payment, error) {
	filter := bson.M{}
	if email != "" {
		filter["email"] = email
	}
	opts := options.Find().SetSort(bson.D{{Key: "paid_at", Value: -1}})
	return findAll[models.Payment](ctx, p.coll, filter, opts)
}
