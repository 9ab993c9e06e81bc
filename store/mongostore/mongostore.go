package mongostore

import (
	"context"
	"errors"
	"fmt"

	"parcel-delivery-api/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection    = "users"
	parcelsCollection  = "parcels"
	paymentsCollection = "payments"
	ridersCollection   = "riders"
)

// Store keeps each entity in its own collection of one database
type Store struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
}

var _ store.Store = (*Store)(nil)

// Open connects, pings the deployment and ensures lookup indexes. With
// transactions disabled (standalone servers) WithTx runs fn without a session.
func Open(ctx context.Context, uri, database string, transactions bool) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	s := &Store{
		client:       client,
		db:           client.Database(database),
		transactions: transactions,
	}
	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		parcelsCollection: {
			{Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		paymentsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}, {Key: "paid_at", Value: -1}}},
			{Keys: bson.D{{Key: "transactionId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ridersCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "district", Value: 1}}},
		},
	}
	for coll, specs := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) Users() store.UserStore {
	return userStore{s.db.Collection(usersCollection)}
}

func (s *Store) Parcels() store.ParcelStore {
	return parcelStore{s.db.Collection(parcelsCollection)}
}

func (s *Store) Riders() store.RiderStore {
	return riderStore{s.db.Collection(ridersCollection)}
}

func (s *Store) Payments() store.PaymentStore {
	return paymentStore{s.db.Collection(paymentsCollection)}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.transactions || mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// newID returns the hex form of a fresh ObjectID
func newID() string {
	return primitive.NewObjectID().Hex()
}

// idFilter matches id stored either as a string or, for documents written
// by earlier clients, as an ObjectID
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
	}
	return bson.M{"_id": id}
}

// transition sets update on the document while field holds one of from
func transition(ctx context.Context, coll *mongo.Collection, id, field string, from []string, set bson.M) (store.UpdateResult, error) {
	if len(from) == 0 {
		return store.UpdateResult{}, fmt.Errorf("transition %s: no source states", field)
	}
	filter := idFilter(id)
	filter[field] = bson.M{"$in": from}

	res, err := coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return store.UpdateResult{}, err
	}
	if res.MatchedCount > 0 {
		return store.UpdateResult{MatchedCount: 1, ModifiedCount: res.ModifiedCount}, nil
	}

	n, err := coll.CountDocuments(ctx, idFilter(id), options.Count().SetLimit(1))
	if err != nil {
		return store.UpdateResult{}, err
	}
	if n == 0 {
		return store.UpdateResult{}, store.ErrNotFound
	}
	return store.UpdateResult{MatchedCount: 1}, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	docs := []T{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
