// Package mongo implements catalog.Source over a MongoDB database.
//
// Collections:
//
//	modules          catalog.Module documents, read in ascending "order"
//	user_progress    catalog.Progress documents with a user_id field
//	user_purchases   {user_id, module_id, is_active}
//	subscriptions    catalog.Subscription documents with user_id and status
//
// A user has access to a module when an active purchase for it exists or
// when the user has an active, unexpired subscription.
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/moduletree/pkg/catalog"
	mterrors "github.com/matzehuels/moduletree/pkg/errors"
)

// Collection names.
const (
	ModulesCollection       = "modules"
	ProgressCollection      = "user_progress"
	PurchasesCollection     = "user_purchases"
	SubscriptionsCollection = "subscriptions"
)

// DefaultDatabase is used when Config.Database is empty.
const DefaultDatabase = "moduletree"

// Config configures Connect.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Source reads the catalog from MongoDB.
type Source struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

// Connect dials MongoDB and pings the primary.
func Connect(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.URI == "" {
		return nil, mterrors.New(mterrors.ErrCodeInvalidConfig, "mongo uri is required")
	}
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.Timeout > 0 {
		opts.SetTimeout(cfg.Timeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, mterrors.Wrap(mterrors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, mterrors.Wrap(mterrors.ErrCodeNetwork, err, "ping mongo")
	}
	return New(client, cfg.Database), nil
}

// New wraps an existing client.
func New(client *mongo.Client, database string) *Source {
	if database == "" {
		database = DefaultDatabase
	}
	return &Source{client: client, db: client.Database(database), now: time.Now}
}

// Database returns the database the source reads from.
func (s *Source) Database() *mongo.Database { return s.db }

// Close disconnects the client.
func (s *Source) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func (s *Source) ModuleList(ctx context.Context) ([]catalog.Module, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cur, err := s.db.Collection(ModulesCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var mods []catalog.Module
	if err := cur.All(ctx, &mods); err != nil {
		return nil, err
	}
	return mods, nil
}

func (s *Source) UserProgress(ctx context.Context, userID string) ([]catalog.Progress, error) {
	cur, err := s.db.Collection(ProgressCollection).Find(ctx, bson.D{{Key: "user_id", Value: userID}})
	if err != nil {
		return nil, err
	}
	var out []catalog.Progress
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Source) CheckModuleAccess(ctx context.Context, userID, moduleID string) (bool, error) {
	n, err := s.db.Collection(PurchasesCollection).CountDocuments(ctx, bson.D{
		{Key: "user_id", Value: userID},
		{Key: "module_id", Value: moduleID},
		{Key: "is_active", Value: true},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	sub, err := s.ActiveSubscription(ctx, userID)
	if err != nil {
		return false, err
	}
	return sub != nil, nil
}

// ActiveSubscription returns the user's active subscription with the
// latest expiry, or nil.
func (s *Source) ActiveSubscription(ctx context.Context, userID string) (*catalog.Subscription, error) {
	filter := bson.D{
		{Key: "user_id", Value: userID},
		{Key: "status", Value: "active"},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "expires_at", Value: bson.D{{Key: "$exists", Value: false}}}},
			bson.D{{Key: "expires_at", Value: nil}},
			bson.D{{Key: "expires_at", Value: bson.D{{Key: "$gt", Value: s.now()}}}},
		}},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "expires_at", Value: -1}})

	var sub catalog.Subscription
	err := s.db.Collection(SubscriptionsCollection).FindOne(ctx, filter, opts).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

var _ catalog.Source = (*Source)(nil)
