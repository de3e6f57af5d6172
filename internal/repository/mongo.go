package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/alexanderjung3838-wq/roboentrega/internal/domain"
)

const credentialCollection = "credentials"

// credentialModel is the persisted shape of the credential document. The
// fixed _id guarantees every save replaces the same document.
type credentialModel struct {
	ID           string `bson:"_id"`
	AccessToken  string `bson:"access_token"`
	RefreshToken string `bson:"refresh_token"`
	ExpiresIn    int64  `bson:"expires_in"`
	SavedAt      int64  `bson:"saved_at"`
}

// MongoCredentialRepo stores the credential as a single document keyed by
// domain.CredentialKey.
type MongoCredentialRepo struct {
	col *mongo.Collection
}

var _ CredentialRepository = (*MongoCredentialRepo)(nil)

// NewMongoCredentialRepo constructs the Mongo-backed repository.
func NewMongoCredentialRepo(db *mongo.Database) *MongoCredentialRepo {
	return &MongoCredentialRepo{col: db.Collection(credentialCollection)}
}

// Get loads the credential document, returning (nil, nil) when absent.
func (r *MongoCredentialRepo) Get(ctx context.Context) (*domain.Credential, error) {
	var m credentialModel
	err := r.col.FindOne(ctx, bson.D{{Key: "_id", Value: domain.CredentialKey}}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}
	return &domain.Credential{
		AccessToken:  m.AccessToken,
		RefreshToken: m.RefreshToken,
		ExpiresIn:    m.ExpiresIn,
		SavedAt:      m.SavedAt,
	}, nil
}

// Upsert replaces the credential document in full.
func (r *MongoCredentialRepo) Upsert(ctx context.Context, cred domain.Credential) error {
	m := credentialModel{
		ID:           domain.CredentialKey,
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		ExpiresIn:    cred.ExpiresIn,
		SavedAt:      cred.SavedAt,
	}
	_, err := r.col.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: domain.CredentialKey}},
		m,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	return nil
}
