// internal/app/store/accounts/store.go
package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/applyhub/internal/app/system/normalize"
	"github.com/dalemusser/applyhub/internal/domain/models"
)

var (
	// ErrDuplicateEmail is returned by Create when an account with the same
	// email already exists. The unique index on email makes this reliable
	// even under concurrent creates.
	ErrDuplicateEmail = errors.New("account with this email already exists")
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("account not found")
)

// Store manages member accounts.
type Store struct {
	c *mongo.Collection
}

// New creates a new accounts Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("accounts")}
}

// EnsureIndexes creates the unique email index. This index is what makes
// Create an atomic insert-if-absent: two concurrent creates for the same
// email race, one wins and the other gets ErrDuplicateEmail.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_accounts_email_unique").SetUnique(true),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new account. The email is normalized before storage.
// Returns ErrDuplicateEmail if an account with that email already exists.
func (s *Store) Create(ctx context.Context, acct *models.Account) error {
	if acct.ID.IsZero() {
		acct.ID = primitive.NewObjectID()
	}
	acct.Email = normalize.Email(acct.Email)
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = time.Now().UTC()
	}

	if _, err := s.c.InsertOne(ctx, acct); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByEmail returns the account for a (normalized) email, or ErrNotFound.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var acct models.Account
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&acct)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &acct, nil
}

// UpdatePassword replaces the stored password hash for an account.
func (s *Store) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"email": normalize.Email(email)},
		bson.M{"$set": bson.M{"password_hash": passwordHash}})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of accounts.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
