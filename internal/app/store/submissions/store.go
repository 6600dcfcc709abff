// internal/app/store/submissions/store.go
package submissions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/applyhub/internal/domain/models"
)

// ErrInvalidID is returned when a caller passes an ID that is not a valid
// ObjectID hex string.
var ErrInvalidID = errors.New("invalid submission id")

// Store manages application submissions.
type Store struct {
	c *mongo.Collection
}

// New creates a new submissions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("submissions")}
}

// EnsureIndexes creates indexes for the submission list and review queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_submissions_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_submissions_status_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_submissions_email"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Insert stores a new submission. The ID and Timestamp are assigned here;
// Status is forced to pending regardless of what the caller set.
func (s *Store) Insert(ctx context.Context, sub *models.Submission) (primitive.ObjectID, error) {
	sub.ID = primitive.NewObjectID()
	sub.Status = models.StatusPending
	if sub.Timestamp.IsZero() {
		sub.Timestamp = time.Now().UTC()
	}

	if _, err := s.c.InsertOne(ctx, sub); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert submission: %w", err)
	}
	return sub.ID, nil
}

// List returns all submissions, newest first.
func (s *Store) List(ctx context.Context) ([]models.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find submissions: %w", err)
	}
	defer cur.Close(ctx)

	var subs []models.Submission
	if err := cur.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("decode submissions: %w", err)
	}
	return subs, nil
}

// GetByID returns one submission, or mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var sub models.Submission
	if err := s.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByIDs returns the submissions whose IDs appear in ids. Invalid IDs are
// skipped; missing ones are simply absent from the result.
func (s *Store) GetByIDs(ctx context.Context, ids []string) ([]models.Submission, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}

	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("find submissions by ids: %w", err)
	}
	defer cur.Close(ctx)

	var subs []models.Submission
	if err := cur.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("decode submissions: %w", err)
	}
	return subs, nil
}

// UpdateStatus sets the status and review notes on one submission and
// returns how many documents matched (0 when the ID does not exist).
func (s *Store) UpdateStatus(ctx context.Context, id, status, notes string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, ErrInvalidID
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": status, "notes": notes}})
	if err != nil {
		return 0, fmt.Errorf("update submission status: %w", err)
	}
	return res.MatchedCount, nil
}

// UpdateStatusMany sets the status on every submission in ids and returns
// how many documents were modified. Invalid IDs are skipped.
func (s *Store) UpdateStatusMany(ctx context.Context, ids []string, status string) (int64, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return 0, nil
	}

	res, err := s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": oids}},
		bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return 0, fmt.Errorf("bulk update status: %w", err)
	}
	return res.ModifiedCount, nil
}

// DeleteOne removes a submission and returns how many documents matched.
func (s *Store) DeleteOne(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, ErrInvalidID
	}

	res, err := s.c.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("delete submission: %w", err)
	}
	return res.DeletedCount, nil
}

// DeleteMany removes every submission in ids and returns the deleted count.
// Invalid IDs are skipped.
func (s *Store) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return 0, nil
	}

	res, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return 0, fmt.Errorf("bulk delete submissions: %w", err)
	}
	return res.DeletedCount, nil
}

func objectIDs(ids []string) []primitive.ObjectID {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	return oids
}
