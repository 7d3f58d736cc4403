package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wapangaji/kiganjani/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("user not found")

// UserRepository defines persistence operations for users
type UserRepository interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
}

// SessionAuditRepository records device logins (who, where, when).
type SessionAuditRepository interface {
	Create(ctx context.Context, s *models.UserSession) error
	EndAllForUser(ctx context.Context, userID string, at time.Time) error
	ListByUser(ctx context.Context, userID string) ([]*models.UserSession, error)
}

// MongoUserRepository implements UserRepository using MongoDB
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a new repository for the given collection
// and ensures the phone-number uniqueness index.
func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "phoneNumber", Value: 1}}, Options: options.Index().SetUnique(true)}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &MongoUserRepository{col: col}
}

func (r *MongoUserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.DateJoined.IsZero() {
		u.DateJoined = now
	}
	u.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *MongoUserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"phoneNumber": phone}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepository) Update(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MongoSessionAuditRepository stores UserSession records in MongoDB.
type MongoSessionAuditRepository struct {
	col *mongo.Collection
}

func NewMongoSessionAuditRepository(col *mongo.Collection) *MongoSessionAuditRepository {
	return &MongoSessionAuditRepository{col: col}
}

func (r *MongoSessionAuditRepository) Create(ctx context.Context, s *models.UserSession) error {
	now := time.Now().UTC()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.LastActivity = now
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *MongoSessionAuditRepository) EndAllForUser(ctx context.Context, userID string, at time.Time) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"userId": userID, "endedAt": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"endedAt": at}})
	return err
}

func (r *MongoSessionAuditRepository) ListByUser(ctx context.Context, userID string) ([]*models.UserSession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "lastActivity", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.UserSession{}
	for cur.Next(ctx) {
		var s models.UserSession
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, cur.Err()
}
