package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wapangaji/kiganjani/internal/models"
)

var ErrNotFound = errors.New("notification not found")

// Repository persists notifications.
type Repository interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]*models.Notification, error)
	CountByRecipient(ctx context.Context, recipientID string) (total, unread int64, err error)
	Update(ctx context.Context, n *models.Notification) error
	MarkAllRead(ctx context.Context, recipientID string, at time.Time) error
}

// PreferenceRepository persists per-user notification preferences.
type PreferenceRepository interface {
	Get(ctx context.Context, userID string) (*models.NotificationPreference, error)
	Upsert(ctx context.Context, p *models.NotificationPreference) error
}

type MongoRepository struct{ col *mongo.Collection }

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "recipientId", Value: 1}, {Key: "isRead", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now().UTC()
	if _, err := r.col.InsertOne(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *MongoRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]*models.Notification, error) {
	filter := bson.M{"recipientId": recipientID}
	if unreadOnly {
		filter["isRead"] = false
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) CountByRecipient(ctx context.Context, recipientID string) (int64, int64, error) {
	total, err := r.col.CountDocuments(ctx, bson.M{"recipientId": recipientID})
	if err != nil {
		return 0, 0, err
	}
	unread, err := r.col.CountDocuments(ctx, bson.M{"recipientId": recipientID, "isRead": false})
	if err != nil {
		return 0, 0, err
	}
	return total, unread, nil
}

func (r *MongoRepository) Update(ctx context.Context, n *models.Notification) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": n.ID}, n)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) MarkAllRead(ctx context.Context, recipientID string, at time.Time) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"recipientId": recipientID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "readAt": at}})
	return err
}

type MongoPreferenceRepository struct{ col *mongo.Collection }

func NewMongoPreferenceRepository(col *mongo.Collection) *MongoPreferenceRepository {
	return &MongoPreferenceRepository{col: col}
}

func (r *MongoPreferenceRepository) Get(ctx context.Context, userID string) (*models.NotificationPreference, error) {
	var p models.NotificationPreference
	if err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *MongoPreferenceRepository) Upsert(ctx context.Context, p *models.NotificationPreference) error {
	p.UpdatedAt = time.Now().UTC()
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.UserID}, p, options.Replace().SetUpsert(true))
	return err
}
