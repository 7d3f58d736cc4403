package sms

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrTemplateNotFound = errors.New("sms template not found")

// TemplateRepository persists SMS templates.
type TemplateRepository interface {
	Create(ctx context.Context, t *Template) error
	Get(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context) ([]*Template, error)
	Update(ctx context.Context, t *Template) error
	Delete(ctx context.Context, id string) error
}

// LogRepository persists delivery log entries.
type LogRepository interface {
	Create(ctx context.Context, l *Log) error
	ListRecent(ctx context.Context, limit int64) ([]*Log, error)
}

// Mongo implementations.

type MongoTemplateRepository struct{ col *mongo.Collection }

func NewMongoTemplateRepository(col *mongo.Collection) *MongoTemplateRepository {
	return &MongoTemplateRepository{col: col}
}

func (r *MongoTemplateRepository) Create(ctx context.Context, t *Template) error {
	now := time.Now().UTC()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt, t.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, t)
	return err
}

func (r *MongoTemplateRepository) Get(ctx context.Context, id string) (*Template, error) {
	var t Template
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *MongoTemplateRepository) List(ctx context.Context) ([]*Template, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Template{}
	for cur.Next(ctx) {
		var t Template
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, cur.Err()
}

func (r *MongoTemplateRepository) Update(ctx context.Context, t *Template) error {
	t.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (r *MongoTemplateRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

type MongoLogRepository struct{ col *mongo.Collection }

func NewMongoLogRepository(col *mongo.Collection) *MongoLogRepository {
	return &MongoLogRepository{col: col}
}

func (r *MongoLogRepository) Create(ctx context.Context, l *Log) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.SentAt.IsZero() {
		l.SentAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, l)
	return err
}

func (r *MongoLogRepository) ListRecent(ctx context.Context, limit int64) ([]*Log, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sentAt", Value: -1}}).SetLimit(limit)
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Log{}
	for cur.Next(ctx) {
		var l Log
		if err := cur.Decode(&l); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, cur.Err()
}

// Memory implementations for tests and storage-less development.

type MemoryTemplateRepository struct {
	mu    sync.RWMutex
	store map[string]*Template
}

func NewMemoryTemplateRepository() *MemoryTemplateRepository {
	return &MemoryTemplateRepository{store: map[string]*Template{}}
}

func (r *MemoryTemplateRepository) Create(ctx context.Context, t *Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt, t.UpdatedAt = now, now
	cp := *t
	r.store[t.ID] = &cp
	return nil
}

func (r *MemoryTemplateRepository) Get(ctx context.Context, id string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.store[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, ErrTemplateNotFound
}

func (r *MemoryTemplateRepository) List(ctx context.Context) ([]*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Template, 0, len(r.store))
	for _, t := range r.store {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MemoryTemplateRepository) Update(ctx context.Context, t *Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[t.ID]; !ok {
		return ErrTemplateNotFound
	}
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	r.store[t.ID] = &cp
	return nil
}

func (r *MemoryTemplateRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[id]; !ok {
		return ErrTemplateNotFound
	}
	delete(r.store, id)
	return nil
}

type MemoryLogRepository struct {
	mu   sync.Mutex
	logs []*Log
}

func NewMemoryLogRepository() *MemoryLogRepository { return &MemoryLogRepository{} }

func (r *MemoryLogRepository) Create(ctx context.Context, l *Log) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.SentAt.IsZero() {
		l.SentAt = time.Now().UTC()
	}
	cp := *l
	r.logs = append(r.logs, &cp)
	return nil
}

func (r *MemoryLogRepository) ListRecent(ctx context.Context, limit int64) ([]*Log, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*Log{}
	for i := len(r.logs) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		cp := *r.logs[i]
		out = append(out, &cp)
	}
	return out, nil
}
