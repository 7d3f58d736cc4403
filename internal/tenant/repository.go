package tenant

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wapangaji/kiganjani/internal/models"
)

var ErrNotFound = errors.New("tenant record not found")

// ListFilter narrows and pages tenant listings. OwnerID restricts results to
// one landlord's tenants; TenantIDs, when non-nil, restricts results to that
// set (used for property-scoped listings).
type ListFilter struct {
	OwnerID   string
	Search    string
	Status    string
	TenantIDs []string
	Page      int
	PageSize  int
	OrderBy   string // fullName | createdAt | -createdAt
}

func (f *ListFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
}

// TenantRepository persists tenants.
type TenantRepository interface {
	Create(ctx context.Context, t *models.Tenant) (*models.Tenant, error)
	GetByID(ctx context.Context, id string) (*models.Tenant, error)
	GetByPhone(ctx context.Context, phone string) (*models.Tenant, error)
	List(ctx context.Context, f ListFilter) ([]*models.Tenant, int64, error)
	Update(ctx context.Context, t *models.Tenant) error
}

// OccupancyRepository persists tenancy agreements.
type OccupancyRepository interface {
	Create(ctx context.Context, o *models.TenantOccupancy) (*models.TenantOccupancy, error)
	GetByID(ctx context.Context, id string) (*models.TenantOccupancy, error)
	GetActiveByUnit(ctx context.Context, unitID string) (*models.TenantOccupancy, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*models.TenantOccupancy, error)
	ListByProperty(ctx context.Context, propertyID string) ([]*models.TenantOccupancy, error)
	Update(ctx context.Context, o *models.TenantOccupancy) error
}

// DocumentRepository persists tenant document records (files live in MinIO).
type DocumentRepository interface {
	Create(ctx context.Context, d *models.TenantDocument) (*models.TenantDocument, error)
	GetByID(ctx context.Context, id string) (*models.TenantDocument, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*models.TenantDocument, error)
}

// NoteRepository persists tenant notes.
type NoteRepository interface {
	Create(ctx context.Context, n *models.TenantNote) (*models.TenantNote, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*models.TenantNote, error)
}

// Repositories bundles the tenant-domain stores handed to the service.
type Repositories struct {
	Tenants     TenantRepository
	Occupancies OccupancyRepository
	Documents   DocumentRepository
	Notes       NoteRepository
}

// --- Mongo implementations ---

type MongoTenantRepository struct{ col *mongo.Collection }

func NewMongoTenantRepository(col *mongo.Collection) *MongoTenantRepository {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "phoneNumber", Value: 1}}, Options: options.Index().SetUnique(true)}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &MongoTenantRepository{col: col}
}

func (r *MongoTenantRepository) Create(ctx context.Context, t *models.Tenant) (*models.Tenant, error) {
	now := time.Now().UTC()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *MongoTenantRepository) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	var t models.Tenant
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *MongoTenantRepository) GetByPhone(ctx context.Context, phone string) (*models.Tenant, error) {
	var t models.Tenant
	if err := r.col.FindOne(ctx, bson.M{"phoneNumber": phone}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *MongoTenantRepository) List(ctx context.Context, f ListFilter) ([]*models.Tenant, int64, error) {
	f.normalize()
	filter := bson.M{}
	if f.OwnerID != "" {
		filter["ownerId"] = f.OwnerID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.TenantIDs != nil {
		filter["_id"] = bson.M{"$in": f.TenantIDs}
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: f.Search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"fullName": re},
			bson.M{"phoneNumber": re},
			bson.M{"email": re},
		}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sort := bson.D{{Key: "createdAt", Value: -1}}
	switch f.OrderBy {
	case "fullName":
		sort = bson.D{{Key: "fullName", Value: 1}}
	case "createdAt":
		sort = bson.D{{Key: "createdAt", Value: 1}}
	}
	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((f.Page - 1) * f.PageSize)).
		SetLimit(int64(f.PageSize))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var out []*models.Tenant
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *MongoTenantRepository) Update(ctx context.Context, t *models.Tenant) error {
	t.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type MongoOccupancyRepository struct{ col *mongo.Collection }

func NewMongoOccupancyRepository(col *mongo.Collection) *MongoOccupancyRepository {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "unitId", Value: 1}, {Key: "status", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &MongoOccupancyRepository{col: col}
}

func (r *MongoOccupancyRepository) Create(ctx context.Context, o *models.TenantOccupancy) (*models.TenantOccupancy, error) {
	now := time.Now().UTC()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.CreatedAt = now
	o.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *MongoOccupancyRepository) GetByID(ctx context.Context, id string) (*models.TenantOccupancy, error) {
	var o models.TenantOccupancy
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *MongoOccupancyRepository) GetActiveByUnit(ctx context.Context, unitID string) (*models.TenantOccupancy, error) {
	var o models.TenantOccupancy
	err := r.col.FindOne(ctx, bson.M{"unitId": unitID, "status": models.OccupancyActive}).Decode(&o)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *MongoOccupancyRepository) ListByTenant(ctx context.Context, tenantID string) ([]*models.TenantOccupancy, error) {
	return r.list(ctx, bson.M{"tenantId": tenantID})
}

func (r *MongoOccupancyRepository) ListByProperty(ctx context.Context, propertyID string) ([]*models.TenantOccupancy, error) {
	return r.list(ctx, bson.M{"propertyId": propertyID})
}

func (r *MongoOccupancyRepository) list(ctx context.Context, filter bson.M) ([]*models.TenantOccupancy, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "startDate", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.TenantOccupancy
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoOccupancyRepository) Update(ctx context.Context, o *models.TenantOccupancy) error {
	o.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type MongoDocumentRepository struct{ col *mongo.Collection }

func NewMongoDocumentRepository(col *mongo.Collection) *MongoDocumentRepository {
	return &MongoDocumentRepository{col: col}
}

func (r *MongoDocumentRepository) Create(ctx context.Context, d *models.TenantDocument) (*models.TenantDocument, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = time.Now().UTC()
	if _, err := r.col.InsertOne(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *MongoDocumentRepository) GetByID(ctx context.Context, id string) (*models.TenantDocument, error) {
	var d models.TenantDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *MongoDocumentRepository) ListByTenant(ctx context.Context, tenantID string) ([]*models.TenantDocument, error) {
	cur, err := r.col.Find(ctx, bson.M{"tenantId": tenantID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.TenantDocument
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type MongoNoteRepository struct{ col *mongo.Collection }

func NewMongoNoteRepository(col *mongo.Collection) *MongoNoteRepository {
	return &MongoNoteRepository{col: col}
}

func (r *MongoNoteRepository) Create(ctx context.Context, n *models.TenantNote) (*models.TenantNote, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now().UTC()
	if _, err := r.col.InsertOne(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *MongoNoteRepository) ListByTenant(ctx context.Context, tenantID string) ([]*models.TenantNote, error) {
	cur, err := r.col.Find(ctx, bson.M{"tenantId": tenantID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.TenantNote
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NewMongoRepositories wires every tenant-domain collection of the database.
func NewMongoRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Tenants:     NewMongoTenantRepository(db.Collection("tenants")),
		Occupancies: NewMongoOccupancyRepository(db.Collection("tenant_occupancies")),
		Documents:   NewMongoDocumentRepository(db.Collection("tenant_documents")),
		Notes:       NewMongoNoteRepository(db.Collection("tenant_notes")),
	}
}
