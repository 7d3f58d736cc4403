package property

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

var ErrNotFound = errors.New("property record not found")

// PropertyRepository persists properties.
type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) (*models.Property, error)
	GetByID(ctx context.Context, id string) (*models.Property, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Property, error)
	Update(ctx context.Context, p *models.Property) error
	Delete(ctx context.Context, id string) error
}

// FloorRepository persists floors.
type FloorRepository interface {
	Create(ctx context.Context, f *models.Floor) (*models.Floor, error)
	GetByID(ctx context.Context, id string) (*models.Floor, error)
	ListByProperty(ctx context.Context, propertyID string) ([]*models.Floor, error)
	Update(ctx context.Context, f *models.Floor) error
	DeleteByProperty(ctx context.Context, propertyID string) error
}

// UnitRepository persists units.
type UnitRepository interface {
	CreateMany(ctx context.Context, units []*models.Unit) error
	GetByID(ctx context.Context, id string) (*models.Unit, error)
	ListByFloor(ctx context.Context, floorID string) ([]*models.Unit, error)
	ListByProperty(ctx context.Context, propertyID string) ([]*models.Unit, error)
	Update(ctx context.Context, u *models.Unit) error
	DeleteByFloor(ctx context.Context, floorID string) error
}

// UnitTypeRepository persists reusable unit templates.
type UnitTypeRepository interface {
	Create(ctx context.Context, t *models.UnitType) (*models.UnitType, error)
	GetByID(ctx context.Context, id string) (*models.UnitType, error)
	List(ctx context.Context) ([]*models.UnitType, error)
}

// UtilityRepository persists per-unit utilities.
type UtilityRepository interface {
	Create(ctx context.Context, u *models.UnitUtility) (*models.UnitUtility, error)
	ListByUnit(ctx context.Context, unitID string) ([]*models.UnitUtility, error)
}

// MaintenanceRepository persists maintenance reports.
type MaintenanceRepository interface {
	Create(ctx context.Context, m *models.UnitMaintenance) (*models.UnitMaintenance, error)
	GetByID(ctx context.Context, id string) (*models.UnitMaintenance, error)
	ListByUnit(ctx context.Context, unitID string) ([]*models.UnitMaintenance, error)
	ListByProperty(ctx context.Context, propertyID string) ([]*models.UnitMaintenance, error)
	Update(ctx context.Context, m *models.UnitMaintenance) error
}

// Repositories bundles the property-domain stores handed to the service.
type Repositories struct {
	Properties  PropertyRepository
	Floors      FloorRepository
	Units       UnitRepository
	UnitTypes   UnitTypeRepository
	Utilities   UtilityRepository
	Maintenance MaintenanceRepository
}

// --- Mongo implementations ---

type MongoPropertyRepository struct{ col *mongo.Collection }

func NewMongoPropertyRepository(col *mongo.Collection) *MongoPropertyRepository {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "ownerId", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &MongoPropertyRepository{col: col}
}

func (r *MongoPropertyRepository) Create(ctx context.Context, p *models.Property) (*models.Property, error) {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *MongoPropertyRepository) GetByID(ctx context.Context, id string) (*models.Property, error) {
	var p models.Property
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *MongoPropertyRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Property, error) {
	cur, err := r.col.Find(ctx, bson.M{"ownerId": ownerID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Property
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoPropertyRepository) Update(ctx context.Context, p *models.Property) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPropertyRepository) Delete(ctx context.Context, id string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

type MongoFloorRepository struct{ col *mongo.Collection }

func NewMongoFloorRepository(col *mongo.Collection) *MongoFloorRepository {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "propertyId", Value: 1}, {Key: "floorNumber", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &MongoFloorRepository{col: col}
}

func (r *MongoFloorRepository) Create(ctx context.Context, f *models.Floor) (*models.Floor, error) {
	now := time.Now().UTC()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.CreatedAt = now
	f.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (r *MongoFloorRepository) GetByID(ctx context.Context, id string) (*models.Floor, error) {
	var f models.Floor
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *MongoFloorRepository) ListByProperty(ctx context.Context, propertyID string) ([]*models.Floor, error) {
	cur, err := r.col.Find(ctx, bson.M{"propertyId": propertyID}, options.Find().SetSort(bson.D{{Key: "floorNumber", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Floor
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoFloorRepository) Update(ctx context.Context, f *models.Floor) error {
	f.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": f.ID}, f)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoFloorRepository) DeleteByProperty(ctx context.Context, propertyID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"propertyId": propertyID})
	return err
}

type MongoUnitRepository struct{ col *mongo.Collection }

func NewMongoUnitRepository(col *mongo.Collection) *MongoUnitRepository {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "floorId", Value: 1}, {Key: "unitNumber", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &MongoUnitRepository{col: col}
}

func (r *MongoUnitRepository) CreateMany(ctx context.Context, units []*models.Unit) error {
	if len(units) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(units))
	for _, u := range units {
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		u.CreatedAt = now
		u.UpdatedAt = now
		docs = append(docs, u)
	}
	_, err := r.col.InsertMany(ctx, docs)
	return err
}

func (r *MongoUnitRepository) GetByID(ctx context.Context, id string) (*models.Unit, error) {
	var u models.Unit
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoUnitRepository) ListByFloor(ctx context.Context, floorID string) ([]*models.Unit, error) {
	return r.list(ctx, bson.M{"floorId": floorID})
}

func (r *MongoUnitRepository) ListByProperty(ctx context.Context, propertyID string) ([]*models.Unit, error) {
	return r.list(ctx, bson.M{"propertyId": propertyID})
}

func (r *MongoUnitRepository) list(ctx context.Context, filter bson.M) ([]*models.Unit, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "unitNumber", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Unit
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoUnitRepository) Update(ctx context.Context, u *models.Unit) error {
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

func (r *MongoUnitRepository) DeleteByFloor(ctx context.Context, floorID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"floorId": floorID})
	return err
}

type MongoUnitTypeRepository struct{ col *mongo.Collection }

func NewMongoUnitTypeRepository(col *mongo.Collection) *MongoUnitTypeRepository {
	return &MongoUnitTypeRepository{col: col}
}

func (r *MongoUnitTypeRepository) Create(ctx context.Context, t *models.UnitType) (*models.UnitType, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()
	if _, err := r.col.InsertOne(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *MongoUnitTypeRepository) GetByID(ctx context.Context, id string) (*models.UnitType, error) {
	var t models.UnitType
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *MongoUnitTypeRepository) List(ctx context.Context) ([]*models.UnitType, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.UnitType
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type MongoUtilityRepository struct{ col *mongo.Collection }

func NewMongoUtilityRepository(col *mongo.Collection) *MongoUtilityRepository {
	return &MongoUtilityRepository{col: col}
}

func (r *MongoUtilityRepository) Create(ctx context.Context, u *models.UnitUtility) (*models.UnitUtility, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *MongoUtilityRepository) ListByUnit(ctx context.Context, unitID string) ([]*models.UnitUtility, error) {
	cur, err := r.col.Find(ctx, bson.M{"unitId": unitID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.UnitUtility
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type MongoMaintenanceRepository struct{ col *mongo.Collection }

func NewMongoMaintenanceRepository(col *mongo.Collection) *MongoMaintenanceRepository {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "propertyId", Value: 1}, {Key: "status", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &MongoMaintenanceRepository{col: col}
}

func (r *MongoMaintenanceRepository) Create(ctx context.Context, m *models.UnitMaintenance) (*models.UnitMaintenance, error) {
	now := time.Now().UTC()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *MongoMaintenanceRepository) GetByID(ctx context.Context, id string) (*models.UnitMaintenance, error) {
	var m models.UnitMaintenance
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MongoMaintenanceRepository) ListByUnit(ctx context.Context, unitID string) ([]*models.UnitMaintenance, error) {
	return r.list(ctx, bson.M{"unitId": unitID})
}

func (r *MongoMaintenanceRepository) ListByProperty(ctx context.Context, propertyID string) ([]*models.UnitMaintenance, error) {
	return r.list(ctx, bson.M{"propertyId": propertyID})
}

func (r *MongoMaintenanceRepository) Update(ctx context.Context, m *models.UnitMaintenance) error {
	m.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoMaintenanceRepository) list(ctx context.Context, filter bson.M) ([]*models.UnitMaintenance, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.UnitMaintenance
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NewMongoRepositories wires every property-domain collection of the database.
func NewMongoRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Properties:  NewMongoPropertyRepository(db.Collection("properties")),
		Floors:      NewMongoFloorRepository(db.Collection("floors")),
		Units:       NewMongoUnitRepository(db.Collection("units")),
		UnitTypes:   NewMongoUnitTypeRepository(db.Collection("unit_types")),
		Utilities:   NewMongoUtilityRepository(db.Collection("unit_utilities")),
		Maintenance: NewMongoMaintenanceRepository(db.Collection("unit_maintenance")),
	}
}
