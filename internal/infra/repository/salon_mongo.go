package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	scheduling "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
)

// SalonMongoRepository é o diretório de salões (scheduling.Directory)
// mais as operações de catálogo usadas pelos handlers.
type SalonMongoRepository struct {
	coll *mongo.Collection
}

func NewSalonMongoRepository(db *mongo.Database) *SalonMongoRepository {
	return &SalonMongoRepository{coll: db.Collection("salons")}
}

func (r *SalonMongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "name", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create salon indexes: %w", err)
	}
	return nil
}

func (r *SalonMongoRepository) GetSalon(ctx context.Context, id string) (*models.Salon, error) {
	var salon models.Salon
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&salon); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, scheduling.ErrNotFound
		}
		return nil, fmt.Errorf("find salon failed: %w", err)
	}
	return &salon, nil
}

func (r *SalonMongoRepository) GetBySlug(ctx context.Context, slug string) (*models.Salon, error) {
	var salon models.Salon
	if err := r.coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&salon); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, scheduling.ErrNotFound
		}
		return nil, fmt.Errorf("find salon by slug failed: %w", err)
	}
	return &salon, nil
}

// ListActiveSalons devolve os salões ativos ordenados por nome.
func (r *SalonMongoRepository) ListActiveSalons(ctx context.Context) ([]models.Salon, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"active": true},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list salons failed: %w", err)
	}
	defer cursor.Close(ctx)

	var salons []models.Salon
	if err := cursor.All(ctx, &salons); err != nil {
		return nil, fmt.Errorf("decode salons failed: %w", err)
	}
	return salons, nil
}

// Search filtra salões ativos por termo, casando nome ou serviços
// oferecidos, sem diferenciar maiúsculas.
func (r *SalonMongoRepository) Search(ctx context.Context, term string) ([]models.Salon, error) {
	if term == "" {
		return r.ListActiveSalons(ctx)
	}

	pattern := bson.M{"$regex": term, "$options": "i"}
	filter := bson.M{
		"active": true,
		"$or": []bson.M{
			{"name": pattern},
			{"services.name": pattern},
		},
	}

	cursor, err := r.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("search salons failed: %w", err)
	}
	defer cursor.Close(ctx)

	var salons []models.Salon
	if err := cursor.All(ctx, &salons); err != nil {
		return nil, fmt.Errorf("decode salons failed: %w", err)
	}
	return salons, nil
}

func (r *SalonMongoRepository) Create(ctx context.Context, salon *models.Salon) error {
	if _, err := r.coll.InsertOne(ctx, salon); err != nil {
		return fmt.Errorf("insert salon failed: %w", err)
	}
	return nil
}

// Update grava campos editáveis do documento (catálogo, expediente,
// políticas). Dados de identidade não mudam por aqui.
func (r *SalonMongoRepository) Update(ctx context.Context, salon *models.Salon) error {
	set := bson.M{
		"name":                salon.Name,
		"phone":               salon.Phone,
		"address":             salon.Address,
		"timezone":            salon.Timezone,
		"slot_minutes":        salon.SlotMinutes,
		"capacity":            salon.Capacity,
		"min_advance_minutes": salon.MinAdvanceMinutes,
		"cancel_lead_minutes": salon.CancelLeadMinutes,
		"services":            salon.Services,
		"hours":               salon.Hours,
		"active":              salon.Active,
		"updated_at":          salon.UpdatedAt,
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": salon.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update salon failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return scheduling.ErrNotFound
	}
	return nil
}

// FindByIDs resolve os salões favoritados de um usuário.
func (r *SalonMongoRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Salon, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find salons by ids failed: %w", err)
	}
	defer cursor.Close(ctx)

	var salons []models.Salon
	if err := cursor.All(ctx, &salons); err != nil {
		return nil, fmt.Errorf("decode salons failed: %w", err)
	}
	return salons, nil
}
