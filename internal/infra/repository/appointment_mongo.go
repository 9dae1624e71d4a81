package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	scheduling "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
)

const streamPollInterval = 3 * time.Second

// AppointmentMongoRepository implementa scheduling.AppointmentStore
// sobre o banco de documentos. O _id vem do chamador (UUID), então a
// restrição de chave única do Mongo garante que dois Save concorrentes
// com o mesmo id nunca têm ambos sucesso.
type AppointmentMongoRepository struct {
	coll *mongo.Collection
}

func NewAppointmentMongoRepository(db *mongo.Database) *AppointmentMongoRepository {
	return &AppointmentMongoRepository{coll: db.Collection("appointments")}
}

// EnsureIndexes cria os índices usados pelas listagens por salão e por
// usuário. Chamado uma vez no boot.
func (r *AppointmentMongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "salon_id", Value: 1}, {Key: "start_time", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "start_time", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}
	return nil
}

func (r *AppointmentMongoRepository) Save(ctx context.Context, ap *models.Appointment) error {
	if _, err := r.coll.InsertOne(ctx, ap); err != nil {
		return fmt.Errorf("insert appointment failed: %w", err)
	}
	return nil
}

func (r *AppointmentMongoRepository) UpdateStatus(
	ctx context.Context,
	id string,
	status scheduling.Status,
	at time.Time,
) error {

	set := bson.M{
		"status":     string(status),
		"updated_at": at,
	}
	switch status {
	case scheduling.StatusCancelled:
		set["cancelled_at"] = at
	case scheduling.StatusCompleted:
		set["completed_at"] = at
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update appointment status failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return scheduling.ErrNotFound
	}
	return nil
}

func (r *AppointmentMongoRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	var ap models.Appointment
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&ap); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, scheduling.ErrNotFound
		}
		return nil, fmt.Errorf("find appointment failed: %w", err)
	}
	return &ap, nil
}

func (r *AppointmentMongoRepository) ListBySalon(
	ctx context.Context,
	salonID string,
	from, to time.Time,
) ([]models.Appointment, error) {

	filter := bson.M{
		"salon_id":   salonID,
		"start_time": bson.M{"$gte": from, "$lt": to},
	}

	cursor, err := r.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list appointments by salon failed: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []models.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("decode appointments failed: %w", err)
	}
	return appointments, nil
}

// ListByUser devolve o histórico do usuário, mais recentes primeiro.
func (r *AppointmentMongoRepository) ListByUser(ctx context.Context, userID uint) ([]models.Appointment, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "start_time", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list appointments by user failed: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []models.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("decode appointments failed: %w", err)
	}
	return appointments, nil
}

// StreamBySalon emite retratos da agenda do salão enquanto o contexto
// viver. Implementado por polling: um retrato novo só é emitido quando
// a lista efetivamente muda.
func (r *AppointmentMongoRepository) StreamBySalon(
	ctx context.Context,
	salonID string,
) (<-chan []models.Appointment, error) {

	out := make(chan []models.Appointment, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(streamPollInterval)
		defer ticker.Stop()

		var lastDigest string
		emit := func() {
			from := time.Now().Add(-24 * time.Hour)
			to := time.Now().Add(90 * 24 * time.Hour)

			snapshot, err := r.ListBySalon(ctx, salonID, from, to)
			if err != nil {
				return
			}

			digest := digestOf(snapshot)
			if digest == lastDigest {
				return
			}
			lastDigest = digest

			select {
			case out <- snapshot:
			case <-ctx.Done():
			}
		}

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				emit()
			}
		}
	}()

	return out, nil
}

func digestOf(appointments []models.Appointment) string {
	var b strings.Builder
	for i := range appointments {
		ap := &appointments[i]
		fmt.Fprintf(&b, "%s|%s|%d;", ap.ID, ap.Status, ap.UpdatedAt.UnixNano())
	}
	return b.String()
}
