package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
)

// ErrNotFound é o sentinela devolvido pelos adaptadores de persistência
// quando o documento não existe. Qualquer outro erro é tratado como
// falha opaca do store.
var ErrNotFound = errors.New("scheduling: registro não encontrado")

// AppointmentStore é o contrato com o banco de documentos. Escritas
// para um mesmo id são linearizáveis: dois Save concorrentes com o
// mesmo id nunca têm ambos sucesso.
type AppointmentStore interface {
	Save(ctx context.Context, ap *models.Appointment) error
	UpdateStatus(ctx context.Context, id string, status Status, at time.Time) error
	FindByID(ctx context.Context, id string) (*models.Appointment, error)

	// Janelas usadas pelo rebuild do índice e pela reconciliação.
	ListBySalon(ctx context.Context, salonID string, from, to time.Time) ([]models.Appointment, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Appointment, error)

	// StreamBySalon emite retratos da lista de agendamentos do salão
	// até o contexto ser cancelado. O canal é fechado pelo produtor.
	StreamBySalon(ctx context.Context, salonID string) (<-chan []models.Appointment, error)
}

// Directory é o diretório de salões (dados de referência, cacheáveis
// pelo chamador). Os serviços oferecidos vêm embutidos no documento do
// salão — ver models.Salon.ServiceByName.
type Directory interface {
	GetSalon(ctx context.Context, id string) (*models.Salon, error)
	ListActiveSalons(ctx context.Context) ([]models.Salon, error)
}
