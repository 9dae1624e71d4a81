package scheduling

import (
	"context"

	"github.com/jeffersongondran/luxconnect-scheduler/internal/audit"
	domain "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
)

// CompleteAppointment é uma transição administrativa: o slot já foi
// consumido na reserva, então o índice não é tocado.
type CompleteAppointment struct {
	store   domain.AppointmentStore
	clock   domain.Clock
	handles *domain.HandleRegistry
	audit   *audit.Dispatcher
}

func NewCompleteAppointment(
	store domain.AppointmentStore,
	clock domain.Clock,
	handles *domain.HandleRegistry,
	auditDisp *audit.Dispatcher,
) *CompleteAppointment {
	return &CompleteAppointment{
		store:   store,
		clock:   clock,
		handles: handles,
		audit:   auditDisp,
	}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	appointmentID string,
	actingUserID uint,
) (*models.Appointment, error) {

	ap, err := uc.store.FindByID(ctx, appointmentID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.NewError(domain.KindNotFound, "agendamento não encontrado")
		}
		return nil, domain.WrapError(domain.KindPersistence, "falha ao carregar agendamento", err)
	}

	now := uc.clock.Now()
	if err := domain.Complete(ap, now); err != nil {
		return nil, err
	}

	if err := uc.store.UpdateStatus(ctx, ap.ID, domain.StatusCompleted, now); err != nil {
		return nil, domain.WrapError(domain.KindPersistence, "falha ao gravar conclusão", err)
	}

	// o handle não é mais necessário; descartar evita vazamento
	uc.handles.Take(ap.ID)

	uc.audit.Dispatch(audit.Event{
		SalonID:  ap.SalonID,
		UserID:   &actingUserID,
		Action:   "appointment_completed",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
