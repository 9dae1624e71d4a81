package scheduling

import (
	"context"

	"github.com/jeffersongondran/luxconnect-scheduler/internal/audit"
	domain "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
)

type MarkNoShow struct {
	store   domain.AppointmentStore
	clock   domain.Clock
	handles *domain.HandleRegistry
	audit   *audit.Dispatcher
}

func NewMarkNoShow(
	store domain.AppointmentStore,
	clock domain.Clock,
	handles *domain.HandleRegistry,
	auditDisp *audit.Dispatcher,
) *MarkNoShow {
	return &MarkNoShow{
		store:   store,
		clock:   clock,
		handles: handles,
		audit:   auditDisp,
	}
}

func (uc *MarkNoShow) Execute(
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
	if err := domain.MarkNoShow(ap, now); err != nil {
		return nil, err
	}

	if err := uc.store.UpdateStatus(ctx, ap.ID, domain.StatusNoShow, now); err != nil {
		return nil, domain.WrapError(domain.KindPersistence, "falha ao gravar no-show", err)
	}

	uc.handles.Take(ap.ID)

	uc.audit.Dispatch(audit.Event{
		SalonID:  ap.SalonID,
		UserID:   &actingUserID,
		Action:   "appointment_no_show",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
