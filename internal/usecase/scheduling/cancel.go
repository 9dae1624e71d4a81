package scheduling

import (
	"context"
	"time"

	"github.com/jeffersongondran/luxconnect-scheduler/internal/audit"
	domain "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
)

type CancelAppointment struct {
	directory domain.Directory
	store     domain.AppointmentStore
	index     *domain.Index
	calendar  *domain.SlotCalendar
	clock     domain.Clock
	handles   *domain.HandleRegistry
	cache     AvailabilityCache
	audit     *audit.Dispatcher
}

func NewCancelAppointment(
	directory domain.Directory,
	store domain.AppointmentStore,
	index *domain.Index,
	calendar *domain.SlotCalendar,
	clock domain.Clock,
	handles *domain.HandleRegistry,
	cache AvailabilityCache,
	auditDisp *audit.Dispatcher,
) *CancelAppointment {
	return &CancelAppointment{
		directory: directory,
		store:     store,
		index:     index,
		calendar:  calendar,
		clock:     clock,
		handles:   handles,
		cache:     cache,
		audit:     auditDisp,
	}
}

// Execute cancela um agendamento confirmado. Somente o dono (ou um
// administrador) pode cancelar, e apenas antes do início respeitando o
// prazo limite do salão.
//
// A ordem aqui é o inverso da reserva: libera o índice primeiro e só
// depois grava o status. Se a escrita falhar, a vaga já foi devolvida e
// o store fica defasado até a reconciliação periódica corrigir.
func (uc *CancelAppointment) Execute(
	ctx context.Context,
	appointmentID string,
	actingUserID uint,
	asAdmin bool,
) (*models.Appointment, error) {

	ap, err := uc.store.FindByID(ctx, appointmentID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.NewError(domain.KindNotFound, "agendamento não encontrado")
		}
		return nil, domain.WrapError(domain.KindPersistence, "falha ao carregar agendamento", err)
	}

	if !asAdmin && ap.UserID != actingUserID {
		return nil, domain.NewError(domain.KindForbidden, "agendamento pertence a outro usuário")
	}

	salon, err := uc.directory.GetSalon(ctx, ap.SalonID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.NewError(domain.KindResourceClosed, "salão não encontrado")
		}
		return nil, domain.WrapError(domain.KindResourceClosed, "falha ao carregar salão", err)
	}

	now := uc.clock.Now().In(uc.clock.LocationOf(salon))

	if err := domain.CanCancel(domain.Status(ap.Status)); err != nil {
		return nil, err
	}

	deadline := ap.StartTime.Add(-time.Duration(salon.CancelLeadMinutes) * time.Minute)
	if !now.Before(deadline) {
		return nil, domain.NewError(domain.KindNotCancellable, "prazo de cancelamento expirado")
	}

	// libera a vaga antes da escrita: o slot deve aparecer livre assim
	// que o cancelamento for observável
	step := uc.calendar.SlotStep(salon)
	if h := uc.handles.Take(ap.ID); h != nil {
		uc.index.Release(h)
	} else {
		uc.index.ReleaseSlots(salon.ID, ap.StartTime, spanFor(ap, step), step)
	}

	if err := uc.store.UpdateStatus(ctx, ap.ID, domain.StatusCancelled, now); err != nil {
		return nil, domain.WrapError(domain.KindPersistence, "falha ao gravar cancelamento", err)
	}

	ap.Status = string(domain.StatusCancelled)
	ap.CancelledAt = &now

	if uc.cache != nil {
		uc.cache.Invalidate(ctx, salon.ID, dayKey(ap.StartTime, uc.clock.LocationOf(salon)))
	}

	uc.audit.Dispatch(audit.Event{
		SalonID:  salon.ID,
		UserID:   &actingUserID,
		Action:   "appointment_cancelled",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}

func spanFor(ap *models.Appointment, step time.Duration) int {
	stepMin := int(step / time.Minute)
	if stepMin <= 0 || ap.DurationMin <= 0 {
		return 1
	}

	span := (ap.DurationMin + stepMin - 1) / stepMin
	if span < 1 {
		span = 1
	}
	return span
}
