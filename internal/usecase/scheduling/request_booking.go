package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jeffersongondran/luxconnect-scheduler/internal/audit"
	domain "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type RequestBookingInput struct {
	SalonID string
	UserID  uint

	Service string
	Start   time.Time
	Notes   string
}

// ======================================================
// USE CASE
// ======================================================

// RequestBooking é a fronteira transacional da reserva: valida contra
// a grade, segura as vagas no índice, persiste e só então confirma.
type RequestBooking struct {
	directory domain.Directory
	store     domain.AppointmentStore
	index     *domain.Index
	calendar  *domain.SlotCalendar
	clock     domain.Clock
	handles   *domain.HandleRegistry
	cache     AvailabilityCache
	audit     *audit.Dispatcher
}

func NewRequestBooking(
	directory domain.Directory,
	store domain.AppointmentStore,
	index *domain.Index,
	calendar *domain.SlotCalendar,
	clock domain.Clock,
	handles *domain.HandleRegistry,
	cache AvailabilityCache,
	auditDisp *audit.Dispatcher,
) *RequestBooking {
	return &RequestBooking{
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

// ======================================================
// EXECUTE
// ======================================================

func (uc *RequestBooking) Execute(
	ctx context.Context,
	in RequestBookingInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1. Salão ativo
	// --------------------------------------------------
	salon, err := uc.directory.GetSalon(ctx, in.SalonID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.NewError(domain.KindResourceClosed, "salão não encontrado")
		}
		return nil, domain.WrapError(domain.KindResourceClosed, "falha ao carregar salão", err)
	}
	if !salon.Active {
		return nil, domain.NewError(domain.KindResourceClosed, "salão inativo")
	}

	// --------------------------------------------------
	// 2. Serviço oferecido
	// --------------------------------------------------
	svc := salon.ServiceByName(in.Service)
	if svc == nil {
		return nil, domain.NewError(domain.KindInvalidSlot, "serviço não oferecido pelo salão")
	}

	// --------------------------------------------------
	// 3. Grade + expediente + antecedência mínima
	// --------------------------------------------------
	span := uc.calendar.SlotsNeeded(svc, salon)

	if err := uc.calendar.ValidateSpan(salon, in.Start, span); err != nil {
		return nil, err
	}

	now := uc.clock.Now().In(uc.clock.LocationOf(salon))
	if salon.MinAdvanceMinutes > 0 {
		minStart := now.Add(time.Duration(salon.MinAdvanceMinutes) * time.Minute)
		if in.Start.Before(minStart) {
			return nil, domain.NewError(domain.KindInvalidSlot, "antecedência mínima não respeitada")
		}
	}

	// --------------------------------------------------
	// 4. Reserva atômica no índice
	// --------------------------------------------------
	handle, err := uc.index.TryReserve(
		salon.ID,
		in.Start,
		span,
		uc.calendar.SlotStep(salon),
		salon.Capacity,
	)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 5. Persistência + compensação
	// --------------------------------------------------
	price := svc.Price
	ap := &models.Appointment{
		ID:          uuid.NewString(),
		SalonID:     salon.ID,
		UserID:      in.UserID,
		ServiceName: svc.Name,
		DurationMin: span * int(uc.calendar.SlotStep(salon)/time.Minute),
		Price:       &price,
		StartTime:   in.Start,
		Status:      string(domain.StatusConfirmed),
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.store.Save(ctx, ap); err != nil {
		// a reserva nunca pode sobreviver a uma escrita que falhou
		uc.index.Release(handle)
		return nil, domain.WrapError(domain.KindPersistence, "falha ao gravar agendamento", err)
	}

	uc.index.Confirm(handle)
	uc.handles.Put(ap.ID, handle)

	if uc.cache != nil {
		uc.cache.Invalidate(ctx, salon.ID, dayKey(in.Start, uc.clock.LocationOf(salon)))
	}

	// --------------------------------------------------
	// 6. Auditoria
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		SalonID:  salon.ID,
		UserID:   &in.UserID,
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
