package scheduling

import (
	"context"
	"testing"
	"time"

	domain "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
)

func (env *bookingEnv) availability() *GetAvailability {
	return NewGetAvailability(env.directory(), env.index, env.calendar, env.clock, nil)
}

func TestGetAvailabilityReflectsBookings(t *testing.T) {
	env := newBookingEnv(t)
	env.salon.Capacity = 2

	if _, err := env.booking().Execute(context.Background(), RequestBookingInput{
		SalonID: env.salon.ID,
		UserID:  7,
		Service: "corte",
		Start:   env.slotAt(10, 0),
	}); err != nil {
		t.Fatalf("reserva de preparação falhou: %v", err)
	}

	slots, err := env.availability().Execute(context.Background(), env.salon.ID, env.slotAt(0, 0))
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if len(slots) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(slots))
	}
	if !slots[0].Start.Equal(env.slotAt(10, 0)) || slots[0].Remaining != 1 {
		t.Fatalf("slot[0] = %+v, want start 10:00 remaining 1", slots[0])
	}
	if !slots[1].Start.Equal(env.slotAt(10, 30)) || slots[1].Remaining != 2 {
		t.Fatalf("slot[1] = %+v, want start 10:30 remaining 2", slots[1])
	}
}

func TestGetAvailabilityClosedDay(t *testing.T) {
	env := newBookingEnv(t)

	// terça-feira: sem expediente, grade vazia
	loc, _ := time.LoadLocation(env.salon.Timezone)
	tuesday := time.Date(2026, 3, 3, 0, 0, 0, 0, loc)

	slots, err := env.availability().Execute(context.Background(), env.salon.ID, tuesday)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("len(slots) = %d, want 0", len(slots))
	}
}

func TestGetAvailabilityInactiveSalon(t *testing.T) {
	env := newBookingEnv(t)
	env.salon.Active = false

	_, err := env.availability().Execute(context.Background(), env.salon.ID, env.slotAt(0, 0))
	if !domain.IsKind(err, domain.KindResourceClosed) {
		t.Fatalf("err = %v, want kind %s", err, domain.KindResourceClosed)
	}
}

func TestRebuildIndexReplaysStore(t *testing.T) {
	env := newBookingEnv(t)
	slot := env.slotAt(10, 0)

	dir := env.directory()
	dir.listFn = func(ctx context.Context) ([]models.Salon, error) {
		return []models.Salon{*env.salon}, nil
	}
	env.store.listBySalonFn = func(ctx context.Context, salonID string, from, to time.Time) ([]models.Appointment, error) {
		return []models.Appointment{
			{SalonID: salonID, StartTime: slot, DurationMin: 30, Status: string(domain.StatusConfirmed)},
			{SalonID: salonID, StartTime: slot.Add(30 * time.Minute), DurationMin: 30, Status: string(domain.StatusCancelled)},
		}, nil
	}

	rebuild := NewRebuildIndex(dir, env.store, env.index, env.calendar, env.clock)
	if err := rebuild.Execute(context.Background()); err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	slots, err := env.availability().Execute(context.Background(), env.salon.ID, env.slotAt(0, 0))
	if err != nil {
		t.Fatalf("availability error: %v", err)
	}
	if slots[0].Remaining != 0 {
		t.Fatalf("slot 10:00 remaining = %d, want 0", slots[0].Remaining)
	}
	if slots[1].Remaining != 1 {
		t.Fatalf("slot 10:30 remaining = %d, want 1", slots[1].Remaining)
	}
}
