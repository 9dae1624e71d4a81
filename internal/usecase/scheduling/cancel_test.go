package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
)

func (env *bookingEnv) cancel() *CancelAppointment {
	return NewCancelAppointment(
		env.directory(), env.store, env.index, env.calendar,
		env.clock, env.handles, nil, nil,
	)
}

// agenda via usecase e prepara o store para devolver o registro salvo
func (env *bookingEnv) bookAndTrack(t *testing.T, userID uint, service string, start time.Time) *models.Appointment {
	t.Helper()

	ap, err := env.booking().Execute(context.Background(), RequestBookingInput{
		SalonID: env.salon.ID,
		UserID:  userID,
		Service: service,
		Start:   start,
	})
	if err != nil {
		t.Fatalf("reserva de preparação falhou: %v", err)
	}

	env.store.findFn = func(ctx context.Context, id string) (*models.Appointment, error) {
		if id != ap.ID {
			return nil, domain.ErrNotFound
		}
		snap := *ap
		return &snap, nil
	}
	env.store.updateStatusFn = func(ctx context.Context, id string, status domain.Status, at time.Time) error {
		ap.Status = string(status)
		return nil
	}
	return ap
}

func TestCancelHappyPathFreesSlot(t *testing.T) {
	env := newBookingEnv(t)
	slot := env.slotAt(10, 0)
	ap := env.bookAndTrack(t, 7, "corte", slot)

	got, err := env.cancel().Execute(context.Background(), ap.ID, 7, false)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if got.Status != string(domain.StatusCancelled) {
		t.Fatalf("status = %s, want %s", got.Status, domain.StatusCancelled)
	}

	if count, _ := env.index.OccupancyOf(env.salon.ID, slot); count != 0 {
		t.Fatalf("occupancy = %d, want 0", count)
	}

	// a vaga volta para o próximo cliente
	if _, err := env.booking().Execute(context.Background(), RequestBookingInput{
		SalonID: env.salon.ID,
		UserID:  8,
		Service: "corte",
		Start:   slot,
	}); err != nil {
		t.Fatalf("slot cancelado deveria estar livre: %v", err)
	}
}

func TestCancelForbiddenForOtherUser(t *testing.T) {
	env := newBookingEnv(t)
	ap := env.bookAndTrack(t, 7, "corte", env.slotAt(10, 0))

	_, err := env.cancel().Execute(context.Background(), ap.ID, 99, false)
	if !domain.IsKind(err, domain.KindForbidden) {
		t.Fatalf("err = %v, want kind %s", err, domain.KindForbidden)
	}

	// admin não é dono mas pode
	if _, err := env.cancel().Execute(context.Background(), ap.ID, 99, true); err != nil {
		t.Fatalf("admin deveria poder cancelar: %v", err)
	}
}

func TestCancelAfterDeadline(t *testing.T) {
	env := newBookingEnv(t)
	slot := env.slotAt(10, 0)
	ap := env.bookAndTrack(t, 7, "corte", slot)

	// prazo de 120min: às 08:30 do dia o cancelamento já fechou
	loc, _ := time.LoadLocation(env.salon.Timezone)
	env.clock.now = time.Date(2026, 3, 2, 8, 30, 0, 0, loc)

	_, err := env.cancel().Execute(context.Background(), ap.ID, 7, false)
	if !domain.IsKind(err, domain.KindNotCancellable) {
		t.Fatalf("err = %v, want kind %s", err, domain.KindNotCancellable)
	}

	// e a vaga continua ocupada
	if count, _ := env.index.OccupancyOf(env.salon.ID, slot); count != 1 {
		t.Fatalf("occupancy = %d, want 1", count)
	}
}

func TestCancelAlreadyCancelled(t *testing.T) {
	env := newBookingEnv(t)
	ap := env.bookAndTrack(t, 7, "corte", env.slotAt(10, 0))

	if _, err := env.cancel().Execute(context.Background(), ap.ID, 7, false); err != nil {
		t.Fatalf("primeiro cancelamento falhou: %v", err)
	}

	_, err := env.cancel().Execute(context.Background(), ap.ID, 7, false)
	if !domain.IsKind(err, domain.KindNotCancellable) {
		t.Fatalf("err = %v, want kind %s", err, domain.KindNotCancellable)
	}
}

func TestCancelNotFound(t *testing.T) {
	env := newBookingEnv(t)
	env.store.findFn = func(ctx context.Context, id string) (*models.Appointment, error) {
		return nil, domain.ErrNotFound
	}

	_, err := env.cancel().Execute(context.Background(), "nope", 7, false)
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("err = %v, want kind %s", err, domain.KindNotFound)
	}
}

// Cancelamento de agendamento criado antes do último restart: não há
// handle vivo, a liberação cai no caminho por slots.
func TestCancelAfterRestartWithoutHandle(t *testing.T) {
	env := newBookingEnv(t)
	slot := env.slotAt(10, 0)
	ap := env.bookAndTrack(t, 7, "corte+barba", slot)

	// simula o restart: registro de handles zerado, índice reconstruído
	env.handles = domain.NewHandleRegistry()
	env.index = domain.NewIndex(env.clock, domain.DefaultHoldTTL)
	env.index.RebuildSalon(env.salon, []models.Appointment{*ap}, env.calendar.SlotStep(env.salon))

	if _, err := env.cancel().Execute(context.Background(), ap.ID, 7, false); err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	for _, s := range []time.Time{slot, env.slotAt(10, 30)} {
		if count, _ := env.index.OccupancyOf(env.salon.ID, s); count != 0 {
			t.Fatalf("OccupancyOf(%v) = %d, want 0", s, count)
		}
	}
}

func TestCancelPersistFailureStillFreesSlot(t *testing.T) {
	env := newBookingEnv(t)
	slot := env.slotAt(10, 0)
	ap := env.bookAndTrack(t, 7, "corte", slot)

	env.store.updateStatusFn = func(ctx context.Context, id string, status domain.Status, at time.Time) error {
		return errors.New("mongo: write timeout")
	}

	_, err := env.cancel().Execute(context.Background(), ap.ID, 7, false)
	if !domain.IsKind(err, domain.KindPersistence) {
		t.Fatalf("err = %v, want kind %s", err, domain.KindPersistence)
	}

	// a vaga já foi devolvida; a reconciliação resolve a divergência
	if count, _ := env.index.OccupancyOf(env.salon.ID, slot); count != 0 {
		t.Fatalf("occupancy = %d, want 0", count)
	}
}
