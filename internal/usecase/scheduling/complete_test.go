package scheduling

import (
	"context"
	"testing"
	"time"

	domain "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
)

func TestCompleteAppointment(t *testing.T) {
	env := newBookingEnv(t)
	slot := env.slotAt(10, 0)
	ap := env.bookAndTrack(t, 7, "corte", slot)

	uc := NewCompleteAppointment(env.store, env.clock, env.handles, nil)

	got, err := uc.Execute(context.Background(), ap.ID, 1)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if got.Status != string(domain.StatusCompleted) {
		t.Fatalf("status = %s, want %s", got.Status, domain.StatusCompleted)
	}

	// concluído segue ocupando a vaga: o horário foi de fato usado
	if count, _ := env.index.OccupancyOf(env.salon.ID, slot); count != 1 {
		t.Fatalf("occupancy = %d, want 1", count)
	}
}

func TestCompleteRejectsCancelled(t *testing.T) {
	env := newBookingEnv(t)
	env.store.findFn = func(ctx context.Context, id string) (*models.Appointment, error) {
		return &models.Appointment{ID: id, Status: string(domain.StatusCancelled)}, nil
	}
	env.store.updateStatusFn = func(ctx context.Context, id string, status domain.Status, at time.Time) error {
		t.Fatalf("UpdateStatus não deveria ser chamado")
		return nil
	}

	uc := NewCompleteAppointment(env.store, env.clock, env.handles, nil)
	_, err := uc.Execute(context.Background(), "ap-1", 1)
	if !domain.IsKind(err, domain.KindInvalidTransition) {
		t.Fatalf("err = %v, want kind %s", err, domain.KindInvalidTransition)
	}
}

func TestMarkNoShowAppointment(t *testing.T) {
	env := newBookingEnv(t)
	ap := env.bookAndTrack(t, 7, "corte", env.slotAt(10, 0))

	uc := NewMarkNoShow(env.store, env.clock, env.handles, nil)

	got, err := uc.Execute(context.Background(), ap.ID, 1)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if got.Status != string(domain.StatusNoShow) {
		t.Fatalf("status = %s, want %s", got.Status, domain.StatusNoShow)
	}

	// o handle foi descartado; um segundo no-show é rejeitado
	_, err = uc.Execute(context.Background(), ap.ID, 1)
	if !domain.IsKind(err, domain.KindInvalidTransition) {
		t.Fatalf("err = %v, want kind %s", err, domain.KindInvalidTransition)
	}
}
