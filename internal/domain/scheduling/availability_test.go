package scheduling

import (
	"sync"
	"testing"
	"time"

	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
)

const slotStep = 30 * time.Minute

func testSlot(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2026, 3, 2, 10, 0, 0, 0, saoPaulo(t))
}

func TestTryReserveConcurrentSingleWinner(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	ix := NewIndex(clk, DefaultHoldTTL)
	slot := testSlot(t)

	const attempts = 16

	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := ix.TryReserve("salon-1", slot, 1, slotStep, 1)
			results[i] = err
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		if !IsKind(err, KindCapacityExceeded) {
			t.Fatalf("perdedor recebeu %v, want kind %s", err, KindCapacityExceeded)
		}
	}
	if wins != 1 {
		t.Fatalf("vencedores = %d, want 1", wins)
	}
}

func TestSpanReservationAllOrNothing(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	ix := NewIndex(clk, DefaultHoldTTL)
	slot1 := testSlot(t)
	slot2 := slot1.Add(slotStep)

	// ocupa só o segundo slot
	h, err := ix.TryReserve("salon-1", slot2, 1, slotStep, 1)
	if err != nil {
		t.Fatalf("TryReserve error: %v", err)
	}
	ix.Confirm(h)

	// span de dois slots deve falhar inteiro
	if _, err := ix.TryReserve("salon-1", slot1, 2, slotStep, 1); !IsKind(err, KindCapacityExceeded) {
		t.Fatalf("err = %v, want kind %s", err, KindCapacityExceeded)
	}

	// e o primeiro slot não pode ter ficado parcialmente ocupado
	if count, _ := ix.OccupancyOf("salon-1", slot1); count != 0 {
		t.Fatalf("slot1 count = %d, want 0", count)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	ix := NewIndex(clk, DefaultHoldTTL)
	slot := testSlot(t)

	h, err := ix.TryReserve("salon-1", slot, 1, slotStep, 2)
	if err != nil {
		t.Fatalf("TryReserve error: %v", err)
	}
	ix.Confirm(h)

	if count, _ := ix.OccupancyOf("salon-1", slot); count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	ix.Release(h)
	if count, _ := ix.OccupancyOf("salon-1", slot); count != 0 {
		t.Fatalf("count após release = %d, want 0", count)
	}

	// segundo release não pode deixar o contador negativo
	ix.Release(h)
	h2, err := ix.TryReserve("salon-1", slot, 1, slotStep, 2)
	if err != nil {
		t.Fatalf("TryReserve error: %v", err)
	}
	ix.Confirm(h2)
	if count, _ := ix.OccupancyOf("salon-1", slot); count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestHoldExpiresAndFreesSlot(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	ix := NewIndex(clk, DefaultHoldTTL)
	slot := testSlot(t)

	if _, err := ix.TryReserve("salon-1", slot, 1, slotStep, 1); err != nil {
		t.Fatalf("TryReserve error: %v", err)
	}

	// enquanto o hold vive, o slot está ocupado
	if _, err := ix.TryReserve("salon-1", slot, 1, slotStep, 1); !IsKind(err, KindCapacityExceeded) {
		t.Fatalf("err = %v, want kind %s", err, KindCapacityExceeded)
	}

	clk.now = clk.now.Add(DefaultHoldTTL + time.Second)

	if _, err := ix.TryReserve("salon-1", slot, 1, slotStep, 1); err != nil {
		t.Fatalf("hold expirado deveria liberar a vaga: %v", err)
	}
}

func TestConfirmCountsEvenAfterExpiry(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	ix := NewIndex(clk, DefaultHoldTTL)
	slot := testSlot(t)

	h, err := ix.TryReserve("salon-1", slot, 1, slotStep, 1)
	if err != nil {
		t.Fatalf("TryReserve error: %v", err)
	}

	clk.now = clk.now.Add(DefaultHoldTTL + time.Second)

	// a escrita durável venceu: o registro persistido é a verdade
	ix.Confirm(h)

	if count, _ := ix.OccupancyOf("salon-1", slot); count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestSweepExpiredRemovesStaleHolds(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	ix := NewIndex(clk, DefaultHoldTTL)
	slot := testSlot(t)

	if _, err := ix.TryReserve("salon-1", slot, 2, slotStep, 1); err != nil {
		t.Fatalf("TryReserve error: %v", err)
	}

	clk.now = clk.now.Add(DefaultHoldTTL + time.Second)

	if removed := ix.SweepExpired(); removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if removed := ix.SweepExpired(); removed != 0 {
		t.Fatalf("segunda varredura removed = %d, want 0", removed)
	}
}

func TestRebuildSalonFromStore(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	ix := NewIndex(clk, DefaultHoldTTL)
	salon := testSalon("09:00", "18:00")
	slot := testSlot(t)

	appointments := []models.Appointment{
		{SalonID: salon.ID, StartTime: slot, DurationMin: 60, Status: string(StatusConfirmed)},
		{SalonID: salon.ID, StartTime: slot, DurationMin: 30, Status: string(StatusCancelled)},
		{SalonID: salon.ID, StartTime: slot.Add(2 * slotStep), DurationMin: 30, Status: string(StatusCompleted)},
		{SalonID: salon.ID, StartTime: slot.Add(3 * slotStep), DurationMin: 30, Status: string(StatusNoShow)},
	}

	ix.RebuildSalon(salon, appointments, slotStep)

	cases := []struct {
		slot time.Time
		want int
	}{
		{slot, 1},                 // confirmado (cancelado não conta)
		{slot.Add(slotStep), 1},   // segundo slot do serviço de 60min
		{slot.Add(2 * slotStep), 1}, // concluído ainda ocupa
		{slot.Add(3 * slotStep), 0}, // no-show libera
	}
	for _, tc := range cases {
		if count, _ := ix.OccupancyOf(salon.ID, tc.slot); count != tc.want {
			t.Fatalf("OccupancyOf(%v) = %d, want %d", tc.slot, count, tc.want)
		}
	}
}

func TestReconcileSalonFixesDrift(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	ix := NewIndex(clk, DefaultHoldTTL)
	salon := testSalon("09:00", "18:00")
	slot := testSlot(t)

	// índice acha que o slot está ocupado, store diz que não
	h, err := ix.TryReserve(salon.ID, slot, 1, slotStep, 1)
	if err != nil {
		t.Fatalf("TryReserve error: %v", err)
	}
	ix.Confirm(h)

	drift := ix.ReconcileSalon(salon, nil, slotStep)
	if drift != 1 {
		t.Fatalf("drift = %d, want 1", drift)
	}
	if count, _ := ix.OccupancyOf(salon.ID, slot); count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}

	// sentido inverso: store tem agendamento que o índice perdeu
	appointments := []models.Appointment{
		{SalonID: salon.ID, StartTime: slot, DurationMin: 30, Status: string(StatusConfirmed)},
	}
	drift = ix.ReconcileSalon(salon, appointments, slotStep)
	if drift != 1 {
		t.Fatalf("drift = %d, want 1", drift)
	}
	if count, _ := ix.OccupancyOf(salon.ID, slot); count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	// convergido: nada mais a corrigir
	if drift = ix.ReconcileSalon(salon, appointments, slotStep); drift != 0 {
		t.Fatalf("drift = %d, want 0", drift)
	}
}

func TestReleaseSlotsWithoutHandle(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	ix := NewIndex(clk, DefaultHoldTTL)
	salon := testSalon("09:00", "18:00")
	slot := testSlot(t)

	// ocupação herdada de antes do restart (sem handle vivo)
	appointments := []models.Appointment{
		{SalonID: salon.ID, StartTime: slot, DurationMin: 60, Status: string(StatusConfirmed)},
	}
	ix.RebuildSalon(salon, appointments, slotStep)

	ix.ReleaseSlots(salon.ID, slot, 2, slotStep)

	for i := 0; i < 2; i++ {
		s := slot.Add(time.Duration(i) * slotStep)
		if count, _ := ix.OccupancyOf(salon.ID, s); count != 0 {
			t.Fatalf("OccupancyOf(%v) = %d, want 0", s, count)
		}
	}
}
