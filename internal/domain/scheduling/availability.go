package scheduling

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
)

const (
	// DefaultHoldTTL limita por quanto tempo uma reserva pode ficar
	// pendente entre o TryReserve e a confirmação da escrita durável.
	DefaultHoldTTL = 30 * time.Second

	indexStripes = 64
)

type slotKey struct {
	salonID string
	slot    int64 // unix do início do slot
}

type slotCounter struct {
	confirmed int
	capacity  int
	holds     map[*ReservationHandle]time.Time
}

// pruneExpired descarta holds vencidos e devolve quantos caíram.
func (c *slotCounter) pruneExpired(now time.Time) int {
	removed := 0
	for h, expiry := range c.holds {
		if now.After(expiry) {
			delete(c.holds, h)
			removed++
		}
	}
	return removed
}

func (c *slotCounter) empty() bool {
	return c.confirmed == 0 && len(c.holds) == 0
}

type handleState int

const (
	handleHeld handleState = iota
	handleConfirmed
	handleReleased
)

// ReservationHandle representa uma reivindicação em memória sobre um
// span de slots, pendente de confirmação. Nunca é persistido.
type ReservationHandle struct {
	salonID string
	slots   []time.Time

	mu    sync.Mutex
	state handleState
}

type stripe struct {
	mu    sync.Mutex
	slots map[slotKey]*slotCounter
}

func (st *stripe) counter(salonID string, slot time.Time) *slotCounter {
	return st.slots[slotKey{salonID: salonID, slot: slot.Unix()}]
}

func (st *stripe) ensure(salonID string, slot time.Time, capacity int) *slotCounter {
	k := slotKey{salonID: salonID, slot: slot.Unix()}
	c := st.slots[k]
	if c == nil {
		c = &slotCounter{capacity: capacity, holds: make(map[*ReservationHandle]time.Time)}
		st.slots[k] = c
	}
	if capacity > 0 {
		c.capacity = capacity
	}
	return c
}

func (st *stripe) dropIfEmpty(salonID string, slot time.Time) {
	k := slotKey{salonID: salonID, slot: slot.Unix()}
	if c := st.slots[k]; c != nil && c.empty() {
		delete(st.slots, k)
	}
}

// Index mantém a contagem de ocupação por (salão, slot). É o único
// ponto de serialização entre reservas concorrentes: quem pega o mutex
// do salão primeiro leva a última vaga; o perdedor recebe
// capacity_exceeded na hora, sem fila.
//
// O estado vive só no processo. O AppointmentStore é a fonte durável:
// perder o índice em um crash é seguro, ele é reconstruído no boot.
type Index struct {
	clock   Clock
	holdTTL time.Duration
	stripes [indexStripes]stripe
}

func NewIndex(clock Clock, holdTTL time.Duration) *Index {
	if holdTTL <= 0 {
		holdTTL = DefaultHoldTTL
	}
	ix := &Index{clock: clock, holdTTL: holdTTL}
	for i := range ix.stripes {
		ix.stripes[i].slots = make(map[slotKey]*slotCounter)
	}
	return ix
}

// Um mutex por salão (stripe compartilhado via hash). Todos os slots
// de um span pertencem ao mesmo salão, então a checagem tudo-ou-nada
// acontece sob um único lock.
func (ix *Index) stripeFor(salonID string) *stripe {
	h := fnv.New32a()
	h.Write([]byte(salonID))
	return &ix.stripes[h.Sum32()%indexStripes]
}

// TryReserve segura todos os slots de [slotStart, slotStart+span*step)
// se, e somente se, cada um ainda tem vaga. Nunca segura parcialmente.
func (ix *Index) TryReserve(salonID string, slotStart time.Time, span int, step time.Duration, capacity int) (*ReservationHandle, error) {
	if span < 1 {
		span = 1
	}
	if capacity < 1 {
		return nil, NewError(KindCapacityExceeded, "salão sem vagas configuradas")
	}

	slots := make([]time.Time, span)
	for i := range slots {
		slots[i] = slotStart.Add(time.Duration(i) * step)
	}

	st := ix.stripeFor(salonID)
	now := ix.clock.Now()

	st.mu.Lock()
	defer st.mu.Unlock()

	for _, slot := range slots {
		if c := st.counter(salonID, slot); c != nil {
			c.pruneExpired(now)
			c.capacity = capacity
			if c.confirmed+len(c.holds) >= capacity {
				return nil, NewError(KindCapacityExceeded, "horário lotado")
			}
		}
	}

	h := &ReservationHandle{salonID: salonID, slots: slots}
	expiry := now.Add(ix.holdTTL)
	for _, slot := range slots {
		st.ensure(salonID, slot, capacity).holds[h] = expiry
	}
	return h, nil
}

// Confirm converte o hold em ocupação definitiva após a escrita
// durável. Se o hold expirou no meio do caminho, a ocupação é contada
// mesmo assim: o agendamento persistido é a verdade.
func (ix *Index) Confirm(h *ReservationHandle) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != handleHeld {
		return
	}

	st := ix.stripeFor(h.salonID)
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, slot := range h.slots {
		c := st.ensure(h.salonID, slot, 0)
		delete(c.holds, h)
		c.confirmed++
	}
	h.state = handleConfirmed
}

// Release devolve as vagas do handle. Idempotente: liberar um handle
// já liberado não altera nada.
func (ix *Index) Release(h *ReservationHandle) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == handleReleased {
		return
	}

	st := ix.stripeFor(h.salonID)
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, slot := range h.slots {
		c := st.counter(h.salonID, slot)
		if c == nil {
			continue
		}
		switch h.state {
		case handleHeld:
			delete(c.holds, h)
		case handleConfirmed:
			if c.confirmed > 0 {
				c.confirmed--
			}
		}
		st.dropIfEmpty(h.salonID, slot)
	}
	h.state = handleReleased
}

// ReleaseSlots libera ocupação confirmada sem um handle vivo. Usado no
// cancelamento de agendamentos criados antes do último restart.
func (ix *Index) ReleaseSlots(salonID string, slotStart time.Time, span int, step time.Duration) {
	if span < 1 {
		span = 1
	}

	st := ix.stripeFor(salonID)
	st.mu.Lock()
	defer st.mu.Unlock()

	for i := 0; i < span; i++ {
		slot := slotStart.Add(time.Duration(i) * step)
		if c := st.counter(salonID, slot); c != nil {
			if c.confirmed > 0 {
				c.confirmed--
			}
			st.dropIfEmpty(salonID, slot)
		}
	}
}

// OccupancyOf devolve um retrato (possivelmente defasado) da ocupação
// de um slot. capacity=0 significa que o índice ainda não viu o slot.
func (ix *Index) OccupancyOf(salonID string, slotStart time.Time) (count, capacity int) {
	st := ix.stripeFor(salonID)
	st.mu.Lock()
	defer st.mu.Unlock()

	c := st.counter(salonID, slotStart)
	if c == nil {
		return 0, 0
	}
	c.pruneExpired(ix.clock.Now())
	return c.confirmed + len(c.holds), c.capacity
}

// RebuildSalon reconstrói os contadores do salão a partir dos registros
// duráveis. CONFIRMED e COMPLETED ocupam; PENDING vira hold otimista
// com expiração curta; cancelados e no-show não ocupam.
func (ix *Index) RebuildSalon(salon *models.Salon, appointments []models.Appointment, step time.Duration) {
	st := ix.stripeFor(salon.ID)
	now := ix.clock.Now()

	st.mu.Lock()
	defer st.mu.Unlock()

	for k := range st.slots {
		if k.salonID == salon.ID {
			delete(st.slots, k)
		}
	}

	for i := range appointments {
		ap := &appointments[i]
		span := spanOf(ap.DurationMin, step)

		switch status := Status(ap.Status); {
		case status.Occupies():
			for s := 0; s < span; s++ {
				st.ensure(salon.ID, ap.StartTime.Add(time.Duration(s)*step), salon.Capacity).confirmed++
			}
		case status == StatusPending:
			h := &ReservationHandle{salonID: salon.ID}
			expiry := now.Add(ix.holdTTL)
			for s := 0; s < span; s++ {
				slot := ap.StartTime.Add(time.Duration(s) * step)
				h.slots = append(h.slots, slot)
				st.ensure(salon.ID, slot, salon.Capacity).holds[h] = expiry
			}
		}
	}
}

// ReconcileSalon corrige divergências entre o índice e o store (ex.:
// release aplicado mas escrita de status perdida no cancelamento).
// Retorna quantos slots precisaram de ajuste.
func (ix *Index) ReconcileSalon(salon *models.Salon, appointments []models.Appointment, step time.Duration) int {
	expected := make(map[int64]int)
	for i := range appointments {
		ap := &appointments[i]
		if !Status(ap.Status).Occupies() {
			continue
		}
		span := spanOf(ap.DurationMin, step)
		for s := 0; s < span; s++ {
			expected[ap.StartTime.Add(time.Duration(s)*step).Unix()]++
		}
	}

	st := ix.stripeFor(salon.ID)
	st.mu.Lock()
	defer st.mu.Unlock()

	drift := 0
	for k, c := range st.slots {
		if k.salonID != salon.ID {
			continue
		}
		want := expected[k.slot]
		if c.confirmed != want {
			c.confirmed = want
			drift++
		}
		delete(expected, k.slot)
		if c.empty() {
			delete(st.slots, k)
		}
	}

	for slot, want := range expected {
		if want > 0 {
			st.ensure(salon.ID, time.Unix(slot, 0), salon.Capacity).confirmed = want
			drift++
		}
	}
	return drift
}

// SweepExpired descarta holds vencidos em todo o índice. Complementa a
// expiração preguiçosa feita no caminho de reserva.
func (ix *Index) SweepExpired() int {
	now := ix.clock.Now()
	removed := 0

	for i := range ix.stripes {
		st := &ix.stripes[i]
		st.mu.Lock()
		for k, c := range st.slots {
			removed += c.pruneExpired(now)
			if c.empty() {
				delete(st.slots, k)
			}
		}
		st.mu.Unlock()
	}
	return removed
}

func spanOf(durationMin int, step time.Duration) int {
	stepMin := int(step / time.Minute)
	if stepMin <= 0 {
		stepMin = DefaultSlotMinutes
	}
	if durationMin <= 0 {
		return 1
	}

	span := (durationMin + stepMin - 1) / stepMin
	if span < 1 {
		span = 1
	}
	return span
}
