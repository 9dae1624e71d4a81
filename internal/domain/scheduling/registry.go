package scheduling

import "sync"

// HandleRegistry associa agendamentos confirmados aos seus handles de
// reserva enquanto o processo vive. Depois de um restart o registro
// começa vazio e o cancelamento cai no caminho ReleaseSlots.
type HandleRegistry struct {
	mu      sync.Mutex
	handles map[string]*ReservationHandle
}

func NewHandleRegistry() *HandleRegistry {
	return &HandleRegistry{handles: make(map[string]*ReservationHandle)}
}

func (r *HandleRegistry) Put(appointmentID string, h *ReservationHandle) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[appointmentID] = h
}

// Take remove e devolve o handle do agendamento, se existir.
func (r *HandleRegistry) Take(appointmentID string) *ReservationHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.handles[appointmentID]
	delete(r.handles, appointmentID)
	return h
}
