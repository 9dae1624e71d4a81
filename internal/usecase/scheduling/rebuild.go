package scheduling

import (
	"context"
	"time"

	domain "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
)

// Janela de replay: um dia para trás cobre agendamentos em andamento,
// noventa dias para frente cobre qualquer reserva futura aceita.
const (
	rebuildLookback = 24 * time.Hour
	rebuildHorizon  = 90 * 24 * time.Hour
)

// RebuildIndex reconstrói o índice de disponibilidade a partir do
// store no boot do processo. O índice nunca é fonte durável de
// verdade: perder o estado em um crash é o modo de falha esperado.
type RebuildIndex struct {
	directory domain.Directory
	store     domain.AppointmentStore
	index     *domain.Index
	calendar  *domain.SlotCalendar
	clock     domain.Clock
}

func NewRebuildIndex(
	directory domain.Directory,
	store domain.AppointmentStore,
	index *domain.Index,
	calendar *domain.SlotCalendar,
	clock domain.Clock,
) *RebuildIndex {
	return &RebuildIndex{
		directory: directory,
		store:     store,
		index:     index,
		calendar:  calendar,
		clock:     clock,
	}
}

func (uc *RebuildIndex) Execute(ctx context.Context) error {
	salons, err := uc.directory.ListActiveSalons(ctx)
	if err != nil {
		return err
	}

	now := uc.clock.Now()
	from := now.Add(-rebuildLookback)
	to := now.Add(rebuildHorizon)

	for i := range salons {
		salon := &salons[i]

		appointments, err := uc.store.ListBySalon(ctx, salon.ID, from, to)
		if err != nil {
			return err
		}

		uc.index.RebuildSalon(salon, appointments, uc.calendar.SlotStep(salon))
	}
	return nil
}
