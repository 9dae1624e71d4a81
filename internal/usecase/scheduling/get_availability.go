package scheduling

import (
	"context"
	"time"

	domain "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
)

// GetAvailability compõe SlotCalendar e Index para exibição: cada slot
// do dia com as vagas restantes. Retrato de leitura, pode estar
// levemente defasado em relação a reservas em andamento.
type GetAvailability struct {
	directory domain.Directory
	index     *domain.Index
	calendar  *domain.SlotCalendar
	clock     domain.Clock
	cache     AvailabilityCache
}

func NewGetAvailability(
	directory domain.Directory,
	index *domain.Index,
	calendar *domain.SlotCalendar,
	clock domain.Clock,
	cache AvailabilityCache,
) *GetAvailability {
	return &GetAvailability{
		directory: directory,
		index:     index,
		calendar:  calendar,
		clock:     clock,
		cache:     cache,
	}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	salonID string,
	date time.Time,
) ([]domain.SlotAvailability, error) {

	salon, err := uc.directory.GetSalon(ctx, salonID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.NewError(domain.KindResourceClosed, "salão não encontrado")
		}
		return nil, domain.WrapError(domain.KindResourceClosed, "falha ao carregar salão", err)
	}
	if !salon.Active {
		return nil, domain.NewError(domain.KindResourceClosed, "salão inativo")
	}

	day := dayKey(date, uc.clock.LocationOf(salon))
	if uc.cache != nil {
		if slots, ok := uc.cache.Get(ctx, salon.ID, day); ok {
			return slots, nil
		}
	}

	starts, err := uc.calendar.SlotsFor(salon, date)
	if err != nil {
		return nil, err
	}

	slots := make([]domain.SlotAvailability, 0, len(starts))
	for _, start := range starts {
		count, _ := uc.index.OccupancyOf(salon.ID, start)

		remaining := salon.Capacity - count
		if remaining < 0 {
			remaining = 0
		}

		slots = append(slots, domain.SlotAvailability{
			Start:     start,
			Remaining: remaining,
		})
	}

	if uc.cache != nil {
		uc.cache.Set(ctx, salon.ID, day, slots)
	}

	return slots, nil
}
