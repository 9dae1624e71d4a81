package scheduling

import (
	"context"

	domain "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
)

// AvailabilityCache guarda retratos de disponibilidade por (salão, dia)
// com TTL curto. Implementado sobre Redis em internal/cache; nil
// desliga o cache (testes).
type AvailabilityCache interface {
	Get(ctx context.Context, salonID, day string) ([]domain.SlotAvailability, bool)
	Set(ctx context.Context, salonID, day string, slots []domain.SlotAvailability)
	Invalidate(ctx context.Context, salonID, day string)
}
