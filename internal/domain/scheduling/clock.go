package scheduling

import (
	"time"

	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/timezone"
)

// Clock abstrai a fonte de tempo para permitir testes determinísticos.
type Clock interface {
	Now() time.Time
	LocationOf(salon *models.Salon) *time.Location
}

type systemClock struct{}

func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) LocationOf(salon *models.Salon) *time.Location {
	if salon == nil {
		return timezone.Location("")
	}
	return timezone.Location(salon.Timezone)
}
