package handlers

import (
	"time"

	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/timezone"
)

// --------------------------------------------------
// Datas sempre interpretadas no fuso do salão
// --------------------------------------------------

func locationFromSalon(salon *models.Salon) *time.Location {
	if salon != nil {
		return timezone.Location(salon.Timezone)
	}
	return timezone.Location("")
}

func parseDateInSalon(salon *models.Salon, dateStr string) (time.Time, error) {
	return time.ParseInLocation(
		"2006-01-02",
		dateStr,
		locationFromSalon(salon),
	)
}

func parseDateTimeInSalon(
	salon *models.Salon,
	dateStr string,
	timeStr string,
) (time.Time, error) {
	return time.ParseInLocation(
		"2006-01-02 15:04",
		dateStr+" "+timeStr,
		locationFromSalon(salon),
	)
}
