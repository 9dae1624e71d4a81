package dto

import (
	"time"

	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
)

type AppointmentListDTO struct {
	ID          string    `json:"id"`
	SalonID     string    `json:"salon_id"`
	ServiceName string    `json:"service_name"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Status      string    `json:"status"`
	Price       *float64  `json:"price,omitempty"`
}

func FromAppointment(ap *models.Appointment) AppointmentListDTO {
	return AppointmentListDTO{
		ID:          ap.ID,
		SalonID:     ap.SalonID,
		ServiceName: ap.ServiceName,
		StartTime:   ap.StartTime,
		EndTime:     ap.EndTime(),
		Status:      ap.Status,
		Price:       ap.Price,
	}
}
