package models

import "time"

type Appointment struct {
	ID string `bson:"_id" json:"id"`

	SalonID string `bson:"salon_id" json:"salon_id"`
	UserID  uint   `bson:"user_id" json:"user_id"`

	// Nome, duração e preço são copiados do serviço no momento do
	// agendamento para sobreviver a edições posteriores do catálogo.
	ServiceName string   `bson:"service_name" json:"service_name"`
	DurationMin int      `bson:"duration_min" json:"duration_min"`
	Price       *float64 `bson:"price,omitempty" json:"price,omitempty"`

	StartTime time.Time `bson:"start_time" json:"start_time"`

	Status string `bson:"status" json:"status"`

	Notes       string     `bson:"notes,omitempty" json:"notes,omitempty"`
	CancelledAt *time.Time `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (a *Appointment) EndTime() time.Time {
	return a.StartTime.Add(time.Duration(a.DurationMin) * time.Minute)
}
