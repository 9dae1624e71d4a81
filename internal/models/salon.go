package models

import "time"

// Horário de funcionamento de um dia da semana.
// Open/Close no formato "15:04", hora local do salão.
type OperatingHours struct {
	Weekday int    `bson:"weekday" json:"weekday"`
	Open    string `bson:"open" json:"open"`
	Close   string `bson:"close" json:"close"`
	Active  bool   `bson:"active" json:"active"`
}

type Salon struct {
	ID      string `bson:"_id" json:"id"`
	Name    string `bson:"name" json:"name"`
	Slug    string `bson:"slug" json:"slug"`
	Phone   string `bson:"phone" json:"phone"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`

	Timezone string `bson:"timezone" json:"timezone"`

	// Grade de horários: tamanho do slot e vagas simultâneas por slot.
	SlotMinutes int `bson:"slot_minutes" json:"slot_minutes"`
	Capacity    int `bson:"capacity" json:"capacity"`

	MinAdvanceMinutes int `bson:"min_advance_minutes" json:"min_advance_minutes"`
	CancelLeadMinutes int `bson:"cancel_lead_minutes" json:"cancel_lead_minutes"`

	Services []ServiceType    `bson:"services" json:"services"`
	Hours    []OperatingHours `bson:"hours" json:"hours"`

	Rating float64 `bson:"rating" json:"rating"`
	Active bool    `bson:"active" json:"active"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ServiceByName busca um serviço ativo oferecido pelo salão.
func (s *Salon) ServiceByName(name string) *ServiceType {
	for i := range s.Services {
		if s.Services[i].Name == name && s.Services[i].Active {
			return &s.Services[i]
		}
	}
	return nil
}

// HoursFor retorna o expediente configurado para o dia da semana, se houver.
func (s *Salon) HoursFor(weekday time.Weekday) *OperatingHours {
	for i := range s.Hours {
		if s.Hours[i].Weekday == int(weekday) {
			return &s.Hours[i]
		}
	}
	return nil
}
