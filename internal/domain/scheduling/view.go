package scheduling

import "time"

// SlotAvailability é a visão de exibição composta por SlotCalendar +
// Index: início do slot e vagas restantes naquele instante.
type SlotAvailability struct {
	Start     time.Time `json:"start"`
	Remaining int       `json:"remaining"`
}
