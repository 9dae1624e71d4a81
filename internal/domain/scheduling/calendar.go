package scheduling

import (
	"time"

	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
)

const DefaultSlotMinutes = 30

// SlotCalendar traduz o expediente configurado do salão em uma grade
// de horários agendáveis. Não consulta banco: opera sobre o documento
// do salão já carregado.
type SlotCalendar struct {
	clock Clock
}

func NewSlotCalendar(clock Clock) *SlotCalendar {
	return &SlotCalendar{clock: clock}
}

// SlotStep retorna a granularidade da grade do salão.
func (c *SlotCalendar) SlotStep(salon *models.Salon) time.Duration {
	minutes := salon.SlotMinutes
	if minutes <= 0 {
		minutes = DefaultSlotMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// SlotsNeeded calcula quantos slots o serviço consome (mínimo 1).
func (c *SlotCalendar) SlotsNeeded(svc *models.ServiceType, salon *models.Salon) int {
	step := int(c.SlotStep(salon) / time.Minute)
	if svc.DurationMin <= 0 {
		return 1
	}

	span := (svc.DurationMin + step - 1) / step
	if span < 1 {
		span = 1
	}
	return span
}

// SlotsFor produz os inícios de slot do dia, ordenados e limitados
// pela janela de funcionamento. Dia fechado retorna lista vazia.
// Expediente malformado (abertura >= fechamento) retorna erro.
func (c *SlotCalendar) SlotsFor(salon *models.Salon, date time.Time) ([]time.Time, error) {
	open, close, ok, err := c.dayWindow(salon, date)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	step := c.SlotStep(salon)
	var slots []time.Time
	for cur := open; cur.Before(close); cur = cur.Add(step) {
		slots = append(slots, cur)
	}
	return slots, nil
}

// IsAligned verifica se o instante cai exatamente em um início de slot
// do dia. Dia fechado nunca está alinhado.
func (c *SlotCalendar) IsAligned(salon *models.Salon, instant time.Time) (bool, error) {
	loc := c.clock.LocationOf(salon)
	local := instant.In(loc)

	open, close, ok, err := c.dayWindow(salon, local)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if local.Before(open) || !local.Before(close) {
		return false, nil
	}

	offset := local.Sub(open)
	return offset%c.SlotStep(salon) == 0, nil
}

// ValidateSpan garante que o intervalo [start, start+span*step) está
// alinhado à grade e cabe inteiro dentro do expediente do dia.
// Reserva terminando exatamente no fechamento é válida.
func (c *SlotCalendar) ValidateSpan(salon *models.Salon, start time.Time, span int) error {
	aligned, err := c.IsAligned(salon, start)
	if err != nil {
		return err
	}
	if !aligned {
		return NewError(KindInvalidSlot, "horário fora da grade ou do expediente do salão")
	}

	loc := c.clock.LocationOf(salon)
	local := start.In(loc)

	_, close, _, err := c.dayWindow(salon, local)
	if err != nil {
		return err
	}

	end := local.Add(time.Duration(span) * c.SlotStep(salon))
	if end.After(close) {
		return NewError(KindInvalidSlot, "serviço não cabe antes do fechamento")
	}
	return nil
}

// dayWindow resolve a janela aberta/fechada do dia no fuso do salão.
// ok=false quando o salão não atende naquele dia.
func (c *SlotCalendar) dayWindow(salon *models.Salon, date time.Time) (open, close time.Time, ok bool, err error) {
	loc := c.clock.LocationOf(salon)
	local := date.In(loc)

	wh := salon.HoursFor(local.Weekday())
	if wh == nil || !wh.Active || wh.Open == "" || wh.Close == "" {
		return time.Time{}, time.Time{}, false, nil
	}

	openHM, errOpen := time.Parse("15:04", wh.Open)
	closeHM, errClose := time.Parse("15:04", wh.Close)
	if errOpen != nil || errClose != nil {
		return time.Time{}, time.Time{}, false,
			NewError(KindInvalidSchedule, "expediente com horário ilegível")
	}

	anchor := func(t time.Time) time.Time {
		return time.Date(
			local.Year(), local.Month(), local.Day(),
			t.Hour(), t.Minute(), 0, 0,
			loc,
		)
	}

	open = anchor(openHM)
	close = anchor(closeHM)

	if !open.Before(close) {
		return time.Time{}, time.Time{}, false,
			NewError(KindInvalidSchedule, "abertura precisa ser antes do fechamento")
	}

	return open, close, true, nil
}
