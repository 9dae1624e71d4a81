package scheduling

import (
	"testing"
	"time"

	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) LocationOf(salon *models.Salon) *time.Location {
	if salon != nil && salon.Timezone != "" {
		if loc, err := time.LoadLocation(salon.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}
	return loc
}

// segunda-feira
var testDay = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func testSalon(open, close string) *models.Salon {
	return &models.Salon{
		ID:          "salon-1",
		Name:        "Lux Barber",
		Timezone:    "America/Sao_Paulo",
		SlotMinutes: 30,
		Capacity:    1,
		Active:      true,
		Services: []models.ServiceType{
			{Name: "corte", DurationMin: 30, Active: true},
			{Name: "corte+barba", DurationMin: 60, Active: true},
		},
		Hours: []models.OperatingHours{
			{Weekday: 1, Open: open, Close: close, Active: true},
		},
	}
}

func newTestCalendar(t *testing.T) (*SlotCalendar, *fixedClock) {
	t.Helper()
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, saoPaulo(t))}
	return NewSlotCalendar(clk), clk
}

func TestSlotsForProducesGrid(t *testing.T) {
	cal, _ := newTestCalendar(t)
	salon := testSalon("10:00", "11:00")
	loc := saoPaulo(t)

	slots, err := cal.SlotsFor(salon, testDay.In(loc))
	if err != nil {
		t.Fatalf("SlotsFor error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(slots))
	}

	want0 := time.Date(2026, 3, 2, 10, 0, 0, 0, loc)
	want1 := time.Date(2026, 3, 2, 10, 30, 0, 0, loc)
	if !slots[0].Equal(want0) || !slots[1].Equal(want1) {
		t.Fatalf("slots = %v, want [%v %v]", slots, want0, want1)
	}
}

func TestSlotsForClosedDay(t *testing.T) {
	cal, _ := newTestCalendar(t)
	salon := testSalon("10:00", "11:00")
	loc := saoPaulo(t)

	// terça-feira não tem expediente configurado
	tuesday := time.Date(2026, 3, 3, 0, 0, 0, 0, loc)
	slots, err := cal.SlotsFor(salon, tuesday)
	if err != nil {
		t.Fatalf("SlotsFor error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("len(slots) = %d, want 0", len(slots))
	}
}

func TestSlotsForMalformedHours(t *testing.T) {
	cal, _ := newTestCalendar(t)
	salon := testSalon("18:00", "09:00")
	loc := saoPaulo(t)

	_, err := cal.SlotsFor(salon, testDay.In(loc))
	if !IsKind(err, KindInvalidSchedule) {
		t.Fatalf("err = %v, want kind %s", err, KindInvalidSchedule)
	}
}

func TestSlotsNeededRoundsUp(t *testing.T) {
	cal, _ := newTestCalendar(t)
	salon := testSalon("09:00", "18:00")

	cases := []struct {
		duration int
		want     int
	}{
		{30, 1},
		{45, 2},
		{60, 2},
		{61, 3},
		{0, 1},
	}

	for _, tc := range cases {
		svc := &models.ServiceType{Name: "x", DurationMin: tc.duration}
		if got := cal.SlotsNeeded(svc, salon); got != tc.want {
			t.Fatalf("SlotsNeeded(%d) = %d, want %d", tc.duration, got, tc.want)
		}
	}
}

func TestValidateSpanClosingBoundary(t *testing.T) {
	cal, _ := newTestCalendar(t)
	salon := testSalon("10:00", "11:00")
	loc := saoPaulo(t)

	lastSlot := time.Date(2026, 3, 2, 10, 30, 0, 0, loc)

	// termina exatamente no fechamento: válido
	if err := cal.ValidateSpan(salon, lastSlot, 1); err != nil {
		t.Fatalf("span até o fechamento deveria ser válido: %v", err)
	}

	// ultrapassa o fechamento em um slot: inválido
	err := cal.ValidateSpan(salon, lastSlot, 2)
	if !IsKind(err, KindInvalidSlot) {
		t.Fatalf("err = %v, want kind %s", err, KindInvalidSlot)
	}
}

func TestValidateSpanMisaligned(t *testing.T) {
	cal, _ := newTestCalendar(t)
	salon := testSalon("10:00", "11:00")
	loc := saoPaulo(t)

	cases := []time.Time{
		time.Date(2026, 3, 2, 10, 15, 0, 0, loc), // fora da grade
		time.Date(2026, 3, 2, 9, 30, 0, 0, loc),  // antes da abertura
		time.Date(2026, 3, 2, 11, 0, 0, 0, loc),  // no fechamento
	}

	for _, start := range cases {
		err := cal.ValidateSpan(salon, start, 1)
		if !IsKind(err, KindInvalidSlot) {
			t.Fatalf("ValidateSpan(%v) = %v, want kind %s", start, err, KindInvalidSlot)
		}
	}
}

func TestIsAlignedHonorsSalonTimezone(t *testing.T) {
	cal, _ := newTestCalendar(t)
	salon := testSalon("10:00", "11:00")
	loc := saoPaulo(t)

	// mesmo instante expresso em UTC continua alinhado
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, loc).UTC()
	aligned, err := cal.IsAligned(salon, start)
	if err != nil {
		t.Fatalf("IsAligned error: %v", err)
	}
	if !aligned {
		t.Fatalf("instante em UTC equivalente ao início da grade deveria estar alinhado")
	}
}
