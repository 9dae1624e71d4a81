package scheduling

import (
	"time"

	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
)

// ===============================
// Status do agendamento
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

// Occupies indica se o status consome vaga na grade de horários.
// PENDING ocupa de forma otimista, com expiração curta (ver Index).
func (s Status) Occupies() bool {
	return s == StatusConfirmed || s == StatusCompleted
}

func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusNoShow
}

// ===============================
// Validações de transição
// ===============================

func CanCancel(current Status) error {
	if current != StatusConfirmed {
		return NewError(KindNotCancellable, "status atual não permite cancelamento")
	}
	return nil
}

func CanComplete(current Status) error {
	if current != StatusConfirmed {
		return NewError(KindInvalidTransition, "somente agendamentos confirmados podem ser concluídos")
	}
	return nil
}

func CanMarkNoShow(current Status) error {
	if current != StatusConfirmed {
		return NewError(KindInvalidTransition, "somente agendamentos confirmados podem virar no-show")
	}
	return nil
}

// ===============================
// Ações de domínio
// ===============================

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}

func MarkNoShow(ap *models.Appointment, now time.Time) error {
	if err := CanMarkNoShow(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusNoShow)
	return nil
}
