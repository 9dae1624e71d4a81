package scheduling

import (
	"errors"
	"fmt"
)

// ===============================
// Erros de agendamento
// ===============================

// Cada falha do motor de agendamento carrega um Kind. Os kinds nunca
// são colapsados: capacity_exceeded e invalid_slot têm remediações
// diferentes para o chamador (mostrar alternativas vs corrigir input).
type ErrorKind string

const (
	KindInvalidSlot       ErrorKind = "invalid_slot"
	KindCapacityExceeded  ErrorKind = "capacity_exceeded"
	KindResourceClosed    ErrorKind = "resource_closed"
	KindPersistence       ErrorKind = "persistence_failed"
	KindNotFound          ErrorKind = "not_found"
	KindNotCancellable    ErrorKind = "not_cancellable"
	KindForbidden         ErrorKind = "forbidden"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindInvalidSchedule   ErrorKind = "invalid_schedule"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError preserva a causa original (ex.: erro opaco do store).
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func IsKind(err error, kind ErrorKind) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

func KindOf(err error) (ErrorKind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}
