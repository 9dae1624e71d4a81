package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"

	scheduling "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
)

// Cada kind do motor de agendamento mapeia em um status próprio: o
// cliente precisa distinguir "horário lotado" (oferecer alternativas)
// de "horário inválido" (corrigir o formulário).
var kindStatus = map[scheduling.ErrorKind]int{
	scheduling.KindInvalidSlot:       http.StatusUnprocessableEntity,
	scheduling.KindCapacityExceeded:  http.StatusConflict,
	scheduling.KindResourceClosed:    http.StatusNotFound,
	scheduling.KindPersistence:       http.StatusInternalServerError,
	scheduling.KindNotFound:          http.StatusNotFound,
	scheduling.KindNotCancellable:    http.StatusConflict,
	scheduling.KindForbidden:         http.StatusForbidden,
	scheduling.KindInvalidTransition: http.StatusConflict,
	scheduling.KindInvalidSchedule:   http.StatusInternalServerError,
}

// WriteScheduling traduz um erro do motor para a resposta HTTP.
// Erros sem kind viram 500 genérico.
func WriteScheduling(c *gin.Context, err error) {
	kind, ok := scheduling.KindOf(err)
	if !ok {
		Internal(c, "internal_error", "Erro interno.")
		return
	}

	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	Write(c, status, string(kind), err.Error())
}
