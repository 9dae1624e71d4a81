package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/dto"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/httperr"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/httpresp"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/middleware"
	ucscheduling "github.com/jeffersongondran/luxconnect-scheduler/internal/usecase/scheduling"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	requestBooking  *ucscheduling.RequestBooking
	cancel          *ucscheduling.CancelAppointment
	complete        *ucscheduling.CompleteAppointment
	noShow          *ucscheduling.MarkNoShow
	getAvailability *ucscheduling.GetAvailability

	directory domain.Directory
	store     domain.AppointmentStore
}

func NewAppointmentHandler(
	requestBooking *ucscheduling.RequestBooking,
	cancel *ucscheduling.CancelAppointment,
	complete *ucscheduling.CompleteAppointment,
	noShow *ucscheduling.MarkNoShow,
	getAvailability *ucscheduling.GetAvailability,
	directory domain.Directory,
	store domain.AppointmentStore,
) *AppointmentHandler {
	return &AppointmentHandler{
		requestBooking:  requestBooking,
		cancel:          cancel,
		complete:        complete,
		noShow:          noShow,
		getAvailability: getAvailability,
		directory:       directory,
		store:           store,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	SalonID string `json:"salon_id" binding:"required"`
	Service string `json:"service" binding:"required"`
	Date    string `json:"date" binding:"required"`
	Time    string `json:"time" binding:"required"`
	Notes   string `json:"notes"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	salon, err := h.directory.GetSalon(c.Request.Context(), req.SalonID)
	if err != nil {
		if err == domain.ErrNotFound {
			httperr.NotFound(c, "salon_not_found", "Salão não encontrado.")
			return
		}
		httperr.Internal(c, "failed_to_load_salon", "Erro ao carregar salão.")
		return
	}

	// data/hora interpretadas no fuso do salão, nunca no do servidor
	start, err := parseDateTimeInSalon(salon, req.Date, req.Time)
	if err != nil {
		httperr.WriteScheduling(c, domain.NewError(
			domain.KindInvalidSlot, "data ou hora inválida"))
		return
	}

	ap, err := h.requestBooking.Execute(c.Request.Context(), ucscheduling.RequestBookingInput{
		SalonID: req.SalonID,
		UserID:  userID,
		Service: req.Service,
		Start:   start,
		Notes:   req.Notes,
	})
	if err != nil {
		httperr.WriteScheduling(c, err)
		return
	}

	httpresp.Created(c, ap)
}

// ======================================================
// TRANSITIONS
// ======================================================

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.MustGet(middleware.ContextUserRole).(string)
	id := c.Param("id")

	ap, err := h.cancel.Execute(c.Request.Context(), id, userID, role == "admin")
	if err != nil {
		httperr.WriteScheduling(c, err)
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	id := c.Param("id")

	ap, err := h.complete.Execute(c.Request.Context(), id, userID)
	if err != nil {
		httperr.WriteScheduling(c, err)
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) NoShow(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	id := c.Param("id")

	ap, err := h.noShow.Execute(c.Request.Context(), id, userID)
	if err != nil {
		httperr.WriteScheduling(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListMine(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	aps, err := h.store.ListByUser(c.Request.Context(), userID)
	if err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Erro ao listar agendamentos.")
		return
	}

	out := make([]dto.AppointmentListDTO, 0, len(aps))
	for i := range aps {
		out = append(out, dto.FromAppointment(&aps[i]))
	}

	httpresp.List(c, out)
}

// ListBySalon lista os agendamentos de um dia da agenda do salão.
func (h *AppointmentHandler) ListBySalon(c *gin.Context) {
	salonID := c.Param("id")

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Data obrigatória.")
		return
	}

	salon, err := h.directory.GetSalon(c.Request.Context(), salonID)
	if err != nil {
		if err == domain.ErrNotFound {
			httperr.NotFound(c, "salon_not_found", "Salão não encontrado.")
			return
		}
		httperr.Internal(c, "failed_to_load_salon", "Erro ao carregar salão.")
		return
	}

	date, err := parseDateInSalon(salon, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.Add(24 * time.Hour)

	aps, err := h.store.ListBySalon(c.Request.Context(), salonID, start, end)
	if err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Erro ao listar agendamentos.")
		return
	}

	httpresp.List(c, aps)
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *AppointmentHandler) Availability(c *gin.Context) {
	salonID := c.Param("id")

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Data obrigatória.")
		return
	}

	salon, err := h.directory.GetSalon(c.Request.Context(), salonID)
	if err != nil {
		if err == domain.ErrNotFound {
			httperr.NotFound(c, "salon_not_found", "Salão não encontrado.")
			return
		}
		httperr.Internal(c, "failed_to_load_salon", "Erro ao carregar salão.")
		return
	}

	date, err := parseDateInSalon(salon, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	slots, err := h.getAvailability.Execute(c.Request.Context(), salonID, date)
	if err != nil {
		httperr.WriteScheduling(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"salon_id": salonID,
		"date":     dateStr,
		"slots":    slots,
	})
}

// ======================================================
// WATCH (SSE)
// ======================================================

// Watch emite a agenda do salão como Server-Sent Events. Cada retrato
// substitui o anterior; o cliente redesenha a lista inteira.
func (h *AppointmentHandler) Watch(c *gin.Context) {
	salonID := c.Param("id")

	if _, err := h.directory.GetSalon(c.Request.Context(), salonID); err != nil {
		if err == domain.ErrNotFound {
			httperr.NotFound(c, "salon_not_found", "Salão não encontrado.")
			return
		}
		httperr.Internal(c, "failed_to_load_salon", "Erro ao carregar salão.")
		return
	}

	stream, err := h.store.StreamBySalon(c.Request.Context(), salonID)
	if err != nil {
		httperr.Internal(c, "failed_to_watch_appointments", "Erro ao abrir stream.")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		snapshot, ok := <-stream
		if !ok {
			return false
		}
		c.SSEvent("appointments", snapshot)
		return true
	})
}
