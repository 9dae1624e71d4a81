package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jeffersongondran/luxconnect-scheduler/internal/audit"
	scheduling "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/httperr"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/httpresp"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/infra/repository"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/middleware"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/models"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type SalonHandler struct {
	salons *repository.SalonMongoRepository
	audit  *audit.Dispatcher
}

func NewSalonHandler(salons *repository.SalonMongoRepository, auditDisp *audit.Dispatcher) *SalonHandler {
	return &SalonHandler{salons: salons, audit: auditDisp}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateSalonRequest struct {
	Name    string `json:"name" binding:"required"`
	Slug    string `json:"slug" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`

	Timezone string `json:"timezone"`

	SlotMinutes       int `json:"slot_minutes"`
	Capacity          int `json:"capacity"`
	MinAdvanceMinutes int `json:"min_advance_minutes"`
	CancelLeadMinutes int `json:"cancel_lead_minutes"`

	Services []models.ServiceType    `json:"services"`
	Hours    []models.OperatingHours `json:"hours"`
}

type UpdateSalonRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`

	Timezone *string `json:"timezone"`

	SlotMinutes       *int `json:"slot_minutes"`
	Capacity          *int `json:"capacity"`
	MinAdvanceMinutes *int `json:"min_advance_minutes"`
	CancelLeadMinutes *int `json:"cancel_lead_minutes"`

	Services *[]models.ServiceType    `json:"services"`
	Hours    *[]models.OperatingHours `json:"hours"`

	Active *bool `json:"active"`
}

// ======================================================
// PÚBLICO — LISTAGEM E BUSCA
// ======================================================

func (h *SalonHandler) List(c *gin.Context) {
	salons, err := h.salons.ListActiveSalons(c.Request.Context())
	if err != nil {
		httperr.Internal(c, "failed_to_list_salons", "Erro ao listar salões.")
		return
	}
	httpresp.List(c, salons)
}

// Search filtra por nome ou serviço (query ?q=).
func (h *SalonHandler) Search(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))

	salons, err := h.salons.Search(c.Request.Context(), term)
	if err != nil {
		httperr.Internal(c, "failed_to_search_salons", "Erro ao buscar salões.")
		return
	}
	httpresp.List(c, salons)
}

func (h *SalonHandler) Get(c *gin.Context) {
	id := c.Param("id")

	salon, err := h.salons.GetSalon(c.Request.Context(), id)
	if err != nil {
		if err == scheduling.ErrNotFound {
			httperr.NotFound(c, "salon_not_found", "Salão não encontrado.")
			return
		}
		httperr.Internal(c, "failed_to_load_salon", "Erro ao carregar salão.")
		return
	}

	httpresp.OK(c, salon)
}

func (h *SalonHandler) GetBySlug(c *gin.Context) {
	slug := strings.ToLower(strings.TrimSpace(c.Param("slug")))

	salon, err := h.salons.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		if err == scheduling.ErrNotFound {
			httperr.NotFound(c, "salon_not_found", "Salão não encontrado.")
			return
		}
		httperr.Internal(c, "failed_to_load_salon", "Erro ao carregar salão.")
		return
	}

	httpresp.OK(c, salon)
}

// ======================================================
// ADMIN — CRIAÇÃO E EDIÇÃO
// ======================================================

func (h *SalonHandler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateSalonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	slug := strings.ToLower(strings.TrimSpace(req.Slug))

	if _, err := h.salons.GetBySlug(c.Request.Context(), slug); err == nil {
		httperr.BadRequest(c, "slug_already_exists", "Slug já em uso.")
		return
	}

	tz := req.Timezone
	if tz == "" {
		tz = timezone.DefaultTimezone
	}
	if !timezone.IsValid(tz) {
		httperr.BadRequest(c, "invalid_timezone", "Timezone inválido.")
		return
	}

	if err := validateHours(req.Hours); err != nil {
		httperr.BadRequest(c, "invalid_hours", err.Error())
		return
	}

	now := time.Now()
	salon := models.Salon{
		ID:      uuid.NewString(),
		Name:    req.Name,
		Slug:    slug,
		Phone:   req.Phone,
		Address: req.Address,

		Timezone: tz,

		SlotMinutes:       req.SlotMinutes,
		Capacity:          max(req.Capacity, 1),
		MinAdvanceMinutes: req.MinAdvanceMinutes,
		CancelLeadMinutes: req.CancelLeadMinutes,

		Services: req.Services,
		Hours:    req.Hours,

		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.salons.Create(c.Request.Context(), &salon); err != nil {
		httperr.Internal(c, "failed_to_create_salon", "Erro ao criar salão.")
		return
	}

	h.audit.Dispatch(audit.Event{
		SalonID:  salon.ID,
		UserID:   &userID,
		Action:   "salon_created",
		Entity:   "salon",
		EntityID: &salon.ID,
	})

	httpresp.Created(c, &salon)
}

func (h *SalonHandler) Update(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	id := c.Param("id")

	salon, err := h.salons.GetSalon(c.Request.Context(), id)
	if err != nil {
		if err == scheduling.ErrNotFound {
			httperr.NotFound(c, "salon_not_found", "Salão não encontrado.")
			return
		}
		httperr.Internal(c, "failed_to_load_salon", "Erro ao carregar salão.")
		return
	}

	var req UpdateSalonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	if req.Name != nil {
		salon.Name = *req.Name
	}
	if req.Phone != nil {
		salon.Phone = *req.Phone
	}
	if req.Address != nil {
		salon.Address = *req.Address
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Timezone inválido.")
			return
		}
		salon.Timezone = *req.Timezone
	}
	if req.SlotMinutes != nil {
		salon.SlotMinutes = *req.SlotMinutes
	}
	if req.Capacity != nil {
		salon.Capacity = max(*req.Capacity, 1)
	}
	if req.MinAdvanceMinutes != nil {
		salon.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}
	if req.CancelLeadMinutes != nil {
		salon.CancelLeadMinutes = *req.CancelLeadMinutes
	}
	if req.Services != nil {
		salon.Services = *req.Services
	}
	if req.Hours != nil {
		if err := validateHours(*req.Hours); err != nil {
			httperr.BadRequest(c, "invalid_hours", err.Error())
			return
		}
		salon.Hours = *req.Hours
	}
	if req.Active != nil {
		salon.Active = *req.Active
	}

	salon.UpdatedAt = time.Now()

	if err := h.salons.Update(c.Request.Context(), salon); err != nil {
		httperr.Internal(c, "failed_to_update_salon", "Erro ao atualizar salão.")
		return
	}

	h.audit.Dispatch(audit.Event{
		SalonID:  salon.ID,
		UserID:   &userID,
		Action:   "salon_updated",
		Entity:   "salon",
		EntityID: &salon.ID,
	})

	httpresp.OK(c, salon)
}

// ======================================================
// HELPERS
// ======================================================

// validateHours rejeita expediente malformado na escrita, antes que a
// grade chegue a enxergar o documento.
func validateHours(hours []models.OperatingHours) error {
	for _, h := range hours {
		if h.Weekday < 0 || h.Weekday > 6 {
			return errInvalidWeekday
		}
		if !h.Active {
			continue
		}

		open, err1 := time.Parse("15:04", h.Open)
		close, err2 := time.Parse("15:04", h.Close)
		if err1 != nil || err2 != nil {
			return errInvalidHourFormat
		}
		if !open.Before(close) {
			return errOpenAfterClose
		}
	}
	return nil
}

var (
	errInvalidWeekday    = scheduling.NewError(scheduling.KindInvalidSchedule, "dia da semana inválido")
	errInvalidHourFormat = scheduling.NewError(scheduling.KindInvalidSchedule, "horário deve estar no formato HH:MM")
	errOpenAfterClose    = scheduling.NewError(scheduling.KindInvalidSchedule, "abertura deve ser antes do fechamento")
)
