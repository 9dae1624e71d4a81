package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jeffersongondran/luxconnect-scheduler/internal/audit"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/cache"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/config"
	domain "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/handlers"
	infraRepo "github.com/jeffersongondran/luxconnect-scheduler/internal/infra/repository"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/middleware"
	ucScheduling "github.com/jeffersongondran/luxconnect-scheduler/internal/usecase/scheduling"
)

// Deps carrega os singletons construídos no main: o motor de
// agendamento é compartilhado com o worker e o rebuild de boot.
type Deps struct {
	DB  *gorm.DB
	Cfg *config.Config

	Salons       *infraRepo.SalonMongoRepository
	Appointments *infraRepo.AppointmentMongoRepository

	Index    *domain.Index
	Calendar *domain.SlotCalendar
	Clock    domain.Clock
	Handles  *domain.HandleRegistry

	Availability *cache.Availability
	Audit        *audit.Dispatcher
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// 🧠 USE CASES — SCHEDULING
	// ======================================================
	requestBookingUC := ucScheduling.NewRequestBooking(
		d.Salons,
		d.Appointments,
		d.Index,
		d.Calendar,
		d.Clock,
		d.Handles,
		d.Availability,
		d.Audit,
	)

	cancelUC := ucScheduling.NewCancelAppointment(
		d.Salons,
		d.Appointments,
		d.Index,
		d.Calendar,
		d.Clock,
		d.Handles,
		d.Availability,
		d.Audit,
	)

	completeUC := ucScheduling.NewCompleteAppointment(
		d.Appointments,
		d.Clock,
		d.Handles,
		d.Audit,
	)

	noShowUC := ucScheduling.NewMarkNoShow(
		d.Appointments,
		d.Clock,
		d.Handles,
		d.Audit,
	)

	availabilityUC := ucScheduling.NewGetAvailability(
		d.Salons,
		d.Index,
		d.Calendar,
		d.Clock,
		d.Availability,
	)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(d.DB, d.Cfg)
	meHandler := handlers.NewMeHandler(d.DB)
	salonHandler := handlers.NewSalonHandler(d.Salons, d.Audit)
	favoriteHandler := handlers.NewFavoriteHandler(d.DB, d.Salons)

	appointmentHandler := handlers.NewAppointmentHandler(
		requestBookingUC,
		cancelUC,
		completeUC,
		noShowUC,
		availabilityUC,
		d.Salons,
		d.Appointments,
	)

	auditLogsHandler := handlers.NewAuditLogsHandler(d.DB)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		api.GET("/salons", salonHandler.List)
		api.GET("/salons/search", salonHandler.Search)
		api.GET("/salons/slug/:slug", salonHandler.GetBySlug)
		api.GET("/salons/:id", salonHandler.Get)
		api.GET("/salons/:id/availability", appointmentHandler.Availability)

		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(d.Cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/me/favorites", favoriteHandler.ListMine)
			secured.POST("/salons/:id/favorite", favoriteHandler.Toggle)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/appointments", appointmentHandler.Create)
			secured.GET("/me/appointments", appointmentHandler.ListMine)
			secured.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)

			// ------------------------------
			// ADMIN
			// ------------------------------
			admin := secured.Group("/")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/salons", salonHandler.Create)
				admin.PATCH("/salons/:id", salonHandler.Update)

				admin.GET("/salons/:id/appointments", appointmentHandler.ListBySalon)
				admin.GET("/salons/:id/appointments/watch", appointmentHandler.Watch)

				admin.PATCH("/appointments/:id/complete", appointmentHandler.Complete)
				admin.PATCH("/appointments/:id/no-show", appointmentHandler.NoShow)

				admin.GET("/audit-logs", auditLogsHandler.List)
			}
		}
	}
}
