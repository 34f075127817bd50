package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/pro-scheduler/internal/config"
	"github.com/BruksfildServices01/pro-scheduler/internal/handlers"
	"github.com/BruksfildServices01/pro-scheduler/internal/middleware"
	"github.com/BruksfildServices01/pro-scheduler/internal/models"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Me           *handlers.MeHandler
	Appointment  *handlers.AppointmentHandler
	Professional *handlers.ProfessionalHandler
	AuditLogs    *handlers.AuditLogsHandler
}

// RegisterRoutes mounts the JSON API under /api. Global middleware and the
// operational endpoints (/health, /metrics) are wired by the caller.
func RegisterRoutes(r *gin.Engine, h Handlers, cfg *config.Config) {

	api := r.Group("/api")

	// ------------------------------
	// AUTH
	// ------------------------------
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
	}

	// ------------------------------
	// AUTHENTICATED
	// ------------------------------
	secured := api.Group("/")
	secured.Use(middleware.AuthMiddleware(cfg.JWT))

	if h.Me != nil {
		secured.GET("/me", h.Me.GetMe)
	}

	admin := middleware.RequireRole(models.RoleAdmin)

	// ------------------------------
	// APPOINTMENTS
	// ------------------------------
	secured.POST("/appointments", h.Appointment.Create)
	secured.GET("/appointments", h.Appointment.List)
	secured.GET("/appointments/:id", h.Appointment.Get)
	secured.PATCH("/appointments/:id/schedule", h.Appointment.UpdateSchedule)
	secured.PATCH("/appointments/:id/cancel", h.Appointment.Cancel)
	secured.PATCH("/appointments/:id/confirm", admin, h.Appointment.Confirm)
	secured.GET("/appointments/:id/revalidate", admin, h.Appointment.Revalidate)

	secured.GET("/availability", h.Appointment.Availability)

	// ------------------------------
	// PROFESSIONALS (admin)
	// ------------------------------
	pros := secured.Group("/professionals", admin)
	{
		pros.GET("", h.Professional.List)
		pros.POST("", h.Professional.Create)
		pros.PATCH("/:id", h.Professional.Update)
		pros.DELETE("/:id", h.Professional.Delete)
	}

	if h.AuditLogs != nil {
		secured.GET("/audit-logs", admin, h.AuditLogs.List)
	}
}
