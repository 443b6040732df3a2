package api

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/andympr/my-wedding-backend/internal/auth"
	"github.com/andympr/my-wedding-backend/internal/handlers"
	"github.com/andympr/my-wedding-backend/internal/middleware"
	"github.com/andympr/my-wedding-backend/internal/models"
)

type adminHandlers struct {
	guests     *handlers.GuestHandler
	companions *handlers.CompanionHandler
	tables     *handlers.TableHandler
	dashboard  *handlers.DashboardHandler
}

// registerAdminRoutes wires the backoffice surface behind role-gated JWT auth.
func registerAdminRoutes(engine *gin.Engine, jwt *iauth.JWTService, h adminHandlers) {
	admin := engine.Group("/admin", middleware.Auth(jwt, models.RoleAdmin, models.RoleEditor))

	admin.GET("/dashboard/stats", h.dashboard.Stats)

	guests := admin.Group("/guests")
	{
		guests.GET("", h.guests.List)
		guests.POST("", h.guests.Create)
		guests.GET("/export", h.guests.Export)
		guests.GET("/:id", h.guests.Get)
		guests.PUT("/:id", h.guests.Update)
		guests.PATCH("/:id", h.guests.Update)
		guests.DELETE("/:id", h.guests.Delete)
		guests.GET("/:id/logs", h.guests.Logs)

		guests.GET("/:id/companion", h.companions.Get)
		guests.POST("/:id/companion", h.companions.Upsert)
		guests.PUT("/:id/companion", h.companions.Upsert)
		guests.DELETE("/:id/companion", h.companions.Delete)
	}

	tables := admin.Group("/event-tables")
	{
		tables.GET("", h.tables.List)
		tables.POST("", h.tables.Create)
		tables.GET("/unassigned-guests", h.tables.UnassignedGuests)
		tables.POST("/unassign", h.tables.Unassign)
		tables.GET("/:id", h.tables.Get)
		tables.PUT("/:id", h.tables.Update)
		tables.PATCH("/:id", h.tables.Update)
		tables.DELETE("/:id", h.tables.Delete)
		tables.POST("/:id/assign", h.tables.Assign)
	}
}
