package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/andympr/my-wedding-backend/internal/handlers"
	"github.com/andympr/my-wedding-backend/internal/middleware"
)

// registerRSVPRoutes wires the token-gated self-service surface. Both route
// families resolve the guest through the same token middleware.
func registerRSVPRoutes(engine *gin.Engine, handler *handlers.RSVPHandler, db *gorm.DB) {
	guests := engine.Group("/guests/:token", middleware.GuestToken(db))
	{
		guests.GET("", handler.Show)
		guests.PATCH("", handler.Update)
		guests.GET("/details", handler.Details)
	}

	rsvp := engine.Group("/rsvp/:token", middleware.GuestToken(db))
	{
		rsvp.GET("", handler.Details)
		rsvp.PATCH("", handler.Update)
	}
}
