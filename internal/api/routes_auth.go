package api

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/andympr/my-wedding-backend/internal/auth"
	"github.com/andympr/my-wedding-backend/internal/handlers"
	"github.com/andympr/my-wedding-backend/internal/middleware"
)

func registerAuthRoutes(engine *gin.Engine, handler *handlers.AuthHandler, jwt *iauth.JWTService) {
	auth := engine.Group("/auth")
	{
		auth.POST("/login", handler.Login)
		auth.POST("/refresh", middleware.Auth(jwt), handler.Refresh)
		auth.GET("/me", middleware.Auth(jwt), handler.Me)
		auth.POST("/logout", middleware.Auth(jwt), handler.Logout)
	}
}
