package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andympr/my-wedding-backend/pkg/response"
)

// Health reports service liveness.
func Health(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"status":  "ok",
		"service": "wedding-backend",
	})
}
