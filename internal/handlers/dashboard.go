package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andympr/my-wedding-backend/internal/services"
	"github.com/andympr/my-wedding-backend/pkg/response"
)

// DashboardHandler serves the planning dashboard aggregates.
type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) (*DashboardHandler, error) {
	if dashboard == nil {
		return nil, fmt.Errorf("dashboard handler requires dashboard service")
	}
	return &DashboardHandler{dashboard: dashboard}, nil
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
