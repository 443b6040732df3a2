package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andympr/my-wedding-backend/internal/models"
	"github.com/andympr/my-wedding-backend/internal/services"
	"github.com/andympr/my-wedding-backend/pkg/response"
)

// CompanionHandler serves the companion subresource under a guest.
type CompanionHandler struct {
	guests *services.GuestService
}

func NewCompanionHandler(guests *services.GuestService) (*CompanionHandler, error) {
	if guests == nil {
		return nil, fmt.Errorf("companion handler requires guest service")
	}
	return &CompanionHandler{guests: guests}, nil
}

func (h *CompanionHandler) Get(c *gin.Context) {
	companion, err := h.guests.GetCompanion(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, companion)
}

// Upsert creates or replaces a guest's companion.
func (h *CompanionHandler) Upsert(c *gin.Context) {
	req, ok := bindAndValidate[companionPayload](c)
	if !ok {
		return
	}

	companion, err := h.guests.UpsertCompanion(
		requestContext(c),
		c.Param("id"),
		services.CompanionInput{Name: req.Name, Lastname: req.Lastname},
		models.AuditSourceAdmin,
		currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, companion)
}

func (h *CompanionHandler) Delete(c *gin.Context) {
	err := h.guests.DeleteCompanion(requestContext(c), c.Param("id"), models.AuditSourceAdmin, currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
