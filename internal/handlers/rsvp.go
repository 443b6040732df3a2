package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andympr/my-wedding-backend/internal/middleware"
	"github.com/andympr/my-wedding-backend/internal/services"
	"github.com/andympr/my-wedding-backend/pkg/response"

	apperrors "github.com/andympr/my-wedding-backend/pkg/errors"
)

type rsvpUpdateRequest struct {
	Confirm   *string           `json:"confirm" validate:"omitempty,oneof=pending yes no"`
	Email     *string           `json:"email" validate:"omitempty,email"`
	Phone     *string           `json:"phone" validate:"omitempty,max=40"`
	Message   *string           `json:"message" validate:"omitempty,max=1000"`
	Notes     *string           `json:"notes" validate:"omitempty,max=1000"`
	Companion *companionPayload `json:"companion"`
}

// RSVPHandler serves the token-gated guest self-service endpoints. The guest
// is resolved by the GuestToken middleware before any of these run.
type RSVPHandler struct {
	rsvp *services.RSVPService
}

func NewRSVPHandler(rsvp *services.RSVPService) (*RSVPHandler, error) {
	if rsvp == nil {
		return nil, fmt.Errorf("rsvp handler requires rsvp service")
	}
	return &RSVPHandler{rsvp: rsvp}, nil
}

// Show returns the guest record behind the token.
func (h *RSVPHandler) Show(c *gin.Context) {
	guest, ok := middleware.GuestFromContext(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}
	response.Success(c, http.StatusOK, guest)
}

// Details returns the invitation payload with companion editability flags.
func (h *RSVPHandler) Details(c *gin.Context) {
	guest, ok := middleware.GuestFromContext(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}
	response.Success(c, http.StatusOK, h.rsvp.Details(guest))
}

// Update applies the guest's self-service changes.
func (h *RSVPHandler) Update(c *gin.Context) {
	guest, ok := middleware.GuestFromContext(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	req, ok := bindAndValidate[rsvpUpdateRequest](c)
	if !ok {
		return
	}

	updated, err := h.rsvp.Update(requestContext(c), guest, services.RSVPUpdateInput{
		Confirm:   req.Confirm,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   req.Message,
		Notes:     req.Notes,
		Companion: companionInput(req.Companion),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, updated)
}
