package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/andympr/my-wedding-backend/internal/services"
	"github.com/andympr/my-wedding-backend/pkg/response"
)

type companionPayload struct {
	Name     string  `json:"name" validate:"required,max=120"`
	Lastname *string `json:"lastname" validate:"omitempty,max=120"`
}

type createGuestRequest struct {
	Name            string            `json:"name" validate:"required,max=120"`
	Lastname        *string           `json:"lastname" validate:"omitempty,max=120"`
	Email           *string           `json:"email" validate:"omitempty,email"`
	Phone           *string           `json:"phone" validate:"omitempty,max=40"`
	Notes           *string           `json:"notes"`
	EnableCompanion bool              `json:"enable_companion"`
	InvitationSent  bool              `json:"invitation_sent"`
	Companion       *companionPayload `json:"companion"`
}

type updateGuestRequest struct {
	Name            *string           `json:"name" validate:"omitempty,max=120"`
	Lastname        *string           `json:"lastname" validate:"omitempty,max=120"`
	Email           *string           `json:"email" validate:"omitempty,email"`
	Phone           *string           `json:"phone" validate:"omitempty,max=40"`
	Notes           *string           `json:"notes"`
	EnableCompanion *bool             `json:"enable_companion"`
	Confirm         *string           `json:"confirm" validate:"omitempty,oneof=pending yes no"`
	InvitationSent  *bool             `json:"invitation_sent"`
	Companion       *companionPayload `json:"companion"`
}

// GuestHandler serves the backoffice guest CRUD surface.
type GuestHandler struct {
	guests *services.GuestService
	audit  *services.AuditService
}

func NewGuestHandler(guests *services.GuestService, audit *services.AuditService) (*GuestHandler, error) {
	if guests == nil || audit == nil {
		return nil, fmt.Errorf("guest handler requires guest service and audit service")
	}
	return &GuestHandler{guests: guests, audit: audit}, nil
}

// List returns a filtered, sorted, paginated guest listing.
func (h *GuestHandler) List(c *gin.Context) {
	opts := services.ListGuestsOptions{
		Query:     c.Query("q"),
		Confirm:   c.Query("confirm"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	// Unrecognised companion values leave the filter off.
	switch c.Query("companion") {
	case "enabled", "true", "1":
		enabled := true
		opts.Companion = &enabled
	case "disabled", "false", "0":
		enabled := false
		opts.Companion = &enabled
	}
	opts.Page = intQuery(c, "page", 1)
	opts.PerPage = intQuery(c, "per_page", services.DefaultPerPage)

	guests, total, err := h.guests.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	lastPage := int(total) / opts.PerPage
	if int(total)%opts.PerPage != 0 || lastPage == 0 {
		lastPage++
	}

	response.SuccessWithMeta(c, http.StatusOK, guests, &response.Meta{
		CurrentPage: opts.Page,
		PerPage:     opts.PerPage,
		Total:       total,
		LastPage:    lastPage,
	})
}

func (h *GuestHandler) Get(c *gin.Context) {
	guest, err := h.guests.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, guest)
}

func (h *GuestHandler) Create(c *gin.Context) {
	req, ok := bindAndValidate[createGuestRequest](c)
	if !ok {
		return
	}

	guest, err := h.guests.Create(requestContext(c), services.CreateGuestInput{
		Name:            req.Name,
		Lastname:        req.Lastname,
		Email:           req.Email,
		Phone:           req.Phone,
		Notes:           req.Notes,
		EnableCompanion: req.EnableCompanion,
		InvitationSent:  req.InvitationSent,
		Companion:       companionInput(req.Companion),
	}, currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, guest)
}

func (h *GuestHandler) Update(c *gin.Context) {
	req, ok := bindAndValidate[updateGuestRequest](c)
	if !ok {
		return
	}

	guest, err := h.guests.Update(requestContext(c), c.Param("id"), services.UpdateGuestInput{
		Name:            req.Name,
		Lastname:        req.Lastname,
		Email:           req.Email,
		Phone:           req.Phone,
		Notes:           req.Notes,
		EnableCompanion: req.EnableCompanion,
		Confirm:         req.Confirm,
		InvitationSent:  req.InvitationSent,
		Companion:       companionInput(req.Companion),
	}, currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, guest)
}

func (h *GuestHandler) Delete(c *gin.Context) {
	if err := h.guests.Delete(requestContext(c), c.Param("id"), currentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Logs returns a guest's audit history.
func (h *GuestHandler) Logs(c *gin.Context) {
	ctx := requestContext(c)

	guest, err := h.guests.Get(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	logs, err := h.audit.ListForGuest(ctx, guest.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, logs)
}

// Export streams the full guest list as a CSV attachment.
func (h *GuestHandler) Export(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="guests.csv"`)
	c.Status(http.StatusOK)

	if err := h.guests.ExportCSV(requestContext(c), c.Writer); err != nil {
		// Headers are already out; all we can do is log through the
		// recovery/access middleware by aborting with the error.
		_ = c.Error(err)
	}
}

func companionInput(payload *companionPayload) *services.CompanionInput {
	if payload == nil {
		return nil
	}
	return &services.CompanionInput{Name: payload.Name, Lastname: payload.Lastname}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
