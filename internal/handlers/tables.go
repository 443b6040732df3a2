package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/andympr/my-wedding-backend/internal/models"
	"github.com/andympr/my-wedding-backend/internal/services"
	"github.com/andympr/my-wedding-backend/pkg/response"

	apperrors "github.com/andympr/my-wedding-backend/pkg/errors"
)

type createTableRequest struct {
	Name      string   `json:"name" validate:"required,max=120"`
	Seats     int      `json:"nro_asientos" validate:"required,min=1,max=20"`
	PositionX *float64 `json:"position_x"`
	PositionY *float64 `json:"position_y"`
}

type updateTableRequest struct {
	Name      *string  `json:"name" validate:"omitempty,max=120"`
	Seats     *int     `json:"nro_asientos" validate:"omitempty,min=1,max=20"`
	PositionX *float64 `json:"position_x"`
	PositionY *float64 `json:"position_y"`
}

type assignGuestsRequest struct {
	GuestIDs []string `json:"guest_ids" validate:"required,min=1,dive,required"`
}

// tableResponse embeds the table row and its derived occupancy.
type tableResponse struct {
	models.EventTable
	AssignedCount  int  `json:"assigned_count"`
	AvailableSeats int  `json:"available_seats"`
	IsFull         bool `json:"is_full"`
}

type unassignedGuestResponse struct {
	models.Guest
	SeatsNeeded int `json:"seats_needed"`
}

// TableHandler serves the floor plan and seat assignment endpoints.
type TableHandler struct {
	tables *services.TableService
}

func NewTableHandler(tables *services.TableService) (*TableHandler, error) {
	if tables == nil {
		return nil, fmt.Errorf("table handler requires table service")
	}
	return &TableHandler{tables: tables}, nil
}

func (h *TableHandler) List(c *gin.Context) {
	summaries, err := h.tables.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := make([]tableResponse, 0, len(summaries))
	for _, summary := range summaries {
		payload = append(payload, newTableResponse(summary))
	}
	response.Success(c, http.StatusOK, payload)
}

func (h *TableHandler) Get(c *gin.Context) {
	id, ok := tableID(c)
	if !ok {
		return
	}

	summary, err := h.tables.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, newTableResponse(*summary))
}

func (h *TableHandler) Create(c *gin.Context) {
	req, ok := bindAndValidate[createTableRequest](c)
	if !ok {
		return
	}

	table, err := h.tables.Create(requestContext(c), services.CreateTableInput{
		Name:      req.Name,
		Seats:     req.Seats,
		PositionX: req.PositionX,
		PositionY: req.PositionY,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, table)
}

func (h *TableHandler) Update(c *gin.Context) {
	id, ok := tableID(c)
	if !ok {
		return
	}

	req, ok := bindAndValidate[updateTableRequest](c)
	if !ok {
		return
	}

	table, err := h.tables.Update(requestContext(c), id, services.UpdateTableInput{
		Name:      req.Name,
		Seats:     req.Seats,
		PositionX: req.PositionX,
		PositionY: req.PositionY,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, table)
}

func (h *TableHandler) Delete(c *gin.Context) {
	id, ok := tableID(c)
	if !ok {
		return
	}

	if err := h.tables.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Assign seats a batch of guests at the table, all-or-nothing.
func (h *TableHandler) Assign(c *gin.Context) {
	id, ok := tableID(c)
	if !ok {
		return
	}

	req, ok := bindAndValidate[assignGuestsRequest](c)
	if !ok {
		return
	}

	summary, err := h.tables.AssignGuests(requestContext(c), id, req.GuestIDs)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Invitados asignados correctamente",
		"table":   newTableResponse(*summary),
	})
}

// Unassign clears the table reference for a batch of guests.
func (h *TableHandler) Unassign(c *gin.Context) {
	req, ok := bindAndValidate[assignGuestsRequest](c)
	if !ok {
		return
	}

	if err := h.tables.UnassignGuests(requestContext(c), req.GuestIDs); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Invitados desasignados correctamente",
	})
}

// UnassignedGuests lists guests without a table, each annotated with the
// seats they would consume.
func (h *TableHandler) UnassignedGuests(c *gin.Context) {
	guests, err := h.tables.UnassignedGuests(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := make([]unassignedGuestResponse, 0, len(guests))
	for _, guest := range guests {
		payload = append(payload, unassignedGuestResponse{
			Guest:       guest,
			SeatsNeeded: guest.SeatsNeeded(),
		})
	}
	response.Success(c, http.StatusOK, payload)
}

func newTableResponse(summary services.TableSummary) tableResponse {
	return tableResponse{
		EventTable:     summary.Table,
		AssignedCount:  summary.AssignedCount,
		AvailableSeats: summary.AvailableSeats,
		IsFull:         summary.IsFull,
	}
}

func tableID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		response.Error(c, apperrors.ErrBadRequest.WithMessage("Invalid table id"))
		return 0, false
	}
	return uint(id), true
}
