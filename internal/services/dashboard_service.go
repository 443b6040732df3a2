package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/andympr/my-wedding-backend/internal/models"
)

// SeatingStats summarises table assignment coverage.
type SeatingStats struct {
	TotalTables      int64 `json:"total_tables"`
	TotalSeats       int64 `json:"total_seats"`
	OccupiedSeats    int64 `json:"occupied_seats"`
	AssignedGuests   int64 `json:"assigned_guests"`
	UnassignedGuests int64 `json:"unassigned_guests"`
}

// DashboardStats is the aggregate view served to the planning dashboard.
// Attendee figures count people: every guest plus one per companion-enabled
// guest. Pending companions are split by whether their details were already
// registered. ConfirmedAttendees counts confirmed guests plus their
// registered companions.
type DashboardStats struct {
	TotalGuests    int64 `json:"total_guests"`
	TotalAttendees int64 `json:"total_attendees"`

	PendingGuests                int64 `json:"pending_guests"`
	PendingAttendees             int64 `json:"pending_attendees"`
	PendingCompanionsWithData    int64 `json:"pending_companions_with_data"`
	PendingCompanionsWithoutData int64 `json:"pending_companions_without_data"`

	ConfirmedAttendees int64 `json:"confirmed_attendees"`

	DeclinedGuests    int64 `json:"declined_guests"`
	DeclinedAttendees int64 `json:"declined_attendees"`

	InvitationsSent int64        `json:"invitations_sent"`
	Seating         SeatingStats `json:"seating"`
}

// DashboardService recomputes read-only aggregates over the full guest set.
// Nothing here enforces invariants; it only reports them.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) (*DashboardService, error) {
	if db == nil {
		return nil, fmt.Errorf("dashboard service requires database handle")
	}
	return &DashboardService{db: db}, nil
}

func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	ctx = ensureContext(ctx)
	db := s.db.WithContext(ctx)

	stats := &DashboardStats{}

	guests := func() *gorm.DB { return db.Model(&models.Guest{}) }

	var totalCompanions, pendingCompanions, declinedCompanions int64
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalGuests, guests()},
		{&totalCompanions, guests().Where("enable_companion = ?", true)},
		{&stats.PendingGuests, guests().Where("confirm = ?", models.ConfirmPending)},
		{&pendingCompanions, guests().Where("confirm = ? AND enable_companion = ?", models.ConfirmPending, true)},
		{&stats.ConfirmedAttendees, guests().Where("confirm = ?", models.ConfirmYes)},
		{&stats.DeclinedGuests, guests().Where("confirm = ?", models.ConfirmNo)},
		{&declinedCompanions, guests().Where("confirm = ? AND enable_companion = ?", models.ConfirmNo, true)},
		{&stats.InvitationsSent, guests().Where("invitation_sent = ?", true)},
		{&stats.Seating.AssignedGuests, guests().Where("event_table_id IS NOT NULL")},
		{&stats.Seating.UnassignedGuests, guests().Where("event_table_id IS NULL")},
		{&stats.Seating.TotalTables, db.Model(&models.EventTable{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
		}
	}

	stats.TotalAttendees = stats.TotalGuests + totalCompanions
	stats.PendingAttendees = stats.PendingGuests + pendingCompanions
	stats.DeclinedAttendees = stats.DeclinedGuests + declinedCompanions

	// Pending plus-ones whose details were already filled in.
	var pendingWithData int64
	err := db.Model(&models.Companion{}).
		Joins("JOIN guests ON guests.id = companions.guest_id").
		Where("guests.confirm = ? AND guests.enable_companion = ?", models.ConfirmPending, true).
		Count(&pendingWithData).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count pending companions: %w", err)
	}
	stats.PendingCompanionsWithData = pendingWithData
	stats.PendingCompanionsWithoutData = pendingCompanions - pendingWithData

	// Registered companions of confirmed guests count as attendees.
	var confirmedCompanions int64
	err = db.Model(&models.Companion{}).
		Joins("JOIN guests ON guests.id = companions.guest_id").
		Where("guests.confirm = ?", models.ConfirmYes).
		Count(&confirmedCompanions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count confirmed companions: %w", err)
	}
	stats.ConfirmedAttendees += confirmedCompanions

	var totalSeats int64
	err = db.Model(&models.EventTable{}).
		Select("COALESCE(SUM(nro_asientos), 0)").
		Scan(&totalSeats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum table seats: %w", err)
	}
	stats.Seating.TotalSeats = totalSeats

	var companionSeats int64
	err = db.Model(&models.Guest{}).
		Where("event_table_id IS NOT NULL AND enable_companion = ?", true).
		Count(&companionSeats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count occupied companion seats: %w", err)
	}
	stats.Seating.OccupiedSeats = stats.Seating.AssignedGuests + companionSeats

	return stats, nil
}
