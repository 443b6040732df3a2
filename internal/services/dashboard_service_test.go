package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andympr/my-wedding-backend/internal/database/testutil"
	"github.com/andympr/my-wedding-backend/internal/models"
)

func TestDashboardStats(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewDashboardService(db)
	require.NoError(t, err)
	ctx := context.Background()

	tableSvc, err := NewTableService(db)
	require.NoError(t, err)
	table, err := tableSvc.Create(ctx, CreateTableInput{Name: "Mesa 1", Seats: 6})
	require.NoError(t, err)

	confirmed := mustCreateGuest(t, db, "Ana", true)
	require.NoError(t, db.Model(confirmed).Updates(map[string]any{
		"confirm":         models.ConfirmYes,
		"invitation_sent": true,
	}).Error)
	require.NoError(t, db.Create(&models.Companion{GuestID: confirmed.ID, Name: "Pablo"}).Error)

	declined := mustCreateGuest(t, db, "Bruno", true)
	require.NoError(t, db.Model(declined).Update("confirm", models.ConfirmNo).Error)

	// Pending, plus-one enabled but companion details not yet supplied.
	mustCreateGuest(t, db, "Carla", true)
	mustCreateGuest(t, db, "Diego", false)

	_, err = tableSvc.AssignGuests(ctx, table.ID, []string{confirmed.ID})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	require.EqualValues(t, 4, stats.TotalGuests)
	// Four guests plus three enabled plus-ones.
	require.EqualValues(t, 7, stats.TotalAttendees)

	require.EqualValues(t, 2, stats.PendingGuests)
	require.EqualValues(t, 3, stats.PendingAttendees)
	require.EqualValues(t, 0, stats.PendingCompanionsWithData)
	require.EqualValues(t, 1, stats.PendingCompanionsWithoutData)

	// Ana plus her registered companion.
	require.EqualValues(t, 2, stats.ConfirmedAttendees)

	require.EqualValues(t, 1, stats.DeclinedGuests)
	// Bruno plus his enabled plus-one.
	require.EqualValues(t, 2, stats.DeclinedAttendees)

	require.EqualValues(t, 1, stats.InvitationsSent)

	require.EqualValues(t, 1, stats.Seating.TotalTables)
	require.EqualValues(t, 6, stats.Seating.TotalSeats)
	// Ana occupies two seats, one for herself and one reserved for Pablo.
	require.EqualValues(t, 2, stats.Seating.OccupiedSeats)
	require.EqualValues(t, 1, stats.Seating.AssignedGuests)
	require.EqualValues(t, 3, stats.Seating.UnassignedGuests)
}

func TestDashboardStatsEmpty(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewDashboardService(db)
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Zero(t, stats.TotalGuests)
	require.Zero(t, stats.Seating.TotalSeats)
	require.Zero(t, stats.Seating.OccupiedSeats)
}
