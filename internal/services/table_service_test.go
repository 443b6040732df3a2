package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andympr/my-wedding-backend/internal/database/testutil"
	"github.com/andympr/my-wedding-backend/internal/models"

	apperrors "github.com/andympr/my-wedding-backend/pkg/errors"
)

func mustCreateGuest(t *testing.T, db *gorm.DB, name string, companion bool) *models.Guest {
	t.Helper()

	guest := models.Guest{Name: name, EnableCompanion: companion}
	require.NoError(t, db.Create(&guest).Error)
	return &guest
}

func mustCreateTable(t *testing.T, db *gorm.DB, name string, seats int) *models.EventTable {
	t.Helper()

	svc, err := NewTableService(db)
	require.NoError(t, err)

	table, err := svc.Create(context.Background(), CreateTableInput{Name: name, Seats: seats})
	require.NoError(t, err)
	return table
}

func TestTableServiceCreateValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewTableService(db)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateTableInput{Name: "Mesa 1", Seats: 0})
	require.Error(t, err)
	require.Equal(t, apperrors.ErrValidation.Code, apperrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), CreateTableInput{Name: "Mesa 1", Seats: 21})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), CreateTableInput{Name: "Mesa 1", Seats: 8})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateTableInput{Name: "Mesa 1", Seats: 4})
	require.Error(t, err)
	require.Equal(t, apperrors.ErrValidation.Code, apperrors.FromError(err).Code)
}

func TestAssignGuestsSeatAccounting(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewTableService(db)
	require.NoError(t, err)
	ctx := context.Background()

	table := mustCreateTable(t, db, "Mesa principal", 4)
	withPlusOne := mustCreateGuest(t, db, "Ana", true)
	solo := mustCreateGuest(t, db, "Bruno", false)

	summary, err := svc.AssignGuests(ctx, table.ID, []string{withPlusOne.ID, solo.ID})
	require.NoError(t, err)
	require.Equal(t, 3, summary.AssignedCount)
	require.Equal(t, 1, summary.AvailableSeats)
	require.False(t, summary.IsFull)

	// One seat left: a companion-enabled guest needs two and must be rejected.
	rejected := mustCreateGuest(t, db, "Carla", true)
	_, err = svc.AssignGuests(ctx, table.ID, []string{rejected.ID})
	require.Error(t, err)
	appErr := apperrors.FromError(err)
	require.Equal(t, apperrors.ErrInsufficientSeats.Code, appErr.Code)
	require.Equal(t, "La mesa no tiene suficientes asientos disponibles. Necesarios: 2, Disponibles: 1", appErr.Message)

	var fresh models.Guest
	require.NoError(t, db.First(&fresh, "id = ?", rejected.ID).Error)
	require.Nil(t, fresh.EventTableID)

	// A solo guest still fits and fills the table.
	last := mustCreateGuest(t, db, "Diego", false)
	summary, err = svc.AssignGuests(ctx, table.ID, []string{last.ID})
	require.NoError(t, err)
	require.Equal(t, 4, summary.AssignedCount)
	require.Equal(t, 0, summary.AvailableSeats)
	require.True(t, summary.IsFull)
}

func TestAssignGuestsAllOrNothing(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewTableService(db)
	require.NoError(t, err)
	ctx := context.Background()

	table := mustCreateTable(t, db, "Mesa chica", 2)
	first := mustCreateGuest(t, db, "Elena", false)
	second := mustCreateGuest(t, db, "Fabio", true)

	// Combined cost is 3 against 2 free seats: neither guest may be seated.
	_, err = svc.AssignGuests(ctx, table.ID, []string{first.ID, second.ID})
	require.Error(t, err)
	require.Equal(t, apperrors.ErrInsufficientSeats.Code, apperrors.FromError(err).Code)

	var seated int64
	require.NoError(t, db.Model(&models.Guest{}).Where("event_table_id = ?", table.ID).Count(&seated).Error)
	require.Zero(t, seated)
}

func TestAssignGuestsUnknownGuest(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewTableService(db)
	require.NoError(t, err)
	ctx := context.Background()

	table := mustCreateTable(t, db, "Mesa lateral", 4)
	known := mustCreateGuest(t, db, "Gloria", false)

	_, err = svc.AssignGuests(ctx, table.ID, []string{known.ID, "no-such-guest"})
	require.Error(t, err)
	require.Equal(t, apperrors.ErrNotFound.Code, apperrors.FromError(err).Code)

	var fresh models.Guest
	require.NoError(t, db.First(&fresh, "id = ?", known.ID).Error)
	require.Nil(t, fresh.EventTableID)
}

func TestAssignGuestsReassignDoesNotDoubleCount(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewTableService(db)
	require.NoError(t, err)
	ctx := context.Background()

	table := mustCreateTable(t, db, "Mesa doble", 2)
	guest := mustCreateGuest(t, db, "Hugo", true)

	_, err = svc.AssignGuests(ctx, table.ID, []string{guest.ID})
	require.NoError(t, err)

	// Re-assigning a guest already at this table must not consume more seats.
	summary, err := svc.AssignGuests(ctx, table.ID, []string{guest.ID})
	require.NoError(t, err)
	require.Equal(t, 2, summary.AssignedCount)
	require.True(t, summary.IsFull)
}

func TestAssignGuestsMovesBetweenTables(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewTableService(db)
	require.NoError(t, err)
	ctx := context.Background()

	from := mustCreateTable(t, db, "Mesa origen", 4)
	to := mustCreateTable(t, db, "Mesa destino", 4)
	guest := mustCreateGuest(t, db, "Irene", true)

	_, err = svc.AssignGuests(ctx, from.ID, []string{guest.ID})
	require.NoError(t, err)

	summary, err := svc.AssignGuests(ctx, to.ID, []string{guest.ID})
	require.NoError(t, err)
	require.Equal(t, 2, summary.AssignedCount)

	fromSummary, err := svc.Get(ctx, from.ID)
	require.NoError(t, err)
	require.Zero(t, fromSummary.AssignedCount)
}

func TestUnassignGuestsIsIdempotent(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewTableService(db)
	require.NoError(t, err)
	ctx := context.Background()

	table := mustCreateTable(t, db, "Mesa libre", 4)
	guest := mustCreateGuest(t, db, "Julia", false)
	never := mustCreateGuest(t, db, "Kevin", false)

	_, err = svc.AssignGuests(ctx, table.ID, []string{guest.ID})
	require.NoError(t, err)

	require.NoError(t, svc.UnassignGuests(ctx, []string{guest.ID, never.ID}))
	require.NoError(t, svc.UnassignGuests(ctx, []string{guest.ID}))

	summary, err := svc.Get(ctx, table.ID)
	require.NoError(t, err)
	require.Zero(t, summary.AssignedCount)
	require.Equal(t, 4, summary.AvailableSeats)
}

func TestResizeRejectsBelowOccupancy(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewTableService(db)
	require.NoError(t, err)
	ctx := context.Background()

	table := mustCreateTable(t, db, "Mesa ajustable", 6)
	withPlusOne := mustCreateGuest(t, db, "Laura", true)
	solo := mustCreateGuest(t, db, "Marco", false)

	_, err = svc.AssignGuests(ctx, table.ID, []string{withPlusOne.ID, solo.ID})
	require.NoError(t, err)

	// Occupancy is 3: shrinking to exactly 3 works, to 2 does not.
	updated, err := svc.Update(ctx, table.ID, UpdateTableInput{Seats: intPtr(3)})
	require.NoError(t, err)
	require.Equal(t, 3, updated.Seats)

	_, err = svc.Update(ctx, table.ID, UpdateTableInput{Seats: intPtr(2)})
	require.Error(t, err)
	appErr := apperrors.FromError(err)
	require.Equal(t, apperrors.ErrCapacityConflict.Code, appErr.Code)
	require.Equal(t, "No se puede reducir el número de asientos por debajo del número de invitados asignados (3)", appErr.Message)
}

func TestDeleteTableRequiresVacancy(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewTableService(db)
	require.NoError(t, err)
	ctx := context.Background()

	table := mustCreateTable(t, db, "Mesa temporal", 4)
	guest := mustCreateGuest(t, db, "Nora", false)

	_, err = svc.AssignGuests(ctx, table.ID, []string{guest.ID})
	require.NoError(t, err)

	err = svc.Delete(ctx, table.ID)
	require.Error(t, err)
	appErr := apperrors.FromError(err)
	require.Equal(t, apperrors.ErrTableNotEmpty.Code, appErr.Code)
	require.Equal(t, "No se puede eliminar una mesa que tiene invitados asignados", appErr.Message)

	require.NoError(t, svc.UnassignGuests(ctx, []string{guest.ID}))
	require.NoError(t, svc.Delete(ctx, table.ID))

	_, err = svc.Get(ctx, table.ID)
	require.Error(t, err)
	require.Equal(t, apperrors.ErrNotFound.Code, apperrors.FromError(err).Code)
}

func TestUnassignedGuestsOrdering(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewTableService(db)
	require.NoError(t, err)
	ctx := context.Background()

	table := mustCreateTable(t, db, "Mesa asignada", 4)
	seated := mustCreateGuest(t, db, "Alba", false)
	_, err = svc.AssignGuests(ctx, table.ID, []string{seated.ID})
	require.NoError(t, err)

	mustCreateGuest(t, db, "Zoe", false)
	mustCreateGuest(t, db, "Berta", true)

	unassigned, err := svc.UnassignedGuests(ctx)
	require.NoError(t, err)
	require.Len(t, unassigned, 2)
	require.Equal(t, "Berta", unassigned[0].Name)
	require.Equal(t, 2, unassigned[0].SeatsNeeded())
	require.Equal(t, "Zoe", unassigned[1].Name)
	require.Equal(t, 1, unassigned[1].SeatsNeeded())
}

func intPtr(v int) *int { return &v }
