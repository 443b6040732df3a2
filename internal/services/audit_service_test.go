package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andympr/my-wedding-backend/internal/database/testutil"
	"github.com/andympr/my-wedding-backend/internal/models"
)

func TestAuditRecordAndList(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewAuditService(db)
	require.NoError(t, err)
	ctx := context.Background()

	guest := mustCreateGuest(t, db, "Ana", false)

	svc.Record(ctx, AuditEntry{
		GuestID:  &guest.ID,
		Action:   models.AuditActionCreate,
		NewValue: guestSnapshot(guest),
	})
	svc.Record(ctx, AuditEntry{
		GuestID:  &guest.ID,
		Action:   models.AuditActionConfirm,
		Field:    strPtr("confirm"),
		OldValue: strPtr(models.ConfirmPending),
		NewValue: strPtr(models.ConfirmYes),
		Source:   models.AuditSourceFrontend,
	})

	logs, err := svc.ListForGuest(ctx, guest.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	sources := map[string]bool{}
	for _, entry := range logs {
		sources[entry.Source] = true
	}
	// Unspecified sources default to admin.
	require.True(t, sources[models.AuditSourceAdmin])
	require.True(t, sources[models.AuditSourceFrontend])
}

func TestAuditRecordFailureDoesNotPanic(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewAuditService(db)
	require.NoError(t, err)

	// Dropping the table makes the insert fail; Record must swallow it.
	require.NoError(t, db.Migrator().DropTable(&models.AuditLog{}))
	svc.Record(context.Background(), AuditEntry{Action: models.AuditActionUpdate})
}

func TestGuestSnapshotOmitsUnsetFields(t *testing.T) {
	email := "ana@example.com"
	guest := &models.Guest{Name: "Ana", Email: &email, Confirm: models.ConfirmPending}

	snapshot := guestSnapshot(guest)
	require.NotNil(t, snapshot)
	require.Contains(t, *snapshot, `"name":"Ana"`)
	require.Contains(t, *snapshot, `"email":"ana@example.com"`)
	require.NotContains(t, *snapshot, "phone")
	require.NotContains(t, *snapshot, "created_at")
}
