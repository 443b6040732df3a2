package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/andympr/my-wedding-backend/internal/models"
	"github.com/andympr/my-wedding-backend/pkg/logger"
)

// AuditEntry describes a single change to record in the audit trail.
type AuditEntry struct {
	GuestID  *string
	UserID   *string
	Action   string
	Field    *string
	OldValue *string
	NewValue *string
	Source   string
}

// AuditRecorder appends entries to the audit trail. Recording is
// best-effort: failures are logged and never surfaced to the caller,
// so a broken trail cannot block guest changes.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditService persists audit entries and serves per-guest history.
type AuditService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAuditService(db *gorm.DB) (*AuditService, error) {
	if db == nil {
		return nil, fmt.Errorf("audit service requires database handle")
	}
	return &AuditService{db: db, log: logger.WithModule("services.audit")}, nil
}

func (s *AuditService) Record(ctx context.Context, entry AuditEntry) {
	ctx = ensureContext(ctx)

	if entry.Source == "" {
		entry.Source = models.AuditSourceAdmin
	}

	row := models.AuditLog{
		GuestID:  entry.GuestID,
		UserID:   entry.UserID,
		Action:   entry.Action,
		Field:    entry.Field,
		OldValue: entry.OldValue,
		NewValue: entry.NewValue,
		Source:   entry.Source,
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.log.Warn("failed to record audit entry",
			zap.String("action", entry.Action),
			zap.Stringp("guest_id", entry.GuestID),
			zap.Error(err))
	}
}

// ListForGuest returns a guest's audit history, newest first, with the
// acting user preloaded when present.
func (s *AuditService) ListForGuest(ctx context.Context, guestID string) ([]models.AuditLog, error) {
	ctx = ensureContext(ctx)

	var logs []models.AuditLog
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("guest_id = ?", guestID).
		Order("created_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

// guestSnapshot serialises the auditable fields of a guest. Timestamps
// and unset optional fields are omitted.
func guestSnapshot(guest *models.Guest) *string {
	if guest == nil {
		return nil
	}

	snapshot := map[string]any{
		"name":             guest.Name,
		"enable_companion": guest.EnableCompanion,
		"confirm":          guest.Confirm,
	}
	if guest.Lastname != nil {
		snapshot["lastname"] = *guest.Lastname
	}
	if guest.Email != nil {
		snapshot["email"] = *guest.Email
	}
	if guest.Phone != nil {
		snapshot["phone"] = *guest.Phone
	}
	if guest.Notes != nil {
		snapshot["notes"] = *guest.Notes
	}
	if guest.Message != nil {
		snapshot["message"] = *guest.Message
	}
	if guest.EventTableID != nil {
		snapshot["event_table_id"] = *guest.EventTableID
	}

	return marshalSnapshot(snapshot)
}

func companionSnapshot(companion *models.Companion) *string {
	if companion == nil {
		return nil
	}

	snapshot := map[string]any{"name": companion.Name}
	if companion.Lastname != nil {
		snapshot["lastname"] = *companion.Lastname
	}
	return marshalSnapshot(snapshot)
}

func marshalSnapshot(snapshot map[string]any) *string {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil
	}
	encoded := string(raw)
	return &encoded
}
