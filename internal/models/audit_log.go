package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit actions.
const (
	AuditActionCreate  = "create"
	AuditActionUpdate  = "update"
	AuditActionDelete  = "delete"
	AuditActionConfirm = "confirm"
	AuditActionDecline = "decline"
)

// Audit sources.
const (
	AuditSourceFrontend = "frontend"
	AuditSourceAdmin    = "admin"
)

// AuditLog is an immutable record of a field-level change. Rows are only ever
// created; the sole removal path is the cascade when the owning guest is deleted.
type AuditLog struct {
	ID       string  `gorm:"primaryKey;type:uuid" json:"id"`
	UserID   *string `gorm:"type:uuid;index" json:"user_id"`
	User     *User   `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
	GuestID  *string `gorm:"type:uuid;index" json:"guest_id"`
	Action   string  `gorm:"not null;index" json:"action"`
	Field    *string `json:"field"`
	OldValue *string `gorm:"type:text" json:"old_value"`
	NewValue *string `gorm:"type:text" json:"new_value"`
	Source   string  `gorm:"not null;default:frontend" json:"source"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
