package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Confirmation states a guest can be in.
const (
	ConfirmPending = "pending"
	ConfirmYes     = "yes"
	ConfirmNo      = "no"
)

// Guest is a primary invitee. Optional text fields are pointers; empty strings
// are normalised to nil before persistence.
type Guest struct {
	BaseModel
	Name     string  `gorm:"not null" json:"name"`
	Lastname *string `json:"lastname"`
	Email    *string `gorm:"uniqueIndex" json:"email"`
	Phone    *string `json:"phone"`

	EnableCompanion bool   `gorm:"default:false" json:"enable_companion"`
	Confirm         string `gorm:"not null;default:pending" json:"confirm"`

	// Token grants self-service access without a password. Generated once at
	// creation and never updated afterwards.
	Token string `gorm:"uniqueIndex;not null" json:"token"`

	Notes   *string `json:"notes"`
	Message *string `json:"message"`

	EventTableID *uint       `gorm:"index" json:"event_table_id"`
	EventTable   *EventTable `gorm:"foreignKey:EventTableID;constraint:OnDelete:SET NULL" json:"-"`

	InvitationSent bool       `gorm:"default:false" json:"invitation_sent"`
	ConfirmedAt    *time.Time `json:"confirmed_at"`
	DeclinedAt     *time.Time `json:"declined_at"`

	Companion *Companion `gorm:"foreignKey:GuestID;constraint:OnDelete:CASCADE" json:"companion,omitempty"`
	AuditLogs []AuditLog `gorm:"foreignKey:GuestID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate generates the uuid primary key and the self-service token.
func (g *Guest) BeforeCreate(tx *gorm.DB) error {
	if err := g.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if g.Token == "" {
		g.Token = uuid.NewString()
	}
	if g.Confirm == "" {
		g.Confirm = ConfirmPending
	}
	return nil
}

// SeatsNeeded reports how many seats the guest consumes at a table: two when a
// companion is enabled, one otherwise. The rule keys off the enable_companion
// flag rather than companion-row existence so that a reserved plus-one keeps
// its seat before the companion's details are filled in.
func (g *Guest) SeatsNeeded() int {
	if g.EnableCompanion {
		return 2
	}
	return 1
}
