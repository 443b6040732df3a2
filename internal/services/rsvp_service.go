package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andympr/my-wedding-backend/internal/models"
	"github.com/andympr/my-wedding-backend/pkg/logger"
	"github.com/andympr/my-wedding-backend/pkg/metrics"

	apperrors "github.com/andympr/my-wedding-backend/pkg/errors"
)

// RSVPDetails is the payload a guest sees on their invitation page.
type RSVPDetails struct {
	Guest             *models.Guest     `json:"guest"`
	Companion         *models.Companion `json:"companion,omitempty"`
	CanAddCompanion   bool              `json:"can_add_companion"`
	CompanionEditable bool              `json:"companion_editable"`
}

// RSVPUpdateInput carries the fields a guest may change through their token.
// Nil pointers leave the current value untouched.
type RSVPUpdateInput struct {
	Confirm   *string
	Email     *string
	Phone     *string
	Message   *string
	Notes     *string
	Companion *CompanionInput
}

// RSVPService handles the token-gated self-service flow: guests confirm or
// decline, update their contact details, and manage their companion without
// an account. Every change is audited with source=frontend.
type RSVPService struct {
	db    *gorm.DB
	audit AuditRecorder
	log   *zap.Logger
}

func NewRSVPService(db *gorm.DB, audit AuditRecorder) (*RSVPService, error) {
	if db == nil {
		return nil, fmt.Errorf("rsvp service requires database handle")
	}
	if audit == nil {
		return nil, fmt.Errorf("rsvp service requires audit recorder")
	}
	return &RSVPService{db: db, audit: audit, log: logger.WithModule("services.rsvp")}, nil
}

// Details builds the invitation payload for an already resolved guest.
func (s *RSVPService) Details(guest *models.Guest) RSVPDetails {
	return RSVPDetails{
		Guest:             guest,
		Companion:         guest.Companion,
		CanAddCompanion:   guest.EnableCompanion && guest.Companion == nil,
		CompanionEditable: guest.EnableCompanion || guest.Companion != nil,
	}
}

// Update applies a guest's self-service changes, auditing each changed field
// individually. Confirming stamps confirmed_at and clears declined_at; the
// reverse applies when declining.
func (s *RSVPService) Update(ctx context.Context, guest *models.Guest, input RSVPUpdateInput) (*models.Guest, error) {
	ctx = ensureContext(ctx)

	if input.Confirm != nil && !isValidConfirm(*input.Confirm) {
		return nil, apperrors.NewValidation("confirm must be one of pending, yes, no")
	}
	if input.Companion != nil && !guest.EnableCompanion && guest.Companion == nil {
		return nil, apperrors.ErrForbidden.WithMessage("Companion is not enabled for this guest")
	}

	type fieldChange struct {
		field  string
		action string
		old    *string
		new    *string
	}
	var changes []fieldChange

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.Confirm != nil && *input.Confirm != guest.Confirm {
			action := models.AuditActionUpdate
			switch *input.Confirm {
			case models.ConfirmYes:
				action = models.AuditActionConfirm
			case models.ConfirmNo:
				action = models.AuditActionDecline
			}
			changes = append(changes, fieldChange{"confirm", action, strPtr(guest.Confirm), strPtr(*input.Confirm)})
			applyConfirm(guest, *input.Confirm)
		}
		if input.Email != nil {
			next := normaliseOptional(input.Email)
			if strValue(next) != strValue(guest.Email) {
				changes = append(changes, fieldChange{"email", models.AuditActionUpdate, guest.Email, next})
				guest.Email = next
			}
		}
		if input.Phone != nil {
			next := normaliseOptional(input.Phone)
			if strValue(next) != strValue(guest.Phone) {
				changes = append(changes, fieldChange{"phone", models.AuditActionUpdate, guest.Phone, next})
				guest.Phone = next
			}
		}
		if input.Message != nil {
			next := normaliseOptional(input.Message)
			if strValue(next) != strValue(guest.Message) {
				changes = append(changes, fieldChange{"message", models.AuditActionUpdate, guest.Message, next})
				guest.Message = next
			}
		}
		if input.Notes != nil {
			next := normaliseOptional(input.Notes)
			if strValue(next) != strValue(guest.Notes) {
				changes = append(changes, fieldChange{"notes", models.AuditActionUpdate, guest.Notes, next})
				guest.Notes = next
			}
		}

		if err := tx.Omit(clause.Associations).Save(guest).Error; err != nil {
			if isUniqueConstraintError(err) {
				return apperrors.NewValidation("A guest with this email already exists")
			}
			return fmt.Errorf("failed to update guest: %w", err)
		}

		if input.Companion != nil && strings.TrimSpace(input.Companion.Name) != "" {
			before := companionSnapshot(guest.Companion)
			action := models.AuditActionUpdate
			if guest.Companion == nil {
				action = models.AuditActionCreate
				companion := models.Companion{
					GuestID:  guest.ID,
					Name:     strings.TrimSpace(input.Companion.Name),
					Lastname: normaliseOptional(input.Companion.Lastname),
				}
				if err := tx.Create(&companion).Error; err != nil {
					return fmt.Errorf("failed to create companion: %w", err)
				}
				guest.Companion = &companion
			} else {
				guest.Companion.Name = strings.TrimSpace(input.Companion.Name)
				guest.Companion.Lastname = normaliseOptional(input.Companion.Lastname)
				if err := tx.Save(guest.Companion).Error; err != nil {
					return fmt.Errorf("failed to update companion: %w", err)
				}
			}
			after := companionSnapshot(guest.Companion)
			if strValue(before) != strValue(after) {
				changes = append(changes, fieldChange{"companion", action, before, after})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, change := range changes {
		field := change.field
		s.audit.Record(ctx, AuditEntry{
			GuestID:  &guest.ID,
			Action:   change.action,
			Field:    &field,
			OldValue: change.old,
			NewValue: change.new,
			Source:   models.AuditSourceFrontend,
		})

		if change.action == models.AuditActionConfirm || change.action == models.AuditActionDecline {
			outcome := "confirm"
			if change.action == models.AuditActionDecline {
				outcome = "decline"
			}
			metrics.RSVPResponses.WithLabelValues(outcome).Inc()
			s.log.Info("rsvp response recorded",
				zap.String("guest_id", guest.ID),
				zap.String("outcome", outcome))
		}
	}

	return guest, nil
}
