package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andympr/my-wedding-backend/internal/models"
	"github.com/andympr/my-wedding-backend/pkg/logger"

	apperrors "github.com/andympr/my-wedding-backend/pkg/errors"
)

// DefaultPerPage bounds guest listings when the caller does not page explicitly.
const DefaultPerPage = 10

// guestSortFields whitelists the columns a listing can be sorted by.
var guestSortFields = map[string]string{
	"name":       "name",
	"lastname":   "lastname",
	"email":      "email",
	"confirm":    "confirm",
	"created_at": "created_at",
}

// ListGuestsOptions filters and pages a guest listing.
type ListGuestsOptions struct {
	Query     string
	Confirm   string
	Companion *bool
	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

// CompanionInput carries the companion payload accepted inline on guest
// writes and on the companion subresource.
type CompanionInput struct {
	Name     string
	Lastname *string
}

// CreateGuestInput carries the fields accepted when creating a guest.
type CreateGuestInput struct {
	Name            string
	Lastname        *string
	Email           *string
	Phone           *string
	Notes           *string
	EnableCompanion bool
	InvitationSent  bool
	Companion       *CompanionInput
}

// UpdateGuestInput carries the fields accepted when updating a guest. Nil
// pointers leave the current value untouched; pointers to empty strings clear
// nullable fields.
type UpdateGuestInput struct {
	Name            *string
	Lastname        *string
	Email           *string
	Phone           *string
	Notes           *string
	EnableCompanion *bool
	Confirm         *string
	InvitationSent  *bool
	Companion       *CompanionInput
}

// GuestService manages invitees, their companions, and the audit trail their
// changes leave behind.
type GuestService struct {
	db    *gorm.DB
	audit AuditRecorder
	log   *zap.Logger
}

func NewGuestService(db *gorm.DB, audit AuditRecorder) (*GuestService, error) {
	if db == nil {
		return nil, fmt.Errorf("guest service requires database handle")
	}
	if audit == nil {
		return nil, fmt.Errorf("guest service requires audit recorder")
	}
	return &GuestService{db: db, audit: audit, log: logger.WithModule("services.guests")}, nil
}

// List returns a page of guests matching the options plus the total count
// before paging.
func (s *GuestService) List(ctx context.Context, opts ListGuestsOptions) ([]models.Guest, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Guest{})

	if search := strings.TrimSpace(opts.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(lastname) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?",
			pattern, pattern, pattern, pattern)
	}
	if opts.Confirm != "" {
		query = query.Where("confirm = ?", opts.Confirm)
	}
	if opts.Companion != nil {
		query = query.Where("enable_companion = ?", *opts.Companion)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count guests: %w", err)
	}

	sortBy, ok := guestSortFields[opts.SortBy]
	if !ok {
		sortBy = "lastname"
	}
	order := "ASC"
	if strings.EqualFold(opts.SortOrder, "desc") {
		order = "DESC"
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	perPage := opts.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	var guests []models.Guest
	err := query.
		Preload("Companion").
		Order(fmt.Sprintf("%s %s", sortBy, order)).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&guests).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list guests: %w", err)
	}

	return guests, total, nil
}

// Get returns a guest by id with the companion preloaded.
func (s *GuestService) Get(ctx context.Context, id string) (*models.Guest, error) {
	ctx = ensureContext(ctx)

	var guest models.Guest
	err := s.db.WithContext(ctx).Preload("Companion").First(&guest, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("Guest not found")
		}
		return nil, fmt.Errorf("failed to load guest: %w", err)
	}
	return &guest, nil
}

// Create adds a guest. Optional string fields are normalised so "" is stored
// as NULL, and an inline companion payload is honoured only when the plus-one
// is enabled.
func (s *GuestService) Create(ctx context.Context, input CreateGuestInput, actorID *string) (*models.Guest, error) {
	ctx = ensureContext(ctx)

	guest := models.Guest{
		Name:            strings.TrimSpace(input.Name),
		Lastname:        normaliseOptional(input.Lastname),
		Email:           normaliseOptional(input.Email),
		Phone:           normaliseOptional(input.Phone),
		Notes:           normaliseOptional(input.Notes),
		EnableCompanion: input.EnableCompanion,
		InvitationSent:  input.InvitationSent,
	}
	if guest.Name == "" {
		return nil, apperrors.NewValidation("name is required")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&guest).Error; err != nil {
			if isUniqueConstraintError(err) {
				return apperrors.NewValidation("A guest with this email already exists")
			}
			return fmt.Errorf("failed to create guest: %w", err)
		}

		if input.EnableCompanion && input.Companion != nil && strings.TrimSpace(input.Companion.Name) != "" {
			companion := models.Companion{
				GuestID:  guest.ID,
				Name:     strings.TrimSpace(input.Companion.Name),
				Lastname: normaliseOptional(input.Companion.Lastname),
			}
			if err := tx.Create(&companion).Error; err != nil {
				return fmt.Errorf("failed to create companion: %w", err)
			}
			guest.Companion = &companion
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		GuestID:  &guest.ID,
		UserID:   actorID,
		Action:   models.AuditActionCreate,
		NewValue: guestSnapshot(&guest),
		Source:   models.AuditSourceAdmin,
	})
	if guest.Companion != nil {
		s.audit.Record(ctx, AuditEntry{
			GuestID:  &guest.ID,
			UserID:   actorID,
			Action:   models.AuditActionCreate,
			Field:    strPtr("companion"),
			NewValue: companionSnapshot(guest.Companion),
			Source:   models.AuditSourceAdmin,
		})
	}

	s.log.Info("guest created", zap.String("guest_id", guest.ID), zap.String("name", guest.Name))
	return &guest, nil
}

// Update edits a guest. Toggling enable_companion off removes the companion
// row; toggling it on with a payload upserts it. The whole-record change and
// any companion change are audited separately.
func (s *GuestService) Update(ctx context.Context, id string, input UpdateGuestInput, actorID *string) (*models.Guest, error) {
	ctx = ensureContext(ctx)

	guest, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Confirm != nil && !isValidConfirm(*input.Confirm) {
		return nil, apperrors.NewValidation("confirm must be one of pending, yes, no")
	}

	before := guestSnapshot(guest)
	companionBefore := companionSnapshot(guest.Companion)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return apperrors.NewValidation("name cannot be empty")
			}
			guest.Name = name
		}
		if input.Lastname != nil {
			guest.Lastname = normaliseOptional(input.Lastname)
		}
		if input.Email != nil {
			guest.Email = normaliseOptional(input.Email)
		}
		if input.Phone != nil {
			guest.Phone = normaliseOptional(input.Phone)
		}
		if input.Notes != nil {
			guest.Notes = normaliseOptional(input.Notes)
		}
		if input.Confirm != nil {
			applyConfirm(guest, *input.Confirm)
		}
		if input.InvitationSent != nil {
			guest.InvitationSent = *input.InvitationSent
		}
		if input.EnableCompanion != nil {
			guest.EnableCompanion = *input.EnableCompanion
		}

		if err := tx.Omit(clause.Associations).Save(guest).Error; err != nil {
			if isUniqueConstraintError(err) {
				return apperrors.NewValidation("A guest with this email already exists")
			}
			return fmt.Errorf("failed to update guest: %w", err)
		}

		if !guest.EnableCompanion && guest.Companion != nil {
			if err := tx.Delete(guest.Companion).Error; err != nil {
				return fmt.Errorf("failed to remove companion: %w", err)
			}
			guest.Companion = nil
		} else if guest.EnableCompanion && input.Companion != nil && strings.TrimSpace(input.Companion.Name) != "" {
			if guest.Companion == nil {
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
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		GuestID:  &guest.ID,
		UserID:   actorID,
		Action:   models.AuditActionUpdate,
		OldValue: before,
		NewValue: guestSnapshot(guest),
		Source:   models.AuditSourceAdmin,
	})

	companionAfter := companionSnapshot(guest.Companion)
	if strValue(companionBefore) != strValue(companionAfter) {
		s.audit.Record(ctx, AuditEntry{
			GuestID:  &guest.ID,
			UserID:   actorID,
			Action:   models.AuditActionUpdate,
			Field:    strPtr("companion"),
			OldValue: companionBefore,
			NewValue: companionAfter,
			Source:   models.AuditSourceAdmin,
		})
	}

	return guest, nil
}

// Delete removes a guest. The schema cascades the companion and audit rows.
func (s *GuestService) Delete(ctx context.Context, id string, actorID *string) error {
	ctx = ensureContext(ctx)

	guest, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Select("Companion", "AuditLogs").Delete(guest).Error; err != nil {
		return fmt.Errorf("failed to delete guest: %w", err)
	}

	// Recorded without a guest reference: a linked row would be swept away
	// by the same cascade that removed the guest.
	s.audit.Record(ctx, AuditEntry{
		UserID:   actorID,
		Action:   models.AuditActionDelete,
		OldValue: guestSnapshot(guest),
		Source:   models.AuditSourceAdmin,
	})

	s.log.Info("guest deleted",
		zap.String("guest_id", guest.ID),
		zap.String("name", guest.Name),
		zap.Stringp("actor_id", actorID))
	return nil
}

// ExportCSV writes every guest as a flat CSV row, companion and table included.
func (s *GuestService) ExportCSV(ctx context.Context, w io.Writer) error {
	ctx = ensureContext(ctx)

	var guests []models.Guest
	err := s.db.WithContext(ctx).
		Preload("Companion").
		Preload("EventTable").
		Order("lastname ASC, name ASC").
		Find(&guests).Error
	if err != nil {
		return fmt.Errorf("failed to load guests for export: %w", err)
	}

	writer := csv.NewWriter(w)
	header := []string{"name", "lastname", "email", "phone", "confirm", "companion", "companion_name", "table", "invitation_sent", "notes"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for _, guest := range guests {
		companionName := ""
		if guest.Companion != nil {
			companionName = strings.TrimSpace(guest.Companion.Name + " " + strValue(guest.Companion.Lastname))
		}
		tableName := ""
		if guest.EventTable != nil {
			tableName = guest.EventTable.Name
		}

		row := []string{
			guest.Name,
			strValue(guest.Lastname),
			strValue(guest.Email),
			strValue(guest.Phone),
			guest.Confirm,
			boolWord(guest.EnableCompanion),
			companionName,
			tableName,
			boolWord(guest.InvitationSent),
			strValue(guest.Notes),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}
	return nil
}

// GetCompanion returns a guest's companion.
func (s *GuestService) GetCompanion(ctx context.Context, guestID string) (*models.Companion, error) {
	guest, err := s.Get(ctx, guestID)
	if err != nil {
		return nil, err
	}
	if guest.Companion == nil {
		return nil, apperrors.ErrNotFound.WithMessage("Companion not found")
	}
	return guest.Companion, nil
}

// UpsertCompanion creates or replaces a guest's companion. Adding one to a
// guest whose plus-one is disabled is forbidden; editing an existing row is
// always allowed.
func (s *GuestService) UpsertCompanion(ctx context.Context, guestID string, input CompanionInput, source string, actorID *string) (*models.Companion, error) {
	ctx = ensureContext(ctx)

	guest, err := s.Get(ctx, guestID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidation("companion name is required")
	}
	if !guest.EnableCompanion && guest.Companion == nil {
		return nil, apperrors.ErrForbidden.WithMessage("Companion is not enabled for this guest")
	}

	before := companionSnapshot(guest.Companion)
	action := models.AuditActionUpdate

	if guest.Companion == nil {
		action = models.AuditActionCreate
		companion := models.Companion{
			GuestID:  guest.ID,
			Name:     name,
			Lastname: normaliseOptional(input.Lastname),
		}
		if err := s.db.WithContext(ctx).Create(&companion).Error; err != nil {
			return nil, fmt.Errorf("failed to create companion: %w", err)
		}
		guest.Companion = &companion
	} else {
		guest.Companion.Name = name
		guest.Companion.Lastname = normaliseOptional(input.Lastname)
		if err := s.db.WithContext(ctx).Save(guest.Companion).Error; err != nil {
			return nil, fmt.Errorf("failed to update companion: %w", err)
		}
	}

	s.audit.Record(ctx, AuditEntry{
		GuestID:  &guest.ID,
		UserID:   actorID,
		Action:   action,
		Field:    strPtr("companion"),
		OldValue: before,
		NewValue: companionSnapshot(guest.Companion),
		Source:   source,
	})

	return guest.Companion, nil
}

// DeleteCompanion removes a guest's companion row without touching the
// enable_companion flag.
func (s *GuestService) DeleteCompanion(ctx context.Context, guestID string, source string, actorID *string) error {
	ctx = ensureContext(ctx)

	guest, err := s.Get(ctx, guestID)
	if err != nil {
		return err
	}
	if guest.Companion == nil {
		return apperrors.ErrNotFound.WithMessage("Companion not found")
	}

	before := companionSnapshot(guest.Companion)
	if err := s.db.WithContext(ctx).Delete(guest.Companion).Error; err != nil {
		return fmt.Errorf("failed to delete companion: %w", err)
	}

	s.audit.Record(ctx, AuditEntry{
		GuestID:  &guest.ID,
		UserID:   actorID,
		Action:   models.AuditActionDelete,
		Field:    strPtr("companion"),
		OldValue: before,
		Source:   source,
	})
	return nil
}

// applyConfirm sets the confirmation state and stamps the matching timestamp.
// A yes clears any earlier decline stamp and vice versa; pending clears both.
func applyConfirm(guest *models.Guest, confirm string) {
	guest.Confirm = confirm
	now := time.Now()
	switch confirm {
	case models.ConfirmYes:
		guest.ConfirmedAt = &now
		guest.DeclinedAt = nil
	case models.ConfirmNo:
		guest.DeclinedAt = &now
		guest.ConfirmedAt = nil
	default:
		guest.ConfirmedAt = nil
		guest.DeclinedAt = nil
	}
}

func isValidConfirm(value string) bool {
	switch value {
	case models.ConfirmPending, models.ConfirmYes, models.ConfirmNo:
		return true
	}
	return false
}

func boolWord(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
