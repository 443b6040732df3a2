package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andympr/my-wedding-backend/internal/models"
	"github.com/andympr/my-wedding-backend/pkg/logger"
	"github.com/andympr/my-wedding-backend/pkg/metrics"

	apperrors "github.com/andympr/my-wedding-backend/pkg/errors"
)

// TableSummary pairs a table with its derived occupancy. AssignedCount sums
// the seat cost of every guest at the table (two per companion-enabled guest,
// one otherwise) and is recomputed on every read.
type TableSummary struct {
	Table          models.EventTable
	AssignedCount  int
	AvailableSeats int
	IsFull         bool
}

// CreateTableInput carries the fields accepted when creating a table.
type CreateTableInput struct {
	Name      string
	Seats     int
	PositionX *float64
	PositionY *float64
}

// UpdateTableInput carries the fields accepted when updating a table. Nil
// pointers leave the current value untouched.
type UpdateTableInput struct {
	Name      *string
	Seats     *int
	PositionX *float64
	PositionY *float64
}

// TableService manages the floor plan and the seat-capacity accounting that
// goes with it. Seat mutations run inside a transaction that locks the table
// row, so two concurrent assignments cannot both pass the availability check.
type TableService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTableService(db *gorm.DB) (*TableService, error) {
	if db == nil {
		return nil, fmt.Errorf("table service requires database handle")
	}
	return &TableService{db: db, log: logger.WithModule("services.tables")}, nil
}

// List returns every table with guests (and their companions) preloaded plus
// derived occupancy, ordered by name.
func (s *TableService) List(ctx context.Context) ([]TableSummary, error) {
	ctx = ensureContext(ctx)

	var tables []models.EventTable
	err := s.db.WithContext(ctx).
		Preload("Guests.Companion").
		Order("name ASC").
		Find(&tables).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	summaries := make([]TableSummary, 0, len(tables))
	for _, table := range tables {
		summaries = append(summaries, summarise(table))
	}
	return summaries, nil
}

// Get returns a single table with guests preloaded and derived occupancy.
func (s *TableService) Get(ctx context.Context, id uint) (*TableSummary, error) {
	ctx = ensureContext(ctx)

	var table models.EventTable
	err := s.db.WithContext(ctx).
		Preload("Guests.Companion").
		First(&table, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("Table not found")
		}
		return nil, fmt.Errorf("failed to load table: %w", err)
	}

	summary := summarise(table)
	return &summary, nil
}

// Create adds a table to the floor plan. Names are unique across the plan.
func (s *TableService) Create(ctx context.Context, input CreateTableInput) (*models.EventTable, error) {
	ctx = ensureContext(ctx)

	if input.Seats < models.MinTableSeats || input.Seats > models.MaxTableSeats {
		return nil, apperrors.NewValidation(fmt.Sprintf("seats must be between %d and %d", models.MinTableSeats, models.MaxTableSeats))
	}

	table := models.EventTable{
		Name:  input.Name,
		Seats: input.Seats,
	}
	if input.PositionX != nil {
		table.PositionX = *input.PositionX
	}
	if input.PositionY != nil {
		table.PositionY = *input.PositionY
	}

	if err := s.db.WithContext(ctx).Create(&table).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewValidation("A table with this name already exists")
		}
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	s.log.Info("table created", zap.Uint("table_id", table.ID), zap.String("name", table.Name), zap.Int("seats", table.Seats))
	return &table, nil
}

// Update edits a table. Shrinking the seat count below the current occupancy
// is rejected; the check and the write happen under a row lock so a
// concurrent assignment cannot slip between them.
func (s *TableService) Update(ctx context.Context, id uint, input UpdateTableInput) (*models.EventTable, error) {
	ctx = ensureContext(ctx)

	if input.Seats != nil && (*input.Seats < models.MinTableSeats || *input.Seats > models.MaxTableSeats) {
		return nil, apperrors.NewValidation(fmt.Sprintf("seats must be between %d and %d", models.MinTableSeats, models.MaxTableSeats))
	}

	var table models.EventTable
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&table, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound.WithMessage("Table not found")
			}
			return fmt.Errorf("failed to load table: %w", err)
		}

		if input.Seats != nil && *input.Seats < table.Seats {
			occupied, err := occupiedSeats(tx, table.ID)
			if err != nil {
				return err
			}
			if *input.Seats < occupied {
				return apperrors.ErrCapacityConflict.WithMessage(
					fmt.Sprintf("No se puede reducir el número de asientos por debajo del número de invitados asignados (%d)", occupied))
			}
		}

		if input.Name != nil {
			table.Name = *input.Name
		}
		if input.Seats != nil {
			table.Seats = *input.Seats
		}
		if input.PositionX != nil {
			table.PositionX = *input.PositionX
		}
		if input.PositionY != nil {
			table.PositionY = *input.PositionY
		}

		if err := tx.Save(&table).Error; err != nil {
			if isUniqueConstraintError(err) {
				return apperrors.NewValidation("A table with this name already exists")
			}
			return fmt.Errorf("failed to update table: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &table, nil
}

// Delete removes a table. Tables that still have guests assigned cannot be
// deleted; the guests must be unassigned or moved first.
func (s *TableService) Delete(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table models.EventTable
		if err := lockForUpdate(tx).First(&table, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound.WithMessage("Table not found")
			}
			return fmt.Errorf("failed to load table: %w", err)
		}

		var assigned int64
		if err := tx.Model(&models.Guest{}).Where("event_table_id = ?", table.ID).Count(&assigned).Error; err != nil {
			return fmt.Errorf("failed to count assigned guests: %w", err)
		}
		if assigned > 0 {
			return apperrors.ErrTableNotEmpty.WithMessage("No se puede eliminar una mesa que tiene invitados asignados")
		}

		if err := tx.Delete(&table).Error; err != nil {
			return fmt.Errorf("failed to delete table: %w", err)
		}

		s.log.Info("table deleted", zap.Uint("table_id", table.ID), zap.String("name", table.Name))
		return nil
	})
}

// AssignGuests seats the given guests at a table in a single all-or-nothing
// operation. The combined seat cost of the batch must fit in the table's
// available seats or the whole batch is rejected.
func (s *TableService) AssignGuests(ctx context.Context, tableID uint, guestIDs []string) (*TableSummary, error) {
	ctx = ensureContext(ctx)

	ids := normaliseIDs(guestIDs)
	if len(ids) == 0 {
		return nil, apperrors.NewValidation("at least one guest id is required")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table models.EventTable
		if err := lockForUpdate(tx).First(&table, "id = ?", tableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound.WithMessage("Table not found")
			}
			return fmt.Errorf("failed to load table: %w", err)
		}

		var guests []models.Guest
		if err := tx.Where("id IN ?", ids).Find(&guests).Error; err != nil {
			return fmt.Errorf("failed to load guests: %w", err)
		}
		if len(guests) != len(ids) {
			return apperrors.ErrNotFound.WithMessage("One or more guests were not found")
		}

		needed := 0
		for _, guest := range guests {
			if guest.EventTableID != nil && *guest.EventTableID == table.ID {
				continue
			}
			needed += guest.SeatsNeeded()
		}

		occupied, err := occupiedSeats(tx, table.ID)
		if err != nil {
			return err
		}
		available := table.Seats - occupied
		if needed > available {
			return apperrors.ErrInsufficientSeats.WithMessage(
				fmt.Sprintf("La mesa no tiene suficientes asientos disponibles. Necesarios: %d, Disponibles: %d", needed, available))
		}

		if err := tx.Model(&models.Guest{}).Where("id IN ?", ids).Update("event_table_id", table.ID).Error; err != nil {
			return fmt.Errorf("failed to assign guests: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.SeatAssignments.WithLabelValues("rejected").Inc()
		return nil, err
	}

	metrics.SeatAssignments.WithLabelValues("assigned").Inc()
	s.log.Info("guests assigned to table", zap.Uint("table_id", tableID), zap.Int("guests", len(ids)))

	return s.Get(ctx, tableID)
}

// UnassignGuests removes the given guests from whatever table they sit at.
// Guests that are not seated are silently skipped, so the operation is
// idempotent and frees the seats for reassignment.
func (s *TableService) UnassignGuests(ctx context.Context, guestIDs []string) error {
	ctx = ensureContext(ctx)

	ids := normaliseIDs(guestIDs)
	if len(ids) == 0 {
		return apperrors.NewValidation("at least one guest id is required")
	}

	err := s.db.WithContext(ctx).
		Model(&models.Guest{}).
		Where("id IN ?", ids).
		Update("event_table_id", nil).Error
	if err != nil {
		return fmt.Errorf("failed to unassign guests: %w", err)
	}

	metrics.SeatAssignments.WithLabelValues("unassigned").Inc()
	s.log.Info("guests unassigned", zap.Int("guests", len(ids)))
	return nil
}

// UnassignedGuests lists the guests not yet seated at any table, ordered by
// name then lastname, with companions preloaded.
func (s *TableService) UnassignedGuests(ctx context.Context) ([]models.Guest, error) {
	ctx = ensureContext(ctx)

	var guests []models.Guest
	err := s.db.WithContext(ctx).
		Preload("Companion").
		Where("event_table_id IS NULL").
		Order("name ASC, lastname ASC").
		Find(&guests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unassigned guests: %w", err)
	}
	return guests, nil
}

// occupiedSeats derives a table's occupancy from the guest relation: one seat
// per assigned guest plus one extra per companion-enabled guest.
func occupiedSeats(tx *gorm.DB, tableID uint) (int, error) {
	var total int64
	err := tx.Model(&models.Guest{}).Where("event_table_id = ?", tableID).Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count assigned guests: %w", err)
	}

	var withCompanion int64
	err = tx.Model(&models.Guest{}).
		Where("event_table_id = ? AND enable_companion = ?", tableID, true).
		Count(&withCompanion).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count companion seats: %w", err)
	}

	return int(total + withCompanion), nil
}

// summarise computes occupancy from the preloaded guest relation.
func summarise(table models.EventTable) TableSummary {
	occupied := 0
	for _, guest := range table.Guests {
		occupied += guest.SeatsNeeded()
	}
	return TableSummary{
		Table:          table,
		AssignedCount:  occupied,
		AvailableSeats: table.Seats - occupied,
		IsFull:         occupied >= table.Seats,
	}
}

// lockForUpdate applies a FOR UPDATE row lock on engines that support it.
// SQLite serialises writers on its own and rejects the clause.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
