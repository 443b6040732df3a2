package models

import "time"

// Seat capacity bounds for event tables.
const (
	MinTableSeats = 1
	MaxTableSeats = 20
)

// EventTable is a physical table on the floor plan. Occupancy is never stored
// on the row; it is derived from the guest relation on every read (see
// services.TableService) so a counter can never drift from reality.
type EventTable struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Seats     int       `gorm:"column:nro_asientos;not null" json:"nro_asientos"`
	PositionX float64   `gorm:"default:0" json:"position_x"`
	PositionY float64   `gorm:"default:0" json:"position_y"`
	Guests    []Guest   `gorm:"foreignKey:EventTableID" json:"guests,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the original relation name, "tables" being reserved in some engines.
func (EventTable) TableName() string { return "event_tables" }
