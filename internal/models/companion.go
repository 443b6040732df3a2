package models

// Companion is the at-most-one plus-one attached to a guest. The unique index
// on GuestID enforces the 0-or-1 cardinality at the schema level.
type Companion struct {
	BaseModel
	GuestID  string  `gorm:"type:uuid;uniqueIndex;not null" json:"guest_id"`
	Name     string  `gorm:"not null" json:"name"`
	Lastname *string `json:"lastname"`
}
