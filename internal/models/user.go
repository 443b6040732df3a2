package models

// User roles accepted by the admin API.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User is an admin/editor account used only for authentication.
type User struct {
	BaseModel
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"not null;default:editor" json:"role"`
}
