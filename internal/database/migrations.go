package database

import (
	"strings"

	"gorm.io/gorm"

	"github.com/andympr/my-wedding-backend/internal/models"
	"github.com/andympr/my-wedding-backend/pkg/crypto"
)

// Default admin account created on first boot; override via configuration.
const (
	DefaultAdminName     = "Admin"
	DefaultAdminEmail    = "admin@mywedding.local"
	DefaultAdminPassword = "M&we3dd1ng"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.EventTable{},
		&models.Guest{},
		&models.Companion{},
		&models.AuditLog{},
	)
}

// SeedData ensures the default admin account exists.
func SeedData(db *gorm.DB) error {
	return EnsureAdminUser(db, DefaultAdminName, DefaultAdminEmail, DefaultAdminPassword)
}

// EnsureAdminUser creates an admin account with the given credentials unless a
// user with that email already exists.
func EnsureAdminUser(db *gorm.DB, name, email, password string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	return db.Create(&admin).Error
}
