package database

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ctmes/ProfTwo/internal/models"
)

// SeedAdminUser ensures there is at least one admin account so the API is
// usable on a fresh database. A missing password skips the seed entirely.
func SeedAdminUser(db *gorm.DB, email, password string) {
	if password == "" {
		log.Println("Info: no admin password configured, skipping admin seed.")
		return
	}

	var count int64
	db.Model(&models.User{}).Where("role = ?", "admin").Count(&count)
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("⚠️ Failed to hash admin password: %v", err)
		return
	}

	admin := models.User{
		ID:           "admin",
		Email:        email,
		Name:         "Administrator",
		PasswordHash: string(hash),
		Role:         "admin",
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Printf("⚠️ Failed to seed admin user: %v", err)
		return
	}
	log.Printf("✅ Seeded admin user %s", email)
}
