package main

import (
	"flag"
	"log"

	"go-pos-inventory/internal/config"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// reset-password sets a new password for an employee and ends their sessions.
// Usage: reset-password -email admin@example.com -password newsecret
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg := config.Load()

	email := flag.String("email", cfg.SeedAdminEmail, "employee email")
	password := flag.String("password", cfg.SeedAdminPassword, "new password (min 6 characters)")
	flag.Parse()

	if len(*password) < 6 {
		log.Fatal("password must have at least 6 characters")
	}

	db := database.ConnectDB(cfg.DatabaseURL, cfg.DBTimeZone)

	var user model.User
	if err := db.Where("email = ?", *email).First(&user).Error; err != nil {
		log.Fatalf("User %s not found in database: %v", *email, err)
	}

	if err := user.SetPassword(*password); err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	err := db.Model(&user).Updates(map[string]interface{}{
		"password":      user.Password,
		"token_version": uuid.New().String(),
		"updated_by":    "reset-password",
	}).Error
	if err != nil {
		log.Fatalf("Failed to update password in DB: %v", err)
	}

	log.Printf("Password for %s has been reset", *email)
}
