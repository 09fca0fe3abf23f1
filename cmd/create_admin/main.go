package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"recipehub/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Seeds a verified admin account. Role elevation is an out-of-band
// administrative action; registration always produces plain users.
func main() {
	if len(os.Args) < 4 {
		fmt.Println("usage: go run ./cmd/create_admin <username> <email> <password>")
		os.Exit(2)
	}
	username, email, password := os.Args[1], os.Args[2], os.Args[3]

	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	var existing models.User
	if err := db.Where("lower(username) = lower(?)", username).First(&existing).Error; err == nil {
		fmt.Printf("user %s already exists (id=%d)\n", username, existing.ID)
		os.Exit(0)
	}

	hpw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt failed: %v", err)
	}
	user := models.User{
		Username:    username,
		Email:       email,
		Password:    hpw,
		Permissions: []string{"admin", "chef", "user"},
		Verified:    true,
		ProfilePic:  models.DefaultProfilePic,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}
	fmt.Printf("created admin %s id=%d\n", username, user.ID)
}
