package main

import (
	"flag"
	"log"

	"bodega-pos/internal/config"
	"bodega-pos/internal/repository"
	"bodega-pos/pkg/database"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	email := flag.String("email", "admin@bodega.pe", "email of the user to reset")
	newPassword := flag.String("password", "", "new password (at least 6 characters)")
	flag.Parse()

	if len(*newPassword) < 6 {
		log.Fatal("-password must be at least 6 characters")
	}

	// 1. Load Env
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Setup Database
	db := database.ConnectDB(cfg.DatabaseURL, cfg.DBLogLevel)
	userRepo := repository.NewUserRepo(db)

	// 3. Find user
	user, err := userRepo.FindByEmail(*email)
	if err != nil {
		log.Fatalf("User %s not found in database: %v", *email, err)
	}

	// 4. Hash new password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*newPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	// 5. Update and sign out every device
	if err := userRepo.UpdatePassword(user.ID, string(hashedPassword)); err != nil {
		log.Fatalf("Failed to update password in DB: %v", err)
	}
	if err := userRepo.UpdateTokenVersion(user.ID, uuid.NewString()); err != nil {
		log.Fatalf("Failed to revoke sessions: %v", err)
	}

	log.Printf("Password for %s has been reset", user.Email)
}
