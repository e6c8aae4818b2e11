package main

import (
	"flag"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"estampa-fina/internal/config"
	"estampa-fina/internal/repository"
	"estampa-fina/pkg/database"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	email := flag.String("email", cfg.Seed.AdminEmail, "account to reset")
	password := flag.String("password", os.Getenv("ESTAMPA_RESET_PASSWORD"), "new password")
	flag.Parse()

	if len(*password) < 6 {
		log.Fatal("Password must be at least 6 characters (use -password or ESTAMPA_RESET_PASSWORD)")
	}

	// 2. Setup Database
	db := database.ConnectDB(&cfg.DB, cfg.Log.SQLLevel)
	userRepo := repository.NewUserRepo(db)

	// 3. Find user
	user, err := userRepo.FindByEmail(*email)
	if err != nil {
		log.Fatalf("User %s not found in database: %v", *email, err)
	}

	// 4. Hash new password and end any open session
	if err := user.SetPassword(*password); err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	if err := userRepo.UpdatePassword(user.ID, user.Password); err != nil {
		log.Fatalf("Failed to update password in DB: %v", err)
	}
	if err := userRepo.UpdateTokenVersion(user.ID, uuid.New().String()); err != nil {
		log.Fatalf("Failed to revoke sessions: %v", err)
	}

	log.Printf("Password for %s has been reset", user.Email)
}
