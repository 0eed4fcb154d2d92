// seed inserts a development sample account for local testing.
// Idempotent: skips inserts if the dev account already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"searchuser-api/internal/config"
	"searchuser-api/internal/db"
	"searchuser-api/internal/security"
	"searchuser-api/internal/user/domain"
	"searchuser-api/internal/user/repository"
)

const (
	devUserID    = "79bfe381-050d-4cd4-9cd7-64b3a68d8faf"
	devUserName  = "Matheus"
	devUserEmail = "matheusmaximo@gmail.com"
	devPassword  = "Passw0rd!"
)

var devTelephones = []string{
	"+353834209690",
	"+353834211002",
	"+5585988861982",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if strings.EqualFold(cfg.Env, "production") {
		log.Fatal("refusing to seed a production environment")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	users := repository.NewPostgresRepository(conn)
	ctx := context.Background()

	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Printf("Seed already applied (%s exists). Skipping.", devUserEmail)
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           devUserID,
		Email:        devUserEmail,
		Name:         devUserName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for i, number := range devTelephones {
		user.Telephones = append(user.Telephones, domain.Telephone{
			ID:     fmt.Sprintf("%s-tel-%d", devUserID, i+1),
			UserID: devUserID,
			Number: number,
		})
	}

	if err := users.Create(ctx, user); err != nil {
		log.Fatalf("create dev user: %v", err)
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Dev login: %s / %s\n", devUserEmail, devPassword)
}
