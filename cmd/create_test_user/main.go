package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"tasktracker/internal/db"
	"tasktracker/internal/domain"
	"tasktracker/internal/repository"
	"tasktracker/internal/service"
)

// Seeds a known account for local development and prints a valid session
// token for it. Expects DATABASE_URL and JWT_SECRET env vars.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	repo := repository.NewUserRepository(pool)
	ctx := context.Background()

	const email = "test@example.com"
	const password = "secret123"

	u, err := repo.GetByEmail(ctx, email)
	if err == nil {
		log.Printf("user already exists id=%d\n", u.ID)
	} else if errors.Is(err, repository.ErrNotFound) {
		hash, err := service.HashPassword(password)
		if err != nil {
			log.Fatalf("hash password failed: %v", err)
		}
		u = &domain.User{Name: "Tester", Email: email, PasswordHash: hash}
		if err := repo.Create(ctx, u); err != nil {
			log.Fatalf("create user failed: %v", err)
		}
		log.Printf("user created id=%d email=%s password=%s\n", u.ID, email, password)
	} else {
		log.Fatalf("get by email failed: %v", err)
	}

	service.InitJWT(secret, 7*24*time.Hour)
	token, err := service.GenerateToken(u.ID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
