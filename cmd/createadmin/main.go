// Command createadmin bootstraps an administrator account. It is the only
// path that creates accounts with the ADM anonymous-id prefix and an admin
// role outside the authenticated API.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"gorm.io/gorm"

	"github.com/avaliaedu/avalia-api/internal/config"
	"github.com/avaliaedu/avalia-api/internal/database"
	"github.com/avaliaedu/avalia-api/internal/models"
	"github.com/avaliaedu/avalia-api/internal/repository"
	"github.com/avaliaedu/avalia-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)
	color.Cyan("--- Create administrator account ---")

	email, err := prompt(reader, "Admin email: ")
	if err != nil {
		log.Fatalf("failed to read input: %v", err)
	}

	password, err := prompt(reader, "Admin password: ")
	if err != nil {
		log.Fatalf("failed to read input: %v", err)
	}

	if email == "" || password == "" {
		color.Red("email and password are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := repository.NewUserRepository(db)

	if _, err := users.GetByEmail(ctx, email); err == nil {
		color.Red("a user with this email already exists")
		os.Exit(1)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("failed to check existing user: %v", err)
	}

	hasher := service.NewBcryptHasher(cfg.BcryptCost)
	hashed, err := hasher.Hash(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	anonymousID, err := models.NewAnonymousID("ADM")
	if err != nil {
		log.Fatalf("failed to generate anonymous id: %v", err)
	}

	admin := models.User{
		AnonymousID:    anonymousID,
		Email:          email,
		PasswordHash:   hashed,
		Role:           models.RoleAdmin,
		Status:         models.UserStatusActive,
		LastActivityAt: time.Now(),
	}

	if err := users.Create(ctx, &admin); err != nil {
		log.Fatalf("failed to create admin user: %v", err)
	}

	color.Green("administrator created: %s", admin.AnonymousID)
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
