package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"citysense-be/config"
	"citysense-be/models"
	"citysense-be/repository"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Creates an admin account, or promotes the account if the email is
// already registered.
func main() {
	email := flag.String("email", "", "admin email address")
	password := flag.String("password", "", "admin password (min 6 characters)")
	name := flag.String("name", "CitySense Admin", "display name")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal().Msg("usage: create-admin -email <email> -password <password> [-name <name>]")
	}
	if len(*password) < 6 {
		log.Fatal().Msg("password must be at least 6 characters")
	}

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db := config.ConnectDB(cfg.MongoURI, cfg.MongoDB)
	users := repository.NewUserStore(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	existing, err := users.GetByEmail(ctx, *email)
	if err == nil {
		if existing.Role == models.RoleAdmin {
			log.Info().Str("email", *email).Msg("user is already an admin")
			return
		}
		if err := users.UpdateRole(ctx, existing.ID.Hex(), models.RoleAdmin); err != nil {
			log.Fatal().Err(err).Msg("failed to promote user")
		}
		log.Info().Str("email", *email).Msg("existing user promoted to admin")
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		log.Fatal().Err(err).Msg("failed to look up user")
	}

	user := &models.User{
		Email:       *email,
		DisplayName: *name,
		Password:    *password,
		Role:        models.RoleAdmin,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}
	if err := user.HashPassword(); err != nil {
		log.Fatal().Err(err).Msg("failed to hash password")
	}
	if err := users.Create(ctx, user); err != nil {
		log.Fatal().Err(err).Msg("failed to create admin user")
	}

	log.Info().Str("email", *email).Str("uid", user.ID.Hex()).Msg("admin user created")
}
