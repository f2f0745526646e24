// Command superuser creates an administrator account directly in MongoDB.
// It reuses the regular registration path so password policy and uniqueness
// checks apply, then flags the account as super_user.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/tbourn/go-blog-backend/internal/auth"
	"github.com/tbourn/go-blog-backend/internal/config"
	"github.com/tbourn/go-blog-backend/internal/repo"
	"github.com/tbourn/go-blog-backend/internal/services"
)

const runTimeout = 15 * time.Second

func main() {
	email := flag.String("email", "", "admin email (required)")
	username := flag.String("username", "", "admin username (required)")
	password := flag.String("password", "", "admin password (required)")
	flag.Parse()

	if *email == "" || *username == "" || *password == "" {
		log.Fatal().Msg("email, username, and password are all required")
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	m, err := repo.Open(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection error")
	}
	defer func() {
		if err := m.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect error")
		}
	}()
	if err := m.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongo index setup error")
	}

	users := repo.NewUserRepo(m)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	svc := services.NewUserService(users, tokens, cfg.MinPasswordLen)

	u, err := svc.Register(ctx, *email, *username, *password)
	if err != nil {
		log.Fatal().Err(err).Msg("superuser registration failed")
	}

	res, err := m.Users().UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{"super_user": true}})
	if err != nil || res.MatchedCount == 0 {
		log.Fatal().Err(err).Msg("failed to promote account to super_user")
	}

	log.Info().Str("username", u.Username).Str("id", u.ID.Hex()).Msg("superuser created")
}
