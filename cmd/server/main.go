// Command server runs the blog API: account management, posts with embedded
// likes, and like analytics, backed by MongoDB.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-blog-backend/internal/auth"
	"github.com/tbourn/go-blog-backend/internal/config"
	httpapi "github.com/tbourn/go-blog-backend/internal/http"
	"github.com/tbourn/go-blog-backend/internal/observability"
	"github.com/tbourn/go-blog-backend/internal/repo"
	"github.com/tbourn/go-blog-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

const (
	mongoConnectTimeout    = 10 * time.Second
	mongoIndexTimeout      = 5 * time.Second
	mongoDisconnectTimeout = 5 * time.Second
	serverShutdownTimeout  = 10 * time.Second
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	gin.SetMode(cfg.GinMode)

	shutdownOTel, err := observability.SetupOTel(context.Background(), cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup error")
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), mongoConnectTimeout)
	m, err := repo.Open(connectCtx, cfg.MongoURI, cfg.MongoDB)
	cancelConnect()
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection error")
	}
	log.Info().Str("db", cfg.MongoDB).Msg("connected to mongo")

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), mongoIndexTimeout)
	err = m.EnsureIndexes(indexCtx)
	cancelIndexes()
	if err != nil {
		log.Fatal().Err(err).Msg("mongo index setup error")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	r := gin.New()
	httpapi.RegisterRoutes(r, m, tokens, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-signalCtx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), serverShutdownTimeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	cancelShutdown()

	disconnectCtx, cancelDisconnect := context.WithTimeout(context.Background(), mongoDisconnectTimeout)
	if err := m.Close(disconnectCtx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect error")
	}
	cancelDisconnect()

	if err := shutdownOTel(context.Background()); err != nil {
		log.Error().Err(err).Msg("otel shutdown error")
	}
	log.Info().Msg("shutdown complete")
}
