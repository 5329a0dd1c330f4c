package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/guildpost/guildpost/adapters/events"
	"github.com/guildpost/guildpost/adapters/profile"
	"github.com/guildpost/guildpost/adapters/store"
	"github.com/guildpost/guildpost/adapters/tokenizer"
	"github.com/guildpost/guildpost/internal/config"
	"github.com/guildpost/guildpost/service"
	transport "github.com/guildpost/guildpost/transport/http"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	signKey, err := loadSigningKey(cfg.SigningKeyPEM)
	if err != nil {
		logger.Fatal("failed to load signing key", zap.Error(err))
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to parse Redis URL", zap.Error(err))
	}
	redisClient := redis.NewClient(opts)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: redisClient},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		logger.Fatal("failed to create Redis publisher", zap.Error(err))
	}

	redisStore := store.NewRedisStore(redisClient)

	authService := service.NewAuthService(
		tokenizer.NewJWTTokenizer(signKey),
		redisStore,
		redisStore,
		redisStore,
		profile.NewHTTPDirectory(cfg.ProfileAPIURL, cfg.ProfileTimeout),
		events.NewWatermillPublisher(publisher),
		logger,
	)

	dispatcher := transport.NewDispatcher(authService, logger)
	router := transport.SetupRouter(
		dispatcher,
		transport.NewAuthHandlers(authService),
		transport.NewBountyHandlers(store.NewMemoryBountyStore()),
	)

	logger.Info("starting server", zap.String("addr", cfg.Addr))
	if err := router.Run(cfg.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// loadSigningKey reads an EC private key PEM from disk. With no path
// configured it generates an ephemeral dev key; sessions then die with the
// process.
func loadSigningKey(path string) (*ecdsa.PrivateKey, error) {
	if path == "" {
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key: %w", err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}
	key, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing key: %w", err)
	}
	return key, nil
}
