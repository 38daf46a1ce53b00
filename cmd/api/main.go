package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"rentmate/config"
	"rentmate/db"
	"rentmate/flatmate"
	"rentmate/identity"
	"rentmate/monitor"
	"rentmate/property"
	"rentmate/rating"
	"rentmate/user"
)

func main() {
	ctx := context.Background()

	// .env is optional, real deployments configure the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("bootstrap config: %v", err)
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("bootstrap database pool: %v", err)
	}
	defer pool.Close()

	mon := monitor.New(cfg.SentryDSN, cfg.Env)
	defer mon.Close()

	userRepo := user.NewRepository(pool)
	users := user.NewService(userRepo)
	avatars := user.NewAvatarProxy(userRepo, cfg.AvatarFetchTimeout)
	flatmates := flatmate.NewService(flatmate.NewRepository(pool))
	properties := property.NewService(property.NewRepository(pool))
	ratings := rating.NewService(rating.NewRepository(pool), rating.NewDirectory(pool))

	server := &Server{
		userService:     users,
		avatarService:   avatars,
		flatmateService: flatmates,
		propertyService: properties,
		ratingService:   ratings,
		verifier:        identity.NewVerifier(cfg.IdentityJWTSecret),
		monitor:         mon,
		adminKeyHash:    cfg.AdminKeyHash,
		development:     cfg.Development(),
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("api listening on %s", cfg.HTTPAddr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("serve: %v", err)
	}
}
