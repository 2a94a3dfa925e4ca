package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/latroca/latroca-api/internal/config"
	"github.com/latroca/latroca-api/internal/db"
	"github.com/latroca/latroca-api/internal/messaging"
	"github.com/latroca/latroca-api/internal/moderation"
	"github.com/latroca/latroca-api/internal/review"
)

const insertTimeout = 5 * time.Second

func main() {
	log.Println("Starting LaTroca moderation review worker...")

	cfg := config.Load()
	if cfg.NATSURL == "" {
		log.Fatal("NATS_URL is required for the review worker")
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	flags := review.NewStore(database)

	natsConfig := messaging.DefaultConfig(cfg.NATSURL)
	natsConfig.Name = "latroca-moderator"
	nc, err := messaging.Connect(natsConfig)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}

	err = nc.SubscribeFlagged(func(ev moderation.FlaggedEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
		defer cancel()

		if err := flags.Insert(ctx, ev); err != nil {
			log.Printf("[moderator] persist flag user=%s field=%s: %v", ev.UserID, ev.Field, err)
			return
		}
		log.Printf("[moderator] FLAGGED user=%s field=%s category=%s", ev.UserID, ev.Field, ev.Category)
	})
	if err != nil {
		log.Fatalf("failed to subscribe to flagged events: %v", err)
	}

	log.Printf("LaTroca moderation review worker running")
	log.Printf("  mongo_db: %s", cfg.MongoDatabase)
	log.Printf("  nats_url: %s", cfg.NATSURL)

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal %v, shutting down...", sig)

	nc.Close()
}
