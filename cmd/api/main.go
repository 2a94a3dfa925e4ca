package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/latroca/latroca-api/internal/auth"
	"github.com/latroca/latroca-api/internal/config"
	"github.com/latroca/latroca-api/internal/db"
	"github.com/latroca/latroca-api/internal/httpapi"
	"github.com/latroca/latroca-api/internal/messaging"
	"github.com/latroca/latroca-api/internal/moderation"
	"github.com/latroca/latroca-api/internal/notification"
	"github.com/latroca/latroca-api/internal/post"
	"github.com/latroca/latroca-api/internal/ratelimit"
	"github.com/latroca/latroca-api/internal/review"
	"github.com/latroca/latroca-api/internal/upload"
	"github.com/latroca/latroca-api/internal/user"
)

// auditAdapter avoids handing the services a typed-nil publisher when the
// audit trail is disabled.
func auditAdapter(c *messaging.Client) post.AuditPublisher {
	if c == nil {
		return nil
	}
	return c
}

func main() {
	log.Println("Starting LaTroca API server...")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()

	// MongoDB.
	database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.Fatalf("failed to create indexes: %v", err)
	}
	users := user.NewStore(database)
	posts := post.NewStore(database)
	flags := review.NewStore(database)

	// Redis backs the token denylist, the rate limiter and the verdict
	// cache.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		cancel()
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	cancel()
	denylist := auth.NewDenylist(rdb)
	limiter := ratelimit.NewLimiter(rdb)

	// NATS audit trail. Optional: without it flags are only logged.
	var audit *messaging.Client
	if cfg.NATSURL != "" {
		natsConfig := messaging.DefaultConfig(cfg.NATSURL)
		natsConfig.Name = "latroca-api"
		audit, err = messaging.Connect(natsConfig)
		if err != nil {
			log.Fatalf("failed to connect to NATS: %v", err)
		}
		defer audit.Close()
	} else {
		log.Println("[main] NATS_URL not set, moderation audit trail disabled")
	}

	// Moderation pipeline.
	lexicon, err := moderation.LexiconFromFiles(cfg.BlockedWordsFile, cfg.AllowedWordsFile)
	if err != nil {
		log.Fatalf("failed to load word lists: %v", err)
	}
	classifier := moderation.NewClassifier(cfg.HuggingFaceBaseURL, cfg.HuggingFaceAPIKey, cfg.ModerationTimeout)
	cache := moderation.NewVerdictCache(rdb, cfg.VerdictCacheTTL)
	analyzer := moderation.NewAnalyzer(classifier, lexicon, moderation.DefaultThresholds(), cache)

	// Cloudinary.
	uploader, err := upload.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		log.Fatalf("failed to init Cloudinary: %v", err)
	}

	// Firebase. Optional: without credentials chat notifications return 503.
	var notifier httpapi.ChatNotifier
	if cfg.FirebaseCredentials != "" {
		sender, err := notification.New(ctx, cfg.FirebaseCredentials)
		if err != nil {
			log.Fatalf("failed to init Firebase: %v", err)
		}
		notifier = sender
	} else {
		log.Println("[main] FIREBASE_CREDENTIALS not set, chat notifications disabled")
	}

	// Auth.
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTTL)
	var google auth.TokenVerifier
	if cfg.GoogleClientID != "" {
		google = auth.NewGoogleVerifier(cfg.GoogleClientID)
	}

	authSvc := auth.NewService(users, uploader, analyzer, tokens, denylist, google, auditAdapter(audit))
	postSvc := post.NewService(posts, users, uploader, analyzer, auditAdapter(audit))

	api := &httpapi.API{
		Auth:     authSvc,
		Posts:    postSvc,
		Mod:      analyzer,
		Check:    analyzer,
		Users:    users,
		Flags:    flags,
		Notifier: notifier,
	}
	router := httpapi.Router(api, tokens, denylist, limiter)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("LaTroca API listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal %v, shutting down...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(ctx, 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	rdb.Close()
}
