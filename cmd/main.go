package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"preloved/backend/internal/api/handler"
	"preloved/backend/internal/auth"
	"preloved/backend/internal/blob"
	"preloved/backend/internal/chathub"
	"preloved/backend/internal/classify"
	"preloved/backend/internal/config"
	"preloved/backend/internal/deal"
	"preloved/backend/internal/localization"
	"preloved/backend/internal/models"
	"preloved/backend/internal/storage"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.Favorite{},
		&models.ChatRoom{},
		&models.ChatMessage{},
		&models.ReadCursor{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting Pre-loved Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, rdb := setupDependencies(cfg)
	store := storage.NewService(db, rdb, cfg.RefreshTokenTTL)

	tokens := auth.NewTokenService(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	loc, err := localization.New(cfg.LocaleDir, cfg.DefaultLang)
	if err != nil {
		log.Fatalf("Failed to load localizations: %v", err)
	}

	uploader, err := blob.NewLocalUploader(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		log.Fatalf("Failed to set up upload directory: %v", err)
	}

	rooms := chathub.NewRoomHub()
	lists := chathub.NewListHub()
	notifier := chathub.NewNotifier(lists, store)
	deals := deal.NewCoordinator(store, rooms, loc, cfg.DefaultLang)

	r := gin.Default()
	h := handler.New(store, tokens, rooms, lists, notifier, deals, uploader, classify.StaticClassifier{}, loc, cfg.DefaultLang)
	h.Register(r)
	r.Static("/uploads", cfg.UploadDir)

	server := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Printf("Listening on %s", cfg.ListenAddr)
	log.Fatal(server.ListenAndServe())
}
