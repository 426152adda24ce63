// Command admin is the operator CLI: schema migration, full reset, and
// one-off user fixes. It talks straight to the database.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"preloved/backend/internal/config"
	"preloved/backend/internal/models"
	"preloved/backend/internal/storage"
)

func usage() {
	fmt.Println("Usage: admin <migrate|reset|verify-email> [args]")
	os.Exit(1)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "migrate":
		if err := migrate(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		fmt.Println("Migrations complete.")
	case "reset":
		if err := reset(db); err != nil {
			log.Fatalf("Reset failed: %v", err)
		}
		fmt.Println("Database reset complete.")
	case "verify-email":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin verify-email <user_id>")
			os.Exit(1)
		}
		id, err := strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil {
			fmt.Println("Invalid user ID. Please provide an integer.")
			os.Exit(1)
		}
		store := storage.NewService(db, nil, 0) // no Redis needed for admin fixes
		if err := store.MarkEmailVerified(uint(id)); err != nil {
			log.Fatalf("Error verifying email: %v", err)
		}
		fmt.Printf("User %d marked as email-verified.\n", id)
	default:
		usage()
	}
}

func allModels() []any {
	return []any{
		&models.User{},
		&models.Listing{},
		&models.Favorite{},
		&models.ChatRoom{},
		&models.ChatMessage{},
		&models.ReadCursor{},
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels()...)
}

// reset drops every table and recreates the schema from scratch.
func reset(db *gorm.DB) error {
	if err := db.Migrator().DropTable(allModels()...); err != nil {
		return err
	}
	return migrate(db)
}
