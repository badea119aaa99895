package main

import (
	"log"
	"os"

	"aura-be/internal/model"
	"aura-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. Extensions (gen_random_uuid on older postgres)
	color.Yellow("Step 1: Setting up Extensions...")
	for _, sql := range []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS pg_trgm;`,
	} {
		if err := db.Exec(sql).Error; err != nil {
			color.Red("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	models := model.All()
	color.Yellow("Step 2: Running AutoMigrate for %d tables...", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Search indexes
	color.Yellow("Step 3: Creating search indexes...")
	for _, sql := range []string{
		`CREATE INDEX IF NOT EXISTS idx_users_username_trgm ON users USING gin (lower(username) gin_trgm_ops);`,
		`CREATE INDEX IF NOT EXISTS idx_posts_caption_trgm ON posts USING gin (lower(caption) gin_trgm_ops);`,
	} {
		if err := db.Exec(sql).Error; err != nil {
			color.Red("Warn: Failed to create index: %v", err)
		}
	}

	color.Green("Success: Database migration completed.")
}
