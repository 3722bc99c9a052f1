package main

import (
	"log"

	"empathiq-be/internal/config"
	"empathiq-be/internal/model"
	"empathiq-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("DB_CONNECTION_STRING is not set")
	}

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	err = gormDB.AutoMigrate(
		&model.Conversation{},
		&model.Message{},
	)
	if err != nil {
		color.Red("Migration failed: %v", err)
		return
	}

	color.Green("Migration complete: conversations, messages")
}
