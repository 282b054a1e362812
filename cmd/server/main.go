package main

import (
	"log"

	_ "blitzit/docs"
	"blitzit/internal/config"
	"blitzit/internal/server"
)

// @title           Blitzit API
// @version         1.0
// @description     Task lifecycle, focus sessions and reminders for Blitzit.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()
	log.Printf("⚙️  db=%s:%s/%s auto_migrate=%v reminders=%v every %s",
		cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBAutoMigrate,
		cfg.ReminderEnabled, cfg.ReminderInterval())

	app, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Blitzit API failed to start: %v", err)
	}

	app.Run()
}
