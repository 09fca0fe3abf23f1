package main

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"recipehub/pkg/mailer"
	"recipehub/pkg/realtime"
	"recipehub/pkg/storage"
	"recipehub/pkg/tokens"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// app bundles the process-wide collaborators. Everything is initialized once
// at startup and injected into handlers explicitly so each piece can be
// substituted in tests.
type app struct {
	cfg     *Config
	db      *gorm.DB
	tokens  *tokens.Service
	objects ObjectStore
	mail    mailer.Sender
	hub     *realtime.Hub
	rec     *Coordinator
	log     *slog.Logger
}

func main() {
	// Auto-load ./.env if present (no external dependency) before reading vars.
	loadDotEnv()

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))

	db, err := initDB(cfg, log)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}

	objects, err := storage.New(context.Background(), storage.Config{
		Endpoint:      cfg.Storage.Endpoint,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		Bucket:        cfg.Storage.Bucket,
		UseSSL:        cfg.Storage.UseSSL,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		log.Error("object store init failed", "error", err)
		os.Exit(1)
	}

	hub := realtime.NewHub(log)
	go hub.Run()

	a := &app{
		cfg: cfg,
		db:  db,
		tokens: tokens.NewService(tokens.Config{
			AccessSecret:  cfg.JWT.AccessSecret,
			RefreshSecret: cfg.JWT.RefreshSecret,
			AccessTTL:     cfg.JWT.AccessTTL,
			RefreshTTL:    cfg.JWT.RefreshTTL,
			RenewWithin:   cfg.JWT.RenewWithin,
		}),
		objects: objects,
		mail: mailer.NewSMTP(mailer.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}),
		hub: hub,
		log: log,
	}
	a.rec = NewCoordinator(newGormRecipes(db), a.objects, log)

	r := gin.Default()
	a.setupRoutes(r)

	log.Info("server listening", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// loadDotEnv loads key=value pairs from a local .env file into the
// environment without overwriting variables that are already set. Lines
// starting with # are ignored.
func loadDotEnv() {
	path := ".env"
	if _, err := os.Stat(path); err != nil {
		return // no .env file
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// split on first '='
		if eq := strings.IndexByte(line, '='); eq > 0 {
			key := strings.TrimSpace(line[:eq])
			val := strings.TrimSpace(line[eq+1:])
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
	}
}
