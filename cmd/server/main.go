// Package main is the entry point of the API server. It reads the
// configuration, builds the logger and hands everything to the server
// package; no application logic lives here.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/vellt/eduinfo-api/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// Flags override environment variables, which override defaults.
	port := pflag.IntP("port", "p", envInt("PORT", 8080), "listen port")
	dbPath := pflag.String("db", envString("DB_PATH", "data/eduinfo.db"), "sqlite database path")
	uploadDir := pflag.String("uploads", envString("UPLOAD_DIR", "uploads"), "uploaded image directory")
	pflag.Parse()

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(*dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	srv, err := server.New(server.Config{
		Port:      *port,
		DBPath:    *dbPath,
		UploadDir: *uploadDir,
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
