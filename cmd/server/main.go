package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/avdeenko/bookshelf/internal/config"
	"github.com/avdeenko/bookshelf/internal/handlers"
	"github.com/avdeenko/bookshelf/internal/logging"
	authmw "github.com/avdeenko/bookshelf/internal/middleware/auth"
	"github.com/avdeenko/bookshelf/internal/repo"
	"github.com/avdeenko/bookshelf/internal/token"
	httpserver "github.com/avdeenko/bookshelf/internal/transport/http"
	"github.com/avdeenko/bookshelf/pkg/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET_KEY")

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	gormDB, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	rp := &repo.GormRepo{DB: gormDB}
	if err := rp.Migrate(); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	if err := rp.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("admin bootstrap error: %v", err)
	}

	tokens := &token.Service{
		Repo:       rp,
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), logging.RequestLogger(logger))

	deps := httpserver.Deps{
		Auth:    &handlers.AuthHandler{Repo: rp, Tokens: tokens},
		Authors: &handlers.AuthorHandler{Repo: rp},
		Books:   &handlers.BookHandler{Repo: rp},
		Guard:   &authmw.Guard{Tokens: tokens},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	log.Println("shutdown complete")
}
