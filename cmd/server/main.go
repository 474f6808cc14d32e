// Package main initializes and starts the taskboard HTTP server, setting
// up configuration, logging, the database connection, repositories,
// services and handlers.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/avolkov/taskboard/internal/config"
	"github.com/avolkov/taskboard/internal/db"
	"github.com/avolkov/taskboard/internal/logger"
	"github.com/avolkov/taskboard/internal/objstore"
	"github.com/avolkov/taskboard/internal/realtime"
	"github.com/avolkov/taskboard/internal/repository"
	"github.com/avolkov/taskboard/internal/server/handler/http"
	"github.com/avolkov/taskboard/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Purge expired sessions and soft-deleted todos in the background.
	db.StartRetentionCleaner(ctx, postgresDB,
		time.Hour,       // interval
		30*24*time.Hour, // retention: 30 days
		zapLogger,
	)

	// Initialize the attachment object store.
	store := newObjectStore(ctx, options.AttachmentBucket, zapLogger)

	// Initialize repositories.
	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	todoRepo := repository.NewPostgresTodoRepository(postgresDB)
	messageRepo := repository.NewPostgresMessageRepository(postgresDB)
	settingsRepo := repository.NewPostgresSettingsRepository(postgresDB)
	attachmentRepo := repository.NewPostgresAttachmentRepository(postgresDB)

	// Initialize the realtime hub and business-logic services.
	hub := realtime.NewHub(zapLogger)
	defer hub.Close()

	authService := service.NewAuthService(authRepo, options.SessionTTL)
	todoService := service.NewTodoService(todoRepo, attachmentRepo, store, zapLogger)
	feedService := service.NewFeedService(todoRepo)
	messageService := service.NewMessageService(messageRepo, hub, zapLogger)
	settingsService := service.NewSettingsService(settingsRepo)
	attachmentService := service.NewAttachmentService(attachmentRepo, todoRepo, store, zapLogger)

	// Build the router with middleware and routes.
	router := http.NewRouter(http.Handlers{
		Auth:        &http.AuthHandler{AuthService: authService},
		Todos:       &http.TodoHandler{TodoService: todoService},
		Feed:        &http.FeedHandler{FeedService: feedService},
		Messages:    &http.MessageHandler{MessageService: messageService, Subscriber: hub},
		Settings:    &http.SettingsHandler{SettingsService: settingsService},
		Attachments: &http.AttachmentHandler{AttachmentService: attachmentService},
	}, authService, zapLogger, options.FrontendOrigin)

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("shutdown failed", zap.Error(err))
		}
	}()

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

// newObjectStore returns the S3 store for the configured bucket, or the
// disabled store when no bucket is set.
func newObjectStore(ctx context.Context, bucket string, log *zap.Logger) service.ObjectStore {
	if bucket == "" {
		log.Warn("no attachment bucket configured, uploads disabled")
		return objstore.Disabled{}
	}
	store, err := objstore.NewS3Store(ctx, bucket)
	if err != nil {
		log.Fatal("cannot init object store", zap.Error(err))
	}
	return store
}
