package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nirajxs/Hospital-management-system/internal/app/config"
	"github.com/Nirajxs/Hospital-management-system/internal/app/dsn"
	"github.com/Nirajxs/Hospital-management-system/internal/app/handler"
	"github.com/Nirajxs/Hospital-management-system/internal/app/middleware"
	"github.com/Nirajxs/Hospital-management-system/internal/app/notify"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/auth"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/storage"
	"github.com/Nirajxs/Hospital-management-system/internal/app/repository"
	"github.com/Nirajxs/Hospital-management-system/internal/app/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("clinic stopped")
	}
}

func run() error {
	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger(cfg.Log)
	gin.SetMode(cfg.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := repository.New(dsn.FromEnv())
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	sessions, err := auth.NewSessionService(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, auth.DefaultSessionTTL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer sessions.Close()

	files, err := storage.NewMinIO(ctx, cfg.MinIO.Endpoint(), cfg.MinIO.AccessKey, cfg.MinIO.SecretKey,
		cfg.MinIO.Bucket, cfg.MinIO.UseSSL, cfg.MinIO.BaseURL())
	if err != nil {
		return fmt.Errorf("connect minio: %w", err)
	}

	var mailer notify.Handler = notify.LogNotifier{Log: logger}
	if cfg.SMTP.Enabled() {
		mailer = notify.NewEmailNotifier(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		logger.Warn("smtp host not set, booking mails go to the log")
	}
	events := notify.NewDispatcher(notify.DispatcherConfig{
		Buffer:  cfg.Notify.Buffer,
		Workers: cfg.Notify.Workers,
		Timeout: cfg.Notify.Timeout,
	}, logger, mailer)

	clinic := service.New(repo, files, events, service.Options{
		ClinicName: cfg.ClinicName,
		Hasher:     auth.NewHasher(cfg.BcryptCost),
		Logger:     logger,
	})

	h := handler.NewHandler(clinic, auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.TTL), sessions, cfg, logger)
	h.Checks["postgres"] = repo.Ping
	h.Checks["redis"] = sessions.Ping

	router := gin.New()
	router.Use(middleware.RequestLogger(logger), gin.Recovery())
	h.RegisterHandler(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServiceHost, cfg.ServicePort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("server start up")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown")
	}
	if err := events.Close(shutdownCtx); err != nil {
		logger.WithError(err).Warn("notifications not drained")
	}
	logger.Info("server down")
	return nil
}
