// Package main starts the storefront HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/config"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/fallback"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/handler"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/middleware"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/money"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/payment"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/receipt"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/reconcile"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/repository"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/service"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/uploader"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer repo.Close()

	local, err := fallback.NewStore(cfg.FallbackDir, fallback.DefaultCapacity)
	if err != nil {
		sugar.Fatalw("fallback store initialization error", "error", err.Error())
	}

	// A nil interface keeps the reconciler on its fallback paths when no
	// verifier is configured.
	var verifier reconcile.Verifier
	if cfg.VerifierAddress != "" {
		verifier = payment.NewClient(cfg.VerifierAddress)
	}

	var images service.ImageUploader
	if cfg.CDNUploadURL != "" {
		images = uploader.New(cfg.CDNUploadURL, 0, logger)
	}

	formatter := money.NewFormatter(money.DefaultRates())

	svc := service.NewService(repo, images, local, formatter, cfg.WhatsAppNumber, logger)
	defer svc.Close()

	reconciler := reconcile.NewReconciler(repo, verifier, local, logger)

	receipts := receipt.NewRenderer(receipt.Letterhead{
		BusinessName: "Hide & Luxe",
		Address:      "4 Tannery Close, Victoria Island, Lagos",
		Phone:        cfg.WhatsAppNumber,
		Email:        "orders@hideluxe.ng",
	}, formatter)

	authMiddleware := middleware.NewAuthMiddleware(cfg.AuthSecret, svc)
	h := handler.NewHandler(svc, reconciler, receipts, logger, authMiddleware)

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: h.SetupRouter(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting storefront server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
