package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eggcelent-store/internal/app"
	"eggcelent-store/internal/config"
	"eggcelent-store/internal/logger"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L().With(zap.String("layer", "main"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, nil)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = a.Close(closeCtx)
	}()

	if err := a.Start(ctx); err != nil {
		return err
	}
	log.Info("storefront ready",
		zap.String("store", cfg.StoreDriver),
		zap.String("delivery_fee", cfg.DeliveryFee.String()),
	)

	fmt.Println("🥚 eggcelent storefront, type help for commands")
	if err := newShell(a, os.Stdout).Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
