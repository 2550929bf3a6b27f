package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/admin/tg-bots/astro-api/internal/app"
)

const appName = "astro_api"

func main() {
	cfg, err := app.NewEnvConfig(appName)
	if err != nil {
		panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Остановка по сигналу - штатное завершение, не ошибка
	if err := app.New(appName, cfg).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		panic(err)
	}
}
