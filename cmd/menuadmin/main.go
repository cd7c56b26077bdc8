package main

import (
	"context"
	"time"

	"github.com/niksmo/menu-admin/config"
	"github.com/niksmo/menu-admin/internal/app"
	"github.com/niksmo/menu-admin/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	menuAdmin := app.New(sigCtx, cfg)

	menuAdmin.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	menuAdmin.Close(ctx)
}
