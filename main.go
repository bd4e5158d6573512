package main

import (
	"context"
	"log"

	"agrosim/internal"
	"agrosim/internal/config"
	"agrosim/internal/container"
	"agrosim/internal/ops"
	"agrosim/ui"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger := internal.NewDefaultLogger()

	c, err := container.New(cfg, logger)
	if err != nil {
		log.Fatalf("container error: %v", err)
	}
	ctx := context.Background()
	if err := c.Build(ctx); err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer c.Shutdown(ctx)

	opsServer := ops.NewServer(func() bool { return c.Service != nil }, logger)
	go func() {
		if err := opsServer.Start(":" + cfg.Server.OpsPort); err != nil {
			logger.Error("ops server stopped: %v", err)
		}
	}()

	server := ui.NewServer(c.Service, c.Bundle, cfg.Server.GinMode, logger)
	if err := server.Start(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
