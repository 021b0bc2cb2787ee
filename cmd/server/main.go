package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"mech-arena/server/internal/app"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, app.Options{}); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
