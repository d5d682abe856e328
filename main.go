package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gnomegl/drift/internal/cli"
)

func main() {
	// Configure logger to only show the message
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
