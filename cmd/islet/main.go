package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pthm/islet/cmd/islet/commands"
)

// Version is set via ldflags during build.
var Version = "dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := commands.Execute(ctx, Version); err != nil {
		os.Exit(1)
	}
}
