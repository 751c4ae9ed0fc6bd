package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	clientcmd "github.com/DJ45X/snowgen/internal/cmd/client"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := clientcmd.NewRoot(version).ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
