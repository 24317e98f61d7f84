package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/givxl33t/bittorrent-announce-go/bittorrent"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	code := bittorrent.Run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)

	stop()
	os.Exit(code)
}
