// Package main runs ScholarFlow maintenance commands.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	scholarctlcmd "github.com/louisbranch/scholarflow/internal/cmd/scholarctl"
)

func main() {
	log.SetPrefix("[SCHOLARCTL] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := scholarctlcmd.Run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("scholarctl: %v", err)
	}
}
