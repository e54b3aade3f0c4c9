package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"iedi-workers/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.New(cli.Options{Output: os.Stdout}).ExecuteArgs(ctx, os.Args[1:]...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
