// Package main runs the shop manager command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/abgdnv/shopmanager/internal/transport/cli"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorMessage(err))
		stop()
		os.Exit(1)
	}
}

// run executes the command selected by args.
func run(ctx context.Context, args []string) error {
	cmd := cli.NewRootCommand()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
