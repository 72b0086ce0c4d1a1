package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

const ServiceName = "bookingctl"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		code := 1
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		os.Exit(code)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  ServiceName,
		Usage: "diagnose the booking form integrations",
		Commands: []*cli.Command{
			checkCommand(),
			chatIDCommand(),
			submitCommand(),
			notifyCommand(),
			annotateCommand(),
		},
		// main picks the exit code
		ExitErrHandler: func(*cli.Context, error) {},
	}
}
