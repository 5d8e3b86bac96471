package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/matheus3301/wtox/internal/daemon"
	"github.com/matheus3301/wtox/internal/session"
	"go.uber.org/fx"
)

const stopTimeout = 15 * time.Second

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	debugFlag := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	sessionName := session.Resolve(*sessionFlag)
	if err := session.ValidateName(sessionName); err != nil {
		exit(err)
	}
	if err := session.EnsureDir(sessionName); err != nil {
		exit(err)
	}

	app := fx.New(
		daemon.Module(daemon.Params{SessionName: sessionName, Debug: *debugFlag}),
		fx.NopLogger,
	)
	if err := app.Err(); err != nil {
		exit(err)
	}

	// Start explicitly so a held session lock reaches the terminal.
	if err := app.Start(context.Background()); err != nil {
		exit(err)
	}
	sig := <-app.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: stop: %v\n", err)
	}
	os.Exit(sig.ExitCode)
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
