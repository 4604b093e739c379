package main

import (
	"context"
	"fmt"
	"os"

	"library-catalog/cmd/library/app"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "application exited with error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	a, err := app.New(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := app.WithSignal(context.Background())
	defer stop()

	return a.Run(ctx)
}
