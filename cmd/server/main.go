package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/taskauth/internal/server"
	"github.com/dmitrijs2005/taskauth/internal/server/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(os.Args[1:], os.Environ())
	if err != nil {
		return err
	}

	app, err := server.NewApp(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}

	return app.Run(ctx)
}
