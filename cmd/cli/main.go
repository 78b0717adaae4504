package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/taskauth/internal/client/cli"
	"github.com/dmitrijs2005/taskauth/internal/client/client"
	"github.com/dmitrijs2005/taskauth/internal/client/config"
)

func main() {
	args := os.Args[1:]

	cfg, err := config.LoadConfig(args, os.Environ())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	api := client.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout)
	app := cli.NewApp(cfg, api, os.Stdin, os.Stdout)

	if err := app.Run(context.Background(), args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
