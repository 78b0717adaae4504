// Package cli implements taskauth-cli: register, login and whoami against a
// taskauth server.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/taskauth/internal/client/client"
	"github.com/dmitrijs2005/taskauth/internal/client/config"
)

var ErrUsage = errors.New("usage: taskauth-cli [-a URL] [-token TOKEN] register|login|whoami")

// API is the server surface the commands use.
type API interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (*client.LoginResult, error)
	WhoAmI(ctx context.Context, token string) (string, error)
}

type App struct {
	config *config.Config
	api    API
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config, api API, in io.Reader, out io.Writer) *App {
	return &App{config: c, api: api, reader: bufio.NewReader(in), out: out}
}

// Run executes the subcommand found in args. Flags in args are skipped; they
// have already been applied to the config.
func (a *App) Run(ctx context.Context, args []string) error {
	switch command(args) {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "whoami":
		return a.WhoAmI(ctx)
	default:
		return ErrUsage
	}
}

// command returns the first argument that is neither a flag nor a flag's
// value.
func command(args []string) string {
	valued := map[string]bool{"-a": true, "-token": true, "-w": true, "-c": true, "-config": true}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if valued[arg] {
			i++
			continue
		}
		if len(arg) > 0 && arg[0] == '-' {
			continue
		}
		return arg
	}
	return ""
}

// requestContext bounds a single API call. Prompts run before it so typing
// time does not count against RequestTimeout.
func (a *App) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) readCredentials() (string, string, error) {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

func (a *App) Register(ctx context.Context) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	ctx, cancel := a.requestContext(ctx)
	defer cancel()
	if err := a.api.Register(ctx, email, password); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	fmt.Fprintln(a.out, "Registered", email)
	return nil
}

// Login prints the access token so it can be exported as TASKAUTH_TOKEN.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	ctx, cancel := a.requestContext(ctx)
	defer cancel()
	res, err := a.api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	fmt.Fprintln(a.out, res.Token)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	if a.config.Token == "" {
		return errors.New("whoami: no token (use -token or TASKAUTH_TOKEN)")
	}
	ctx, cancel := a.requestContext(ctx)
	defer cancel()
	userID, err := a.api.WhoAmI(ctx, a.config.Token)
	if err != nil {
		return fmt.Errorf("whoami: %w", err)
	}
	fmt.Fprintln(a.out, userID)
	return nil
}
