// Package config loads runtime configuration for the taskauth CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment: TASKAUTH_SERVER_URL, TASKAUTH_TOKEN.
//  4. Flags: -a (server URL), -token (access token), -w (request timeout, seconds).
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/taskauth/internal/flagx"
	"github.com/dmitrijs2005/taskauth/internal/timex"
)

// Config holds runtime settings for the CLI.
type Config struct {
	ServerURL      string
	Token          string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with local development defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.Token = ""
	c.RequestTimeout = 10 * time.Second
}

// JsonConfig is the file representation of Config.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	Token          string         `json:"token"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

type envConfig struct {
	ServerURL *string `env:"TASKAUTH_SERVER_URL"`
	Token     *string `env:"TASKAUTH_TOKEN"`
}

// LoadConfig builds a Config from defaults, the JSON file, environ and args.
// args may contain the subcommand and its operands; unknown entries are
// ignored.
func LoadConfig(args []string, environ []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.Token != "" {
		cfg.Token = jc.Token
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}

func parseEnv(cfg *Config, environ []string) error {
	var e envConfig
	if err := env.ParseWithOptions(&e, env.Options{Environment: env.ToMap(environ)}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if e.ServerURL != nil {
		cfg.ServerURL = *e.ServerURL
	}
	if e.Token != nil {
		cfg.Token = *e.Token
	}
	return nil
}

func parseFlags(cfg *Config, args []string) error {
	names := []string{"-a", "-token", "-w"}
	if err := flagx.CheckValues(args, names); err != nil {
		return err
	}
	args = flagx.FilterArgs(args, names)

	fs := flag.NewFlagSet("taskauth-cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the taskauth server")
	fs.StringVar(&cfg.Token, "token", cfg.Token, "access token for whoami")
	timeout := fs.Int("w", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
