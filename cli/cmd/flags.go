// Package cmd provides CLI commands for the lightbox binary.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/lightbox/cli/config"
	"github.com/pithecene-io/lightbox/types"
)

// Exit codes shared by all commands.
const (
	exitSuccess = 0
	exitFailure = 1
	exitUsage   = 2
)

// defaultCatalogPath is used when neither --catalog nor the config sets one.
const defaultCatalogPath = "lightbox.db"

// Shared flags.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}

	// ConfigFlag points at a lightbox.yaml file.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to lightbox.yaml (flags override file values)",
		EnvVars: []string{"LIGHTBOX_CONFIG"},
	}

	// CatalogFlag points at the sqlite media catalog.
	CatalogFlag = &cli.StringFlag{
		Name:    "catalog",
		Usage:   "Path to the sqlite media catalog (default: " + defaultCatalogPath + ")",
		EnvVars: []string{"LIGHTBOX_CATALOG"},
	}

	// ScopeFlag names the overview to browse.
	ScopeFlag = &cli.StringFlag{
		Name:     "scope",
		Aliases:  []string{"s"},
		Usage:    "Overview scope as kind:id (peer:42, files:7, user:3)",
		Required: true,
	}
)

// ReadOnlyFlags returns the shared flags for commands that only render output.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
	}
}

// loadConfig reads --config when set. A missing flag yields an empty config.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return &config.Config{}, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, cli.Exit(err.Error(), exitUsage)
	}
	return cfg, nil
}

// scopeFromFlag parses --scope.
func scopeFromFlag(c *cli.Context) (types.Scope, error) {
	scope, err := types.ParseScope(c.String("scope"))
	if err != nil {
		return types.Scope{}, cli.Exit(err.Error(), exitUsage)
	}
	return scope, nil
}

// catalogPath resolves the catalog location: flag, then config, then default.
func catalogPath(c *cli.Context, cfg *config.Config) string {
	return resolveString(c, "catalog", cfg.Catalog.Path, defaultCatalogPath)
}

// resolveString returns the flag value when set explicitly, otherwise the
// config value, otherwise fallback.
func resolveString(c *cli.Context, name, configured, fallback string) string {
	if v := c.String(name); c.IsSet(name) && v != "" {
		return v
	}
	if configured != "" {
		return configured
	}
	if v := c.String(name); v != "" {
		return v
	}
	return fallback
}

// resolveDuration returns the flag value when set explicitly, otherwise the
// config value when positive, otherwise the flag default.
func resolveDuration(c *cli.Context, name string, configured time.Duration) time.Duration {
	if c.IsSet(name) {
		return c.Duration(name)
	}
	if configured > 0 {
		return configured
	}
	return c.Duration(name)
}

// resolveInt returns the flag value when set explicitly, otherwise the
// config value when present, otherwise the flag default.
func resolveInt(c *cli.Context, name string, configured *int) int {
	if c.IsSet(name) {
		return c.Int(name)
	}
	if configured != nil {
		return *configured
	}
	return c.Int(name)
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// isStderrTTY returns true if stderr is a TTY.
func isStderrTTY() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func usageError(format string, args ...any) error {
	return cli.Exit(fmt.Sprintf(format, args...), exitUsage)
}
