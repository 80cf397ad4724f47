package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/lightbox/adapter"
	"github.com/pithecene-io/lightbox/catalog"
	"github.com/pithecene-io/lightbox/cli/config"
	"github.com/pithecene-io/lightbox/cli/render"
	"github.com/pithecene-io/lightbox/cli/tui"
	"github.com/pithecene-io/lightbox/iox"
	"github.com/pithecene-io/lightbox/ipc"
	"github.com/pithecene-io/lightbox/log"
	"github.com/pithecene-io/lightbox/metrics"
	"github.com/pithecene-io/lightbox/overview"
	"github.com/pithecene-io/lightbox/policy"
	"github.com/pithecene-io/lightbox/types"
)

const (
	transportLocal = "local"
	transportIPC   = "ipc"
)

// ViewCommand returns the view command, which runs the full-screen viewer.
func ViewCommand() *cli.Command {
	flags := []cli.Flag{
		ConfigFlag,
		CatalogFlag,
		ScopeFlag,
		&cli.Int64Flag{
			Name:    "message",
			Aliases: []string{"m"},
			Usage:   "Message id to open (default: newest in scope)",
		},
		&cli.StringFlag{
			Name:  "transport",
			Usage: "Page source: local (catalog in process) or ipc (framed child process)",
		},
		&cli.StringFlag{
			Name:  "ipc-command",
			Usage: "Command line of the ipc page server (default: this binary's serve command)",
		},
		&cli.DurationFlag{
			Name:  "fetch-timeout",
			Usage: "Per-page fetch timeout",
			Value: tui.DefaultFetchTimeout,
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "Write JSON logs to this file (default: discarded)",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Render session metrics on exit",
		},
		FormatFlag,
		NoColorFlag,
	}
	return &cli.Command{
		Name:   "view",
		Usage:  "Browse a media overview in the full-screen viewer",
		Flags:  append(flags, adapterFlags()...),
		Action: viewAction,
	}
}

// viewSession holds everything a view run opened and must release.
type viewSession struct {
	id        string
	log       *log.Logger
	collector *metrics.Collector
	fetcher   overview.Fetcher
	describe  func(types.MediaItemRef) string
	cleanup   iox.Stack
}

func (s *viewSession) close() { s.cleanup.Run() }

func viewAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	scope, err := scopeFromFlag(c)
	if err != nil {
		return err
	}
	transport := resolveString(c, "transport", cfg.Transport.Type, transportLocal)
	if transport != transportLocal && transport != transportIPC {
		return usageError("invalid transport %q: must be local or ipc", transport)
	}
	ac, err := parseAdapterChoice(c, cfg.Adapter)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	s := &viewSession{id: uuid.NewString()}
	defer s.close()
	s.collector = metrics.NewCollector(transport, s.id)
	if err := s.openLog(c.String("log-file")); err != nil {
		return err
	}

	switch transport {
	case transportLocal:
		err = s.openLocal(catalogPath(c, cfg), scope)
	case transportIPC:
		err = s.openIPC(ctx, ipcArgv(c, cfg))
	}
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}

	pol, err := buildAdapter(ac, s.collector, s.log)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	var publisher adapter.Adapter
	if pol != nil {
		publisher = pol
		s.cleanup.Push(func() {
			if err := pol.Close(); err != nil {
				s.log.Warn("publisher close failed", map[string]any{"error": err.Error()})
			}
		})
	}

	start, err := resolveStart(ctx, s.fetcher, scope, c.Int64("message"))
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}

	s.log.Info("view started", map[string]any{
		"scope":      scope.Key(),
		"message_id": start.MessageID,
		"transport":  transport,
		"adapter":    ac.adapterType,
	})

	err = tui.Run(ctx, tui.Options{
		Config:       cfg.ViewerOptions(),
		Fetcher:      s.fetcher,
		Scope:        scope,
		Item:         start,
		Describe:     s.describe,
		Publisher:    publisher,
		SessionID:    s.id,
		Logger:       s.log,
		Metrics:      s.collector,
		FetchTimeout: resolveDuration(c, "fetch-timeout", cfg.Transport.Timeout.Duration),
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("viewer: %w", err)
	}

	if c.Bool("debug") {
		r, err := render.NewRenderer(c)
		if err != nil {
			return err
		}
		// Flush buffered actions so the report counts them.
		if pol != nil {
			iox.DiscardErr(func() error { return pol.Flush(ctx) })
		}
		report := DebugReport{Metrics: s.collector.Snapshot()}
		if pol != nil {
			stats := pol.Stats()
			report.Publish = &stats
		}
		return r.Render(report)
	}
	return nil
}

// DebugReport is rendered by view --debug on exit.
type DebugReport struct {
	Metrics metrics.Snapshot `json:"metrics" yaml:"metrics"`
	Publish *policy.Stats    `json:"publish,omitempty" yaml:"publish,omitempty"`
}

// openLog routes logs to path, or discards them since the viewer owns the
// terminal.
func (s *viewSession) openLog(path string) error {
	var out io.Writer = io.Discard
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return cli.Exit(fmt.Sprintf("cannot open log file: %v", err), exitUsage)
		}
		s.cleanup.PushCloser(f)
		out = f
	}
	s.log = log.NewLogger(s.id).WithOutput(out)
	s.cleanup.Push(func() { iox.DiscardErr(s.log.Sync) })
	return nil
}

func (s *viewSession) openLocal(path string, scope types.Scope) error {
	store, err := catalog.Open(path)
	if err != nil {
		return err
	}
	s.cleanup.PushCloser(store)
	s.fetcher = store
	s.describe = newNamer(store, scope).describe
	return nil
}

func (s *viewSession) openIPC(ctx context.Context, argv []string) error {
	proc, err := ipc.StartProcess(ctx, argv, s.log, s.collector)
	if err != nil {
		return err
	}
	s.cleanup.Push(func() {
		res, err := proc.Close()
		if err != nil {
			s.log.Warn("page server close failed", map[string]any{"error": err.Error()})
			return
		}
		s.log.Info("page server exited", map[string]any{
			"exit_code": res.ExitCode,
			"stderr":    string(res.Stderr),
		})
	})
	s.fetcher = proc
	return nil
}

// ipcArgv resolves the page server command: flag, then config, then
// "<this binary> serve".
func ipcArgv(c *cli.Context, cfg *config.Config) []string {
	if c.IsSet("ipc-command") {
		return strings.Fields(c.String("ipc-command"))
	}
	if len(cfg.Transport.Command) > 0 {
		return cfg.Transport.Command
	}
	argv := []string{os.Args[0], "serve"}
	if c.IsSet("catalog") || cfg.Catalog.Path != "" {
		argv = append(argv, "--catalog", catalogPath(c, cfg))
	}
	return argv
}

// resolveStart finds the item to open through the fetcher: the newest item
// when messageID is 0, otherwise the item on messageID.
func resolveStart(ctx context.Context, f overview.Fetcher, scope types.Scope, messageID int64) (types.MediaItemRef, error) {
	req := overview.Request{Scope: scope, Direction: types.Before, Limit: 1}
	if messageID > 0 {
		req = overview.Request{Scope: scope, Direction: types.After, Cursor: messageID - 1, Limit: 1}
	}
	page, err := f.Fetch(ctx, req)
	if err != nil {
		return types.MediaItemRef{}, fmt.Errorf("resolve start in %s: %w", scope, err)
	}
	switch {
	case messageID == 0 && len(page.Items) == 0:
		return types.MediaItemRef{}, fmt.Errorf("%s has no media", scope)
	case messageID > 0 && (len(page.Items) == 0 || page.Items[0].MessageID != messageID):
		return types.MediaItemRef{}, fmt.Errorf("%s message %d: %w", scope, messageID, catalog.ErrNotFound)
	}
	return page.Items[0], nil
}

// namer caches catalog names for the chrome, keyed by message id.
type namer struct {
	store *catalog.Store
	scope types.Scope

	mu    sync.Mutex
	names map[int64]string
}

func newNamer(store *catalog.Store, scope types.Scope) *namer {
	return &namer{store: store, scope: scope, names: make(map[int64]string)}
}

const nameLookupTimeout = time.Second

func (n *namer) describe(item types.MediaItemRef) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if name, ok := n.names[item.MessageID]; ok {
		return name
	}
	name := item.String()
	ctx, cancel := context.WithTimeout(context.Background(), nameLookupTimeout)
	defer cancel()
	if e, err := n.store.Get(ctx, n.scope, item.MessageID); err == nil && e.Name != "" {
		name = e.Name
	}
	n.names[item.MessageID] = name
	return name
}
