package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/lightbox/catalog"
	"github.com/pithecene-io/lightbox/cli/render"
	"github.com/pithecene-io/lightbox/iox"
)

// listWarningThreshold is the number of items above which we warn about using --limit.
const listWarningThreshold = 100

// ListItem is one row of the list command.
type ListItem struct {
	MessageID int64  `json:"message_id" yaml:"message_id"`
	Index     int    `json:"index" yaml:"index"`
	Kind      string `json:"kind" yaml:"kind"`
	ItemID    int64  `json:"item_id" yaml:"item_id"`
	Name      string `json:"name" yaml:"name"`
}

// ScopeSummary is one row of list --scopes.
type ScopeSummary struct {
	Scope string `json:"scope" yaml:"scope"`
	Kind  string `json:"kind" yaml:"kind"`
}

// ListCommand returns the list command.
// List is read-only; it never writes to the catalog.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List catalog items in a scope, or every scope with --scopes",
		Flags: append(ReadOnlyFlags(),
			ConfigFlag,
			CatalogFlag,
			&cli.StringFlag{
				Name:    "scope",
				Aliases: []string{"s"},
				Usage:   "Overview scope as kind:id (peer:42, files:7, user:3)",
			},
			&cli.BoolFlag{
				Name:  "scopes",
				Usage: "List scopes that hold media instead of items",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of items to return, newest last (0 = no limit)",
			},
		),
		Action: listAction,
	}
}

func listAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if !c.Bool("scopes") && c.String("scope") == "" {
		return usageError("--scope or --scopes is required")
	}
	if c.Int("limit") < 0 {
		return usageError("--limit must be >= 0")
	}

	store, err := catalog.Open(catalogPath(c, cfg))
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}
	defer iox.DiscardClose(store)

	if c.Bool("scopes") {
		scopes, err := store.Scopes(c.Context)
		if err != nil {
			return cli.Exit(err.Error(), exitFailure)
		}
		rows := make([]ScopeSummary, 0, len(scopes))
		for _, s := range scopes {
			rows = append(rows, ScopeSummary{Scope: s.Key(), Kind: string(s.MediaKind())})
		}
		return r.Render(rows)
	}

	scope, err := scopeFromFlag(c)
	if err != nil {
		return err
	}
	entries, err := store.List(c.Context, scope)
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}
	limit := c.Int("limit")
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	// Warn if output is large and --limit was not specified (TTY only to avoid noise in pipelines)
	if len(entries) > listWarningThreshold && limit == 0 && isStderrTTY() {
		fmt.Fprintf(os.Stderr, "Warning: returning %d results. Consider using --limit to reduce output.\n\n", len(entries))
	}

	return r.Render(listItems(entries))
}

func listItems(entries []catalog.Entry) []ListItem {
	rows := make([]ListItem, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, ListItem{
			MessageID: e.Item.MessageID,
			Index:     e.Item.Index,
			Kind:      string(e.Item.Kind),
			ItemID:    e.Item.ItemID,
			Name:      e.Name,
		})
	}
	return rows
}
