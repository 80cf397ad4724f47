package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/lightbox/catalog"
	"github.com/pithecene-io/lightbox/cli/render"
	"github.com/pithecene-io/lightbox/iox"
)

// SeedResponse reports what seed wrote.
type SeedResponse struct {
	Catalog string `json:"catalog" yaml:"catalog"`
	Scope   string `json:"scope" yaml:"scope"`
	Count   int    `json:"count" yaml:"count"`
}

// SeedCommand returns the seed command, which fills a catalog with demo items.
func SeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Fill a catalog scope with demo media items",
		Flags: append(ReadOnlyFlags(),
			ConfigFlag,
			CatalogFlag,
			ScopeFlag,
			&cli.IntFlag{
				Name:  "count",
				Usage: "Number of items to write",
				Value: 200,
			},
		),
		Action: seedAction,
	}
}

func seedAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	scope, err := scopeFromFlag(c)
	if err != nil {
		return err
	}
	count := c.Int("count")
	if count <= 0 {
		return usageError("--count must be > 0")
	}

	path := catalogPath(c, cfg)
	store, err := catalog.Open(path)
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}
	defer iox.DiscardClose(store)

	if err := store.Seed(c.Context, scope, count); err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}
	return r.Render(SeedResponse{Catalog: path, Scope: scope.Key(), Count: count})
}
