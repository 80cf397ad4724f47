package cmd

import (
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/lightbox/catalog"
	"github.com/pithecene-io/lightbox/iox"
	"github.com/pithecene-io/lightbox/ipc"
	"github.com/pithecene-io/lightbox/log"
)

// ServeCommand returns the serve command. It answers framed fetch requests
// on stdin with pages from the catalog on stdout, and logs to stderr.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve catalog pages over stdin/stdout for the ipc transport",
		Flags: []cli.Flag{
			ConfigFlag,
			CatalogFlag,
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := log.NewLogger(uuid.NewString())
	defer iox.DiscardErr(logger.Sync)

	store, err := catalog.Open(catalogPath(c, cfg))
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}
	defer iox.DiscardClose(store)

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	if err := ipc.Serve(ctx, os.Stdin, os.Stdout, store, logger); err != nil {
		logger.Error("serve failed", map[string]any{"error": err.Error()})
		return cli.Exit(err.Error(), exitFailure)
	}
	return nil
}
