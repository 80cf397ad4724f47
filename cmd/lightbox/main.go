// Command lightbox browses media overviews in a full-screen terminal viewer.
//
//	lightbox seed --scope peer:42
//	lightbox view --scope peer:42
//
// It exits 0 on success, 1 when the catalog, the page server or the viewer
// fails, and 2 on bad flags, config or scope.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/lightbox/cli/cmd"
	"github.com/pithecene-io/lightbox/types"
)

// commit is stamped with -ldflags "-X main.commit=...".
var commit = "unknown"

func newApp() *cli.App {
	return &cli.App{
		Name:           "lightbox",
		Usage:          "Full-screen media overview viewer",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.ViewCommand(),
			cmd.ListCommand(),
			cmd.SeedCommand(),
			cmd.ServeCommand(),
			cmd.VersionCommand(commit),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}
	os.Exit(report(os.Stderr, err))
}

// report prints err for the user and returns the exit code it carries.
// A bare cli.Exit("", n) prints nothing.
func report(w io.Writer, err error) int {
	var exitCoder cli.ExitCoder
	if !errors.As(err, &exitCoder) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}
	code := exitCoder.ExitCode()
	if msg := exitCoder.Error(); msg != "" && msg != fmt.Sprintf("exit status %d", code) {
		fmt.Fprintln(w, msg)
	}
	return code
}
