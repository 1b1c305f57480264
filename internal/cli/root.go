package cli

import (
	"context"
	"os"

	"github.com/motifhq/motif/pkg/buildinfo"
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with
// values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	buildinfo.Version = v
	buildinfo.Commit = c
	buildinfo.Date = d
}

// Execute runs the motif CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
func Execute() error {
	c := New(os.Stderr, LogInfo)
	return c.RootCommand().ExecuteContext(context.Background())
}
