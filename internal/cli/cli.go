// Package cli implements the motif command-line interface.
//
// This package provides commands for rendering personalized template
// variants, browsing generation batches interactively, serving the HTTP
// API, and managing the document cache. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Render one variant from a template and descriptor
//   - catalog: Render the catalog overview grouped by border family
//   - browse: Page through a filtered generation batch interactively
//   - inspect: List the containers and text zones of a template document
//   - link: Emit and resolve shareable deep links
//   - serve: Run the HTTP API
//   - session: Show, restore, and clean up saved sessions
//   - cache: Manage the document cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/motifhq/motif/pkg/buildinfo"
	"github.com/motifhq/motif/pkg/cache"
	"github.com/motifhq/motif/pkg/config"
	"github.com/motifhq/motif/pkg/errors"
	"github.com/motifhq/motif/pkg/pipeline"
	"github.com/motifhq/motif/pkg/store"
	"github.com/motifhq/motif/pkg/textfit"
)

const (
	// appName is the application name used for directories and display.
	appName = "motif"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool

	// runnerOverride replaces the config-built runner in tests.
	runnerOverride *pipeline.Runner
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "Motif personalizes templates with fitted text and variations",
		Long:         `Motif injects user text into template documents, auto-fits it to the available space, and fans each template out into color, frame, tilt, and texture variations.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(log.DebugLevel)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to the TOML config file")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the document cache")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.linkCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.sessionCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configured TOML file, falling back to the default
// config path under the user's config directory.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".config", appName, "config.toml")
		}
	}
	return config.Load(path)
}

// newRunner builds a pipeline runner from the loaded configuration. The
// returned cleanup releases the store and cache resources.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, func(), error) {
	if c.runnerOverride != nil {
		return c.runnerOverride, func() {}, nil
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	documentCache, err := c.buildCache(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	templateStore, err := buildStore(ctx, cfg.Store)
	if err != nil {
		_ = documentCache.Close()
		return nil, nil, err
	}
	fetcher := buildFetcher(cfg.Store, documentCache)
	measurer, err := newMeasurer(cfg.Render.Timeout())
	if err != nil {
		_ = documentCache.Close()
		_ = templateStore.Close(ctx)
		return nil, nil, err
	}

	runner := pipeline.NewRunner(templateStore, fetcher, documentCache, measurer, c.Logger)
	cleanup := func() {
		_ = templateStore.Close(context.Background())
		_ = documentCache.Close()
	}
	return runner, cleanup, nil
}

func buildStore(ctx context.Context, cfg config.StoreConfig) (store.TemplateStore, error) {
	if cfg.MongoURI != "" {
		return store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	}
	if cfg.TemplatesFile != "" {
		templates, err := store.LoadTemplateIndex(cfg.TemplatesFile)
		if err != nil {
			return nil, err
		}
		return &store.MemoryStore{Templates: templates}, nil
	}
	return &store.MemoryStore{}, nil
}

func buildFetcher(cfg config.StoreConfig, documentCache cache.Cache) store.DocumentFetcher {
	if cfg.BaseURL != "" {
		f := store.NewHTTPFetcher(cfg.BaseURL, documentCache)
		f.TexturePath = cfg.TexturePath
		return f
	}
	dir := cfg.DocumentsDir
	if dir == "" {
		dir = "."
	}
	return &store.DirFetcher{Dir: dir}
}

// buildCache honors --no-cache and defaults the file backend's directory to
// the XDG cache path.
func (c *CLI) buildCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	cacheCfg := cfg.Cache
	if cacheCfg.Backend == "file" && cacheCfg.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "resolve cache dir")
		}
		cacheCfg.Dir = dir
	}
	return cacheCfg.BuildCache(ctx)
}

// newMeasurer builds the text measurer with the configured timeout.
func newMeasurer(timeout time.Duration) (textfit.Measurer, error) {
	inner, err := textfit.NewOpentypeMeasurer()
	if err != nil {
		return nil, err
	}
	return &textfit.TimeoutMeasurer{Inner: inner, Timeout: timeout}, nil
}

// cacheDir returns the cache directory using XDG standard (~/.cache/motif/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// parseList splits a comma-separated flag value, dropping empty entries.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseTilts converts a comma-separated degree list into integers.
func parseTilts(s string) ([]int, error) {
	var out []int
	for _, part := range parseList(s) {
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTilt, err, "parse tilt %q", part)
		}
		out = append(out, v)
	}
	return out, nil
}
