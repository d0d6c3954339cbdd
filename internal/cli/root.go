// Package cli implements the doctoc command line.
package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dgallion1/doctoc/internal/config"
)

var (
	cfgFile string
	verbose bool

	outlineID string
	bodyID    string
	controlID string
	strict    bool
	sanitize  bool
)

var rootCmd = &cobra.Command{
	Use:   "doctoc",
	Short: "Numbered tables of contents for HTML and Markdown documents",
	Long: `doctoc numbers the h2, h3 and h4 headings of a document, gives each one a
stable section anchor and fills the document's outline container with a nested
list of links. It can also flip the container between shown and hidden, and
serves the same operations over HTTP.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", ".doctoc.yml", "config file path")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&outlineID, "outline-id", "", "id of the outline container (default from config)")
	pf.StringVar(&bodyID, "body-id", "", "id of the element holding the headings (default from config)")
	pf.StringVar(&controlID, "control-id", "", "id of the show/hide control (default from config)")
	pf.BoolVar(&strict, "strict", false, "reject skipped heading levels instead of inserting placeholders")
	pf.BoolVar(&sanitize, "sanitize", false, "sanitize documents before outlining")
}

// loadConfig reads the config file and environment, then applies any
// document flags given on the command line.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if outlineID != "" {
		cfg.OutlineID = outlineID
	}
	if bodyID != "" {
		cfg.BodyID = bodyID
	}
	if controlID != "" {
		cfg.ControlID = controlID
	}
	if flags.Changed("strict") {
		cfg.Strict = strict
	}
	if flags.Changed("sanitize") {
		cfg.Sanitize = sanitize
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger writes human-readable logs to w. --verbose forces debug level.
func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	level, _ := config.ParseLevel(cfg.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
