package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/doctoc/internal/api"
	"github.com/dgallion1/doctoc/internal/pipeline"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the outline API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if servePort != "" {
			cfg.Port = servePort
		}
		log := newLogger(cmd.ErrOrStderr(), cfg)

		orch := pipeline.NewOrchestrator(cfg, pipeline.NewProcessor(cfg, log), log)
		orch.Start(cmd.Context())
		defer orch.Stop()

		return api.NewServer(orch, log, cfg).ListenAndServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
