package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/doctoc/internal/pipeline"
)

var toggleOut string

var toggleCmd = &cobra.Command{
	Use:   "toggle FILE",
	Short: "Flip the outline container between shown and hidden",
	Long: `Flips the display of the outline container and relabels the control to
"Hide Table of Contents" or "Show Table of Contents". The document is written
to stdout, or to --out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		log := newLogger(cmd.ErrOrStderr(), cfg)

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		out, visible, err := pipeline.NewProcessor(cfg, log).Toggle(data, args[0])
		if err != nil {
			return err
		}
		log.Info("outline toggled", "file", args[0], "visible", visible)

		if toggleOut == "" {
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}
		return writeOutput(toggleOut, out)
	},
}

func init() {
	toggleCmd.Flags().StringVarP(&toggleOut, "out", "o", "", "output file")
	rootCmd.AddCommand(toggleCmd)
}
