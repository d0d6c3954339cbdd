package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/doctoc/internal/pipeline"
)

var outlineFormat string

var outlineCmd = &cobra.Command{
	Use:   "outline FILE",
	Short: "Print a document's outline without rewriting it",
	Args:  cobra.ExactArgs(1),
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
		res, err := pipeline.NewProcessor(cfg, log).Outline(data, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch outlineFormat {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res.Outline)
		case "markdown", "md":
			md, err := res.Outline.Markdown()
			if err != nil {
				return err
			}
			_, err = io.WriteString(out, md)
			return err
		case "text":
			_, err = io.WriteString(out, res.Outline.Text())
			return err
		}
		return fmt.Errorf("unknown format %q (want json, markdown or text)", outlineFormat)
	},
}

func init() {
	outlineCmd.Flags().StringVarP(&outlineFormat, "format", "f", "text", "output format: json, markdown or text")
	rootCmd.AddCommand(outlineCmd)
}
