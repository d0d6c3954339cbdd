package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/doctoc/internal/pipeline"
)

var buildOut string

var buildCmd = &cobra.Command{
	Use:   "build [files or patterns...]",
	Short: "Number headings and fill the outline container",
	Long: `Outlines each matching document on the worker pool. Patterns use doublestar
syntax, so "docs/**/*.md" walks subdirectories. A single document with no
--out is written to stdout; otherwise results land under --out, keeping
relative paths. Markdown sources are written as .html.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "", "output directory")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := newLogger(cmd.ErrOrStderr(), cfg)

	files, err := expandInputs(args)
	if err != nil {
		return err
	}
	if buildOut == "" && len(files) > 1 {
		return fmt.Errorf("--out is required when building %d documents", len(files))
	}

	// Every document is submitted up front.
	if cfg.MaxQueueSize < len(files) {
		cfg.MaxQueueSize = len(files)
	}
	orch := pipeline.NewOrchestrator(cfg, pipeline.NewProcessor(cfg, log), log)
	orch.Start(cmd.Context())
	defer orch.Stop()

	jobs := make([]*pipeline.Job, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("reading %s: %w", f, err)
		}
		job := pipeline.NewJob(f, data)
		if err := orch.Submit(job); err != nil {
			return err
		}
		jobs = append(jobs, job)
	}

	rep := newReporter(cmd.ErrOrStderr(), len(jobs))
	rep.Start(len(jobs))

	var failed []error
	for i, job := range jobs {
		if err := job.Wait(cmd.Context()); err != nil {
			return err
		}
		snap := job.Snapshot()
		rep.Update(i+1, snap.Filename)

		res := job.Result()
		if snap.Status == pipeline.StatusFailed || res == nil {
			failed = append(failed, fmt.Errorf("%s: %v", snap.Filename, snap.Progress.Errors))
			continue
		}

		if buildOut == "" {
			if _, err := cmd.OutOrStdout().Write(res.HTML); err != nil {
				return err
			}
			continue
		}
		dst := outputPath(buildOut, snap.Filename)
		if err := writeOutput(dst, res.HTML); err != nil {
			return err
		}
		log.Debug("wrote document", "src", snap.Filename, "dst", dst, "headings", snap.Progress.Headings)
	}
	rep.Finish()

	if len(failed) > 0 {
		for _, err := range failed {
			log.Error("outline failed", "error", err)
		}
		return fmt.Errorf("%d of %d documents failed: %w", len(failed), len(jobs), errors.Join(failed...))
	}
	log.Info("build complete", "documents", len(jobs))
	return nil
}
