// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amankrmj/javawizard/internal/fileops"
)

type processFlagValues struct {
	output string
	format string
	dryRun bool
}

func newProcessCommand(app *App) *cobra.Command {
	flags := &processFlagValues{}
	cmd := &cobra.Command{
		Use:   "process [flags] FILES...",
		Short: "Clean up, minify or format files",
		Long: `Clean up, minify or format files.

  cleanup  normalize line endings, strip trailing whitespace and extra blank lines
  minify   compact JSON; drop blank lines and indentation elsewhere
  format   pretty-print JSON, CUE, shell, TOML and YAML; clean up anything else

Results are written to the output directory under the input's name, so
--output . rewrites files in place.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, app, flags, args)
		},
	}
	cmd.Flags().StringVarP(&flags.output, "output", "o", ".", "output directory")
	cmd.Flags().StringVarP(&flags.format, "format", "f", string(fileops.ProcessCleanup), "processing format: cleanup, minify, format")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "show what would be processed without making changes")
	return cmd
}

func runProcess(cmd *cobra.Command, app *App, flags *processFlagValues, files []string) error {
	s := app.session(cmd.Context())
	out, errOut := app.stdout, app.stderr

	if s.verbose {
		fmt.Fprintf(out, "Processing files with format: %s\n", flags.format)
		fmt.Fprintf(out, "Output path: %s\n", flags.output)
		if flags.dryRun {
			fmt.Fprintln(out, "DRY RUN MODE - No changes will be made")
		}
	}

	if len(files) == 0 {
		fmt.Fprintln(errOut, "No files specified for processing")
		return silentExit()
	}

	format, err := fileops.ParseProcessFormat(flags.format)
	if err != nil {
		fmt.Fprintf(errOut, "Invalid processing format: %s\n", flags.format)
		fmt.Fprintln(errOut, "Supported formats: cleanup, minify, format")
		return silentExit()
	}

	results, err := fileops.Process(cmd.Context(), files, fileops.ProcessOptions{
		Format:    format,
		OutputDir: flags.output,
		DryRun:    flags.dryRun,
	})
	if err != nil {
		return err
	}

	failed := false
	for _, r := range results {
		if r.Status == fileops.StatusNotFound {
			fmt.Fprintf(errOut, "File not found: %s\n", r.Input)
			continue
		}
		if s.verbose || flags.dryRun {
			fmt.Fprintf(out, "Processing: %s\n", r.Name)
		}
		switch r.Status {
		case fileops.StatusFailed:
			failed = true
			fmt.Fprintf(errOut, "%s Failed to process %s: %v\n", ErrorStyle.Render("✗"), r.Name, r.Err)
		case fileops.StatusSkipped:
			if !r.Changed {
				fmt.Fprintf(out, "  %s\n", SubtitleStyle.Render("already clean"))
			}
		case fileops.StatusDone:
			fmt.Fprintf(out, "✓ Processed %s with %s format\n", r.Name, format)
		}
	}

	fmt.Fprintln(out, "Processing completed!")
	if failed {
		return silentExit()
	}
	return nil
}
