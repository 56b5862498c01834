// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amankrmj/javawizard/internal/fileops"
)

type analyzeFlagValues struct {
	report bool
	output string
	typ    string
}

func newAnalyzeCommand(app *App) *cobra.Command {
	flags := &analyzeFlagValues{}
	cmd := &cobra.Command{
		Use:   "analyze [flags] FILES...",
		Short: "Analyze files and generate reports",
		Long: `Analyze files and generate reports.

The basic analysis prints size, type and permissions. --type detailed adds
line and word counts, the detected MIME type and the dependencies of a
Maven pom.xml; --type security flags risky permissions and files that look
like secrets.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, app, flags, args)
		},
	}
	cmd.Flags().BoolVarP(&flags.report, "report", "r", false, "generate detailed report")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the analysis as JSON to this file")
	cmd.Flags().StringVar(&flags.typ, "type", string(fileops.AnalysisBasic), "analysis type: basic, detailed, security")
	return cmd
}

func runAnalyze(cmd *cobra.Command, app *App, flags *analyzeFlagValues, files []string) error {
	s := app.session(cmd.Context())
	out, errOut := app.stdout, app.stderr

	if s.verbose {
		fmt.Fprintf(out, "Running %s analysis\n", flags.typ)
		if flags.output != "" {
			fmt.Fprintf(out, "Output will be saved to: %s\n", flags.output)
		}
	}

	if len(files) == 0 {
		fmt.Fprintln(errOut, "No files specified for analysis")
		return silentExit()
	}

	typ, err := fileops.ParseAnalysisType(flags.typ)
	if err != nil {
		fmt.Fprintf(errOut, "Invalid analysis type: %s\n", flags.typ)
		fmt.Fprintln(errOut, "Supported types: basic, detailed, security")
		return silentExit()
	}

	results, err := fileops.Analyze(cmd.Context(), files, typ)
	if err != nil {
		return err
	}

	found := make([]*fileops.Analysis, 0, len(results))
	for _, a := range results {
		if !a.Found {
			if a.Error != "" {
				fmt.Fprintf(errOut, "Cannot analyze %s: %s\n", a.Path, a.Error)
			} else {
				fmt.Fprintf(errOut, "File not found: %s\n", a.Path)
			}
			continue
		}
		a.WriteText(out, typ, flags.report)
		found = append(found, a)
	}

	if flags.output != "" {
		if err := fileops.WriteJSON(flags.output, found); err != nil {
			return fmt.Errorf("writing analysis to %s: %w", flags.output, err)
		}
		app.Logger.Debug("analysis written", "path", flags.output, "files", len(found))
	}

	fmt.Fprintln(out, "Analysis completed!")
	return nil
}
