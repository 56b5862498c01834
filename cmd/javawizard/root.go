// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/amankrmj/javawizard/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags of one command tree.
type rootFlagValues struct {
	verbose    bool
	configPath string
}

// NewRootCommand builds the javawizard command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "javawizard",
		Short: "Complete Java Development Environment Manager",
		Long: TitleStyle.Render("JavaWizard") + SubtitleStyle.Render(" - Complete Java Development Environment Manager") + `

Manage JDK installations and the user PATH, build GraalVM native images,
and analyze, convert or clean up files.

` + SubtitleStyle.Render("Examples:") + `
  javawizard java install 21        Download and install Temurin 21
  javawizard java use jdk-21        Point JAVA_HOME at it
  javawizard native build           Compile the project's native image
  javawizard convert -t yaml a.json Convert a file to YAML`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			s := app.loadSession(cmd.Context(), flags)
			cmd.SetContext(contextWithSession(cmd.Context(), s))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			printBanner(app.stdout)
			return nil
		},
	}
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is <config dir>/javawizard/config.cue)")

	rootCmd.AddCommand(
		newPathCommand(app),
		newJavaCommand(app),
		newNativeCommand(app),
		newAnalyzeCommand(app),
		newConvertCommand(app),
		newProcessCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

func printBanner(w io.Writer) {
	fmt.Fprintln(w, "JavaWizard - Complete Java Development Environment Manager")
	fmt.Fprintln(w, "Use --help for options or try these commands:")
	fmt.Fprintln(w, "  path     - Manage environment PATH variables")
	fmt.Fprintln(w, "  java     - Manage Java versions and installations")
	fmt.Fprintln(w, "  native   - Manage native compilation and cross-platform builds")
	fmt.Fprintln(w, "  analyze  - Analyze files and generate reports")
	fmt.Fprintln(w, "  convert  - Convert files between formats")
	fmt.Fprintln(w, "  process  - Clean up, minify or format files")
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the production App and runs the command tree. It is
// called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(app.Logger))

	rootCmd := NewRootCommand(app)
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(newErrorHandler(rootCmd)),
	); err != nil {
		os.Exit(int(exitCodeOf(err)))
	}
}

// newErrorHandler prints command errors unless the command already did.
// ActionableErrors keep their suggestions, plus the chain with --verbose.
func newErrorHandler(rootCmd *cobra.Command) fang.ErrorHandler {
	return func(w io.Writer, styles fang.Styles, err error) {
		if isSilent(err) {
			return
		}
		var ae *issue.ActionableError
		if errors.As(err, &ae) {
			verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
			fmt.Fprintln(w, ErrorStyle.Render("Error: ")+ae.Format(verbose))
			return
		}
		fang.DefaultErrorHandler(w, styles, err)
	}
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// render their suggestions, and verbose mode adds the error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
