// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/amankrmj/javawizard/internal/envstore"
	"github.com/amankrmj/javawizard/internal/issue"
	"github.com/amankrmj/javawizard/pkg/platform"
)

// newPathCommand creates the `javawizard path` command tree. It edits the
// persisted user PATH: the registry on Windows, the managed env.sh elsewhere.
func newPathCommand(app *App) *cobra.Command {
	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Manage environment PATH variables",
		Long: `Manage environment PATH variables.

Changes are persisted for new terminals:
  - Windows: the user PATH in HKCU\Environment
  - Linux/macOS: ~/.javawizard/env.sh, sourced from your shell profile`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pathCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List PATH entries in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listPath(cmd.Context(), app)
		},
	})

	var appendEntry bool
	addCmd := &cobra.Command{
		Use:   "add DIR",
		Short: "Add a directory to PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return addPath(cmd.Context(), app, args[0], appendEntry)
		},
	}
	addCmd.Flags().BoolVar(&appendEntry, "append", false, "append instead of prepending")
	pathCmd.AddCommand(addCmd)

	pathCmd.AddCommand(&cobra.Command{
		Use:   "remove DIR",
		Short: "Remove a directory from PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return removePath(cmd.Context(), app, args[0])
		},
	})

	pathCmd.AddCommand(&cobra.Command{
		Use:   "clean",
		Short: "Remove duplicate and missing directories from PATH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cleanPath(cmd.Context(), app)
		},
	})

	return pathCmd
}

func listPath(ctx context.Context, app *App) error {
	env := app.environment(app.session(ctx))
	entries, err := env.PathEntries(ctx)
	if err != nil {
		return issue.WrapWithContext(err, "read PATH", env.Store.Location())
	}
	if len(entries) == 0 {
		fmt.Fprintln(app.stdout, "PATH is empty")
		return nil
	}

	t := newTable("#", "Directory", "Status")
	for i, e := range entries {
		status := SuccessStyle.Render("ok")
		if !env.DirExists(e) {
			status = WarningStyle.Render("missing")
		}
		t.Row(strconv.Itoa(i+1), e, status)
	}
	fmt.Fprintln(app.stdout, t.Render())
	return nil
}

// absDir resolves dir against the working directory so that persisted
// entries keep working from any directory. Windows %VAR% entries are
// left alone.
func absDir(app *App, dir string) string {
	if app.GOOS == platform.Windows || filepath.IsAbs(dir) {
		return dir
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

func addPath(ctx context.Context, app *App, dir string, appendEntry bool) error {
	env := app.environment(app.session(ctx))
	dir = absDir(app, dir)
	if !env.DirExists(dir) {
		app.Logger.Warn("directory does not exist", "dir", dir)
	}
	if _, err := env.AddPath(ctx, dir, appendEntry); err != nil {
		return issue.WrapWithContext(err, "update PATH", env.Store.Location())
	}
	where := "beginning"
	if appendEntry {
		where = "end"
	}
	fmt.Fprintf(app.stdout, "%s Added %s to the %s of PATH\n", SuccessStyle.Render("✓"), dir, where)
	fmt.Fprintln(app.stdout, "Note: Restart your terminal to see the changes.")
	return nil
}

func removePath(ctx context.Context, app *App, dir string) error {
	env := app.environment(app.session(ctx))
	dir = absDir(app, dir)
	if _, err := env.RemovePath(ctx, dir); err != nil {
		if errors.Is(err, envstore.ErrNotInPath) {
			fmt.Fprintf(app.stderr, "Directory not in PATH: %s\n", dir)
			return silentExit()
		}
		return issue.WrapWithContext(err, "update PATH", env.Store.Location())
	}
	fmt.Fprintf(app.stdout, "%s Removed %s from PATH\n", SuccessStyle.Render("✓"), dir)
	fmt.Fprintln(app.stdout, "Note: Restart your terminal to see the changes.")
	return nil
}

func cleanPath(ctx context.Context, app *App) error {
	env := app.environment(app.session(ctx))
	removed, err := env.CleanPath(ctx)
	if err != nil {
		return issue.WrapWithContext(err, "clean PATH", env.Store.Location())
	}
	if len(removed) == 0 {
		fmt.Fprintln(app.stdout, "PATH is already clean")
		return nil
	}
	for _, e := range removed {
		fmt.Fprintf(app.stdout, "  - %s\n", e)
	}
	fmt.Fprintf(app.stdout, "%s Removed %d entr%s from PATH\n", SuccessStyle.Render("✓"), len(removed), plural(len(removed), "y", "ies"))
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
