// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/amankrmj/javawizard/internal/issue"
	"github.com/amankrmj/javawizard/internal/jdk"
	"github.com/amankrmj/javawizard/internal/jdkdist"
	"github.com/amankrmj/javawizard/pkg/platform"
)

// newJavaCommand creates the `javawizard java` command tree.
func newJavaCommand(app *App) *cobra.Command {
	javaCmd := &cobra.Command{
		Use:   "java",
		Short: "Manage Java versions and installations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := app.stdout
			fmt.Fprintln(w, "Java Version Manager - Use 'java --help' for options:")
			fmt.Fprintln(w, "  list      - List installed Java versions")
			fmt.Fprintln(w, "  install   - Install a specific Java version")
			fmt.Fprintln(w, "  use       - Switch to a specific Java version")
			fmt.Fprintln(w, "  current   - Show current active Java version")
			fmt.Fprintln(w, "  which     - Show path to current Java installation")
			fmt.Fprintln(w, "  uninstall - Remove a managed Java version")
			return nil
		},
	}

	var all bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List installed Java versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listJava(cmd.Context(), app, all)
		},
	}
	listCmd.Flags().BoolVarP(&all, "all", "a", false, "show all detected Java installations")

	var force, guide bool
	installCmd := &cobra.Command{
		Use:   "install VERSION",
		Short: "Install a specific Java version",
		Long: `Install a specific Java version into the managed versions directory.

VERSION is a feature release such as 17 or 21, optionally followed by
"-graalvm" to install GraalVM Community Edition instead of Eclipse Temurin.`,
		Example: `  javawizard java install 21
  javawizard java install 21-graalvm
  javawizard java install 17 --guide`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return installJava(cmd.Context(), app, args[0], force, guide)
		},
	}
	installCmd.Flags().BoolVarP(&force, "force", "f", false, "force reinstall if already exists")
	installCmd.Flags().BoolVar(&guide, "guide", false, "print manual installation steps instead of downloading")

	useCmd := &cobra.Command{
		Use:   "use VERSION",
		Short: "Switch to a specific Java version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return useJava(cmd.Context(), app, args[0])
		},
	}

	currentCmd := &cobra.Command{
		Use:   "current",
		Short: "Show current active Java version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return currentJava(cmd.Context(), app)
		},
	}

	whichCmd := &cobra.Command{
		Use:   "which",
		Short: "Show path to current Java installation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			found := jdk.Which(app.Getenv("PATH"), app.GOOS)
			if len(found) == 0 {
				fmt.Fprintln(app.stdout, "Java not found in PATH")
				return nil
			}
			fmt.Fprintln(app.stdout, "Java executable locations:")
			for _, p := range found {
				fmt.Fprintln(app.stdout, p)
			}
			return nil
		},
	}

	var forceRemove bool
	uninstallCmd := &cobra.Command{
		Use:   "uninstall VERSION",
		Short: "Remove a managed Java version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return uninstallJava(cmd.Context(), app, args[0], forceRemove)
		},
	}
	uninstallCmd.Flags().BoolVarP(&forceRemove, "force", "f", false, "remove even if it is the current JAVA_HOME")

	javaCmd.AddCommand(listCmd, installCmd, useCmd, currentCmd, whichCmd, uninstallCmd)
	return javaCmd
}

func listJava(ctx context.Context, app *App, all bool) error {
	s := app.session(ctx)
	m := app.manager(s)
	w := app.stdout

	if all {
		fmt.Fprintln(w, "=== All Detected Java Installations ===")
		return listAllJava(ctx, app, s, m)
	}

	fmt.Fprintln(w, "=== Managed Java Versions ===")
	versions, err := m.List()
	if err != nil && !errors.Is(err, jdk.ErrNoManagedVersions) {
		fmt.Fprintf(app.stderr, "Error listing Java versions: %v\n", err)
		return silentExit()
	}
	if len(versions) == 0 {
		fmt.Fprintln(w, "No managed Java versions found.")
		fmt.Fprintln(w, "Use 'javawizard java install <version>' to install Java versions.")
		return nil
	}
	for _, v := range versions {
		marker := ""
		if v.Current {
			marker = SuccessStyle.Render(" (current)")
		}
		fmt.Fprintf(w, "  %s%s\n", v.Name, marker)
	}
	return nil
}

func listAllJava(ctx context.Context, app *App, s *session, m *jdk.Manager) error {
	w := app.stdout
	fmt.Fprintln(w, "Scanning common installation directories...")

	roots := append(jdk.ScanRoots(app.GOOS, app.userHome()), s.cfg.Java.ScanPaths...)
	scans, err := m.Scan(ctx, roots)
	if err != nil {
		fmt.Fprintf(app.stderr, "Error listing Java versions: %v\n", err)
		return silentExit()
	}
	for _, scan := range scans {
		if len(scan.Installations) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", CmdStyle.Render(scan.Root))
		for _, in := range scan.Installations {
			fmt.Fprintf(w, "  %s %s\n", in.Name, in.Detection.Label())
		}
	}

	if javaHome := app.Getenv("JAVA_HOME"); javaHome != "" {
		fmt.Fprintf(w, "\nJAVA_HOME: %s\n", javaHome)
		fmt.Fprintf(w, "  Version: %s\n", jdk.Detect(ctx, app.Runner, javaHome).Label())
	}
	return nil
}

func installJava(ctx context.Context, app *App, version string, force, guide bool) error {
	s := app.session(ctx)
	fmt.Fprintf(app.stdout, "Installing Java %s...\n", version)

	req, err := jdkdist.ParseRequest(version, jdkdist.Distribution(s.cfg.Java.Distribution))
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("install Java").
			WithResource(version).
			WithSuggestion("Use a feature release such as 17 or 21, optionally with -graalvm").
			Wrap(err).
			BuildError()
	}

	if guide {
		return printInstallGuide(app, s, req)
	}

	installed, err := app.installer(s).Install(ctx, req, s.cfg.Java.VersionsDir, force)
	switch {
	case errors.Is(err, jdkdist.ErrUnsupportedPlatform):
		app.Logger.Warn("no downloadable build for this platform", "err", err)
		return printInstallGuide(app, s, req)
	case errors.Is(err, jdkdist.ErrAlreadyInstalled):
		return issue.NewErrorContext().
			WithOperation("install Java").
			WithResource(req.Name).
			WithSuggestion(fmt.Sprintf("Run 'javawizard java install %s --force' to reinstall", version)).
			WithSuggestion(fmt.Sprintf("Run 'javawizard java use %s' to switch to it", req.Name)).
			Wrap(err).
			BuildError()
	case err != nil:
		return issue.NewErrorContext().
			WithOperation("install Java").
			WithResource(req.Name).
			WithSuggestion("Check your network connection and try again").
			WithSuggestion(fmt.Sprintf("Run 'javawizard java install %s --guide' for manual installation steps", version)).
			Wrap(err).
			BuildError()
	}

	fmt.Fprintf(app.stdout, "%s Installed %s to %s\n", SuccessStyle.Render("✓"), installed.Name, installed.Path)
	fmt.Fprintf(app.stdout, "Run: %s\n", CmdStyle.Render("javawizard java use "+installed.Name))
	return nil
}

func printInstallGuide(app *App, s *session, req jdkdist.Request) error {
	id := issue.OpenJDKInstallGuideId
	if req.Distribution == jdkdist.GraalVM {
		id = issue.GraalVMInstallGuideId
	}
	return app.renderIssue(app.stdout, s, id, map[string]string{
		"Version": req.Version,
		"Name":    req.Name,
		"Target":  filepath.Join(s.cfg.Java.VersionsDir, req.Name),
	})
}

func useJava(ctx context.Context, app *App, version string) error {
	s := app.session(ctx)
	m := app.manager(s)

	path, err := m.Resolve(version)
	if err != nil {
		var notFound *jdk.VersionNotFoundError
		if errors.As(err, &notFound) {
			printVersionNotFound(app, s, notFound)
			return silentExit()
		}
		fmt.Fprintf(app.stderr, "Error switching Java version: %v\n", err)
		return silentExit()
	}

	env := app.environment(s)
	if err := env.UseJava(ctx, path); err != nil {
		fmt.Fprintf(app.stderr, "Error switching Java version: %v\n", err)
		return silentExit()
	}

	w := app.stdout
	fmt.Fprintf(w, "Switched to Java version: %s\n", version)
	fmt.Fprintf(w, "JAVA_HOME: %s\n", path)
	if app.GOOS != platform.Windows {
		fmt.Fprintf(w, "Add this line to your shell profile if it is not there yet:\n  %s\n",
			CmdStyle.Render(". "+env.Store.Location()))
	}
	fmt.Fprintln(w, "Note: Restart your terminal to see the changes.")
	return nil
}

// printVersionNotFound lists the managed versions and, when there are
// none, follows up with the install guide.
func printVersionNotFound(app *App, s *session, err *jdk.VersionNotFoundError) {
	w := app.stderr
	fmt.Fprintf(w, "Java version not found: %s\n", err.Name)
	fmt.Fprintln(w, "Available versions:")
	for _, name := range err.Available {
		fmt.Fprintf(w, "  %s\n", name)
	}
	if len(err.Available) == 0 {
		fmt.Fprintln(w)
		_ = app.renderIssue(w, s, issue.JavaVersionNotFoundId, map[string]string{
			"Version": err.Name,
			"Dir":     s.cfg.Java.VersionsDir,
		})
	}
}

func currentJava(ctx context.Context, app *App) error {
	s := app.session(ctx)
	w := app.stdout

	if javaHome := app.Getenv("JAVA_HOME"); javaHome == "" {
		fmt.Fprintln(w, "JAVA_HOME not set")
	} else {
		fmt.Fprintf(w, "JAVA_HOME: %s\n", javaHome)
	}

	output, ok, err := app.manager(s).Active(ctx)
	if err != nil {
		fmt.Fprintf(app.stderr, "Error getting current Java version: %v\n", err)
		return silentExit()
	}
	if !ok {
		fmt.Fprintln(w, "No Java found in PATH")
		return nil
	}
	fmt.Fprintln(w, "Active Java version:")
	fmt.Fprintln(w, output)
	return nil
}

func uninstallJava(ctx context.Context, app *App, version string, force bool) error {
	s := app.session(ctx)
	err := app.manager(s).Remove(version, force)

	var notFound *jdk.VersionNotFoundError
	switch {
	case errors.As(err, &notFound):
		printVersionNotFound(app, s, notFound)
		return silentExit()
	case errors.Is(err, jdk.ErrVersionInUse):
		return issue.NewErrorContext().
			WithOperation("uninstall Java").
			WithResource(version).
			WithSuggestion("Switch to another version first with 'javawizard java use <version>'").
			WithSuggestion(fmt.Sprintf("Or run 'javawizard java uninstall %s --force'", version)).
			Wrap(err).
			BuildError()
	case err != nil:
		return issue.WrapWithContext(err, "uninstall Java", version)
	}

	fmt.Fprintf(app.stdout, "%s Removed %s\n", SuccessStyle.Render("✓"), version)
	return nil
}
