// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amankrmj/javawizard/internal/issue"
	"github.com/amankrmj/javawizard/internal/nativebuild"
	"github.com/amankrmj/javawizard/pkg/platform"
)

type nativeBuildFlagValues struct {
	project       string
	skipInstaller bool
	watch         bool
	dryRun        bool
}

// newNativeCommand creates the `javawizard native` command tree for GraalVM
// native-image builds described by a javawizard.cue project file.
func newNativeCommand(app *App) *cobra.Command {
	nativeCmd := &cobra.Command{
		Use:   "native",
		Short: "Build GraalVM native images",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	buildFlags := &nativeBuildFlagValues{}
	buildCmd := &cobra.Command{
		Use:   "build [TASK...]",
		Short: "Run native build tasks",
		Long: `Run native build tasks from the project file.

Tasks:
  compile    run native-image on the jar or classpath
  dist       copy the executable into <dist.dir>/bin
  installer  compile the Inno Setup script (Windows only)
  sources    archive the source directories

Without arguments, compile and dist run. Dependencies run first; the
installer follows compile automatically when installer.auto is set.`,
		Example: `  javawizard native build
  javawizard native build sources
  javawizard native build --watch`,
		ValidArgs: []string{nativebuild.TaskCompile, nativebuild.TaskDist, nativebuild.TaskInstaller, nativebuild.TaskSources},
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNativeBuild(cmd.Context(), app, buildFlags, args)
		},
	}
	buildCmd.Flags().StringVarP(&buildFlags.project, "project", "p", nativebuild.ProjectFileName, "project file")
	buildCmd.Flags().BoolVar(&buildFlags.skipInstaller, "skip-installer", false, "do not run the installer after compile")
	buildCmd.Flags().BoolVarP(&buildFlags.watch, "watch", "w", false, "rebuild when sources or the project file change")
	buildCmd.Flags().BoolVar(&buildFlags.dryRun, "dry-run", false, "print the task order and native-image command without running them")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Check the native build toolchain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNativeCheck(cmd.Context(), app)
		},
	}

	var classes []string
	var reflectOut string
	reflectCmd := &cobra.Command{
		Use:   "reflect-config",
		Short: "Add classes to the reflection configuration",
		Long: `Add classes to the native-image reflection configuration.

Entries are merged into the existing file. Without --output, the
project's reflection_config is used, or reflect-config.json.`,
		Example: `  javawizard native reflect-config --class com.example.Model --class com.example.Dto`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReflectConfig(app, classes, reflectOut)
		},
	}
	reflectCmd.Flags().StringSliceVarP(&classes, "class", "c", nil, "fully qualified class name (repeatable)")
	reflectCmd.Flags().StringVarP(&reflectOut, "output", "o", "", "reflection config file")
	_ = reflectCmd.MarkFlagRequired("class")

	var initName, initDir string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter javawizard.cue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNativeInit(app, initDir, initName)
		},
	}
	initCmd.Flags().StringVar(&initName, "name", "", "executable name (default: directory name)")
	initCmd.Flags().StringVar(&initDir, "dir", ".", "project directory")

	nativeCmd.AddCommand(buildCmd, checkCmd, reflectCmd, initCmd)
	return nativeCmd
}

func loadProject(app *App, s *session, path string) (*nativebuild.Project, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if rerr := app.renderIssue(app.stderr, s, issue.ProjectFileNotFoundId, nil); rerr != nil {
			fmt.Fprintf(app.stderr, "Project file not found: %s\n", path)
		}
		return nil, silentExit()
	}
	p, err := nativebuild.LoadProject(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load project").
			WithResource(path).
			WithSuggestion("Run 'javawizard native init' in an empty directory to see a valid project file").
			Wrap(err).
			BuildError()
	}
	return p, nil
}

func runNativeBuild(ctx context.Context, app *App, flags *nativeBuildFlagValues, tasks []string) error {
	s := app.session(ctx)
	p, err := loadProject(app, s, flags.project)
	if err != nil {
		return err
	}

	b := &nativebuild.Builder{
		Project:       p,
		Toolchain:     app.toolchain(s),
		Logger:        app.Logger,
		Stdout:        app.stdout,
		Stderr:        app.stderr,
		SkipInstaller: flags.skipInstaller,
	}

	order, err := b.Plan(tasks...)
	if err != nil {
		return issue.WrapWithContext(err, "plan native build", p.File)
	}
	if s.verbose || flags.dryRun {
		fmt.Fprintf(app.stdout, "Tasks: %s\n", strings.Join(order, " → "))
	}
	if flags.dryRun {
		return printCompileCommand(app, b, order)
	}

	if flags.watch {
		err = b.Watch(ctx, tasks...)
		if errors.Is(err, context.Canceled) {
			return nil
		}
	} else {
		err = b.Run(ctx, tasks...)
	}
	if err != nil {
		return nativeBuildError(app, s, err)
	}

	fmt.Fprintf(app.stdout, "%s Native build completed: %s\n", SuccessStyle.Render("✓"), strings.Join(order, ", "))
	return nil
}

func printCompileCommand(app *App, b *nativebuild.Builder, order []string) error {
	for _, task := range order {
		if task != nativebuild.TaskCompile {
			continue
		}
		bin, err := b.Toolchain.FindNativeImage()
		if err != nil {
			bin = platform.ExeName(b.Toolchain.GOOS, "native-image")
		}
		fmt.Fprintln(app.stdout, CmdStyle.Render(b.CompileCommand(bin).String()))
	}
	return nil
}

func nativeBuildError(app *App, s *session, err error) error {
	if errors.Is(err, nativebuild.ErrNativeImageNotFound) {
		if rerr := app.renderIssue(app.stderr, s, issue.NativeImageNotFoundId, nil); rerr == nil {
			return silentExit()
		}
	}
	var taskErr *nativebuild.TaskError
	if errors.As(err, &taskErr) {
		var actionable *issue.ActionableError
		if errors.As(err, &actionable) {
			return actionable
		}
		return issue.WrapWithContext(taskErr.Err, "run "+taskErr.Task+" task", "")
	}
	return err
}

func runNativeCheck(ctx context.Context, app *App) error {
	s := app.session(ctx)
	rep := app.toolchain(s).Check(ctx)
	w := app.stdout

	fmt.Fprintln(w, TitleStyle.Render("Native build toolchain"))
	t := newTable("Tool", "Status", "Details")
	ok := rep.NativeImageErr == nil
	if ok {
		t.Row("native-image", SuccessStyle.Render("found"), rep.NativeImage)
		if rep.NativeImageVersion != "" {
			t.Row("", "", rep.NativeImageVersion)
		}
		t.Row("GraalVM home", SuccessStyle.Render("found"), rep.GraalHome)
		t.Row("JDK", "", rep.Java.Label())
	} else {
		t.Row("native-image", ErrorStyle.Render("missing"), rep.NativeImageErr.Error())
	}
	if rep.GOOS == platform.Windows {
		if rep.ISCCFound {
			t.Row("Inno Setup", SuccessStyle.Render("found"), rep.ISCC)
		} else {
			t.Row("Inno Setup", WarningStyle.Render("missing"), rep.ISCC)
		}
	}
	fmt.Fprintln(w, t.Render())

	if rep.GOOS == platform.Windows && !rep.ISCCFound {
		_ = app.renderIssue(w, s, issue.InnoSetupNotFoundId, map[string]string{"Path": rep.ISCC})
	}
	if !ok {
		_ = app.renderIssue(w, s, issue.NativeImageNotFoundId, nil)
		return silentExit()
	}
	return nil
}

func runReflectConfig(app *App, classes []string, out string) error {
	if out == "" {
		out = "reflect-config.json"
		if p, err := nativebuild.LoadProject(nativebuild.ProjectFileName); err == nil && p.ReflectionConfig != "" {
			out = p.Path(p.ReflectionConfig)
		}
	}

	n, err := nativebuild.WriteReflectConfig(out, classes)
	if err != nil {
		var invalid *nativebuild.InvalidClassNameError
		if errors.As(err, &invalid) {
			return issue.NewErrorContext().
				WithOperation("update reflection config").
				WithResource(out).
				WithSuggestion("Use fully qualified names such as com.example.Model").
				Wrap(err).
				BuildError()
		}
		return issue.WrapWithContext(err, "update reflection config", out)
	}
	fmt.Fprintf(app.stdout, "%s Wrote %d entr%s to %s\n", SuccessStyle.Render("✓"), n, plural(n, "y", "ies"), out)
	return nil
}

func runNativeInit(app *App, dir, name string) error {
	path, err := nativebuild.Init(dir, name)
	if err != nil {
		if errors.Is(err, nativebuild.ErrProjectExists) {
			fmt.Fprintf(app.stderr, "Project file already exists: %s\n", path)
			return silentExit()
		}
		return issue.WrapWithContext(err, "create project file", dir)
	}
	fmt.Fprintf(app.stdout, "%s Created %s\n", SuccessStyle.Render("✓"), path)
	fmt.Fprintf(app.stdout, "Edit it, then run: %s\n", CmdStyle.Render("javawizard native build"))
	return nil
}
