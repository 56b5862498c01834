// SPDX-License-Identifier: MPL-2.0

package nativebuild

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/amankrmj/javawizard/internal/dag"
	"github.com/amankrmj/javawizard/internal/issue"
	"github.com/amankrmj/javawizard/internal/jdk"
	"github.com/amankrmj/javawizard/internal/runner"
	"github.com/amankrmj/javawizard/pkg/platform"
)

// Task names.
const (
	TaskCompile   = "compile"
	TaskDist      = "dist"
	TaskInstaller = "installer"
	TaskSources   = "sources"
)

// DefaultTasks run when `native build` is given no task names.
var DefaultTasks = []string{TaskCompile, TaskDist}

// defaultBuildArgs precede the project's build_args.
var defaultBuildArgs = []string{
	"--no-fallback",
	"--report-unsupported-elements-at-runtime",
	"-H:+ReportExceptionStackTraces",
}

var (
	// ErrNoInstallerScript is returned by the installer task without installer.script.
	ErrNoInstallerScript = errors.New("installer.script is not set")
	// ErrJavaTooOld is wrapped when the toolchain JDK is older than java_version.
	ErrJavaTooOld = errors.New("native-image JDK is older than java_version")
)

type (
	// TaskError reports the task that failed.
	TaskError struct {
		Task string
		Err  error
	}

	// Builder runs the tasks of one project.
	Builder struct {
		Project   *Project
		Toolchain *Toolchain
		Logger    *log.Logger
		Stdout    io.Writer
		Stderr    io.Writer
		// SkipInstaller drops the installer finalizer of compile.
		SkipInstaller bool
		// WatchDebounce overrides the watcher's debounce window.
		WatchDebounce time.Duration
	}
)

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s failed: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// Graph wires the build tasks: dist and installer depend on compile, and
// installer finalizes compile on Windows when installer.auto is set.
func (b *Builder) Graph() *dag.Graph {
	g := dag.New()
	g.AddNode(TaskCompile)
	g.AddNode(TaskDist)
	g.AddNode(TaskInstaller)
	g.AddNode(TaskSources)
	g.AddEdge(TaskCompile, TaskDist)
	g.AddEdge(TaskCompile, TaskInstaller)
	if b.Project.AutoInstaller() && b.Toolchain.GOOS == platform.Windows {
		g.AddFinalizer(TaskCompile, TaskInstaller)
	}
	if b.SkipInstaller {
		g.RemoveFinalizers(TaskCompile)
	}
	return g
}

// Plan returns the task order for the requested tasks.
func (b *Builder) Plan(tasks ...string) ([]string, error) {
	if len(tasks) == 0 {
		tasks = DefaultTasks
	}
	return b.Graph().Plan(tasks...)
}

// Run executes the requested tasks, their dependencies and finalizers.
func (b *Builder) Run(ctx context.Context, tasks ...string) error {
	order, err := b.Plan(tasks...)
	if err != nil {
		return err
	}
	for _, task := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.logger().Info("running task", "task", task)
		if err := b.runTask(ctx, task); err != nil {
			return &TaskError{Task: task, Err: err}
		}
	}
	return nil
}

func (b *Builder) runTask(ctx context.Context, task string) error {
	switch task {
	case TaskCompile:
		return b.compile(ctx)
	case TaskDist:
		return b.dist()
	case TaskInstaller:
		return b.installer(ctx)
	case TaskSources:
		return b.sources()
	default:
		return &dag.UnknownNodeError{Node: task}
	}
}

func (b *Builder) logger() *log.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return log.Default()
}

func (b *Builder) stdout() io.Writer {
	if b.Stdout != nil {
		return b.Stdout
	}
	return io.Discard
}

// BuildArgs returns the native-image arguments after the defaults.
func (b *Builder) BuildArgs() []string {
	args := append([]string(nil), defaultBuildArgs...)
	if rc := b.Project.Path(b.Project.ReflectionConfig); rc != "" && isFile(rc) {
		args = append(args, "-H:ReflectionConfigurationFiles="+rc)
	}
	return append(args, b.Project.BuildArgs...)
}

// CompileCommand renders the native-image invocation for bin.
func (b *Builder) CompileCommand(bin string) runner.Command {
	p := b.Project
	out := filepath.Join(p.Path(p.OutputDir), p.Name)

	var args []string
	if len(p.Classpath) == 0 && p.MainClass == "" {
		args = append(args, "-jar", p.Path(p.Jar))
	} else {
		cp := make([]string, 0, len(p.Classpath)+1)
		if p.Jar != "" {
			cp = append(cp, p.Path(p.Jar))
		}
		for _, e := range p.Classpath {
			cp = append(cp, p.Path(e))
		}
		args = append(args, "-cp", strings.Join(cp, classpathSeparator(b.Toolchain.GOOS)))
	}
	args = append(args, "-o", out)
	args = append(args, b.BuildArgs()...)
	if p.MainClass != "" {
		args = append(args, p.MainClass)
	}
	return runner.Command{Name: bin, Args: args, Dir: p.Dir, Stdout: b.Stdout, Stderr: b.Stderr}
}

func classpathSeparator(goos string) string {
	if goos == platform.Windows {
		return ";"
	}
	return ":"
}

func (b *Builder) compile(ctx context.Context) error {
	bin, err := b.Toolchain.FindNativeImage()
	if err != nil {
		return nativeImageMissing(err)
	}
	if err := b.checkJavaVersion(ctx, bin); err != nil {
		return err
	}
	if err := os.MkdirAll(b.Project.Path(b.Project.OutputDir), 0o755); err != nil {
		return err
	}

	cmd := b.CompileCommand(bin)
	b.logger().Debug("native-image", "cmd", cmd.String())
	res, err := b.Toolchain.Runner.Run(ctx, cmd)
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("native-image exited with code %d", res.ExitCode)
	}
	return nil
}

// checkJavaVersion enforces java_version against the JDK hosting bin. An
// undetectable version is only logged.
func (b *Builder) checkJavaVersion(ctx context.Context, bin string) error {
	if b.Project.JavaVersion == 0 {
		return nil
	}
	home := filepath.Dir(filepath.Dir(bin))
	det := jdk.Detect(ctx, b.Toolchain.Runner, home)
	if det.Err != nil || det.Version == "" {
		b.logger().Warn("cannot determine the native-image JDK version", "home", home, "detected", det.Label())
		return nil
	}
	v, err := jdk.ParseVersion(det.Version)
	if err != nil {
		b.logger().Warn("cannot parse the native-image JDK version", "version", det.Version)
		return nil
	}
	if v.Feature < b.Project.JavaVersion {
		return fmt.Errorf("%w: found %s, need %d", ErrJavaTooOld, det.Version, b.Project.JavaVersion)
	}
	return nil
}

func nativeImageMissing(err error) error {
	return issue.NewErrorContext().
		WithOperation("locate native-image").
		WithSuggestion("Install GraalVM with 'javawizard java install graalvm-21' and select it with 'javawizard java use'").
		WithSuggestion("Or set native.native_image in the config file").
		Wrap(err).
		BuildError()
}

// dist copies the compiled image into <dist.dir>/bin.
func (b *Builder) dist() error {
	p := b.Project
	name := p.ExecutableName(b.Toolchain.GOOS)
	src := filepath.Join(p.Path(p.OutputDir), name)
	binDir := filepath.Join(p.Path(p.Dist.Dir), "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(binDir, name)
	if err := copyFile(src, dst, 0o755); err != nil {
		return fmt.Errorf("copy %s: %w", name, err)
	}
	b.logger().Info("installed distribution", "path", dst)
	return nil
}

func (b *Builder) installer(ctx context.Context) error {
	if b.Toolchain.GOOS != platform.Windows {
		b.logger().Warn("skipping installer: Inno Setup is only available on Windows")
		return nil
	}
	p := b.Project
	if p.Installer.Script == "" {
		return ErrNoInstallerScript
	}
	iscc, ok := b.Toolchain.ISCCPath()
	if !ok {
		return issue.NewErrorContext().
			WithOperation("create installer").
			WithResource(iscc).
			WithSuggestion("Install Inno Setup 6 from https://jrsoftware.org/isdl.php").
			WithSuggestion("Or set native.iscc in the config file, or build with --skip-installer").
			Wrap(errors.New("inno setup compiler not found")).
			BuildError()
	}

	out := b.stdout()
	fmt.Fprintln(out, "Creating installer with Inno Setup...")
	res, err := b.Toolchain.Runner.Run(ctx, runner.Command{
		Name:   iscc,
		Args:   []string{p.Installer.Script},
		Dir:    p.Dir,
		Stdout: b.Stdout,
		Stderr: b.Stderr,
	})
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("ISCC exited with code %d", res.ExitCode)
	}
	fmt.Fprintln(out, "Installer created successfully!")
	return nil
}

// sources zips the contents of every sources dir into sources.archive.
func (b *Builder) sources() (err error) {
	p := b.Project
	archive := p.Path(p.Sources.Archive)
	if err := os.MkdirAll(filepath.Dir(archive), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(archive), ".sources-*.zip")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	seen := make(map[string]bool)
	count := 0
	for _, dir := range p.Sources.Dirs {
		root := p.Path(dir)
		if _, statErr := os.Stat(root); errors.Is(statErr, fs.ErrNotExist) {
			b.logger().Warn("sources directory does not exist", "dir", dir)
			continue
		}
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return nil
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}
			name := filepath.ToSlash(rel)
			if seen[name] {
				b.logger().Warn("duplicate source entry skipped", "entry", name, "dir", dir)
				return nil
			}
			seen[name] = true
			count++
			return addZipFile(zw, path, name, d)
		})
		if walkErr != nil {
			return fmt.Errorf("archive %s: %w", dir, walkErr)
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), archive); err != nil {
		return err
	}
	b.logger().Info("wrote sources archive", "path", archive, "files", count)
	return nil
}

func addZipFile(zw *zip.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate
	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

func copyFile(src, dst string, perm fs.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	_, err = io.Copy(out, in)
	return err
}
