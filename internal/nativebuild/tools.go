// SPDX-License-Identifier: MPL-2.0

package nativebuild

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/amankrmj/javawizard/internal/jdk"
	"github.com/amankrmj/javawizard/internal/runner"
	"github.com/amankrmj/javawizard/pkg/platform"
)

// ErrNativeImageNotFound is returned when no native-image launcher is found.
var ErrNativeImageNotFound = errors.New("native-image not found")

type (
	// Toolchain locates the external build tools.
	Toolchain struct {
		Runner runner.Runner
		GOOS   string
		// NativeImage is an explicit native-image path; it wins when set.
		NativeImage string
		// ISCC is the Inno Setup compiler.
		ISCC string
		// Getenv defaults to os.Getenv.
		Getenv func(string) string
	}

	// CheckReport summarizes the toolchain for `native check`.
	CheckReport struct {
		NativeImage        string
		NativeImageVersion string
		NativeImageErr     error
		// GraalHome is the JDK that ships the native-image launcher.
		GraalHome string
		Java      jdk.Detection
		// ISCC is only probed on Windows.
		ISCC      string
		ISCCFound bool
		GOOS      string
	}
)

func (t *Toolchain) getenv(key string) string {
	if t.Getenv != nil {
		return t.Getenv(key)
	}
	return os.Getenv(key)
}

// nativeImageNames lists launcher names in lookup order for goos.
func nativeImageNames(goos string) []string {
	if goos == platform.Windows {
		return []string{"native-image.cmd", "native-image.exe"}
	}
	return []string{"native-image"}
}

// FindNativeImage resolves native-image from the explicit path, then
// $GRAALVM_HOME/bin, $JAVA_HOME/bin and finally PATH.
func (t *Toolchain) FindNativeImage() (string, error) {
	if t.NativeImage != "" {
		if isFile(t.NativeImage) {
			return t.NativeImage, nil
		}
		return "", fmt.Errorf("%s: %w", t.NativeImage, ErrNativeImageNotFound)
	}
	for _, env := range []string{"GRAALVM_HOME", "JAVA_HOME"} {
		home := t.getenv(env)
		if home == "" {
			continue
		}
		for _, name := range nativeImageNames(t.GOOS) {
			if p := filepath.Join(home, "bin", name); isFile(p) {
				return p, nil
			}
		}
	}
	for _, name := range nativeImageNames(t.GOOS) {
		if p, err := t.Runner.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", ErrNativeImageNotFound
}

// ISCCPath returns the configured Inno Setup compiler and whether it exists.
func (t *Toolchain) ISCCPath() (string, bool) {
	if t.ISCC == "" {
		return "", false
	}
	return t.ISCC, isFile(t.ISCC)
}

// Check probes native-image, its JDK and Inno Setup.
func (t *Toolchain) Check(ctx context.Context) *CheckReport {
	rep := &CheckReport{GOOS: t.GOOS}

	rep.NativeImage, rep.NativeImageErr = t.FindNativeImage()
	if rep.NativeImageErr == nil {
		res, err := t.Runner.Run(ctx, runner.Command{Name: rep.NativeImage, Args: []string{"--version"}})
		switch {
		case err != nil:
			rep.NativeImageErr = err
		case !res.Success():
			rep.NativeImageErr = fmt.Errorf("native-image --version exited with code %d", res.ExitCode)
		default:
			first, _, _ := strings.Cut(strings.TrimSpace(res.Stdout), "\n")
			rep.NativeImageVersion = strings.TrimSpace(first)
		}
		rep.GraalHome = filepath.Dir(filepath.Dir(rep.NativeImage))
		rep.Java = jdk.Detect(ctx, t.Runner, rep.GraalHome)
	}

	if t.GOOS == platform.Windows {
		rep.ISCC, rep.ISCCFound = t.ISCCPath()
	}
	return rep
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
