// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amankrmj/javawizard/internal/issue"
	"github.com/amankrmj/javawizard/internal/testutil"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Java.Distribution != DistributionTemurin {
		t.Errorf("expected default distribution temurin, got %s", cfg.Java.Distribution)
	}
	if cfg.Native.ISCC != DefaultISCCPath {
		t.Errorf("expected default ISCC path, got %q", cfg.Native.ISCC)
	}
	if cfg.Download.Retries != 3 {
		t.Errorf("expected 3 retries, got %d", cfg.Download.Retries)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("expected auto color scheme, got %s", cfg.UI.ColorScheme)
	}
	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("default config should be valid: %v", errs)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	home := filepath.Join("/", "home", "duke")

	cfg := DefaultConfig()
	cfg.Java.ScanPaths = []string{"~/jdks", "/opt/jdk"}
	cfg.Resolve(home)

	want := JavaConfig{
		VersionsDir:  filepath.Join(home, ".javawizard", "java-versions"),
		ScanPaths:    []string{filepath.Join(home, "jdks"), "/opt/jdk"},
		Distribution: DistributionTemurin,
	}
	if diff := cmp.Diff(want, cfg.Java); diff != "" {
		t.Errorf("Resolve() java mismatch (-want +got):\n%s", diff)
	}
	if cfg.HomeDir != filepath.Join(home, ".javawizard") {
		t.Errorf("HomeDir = %q", cfg.HomeDir)
	}
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	home := t.TempDir()

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir, HomeDir: home})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Source != "" {
		t.Errorf("expected empty source, got %q", cfg.Source)
	}
	if cfg.Java.VersionsDir != filepath.Join(home, ".javawizard", "java-versions") {
		t.Errorf("VersionsDir = %q", cfg.Java.VersionsDir)
	}
}

func TestLoad_FromCUEFile(t *testing.T) {
	dir := t.TempDir()
	home := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "config.cue"), `
java: {
	distribution: "graalvm"
	scan_paths: ["/srv/jdks"]
}
download: retries: 5
ui: verbose: true
`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir, HomeDir: home})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Java.Distribution != DistributionGraalVM {
		t.Errorf("distribution = %s", cfg.Java.Distribution)
	}
	if diff := cmp.Diff([]string{"/srv/jdks"}, cfg.Java.ScanPaths); diff != "" {
		t.Errorf("scan paths mismatch (-want +got):\n%s", diff)
	}
	if cfg.Download.Retries != 5 || !cfg.UI.Verbose {
		t.Errorf("unexpected values: %+v", cfg)
	}
	if cfg.Native.ISCC != DefaultISCCPath {
		t.Errorf("unset keys should keep defaults, got iscc %q", cfg.Native.ISCC)
	}
	if cfg.Source != filepath.Join(dir, "config.cue") {
		t.Errorf("Source = %q", cfg.Source)
	}
}

func TestLoad_SchemaViolation(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "config.cue"), `java: distribution: "zulu"`)

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir, HomeDir: t.TempDir()})
	if err == nil {
		t.Fatal("expected schema error")
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ActionableError, got %T", err)
	}
	if !strings.Contains(err.Error(), "java.distribution") {
		t.Errorf("error should name the field, got %v", err)
	}
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "config.cue"), `container_engine: "podman"`)

	if _, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir, HomeDir: t.TempDir()}); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.cue")

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: missing, HomeDir: t.TempDir()})
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Cleanup(testutil.MustSetenv(t, "JAVAWIZARD_JAVA_DISTRIBUTION", "graalvm"))
	t.Cleanup(testutil.MustSetenv(t, "JAVAWIZARD_UI_VERBOSE", "true"))

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir(), HomeDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Java.Distribution != DistributionGraalVM || !cfg.UI.Verbose {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateCUE_RoundTripsThroughLoad(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Java.ScanPaths = []string{"/a", "/b"}
	cfg.Native.NativeImage = "/opt/graalvm/bin/native-image"

	if err := Save(filepath.Join(dir, "config.cue"), cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	home := t.TempDir()
	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir, HomeDir: home})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(cfg.Java.ScanPaths, loaded.Java.ScanPaths); diff != "" {
		t.Errorf("scan paths mismatch (-want +got):\n%s", diff)
	}
	if loaded.Native.NativeImage != cfg.Native.NativeImage {
		t.Errorf("native image = %q", loaded.Native.NativeImage)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, created, err := CreateDefaultConfig(dir)
	if err != nil || !created {
		t.Fatalf("first call: created=%v err=%v", created, err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("path = %q", path)
	}

	_, created, err = CreateDefaultConfig(dir)
	if err != nil || created {
		t.Fatalf("second call should be a no-op: created=%v err=%v", created, err)
	}
}

func TestDownloadTimeout(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.DownloadTimeout().Minutes() != 10 {
		t.Errorf("default timeout = %v", cfg.DownloadTimeout())
	}
	cfg.Download.Timeout = "garbage"
	if cfg.DownloadTimeout().Minutes() != 10 {
		t.Errorf("invalid timeout should fall back, got %v", cfg.DownloadTimeout())
	}
}

func TestDistributionIsValid(t *testing.T) {
	t.Parallel()

	valid, errs := Distribution("zulu").IsValid()
	if valid {
		t.Fatal("zulu should be invalid")
	}
	if !errors.Is(errs[0], ErrInvalidDistribution) {
		t.Errorf("expected ErrInvalidDistribution, got %v", errs[0])
	}
}
