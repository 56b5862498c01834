// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/amankrmj/javawizard/internal/issue"
	"github.com/amankrmj/javawizard/pkg/cueutil"
	"github.com/amankrmj/javawizard/pkg/platform"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "javawizard"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides (JAVAWIZARD_UI_VERBOSE=true).
	EnvPrefix = "JAVAWIZARD"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the javawizard configuration directory using platform
// conventions: %APPDATA% on Windows, ~/Library/Application Support on macOS
// and $XDG_CONFIG_HOME (default ~/.config) elsewhere.
//
//nolint:revive // ConfigDir reads better than Dir at call sites
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// FilePath returns the config file path that Load would read for opts.
func FilePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, nil
	}
	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := FilePath(opts)
	if err != nil {
		return nil, err
	}

	source := ""
	switch {
	case fileExists(path):
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Compare it with the output of 'javawizard config dump'").
				Wrap(err).
				BuildError()
		}
		source = path
	case opts.ConfigFilePath != "":
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Verify the --config path is correct").
			WithSuggestion("Run 'javawizard config init' to create a default file").
			Wrap(fmt.Errorf("config file not found: %s", path)).
			BuildError()
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Source = source

	home := opts.HomeDir
	if home == "" {
		if home, err = os.UserHomeDir(); err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
	}
	cfg.Resolve(home)

	if valid, errs := cfg.IsValid(); !valid {
		return nil, errs[0]
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("home_dir", d.HomeDir)
	v.SetDefault("java.versions_dir", d.Java.VersionsDir)
	v.SetDefault("java.scan_paths", d.Java.ScanPaths)
	v.SetDefault("java.distribution", string(d.Java.Distribution))
	v.SetDefault("native.native_image", d.Native.NativeImage)
	v.SetDefault("native.iscc", d.Native.ISCC)
	v.SetDefault("download.retries", d.Download.Retries)
	v.SetDefault("download.timeout", d.Download.Timeout)
	v.SetDefault("ui.verbose", d.UI.Verbose)
	v.SetDefault("ui.color_scheme", string(d.UI.ColorScheme))
}

// loadCUEIntoViper validates path against #Config and merges the decoded
// values over the viper defaults.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	result, err := cueutil.ParseAndDecode[map[string]any](configSchema, data, "#Config",
		cueutil.WithFilename(path))
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*result.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config into dir (ConfigDir when
// empty) unless a file already exists. It returns the file path and
// whether it was created.
func CreateDefaultConfig(dir string) (string, bool, error) {
	path, err := FilePath(LoadOptions{ConfigDirPath: dir})
	if err != nil {
		return "", false, err
	}
	if fileExists(path) {
		return path, false, nil
	}
	if err := Save(path, DefaultConfig()); err != nil {
		return "", false, err
	}
	return path, true, nil
}

// Save writes cfg as CUE to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE renders cfg in the config file format. Empty optional values
// are omitted so the file keeps deferring to the built-in defaults.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// javawizard configuration\n")
	sb.WriteString("// Every key is optional; JAVAWIZARD_<KEY> environment variables override it.\n\n")

	if cfg.HomeDir != "" {
		fmt.Fprintf(&sb, "home_dir: %q\n\n", cfg.HomeDir)
	}

	sb.WriteString("java: {\n")
	if cfg.Java.VersionsDir != "" {
		fmt.Fprintf(&sb, "\tversions_dir: %q\n", cfg.Java.VersionsDir)
	}
	if len(cfg.Java.ScanPaths) > 0 {
		sb.WriteString("\tscan_paths: [\n")
		for _, p := range cfg.Java.ScanPaths {
			fmt.Fprintf(&sb, "\t\t%q,\n", p)
		}
		sb.WriteString("\t]\n")
	}
	fmt.Fprintf(&sb, "\tdistribution: %q\n", cfg.Java.Distribution)
	sb.WriteString("}\n")

	sb.WriteString("\nnative: {\n")
	if cfg.Native.NativeImage != "" {
		fmt.Fprintf(&sb, "\tnative_image: %q\n", cfg.Native.NativeImage)
	}
	fmt.Fprintf(&sb, "\tiscc: %q\n", cfg.Native.ISCC)
	sb.WriteString("}\n")

	sb.WriteString("\ndownload: {\n")
	fmt.Fprintf(&sb, "\tretries: %d\n", cfg.Download.Retries)
	fmt.Fprintf(&sb, "\ttimeout: %q\n", cfg.Download.Timeout)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	sb.WriteString("}\n")

	return sb.String()
}
