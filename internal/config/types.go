// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DistributionTemurin installs Eclipse Temurin builds from the Adoptium API.
	DistributionTemurin Distribution = "temurin"
	// DistributionGraalVM installs GraalVM Community builds from GitHub releases.
	DistributionGraalVM Distribution = "graalvm"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces the dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces the light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultISCCPath is where the Inno Setup 6 installer puts its compiler.
	DefaultISCCPath = `C:\Program Files (x86)\Inno Setup 6\ISCC.exe`

	defaultRetries  = 3
	defaultTimeout  = "10m"
	versionsDirName = "java-versions"
)

var (
	// ErrInvalidDistribution is returned when a Distribution value is not recognized.
	ErrInvalidDistribution = errors.New("invalid distribution")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// Distribution names a JDK vendor build that `java install` can fetch.
	Distribution string

	// InvalidDistributionError is returned when a Distribution value is not recognized.
	InvalidDistributionError struct {
		Value Distribution
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError collects field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// HomeDir is the root for javawizard state.
		HomeDir string `json:"home_dir" mapstructure:"home_dir"`
		// Java configures the version manager.
		Java JavaConfig `json:"java" mapstructure:"java"`
		// Native configures native image builds.
		Native NativeConfig `json:"native" mapstructure:"native"`
		// Download configures JDK downloads.
		Download DownloadConfig `json:"download" mapstructure:"download"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`

		// Source is the config file the values were read from; empty when
		// only defaults and environment overrides apply.
		Source string `json:"-" mapstructure:"-"`
	}

	// JavaConfig configures JDK management.
	JavaConfig struct {
		VersionsDir  string       `json:"versions_dir" mapstructure:"versions_dir"`
		ScanPaths    []string     `json:"scan_paths" mapstructure:"scan_paths"`
		Distribution Distribution `json:"distribution" mapstructure:"distribution"`
	}

	// NativeConfig locates the native build tools.
	NativeConfig struct {
		NativeImage string `json:"native_image" mapstructure:"native_image"`
		ISCC        string `json:"iscc" mapstructure:"iscc"`
	}

	// DownloadConfig bounds JDK archive downloads.
	DownloadConfig struct {
		Retries int    `json:"retries" mapstructure:"retries"`
		Timeout string `json:"timeout" mapstructure:"timeout"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}
)

// DefaultConfig returns the built-in configuration. Paths derived from the
// home directory are left empty and filled in by Resolve.
func DefaultConfig() *Config {
	return &Config{
		Java: JavaConfig{
			ScanPaths:    []string{},
			Distribution: DistributionTemurin,
		},
		Native: NativeConfig{
			ISCC: DefaultISCCPath,
		},
		Download: DownloadConfig{
			Retries: defaultRetries,
			Timeout: defaultTimeout,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// Resolve fills in the home-relative defaults and expands a leading "~".
func (c *Config) Resolve(home string) {
	if c.HomeDir == "" {
		c.HomeDir = filepath.Join(home, ".javawizard")
	}
	c.HomeDir = expandHome(c.HomeDir, home)
	if c.Java.VersionsDir == "" {
		c.Java.VersionsDir = filepath.Join(c.HomeDir, versionsDirName)
	}
	c.Java.VersionsDir = expandHome(c.Java.VersionsDir, home)
	for i, p := range c.Java.ScanPaths {
		c.Java.ScanPaths[i] = expandHome(p, home)
	}
}

// DownloadTimeout parses Download.Timeout, falling back to the default.
func (c *Config) DownloadTimeout() time.Duration {
	d, err := time.ParseDuration(c.Download.Timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(defaultTimeout)
	}
	return d
}

// IsValid reports whether the enum-typed fields hold known values.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Java.Distribution.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Download.Retries < 1 {
		errs = append(errs, fmt.Errorf("download.retries must be at least 1, got %d", c.Download.Retries))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// String returns the string representation of the Distribution.
func (d Distribution) String() string { return string(d) }

// IsValid returns whether the Distribution is one of the defined values.
func (d Distribution) IsValid() (bool, []error) {
	switch d {
	case DistributionTemurin, DistributionGraalVM:
		return true, nil
	default:
		return false, []error{&InvalidDistributionError{Value: d}}
	}
}

// Error implements the error interface for InvalidDistributionError.
func (e *InvalidDistributionError) Error() string {
	return fmt.Sprintf("invalid distribution %q (valid: temurin, graalvm)", e.Value)
}

// Unwrap returns ErrInvalidDistribution for errors.Is() compatibility.
func (e *InvalidDistributionError) Unwrap() error { return ErrInvalidDistribution }

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// IsValid returns whether the ColorScheme is one of the defined values.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

func expandHome(p, home string) string {
	switch {
	case p == "~":
		return home
	case strings.HasPrefix(p, "~/"), strings.HasPrefix(p, `~\`):
		return filepath.Join(home, p[2:])
	default:
		return p
	}
}
