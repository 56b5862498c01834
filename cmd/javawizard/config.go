// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amankrmj/javawizard/internal/config"
	"github.com/amankrmj/javawizard/internal/issue"
)

var configKeys = []string{
	"home_dir", "java.versions_dir", "java.distribution", "native.native_image", "native.iscc",
	"download.retries", "download.timeout", "ui.verbose", "ui.color_scheme",
}

// newConfigCommand creates the `javawizard config` command tree.
// Subcommands that read configuration use the session loaded by the root.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage javawizard configuration",
		Long: `Manage javawizard configuration.

Configuration is stored in:
  - Linux: ~/.config/javawizard/config.cue
  - macOS: ~/Library/Application Support/javawizard/config.cue
  - Windows: %APPDATA%\javawizard\config.cue

JAVAWIZARD_<KEY> environment variables override file values, e.g.
JAVAWIZARD_JAVA_DISTRIBUTION=graalvm.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set a configuration value",
		Args:      cobra.ExactArgs(2),
		ValidArgs: configKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), app, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.session(cmd.Context())
			fmt.Fprint(app.stdout, config.GenerateCUE(s.cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	s := app.session(ctx)
	if s.loadErr != nil {
		_ = app.renderIssue(app.stderr, s, issue.ConfigLoadFailedId, nil)
		return silentExit()
	}
	cfg := s.cfg
	w := app.stdout

	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if cfg.Source != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), cfg.Source)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("home_dir"), valueStyle.Render(cfg.HomeDir))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("java"))
	fmt.Fprintf(w, "  versions_dir: %s\n", valueStyle.Render(cfg.Java.VersionsDir))
	fmt.Fprintf(w, "  distribution: %s\n", valueStyle.Render(cfg.Java.Distribution.String()))
	if len(cfg.Java.ScanPaths) == 0 {
		fmt.Fprintf(w, "  scan_paths: %s\n", SubtitleStyle.Render("(none configured)"))
	} else {
		fmt.Fprintln(w, "  scan_paths:")
		for _, p := range cfg.Java.ScanPaths {
			fmt.Fprintf(w, "    - %s\n", valueStyle.Render(p))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("native"))
	nativeImage := cfg.Native.NativeImage
	if nativeImage == "" {
		nativeImage = SubtitleStyle.Render("(search GRAALVM_HOME, JAVA_HOME, PATH)")
	} else {
		nativeImage = valueStyle.Render(nativeImage)
	}
	fmt.Fprintf(w, "  native_image: %s\n", nativeImage)
	fmt.Fprintf(w, "  iscc: %s\n", valueStyle.Render(cfg.Native.ISCC))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("download"))
	fmt.Fprintf(w, "  retries: %s\n", valueStyle.Render(strconv.Itoa(cfg.Download.Retries)))
	fmt.Fprintf(w, "  timeout: %s\n", valueStyle.Render(cfg.Download.Timeout))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(strconv.FormatBool(cfg.UI.Verbose)))

	return nil
}

func initConfig(app *App) error {
	path, created, err := config.CreateDefaultConfig(app.loadOpts.ConfigDirPath)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(app.stdout, "Configuration already exists at %s\n", path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath(ctx context.Context, app *App) error {
	s := app.session(ctx)
	path, err := config.FilePath(app.configLoadOptions(s))
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "Config file: %s\n", path)
	fmt.Fprintf(app.stdout, "Home directory: %s\n", s.cfg.HomeDir)
	fmt.Fprintf(app.stdout, "Java versions: %s\n", s.cfg.Java.VersionsDir)
	return nil
}

func setConfigValue(ctx context.Context, app *App, key, value string) error {
	s := app.session(ctx)
	if s.loadErr != nil {
		_ = app.renderIssue(app.stderr, s, issue.ConfigLoadFailedId, nil)
		return silentExit()
	}
	cfg := *s.cfg

	switch key {
	case "home_dir":
		cfg.HomeDir = value
	case "java.versions_dir":
		cfg.Java.VersionsDir = value
	case "java.distribution":
		cfg.Java.Distribution = config.Distribution(value)
	case "native.native_image":
		cfg.Native.NativeImage = value
	case "native.iscc":
		cfg.Native.ISCC = value
	case "download.retries":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 10 {
			return fmt.Errorf("invalid download.retries: must be an integer from 1 to 10")
		}
		cfg.Download.Retries = n
	case "download.timeout":
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			return fmt.Errorf("invalid download.timeout: must be a positive duration such as 10m")
		}
		cfg.Download.Timeout = value
	case "ui.verbose":
		cfg.UI.Verbose = value == "true" || value == "1"
	case "ui.color_scheme":
		cfg.UI.ColorScheme = config.ColorScheme(value)
	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: %s", key, strings.Join(configKeys, ", "))
	}

	if valid, errs := cfg.IsValid(); !valid {
		return &config.InvalidConfigError{FieldErrors: errs}
	}

	path, err := config.FilePath(app.configLoadOptions(s))
	if err != nil {
		return err
	}
	if err := config.Save(path, &cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}
