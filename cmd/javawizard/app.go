// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/amankrmj/javawizard/internal/config"
	"github.com/amankrmj/javawizard/internal/envstore"
	"github.com/amankrmj/javawizard/internal/issue"
	"github.com/amankrmj/javawizard/internal/jdk"
	"github.com/amankrmj/javawizard/internal/jdkdist"
	"github.com/amankrmj/javawizard/internal/nativebuild"
	"github.com/amankrmj/javawizard/internal/runner"
)

type (
	sessionContextKey struct{}

	// EnvStoreFactory opens the persisted user environment for a platform
	// and javawizard home directory.
	EnvStoreFactory func(goos string, r runner.Runner, homeDir string) envstore.Store

	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every command constructor receives the App and
	// reaches configuration, child processes and the persisted environment
	// through it.
	App struct {
		Config config.Provider
		Runner runner.Runner
		Logger *log.Logger
		// GOOS selects platform behavior (env persistence, executable names).
		GOOS     string
		Getenv   func(string) string
		EnvStore EnvStoreFactory
		// AdoptiumURL and GitHubURL override the distribution endpoints.
		AdoptiumURL string
		GitHubURL   string
		// HTTPClient replaces the download client built from the config.
		HTTPClient *http.Client

		loadOpts config.LoadOptions
		stdout   io.Writer
		stderr   io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      config.Provider
		Runner      runner.Runner
		Logger      *log.Logger
		GOOS        string
		Getenv      func(string) string
		EnvStore    EnvStoreFactory
		AdoptiumURL string
		GitHubURL   string
		HTTPClient  *http.Client
		// ConfigDir and HomeDir override the platform lookups.
		ConfigDir string
		HomeDir   string
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// session is the per-invocation state resolved before a command runs.
	session struct {
		cfg        *config.Config
		verbose    bool
		configPath string
		// loadErr is set when the config file could not be used and cfg
		// holds the defaults instead.
		loadErr error
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Runner == nil {
		deps.Runner = runner.New()
	}
	if deps.Logger == nil {
		deps.Logger = newLogger(deps.Stderr)
	}
	if deps.GOOS == "" {
		deps.GOOS = runtime.GOOS
	}
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}
	if deps.EnvStore == nil {
		deps.EnvStore = envstore.New
	}

	return &App{
		Config:      deps.Config,
		Runner:      deps.Runner,
		Logger:      deps.Logger,
		GOOS:        deps.GOOS,
		Getenv:      deps.Getenv,
		EnvStore:    deps.EnvStore,
		AdoptiumURL: deps.AdoptiumURL,
		GitHubURL:   deps.GitHubURL,
		HTTPClient:  deps.HTTPClient,
		loadOpts:    config.LoadOptions{ConfigDirPath: deps.ConfigDir, HomeDir: deps.HomeDir},
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}, nil
}

// newLogger returns the logger all packages share. It writes to w, which
// is stderr in production, so logs never mix with command output.
func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{Prefix: config.AppName})
}

// loadSession loads the configuration for one invocation. A config that
// cannot be loaded is reported and replaced by the defaults so that
// commands which do not depend on it keep working.
func (a *App) loadSession(ctx context.Context, flags *rootFlagValues) *session {
	s := &session{verbose: flags.verbose, configPath: flags.configPath}
	opts := a.configLoadOptions(s)
	cfg, err := a.Config.Load(ctx, opts)
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, flags.verbose))
		s.loadErr = err
		cfg = config.DefaultConfig()
		cfg.Resolve(a.userHome())
	}
	s.cfg = cfg
	if cfg.UI.Verbose {
		s.verbose = true
	}
	if s.verbose {
		a.Logger.SetLevel(log.DebugLevel)
	}
	return s
}

// configLoadOptions returns the options the session's config was loaded with.
func (a *App) configLoadOptions(s *session) config.LoadOptions {
	opts := a.loadOpts
	opts.ConfigFilePath = s.configPath
	return opts
}

// userHome is the user's home directory, or the injected one.
func (a *App) userHome() string {
	if a.loadOpts.HomeDir != "" {
		return a.loadOpts.HomeDir
	}
	home, _ := os.UserHomeDir()
	return home
}

func contextWithSession(ctx context.Context, s *session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// session returns the state loaded by the root command, loading the
// defaults when a command runs without it (direct calls in tests).
func (a *App) session(ctx context.Context) *session {
	if ctx != nil {
		if s, ok := ctx.Value(sessionContextKey{}).(*session); ok {
			return s
		}
	}
	return a.loadSession(context.Background(), &rootFlagValues{})
}

func (a *App) manager(s *session) *jdk.Manager {
	m := jdk.NewManager(s.cfg.Java.VersionsDir, a.Runner, a.Logger)
	m.Getenv = a.Getenv
	return m
}

func (a *App) environment(s *session) *envstore.Environment {
	return envstore.NewEnvironment(a.EnvStore(a.GOOS, a.Runner, s.cfg.HomeDir), a.GOOS)
}

func (a *App) installer(s *session) *jdkdist.Installer {
	httpClient := a.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: s.cfg.DownloadTimeout()}
	}
	opts := []jdkdist.ClientOption{
		jdkdist.WithHTTPClient(httpClient),
		jdkdist.WithRetries(s.cfg.Download.Retries, 0),
		jdkdist.WithUserAgent(config.AppName + "/" + Version),
		jdkdist.WithLogger(a.Logger),
	}
	if token := a.Getenv("GITHUB_TOKEN"); token != "" {
		opts = append(opts, jdkdist.WithToken(token))
	}
	inst := jdkdist.NewInstaller(jdkdist.NewClient(opts...), a.AdoptiumURL, a.GitHubURL, a.Logger)
	inst.GOOS = a.GOOS
	return inst
}

func (a *App) toolchain(s *session) *nativebuild.Toolchain {
	return &nativebuild.Toolchain{
		Runner:      a.Runner,
		GOOS:        a.GOOS,
		NativeImage: s.cfg.Native.NativeImage,
		ISCC:        s.cfg.Native.ISCC,
		Getenv:      a.Getenv,
	}
}

// renderIssue writes a catalog guide to w using the configured color scheme.
func (a *App) renderIssue(w io.Writer, s *session, id issue.Id, data any) error {
	style := "auto"
	if s != nil && s.cfg.UI.ColorScheme != "" {
		style = string(s.cfg.UI.ColorScheme)
	}
	if w != os.Stdout && w != os.Stderr {
		style = "notty"
	}
	rendered, err := issue.Get(id).Render(style, data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, rendered)
	return err
}
