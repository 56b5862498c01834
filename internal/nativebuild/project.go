// SPDX-License-Identifier: MPL-2.0

package nativebuild

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/amankrmj/javawizard/pkg/cueutil"
	"github.com/amankrmj/javawizard/pkg/platform"
)

// ProjectFileName is the project file looked up in the project directory.
const ProjectFileName = "javawizard.cue"

const (
	defaultOutputDir = "build/native/nativeCompile"
	defaultSources   = "src/main/java"
)

//go:embed project_schema.cue
var projectSchema []byte

var (
	// ErrProjectExists is returned by Init when the project file is present.
	ErrProjectExists = errors.New("project file already exists")
	// ErrNoEntryPoint is returned for a project with neither jar nor classpath.
	ErrNoEntryPoint = errors.New("project needs a jar or a classpath")
	// ErrNoMainClass is returned for a classpath build without main_class.
	ErrNoMainClass = errors.New("main_class is required with classpath")
)

type (
	// Project is a decoded javawizard.cue.
	Project struct {
		Name             string          `json:"name"`
		MainClass        string          `json:"main_class,omitempty"`
		Jar              string          `json:"jar,omitempty"`
		Classpath        []string        `json:"classpath,omitempty"`
		JavaVersion      int             `json:"java_version,omitempty"`
		BuildArgs        []string        `json:"build_args,omitempty"`
		ReflectionConfig string          `json:"reflection_config,omitempty"`
		OutputDir        string          `json:"output_dir,omitempty"`
		Dist             DistConfig      `json:"dist"`
		Installer        InstallerConfig `json:"installer"`
		Sources          SourcesConfig   `json:"sources"`

		// Dir is the directory relative paths are resolved against.
		Dir string `json:"-"`
		// File is the path the project was loaded from.
		File string `json:"-"`
	}

	// DistConfig locates the installable distribution.
	DistConfig struct {
		Dir string `json:"dir,omitempty"`
	}

	// InstallerConfig drives the Inno Setup step.
	InstallerConfig struct {
		Script string `json:"script,omitempty"`
		Auto   *bool  `json:"auto,omitempty"`
	}

	// SourcesConfig drives the sources archive.
	SourcesConfig struct {
		Dirs    []string `json:"dirs,omitempty"`
		Archive string   `json:"archive,omitempty"`
	}
)

// LoadProject reads and validates the project file at path.
func LoadProject(path string) (*Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project path: %w", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return ParseProject(data, abs)
}

// ParseProject decodes data as the project file at path.
func ParseProject(data []byte, path string) (*Project, error) {
	result, err := cueutil.ParseAndDecode[Project](projectSchema, data, "#Project",
		cueutil.WithFilename(path))
	if err != nil {
		return nil, err
	}
	p := result.Value
	p.File = path
	p.Dir = filepath.Dir(path)
	p.applyDefaults()
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func (p *Project) applyDefaults() {
	if p.OutputDir == "" {
		p.OutputDir = defaultOutputDir
	}
	if p.Dist.Dir == "" {
		p.Dist.Dir = "build/install/" + p.Name + "-native"
	}
	if len(p.Sources.Dirs) == 0 {
		p.Sources.Dirs = []string{defaultSources}
	}
	if p.Sources.Archive == "" {
		p.Sources.Archive = "build/libs/" + p.Name + "-sources.jar"
	}
}

func (p *Project) validate() error {
	switch {
	case p.Jar == "" && len(p.Classpath) == 0:
		return ErrNoEntryPoint
	case len(p.Classpath) > 0 && p.MainClass == "":
		return ErrNoMainClass
	}
	return nil
}

// Path resolves a project-relative path.
func (p *Project) Path(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.Dir, filepath.FromSlash(rel))
}

// AutoInstaller reports whether the installer follows every compile.
// It defaults to true once an installer script is configured.
func (p *Project) AutoInstaller() bool {
	if p.Installer.Script == "" {
		return false
	}
	return p.Installer.Auto == nil || *p.Installer.Auto
}

// ExecutableName returns the image file name for goos.
func (p *Project) ExecutableName(goos string) string {
	return platform.ExeName(goos, p.Name)
}

// StarterProject renders a commented project file for name.
func StarterProject(name string) string {
	var sb strings.Builder
	sb.WriteString("// javawizard native build project\n")
	fmt.Fprintf(&sb, "name:       %q\n", name)
	sb.WriteString("main_class: \"com.example.Main\"\n")
	fmt.Fprintf(&sb, "jar:        \"build/libs/%s.jar\"\n", name)
	sb.WriteString("java_version: 17\n\n")
	sb.WriteString("// Appended to --no-fallback --report-unsupported-elements-at-runtime -H:+ReportExceptionStackTraces\n")
	sb.WriteString("build_args: []\n\n")
	sb.WriteString("reflection_config: \"build/resources/main/META-INF/native-image/reflect-config.json\"\n")
	fmt.Fprintf(&sb, "output_dir:        %q\n\n", defaultOutputDir)
	fmt.Fprintf(&sb, "dist: dir: \"build/install/%s-native\"\n\n", name)
	sb.WriteString("// Inno Setup runs after each compile on Windows while auto is true.\n")
	fmt.Fprintf(&sb, "installer: {\n\tscript: \"installer/%s-installer.iss\"\n\tauto:   true\n}\n\n", name)
	fmt.Fprintf(&sb, "sources: {\n\tdirs:    [%q]\n\tarchive: \"build/libs/%s-sources.jar\"\n}\n", defaultSources, name)
	return sb.String()
}

// Init writes a starter project file into dir and returns its path.
func Init(dir, name string) (string, error) {
	path := filepath.Join(dir, ProjectFileName)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%s: %w", path, ErrProjectExists)
	}
	if name == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", err
		}
		name = sanitizeName(filepath.Base(abs))
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return path, fmt.Errorf("%s: %w", path, ErrProjectExists)
		}
		return "", err
	}
	if _, err := f.WriteString(StarterProject(name)); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

// sanitizeName maps a directory name onto the characters allowed in name.
func sanitizeName(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune('-')
		}
	}
	name := strings.TrimLeft(sb.String(), "._-")
	if name == "" {
		return "app"
	}
	return name
}
