// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"bytes"
	"fmt"
	"slices"
	"text/template"

	"github.com/charmbracelet/glamour"
)

// Id identifies a catalog entry.
type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	JavaVersionNotFoundId
	OpenJDKInstallGuideId
	GraalVMInstallGuideId
	NativeImageNotFoundId
	InnoSetupNotFoundId
	ProjectFileNotFoundId
)

type (
	// MarkdownMsg is a text/template producing Markdown.
	MarkdownMsg string

	// HttpLink is a documentation URL appended to a rendered issue.
	HttpLink string

	// Issue is a Markdown explanation of a failure or a how-to, with the
	// links the user should follow.
	Issue struct {
		id    Id
		mdMsg MarkdownMsg
		links []HttpLink
	}
)

// Id returns the catalog identifier.
func (i *Issue) Id() Id { return i.id }

// MarkdownMsg returns the unexpanded Markdown template.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// Links returns a copy of the reference links.
func (i *Issue) Links() []HttpLink { return slices.Clone(i.links) }

// Markdown expands the template with data and appends the links section.
func (i *Issue) Markdown(data any) (string, error) {
	tmpl, err := template.New(fmt.Sprintf("issue-%d", i.id)).Parse(string(i.mdMsg))
	if err != nil {
		return "", fmt.Errorf("parse issue %d: %w", i.id, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("expand issue %d: %w", i.id, err)
	}
	if len(i.links) > 0 {
		buf.WriteString("\n\n## See also\n")
		for _, link := range i.links {
			buf.WriteString("\n- <" + string(link) + ">")
		}
		buf.WriteString("\n")
	}
	return buf.String(), nil
}

// Render expands the issue and renders it for the terminal. stylePath is
// a glamour style name ("auto", "dark", "light", "notty") or a JSON style file.
func (i *Issue) Render(stylePath string, data any) (string, error) {
	md, err := i.Markdown(data)
	if err != nil {
		return "", err
	}
	return glamour.Render(md, stylePath)
}

// Get returns the catalog entry for id, or nil when unknown.
func Get(id Id) *Issue {
	return catalog[id]
}

var catalog = map[Id]*Issue{
	ConfigLoadFailedId: {
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load the javawizard configuration

The configuration file could not be read or did not match the schema.

## Things you can try
- Print the effective defaults and compare:
~~~
$ javawizard config dump
~~~
- Recreate a default file:
~~~
$ javawizard config init
~~~`,
	},

	JavaVersionNotFoundId: {
		id: JavaVersionNotFoundId,
		mdMsg: `
# Java version {{.Version}} is not installed

Managed versions live in ` + "`{{.Dir}}`" + `.

## Things you can try
- List what is installed:
~~~
$ javawizard java list
~~~
- Install it:
~~~
$ javawizard java install {{.Version}}
~~~`,
	},

	OpenJDKInstallGuideId: {
		id: OpenJDKInstallGuideId,
		mdMsg: `
# OpenJDK Installation Guide

1. Download from Eclipse Adoptium: https://adoptium.net/
2. Choose version {{.Version}} for your platform
3. Extract to: ` + "`{{.Target}}`" + `
4. Run: ` + "`javawizard java use {{.Name}}`" + `

## Alternative - Use package managers

- Windows (winget): ` + "`winget install Microsoft.OpenJDK.{{.Version}}`" + `
- macOS (brew): ` + "`brew install openjdk@{{.Version}}`" + `
- Linux (apt): ` + "`sudo apt install openjdk-{{.Version}}-jdk`",
		links: []HttpLink{"https://adoptium.net/"},
	},

	GraalVMInstallGuideId: {
		id: GraalVMInstallGuideId,
		mdMsg: `
# GraalVM Installation Guide

1. Download GraalVM from: https://www.graalvm.org/downloads/
2. Choose the appropriate version for your platform:
   - Windows: ` + "`graalvm-community-jdk-{{.Version}}_windows-x64_bin.zip`" + `
   - macOS: ` + "`graalvm-community-jdk-{{.Version}}_macos-x64_bin.tar.gz`" + `
   - Linux: ` + "`graalvm-community-jdk-{{.Version}}_linux-x64_bin.tar.gz`" + `
3. Extract to: ` + "`{{.Target}}`" + `
4. Run: ` + "`javawizard java use {{.Name}}`",
		links: []HttpLink{"https://www.graalvm.org/downloads/", "https://github.com/graalvm/graalvm-ce-builds/releases"},
	},

	NativeImageNotFoundId: {
		id: NativeImageNotFoundId,
		mdMsg: `
# native-image was not found

javawizard looked for it in the ` + "`native.native_image`" + ` setting,
` + "`$GRAALVM_HOME/bin`" + `, ` + "`$JAVA_HOME/bin`" + ` and your PATH.

## Things you can try
- Install a GraalVM JDK and switch to it:
~~~
$ javawizard java install 21-graalvm
$ javawizard java use graalvm-21
~~~
- Or point the configuration at an existing launcher:
~~~cue
native: native_image: "/opt/graalvm/bin/native-image"
~~~`,
		links: []HttpLink{"https://www.graalvm.org/latest/reference-manual/native-image/"},
	},

	InnoSetupNotFoundId: {
		id: InnoSetupNotFoundId,
		mdMsg: `
# Inno Setup compiler not found

The installer task runs ` + "`{{.Path}}`" + `.

## Things you can try
- Install Inno Setup 6 from https://jrsoftware.org/isdl.php
- Or set ` + "`native: iscc:`" + ` in your configuration
- Or skip the installer:
~~~
$ javawizard native build --skip-installer
~~~`,
		links: []HttpLink{"https://jrsoftware.org/isinfo.php"},
	},

	ProjectFileNotFoundId: {
		id: ProjectFileNotFoundId,
		mdMsg: `
# No javawizard.cue found

Native builds are described by a ` + "`javawizard.cue`" + ` file in the project directory.

## Things you can try
- Create a starter file:
~~~
$ javawizard native init
~~~
- Or point at an existing one:
~~~
$ javawizard native build --project path/to/javawizard.cue
~~~`,
	},
}
