// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestCatalogEntriesExist(t *testing.T) {
	t.Parallel()

	ids := []Id{
		ConfigLoadFailedId,
		JavaVersionNotFoundId,
		OpenJDKInstallGuideId,
		GraalVMInstallGuideId,
		NativeImageNotFoundId,
		InnoSetupNotFoundId,
		ProjectFileNotFoundId,
	}
	for _, id := range ids {
		iss := Get(id)
		if iss == nil {
			t.Errorf("Get(%d) = nil", id)
			continue
		}
		if iss.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, iss.Id())
		}
		if strings.TrimSpace(string(iss.MarkdownMsg())) == "" {
			t.Errorf("issue %d has an empty message", id)
		}
	}

	if Get(Id(9999)) != nil {
		t.Error("unknown id should return nil")
	}
}

func TestMarkdown_ExpandsTemplate(t *testing.T) {
	t.Parallel()

	md, err := Get(GraalVMInstallGuideId).Markdown(map[string]string{
		"Version": "21",
		"Target":  "/home/u/.javawizard/java-versions/graalvm-21",
		"Name":    "graalvm-21",
	})
	if err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}

	for _, want := range []string{
		"graalvm-community-jdk-21_windows-x64_bin.zip",
		"/home/u/.javawizard/java-versions/graalvm-21",
		"javawizard java use graalvm-21",
		"## See also",
		"https://www.graalvm.org/downloads/",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdown_MissingKeyRendersEmpty(t *testing.T) {
	t.Parallel()

	md, err := Get(OpenJDKInstallGuideId).Markdown(map[string]string{"Version": "17"})
	if err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}
	if !strings.Contains(md, "openjdk@17") {
		t.Errorf("expected brew line for 17:\n%s", md)
	}
}

func TestLinksReturnsCopy(t *testing.T) {
	t.Parallel()

	iss := Get(InnoSetupNotFoundId)
	links := iss.Links()
	links[0] = "mutated"
	if iss.Links()[0] == "mutated" {
		t.Error("Links() should return a copy")
	}
}

func TestRender_UsesNoTTYStyle(t *testing.T) {
	t.Parallel()

	out, err := Get(ProjectFileNotFoundId).Render("notty", nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "javawizard native init") {
		t.Errorf("rendered output missing command:\n%s", out)
	}
}
