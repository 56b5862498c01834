// SPDX-License-Identifier: MPL-2.0

package jdk

import (
	"errors"
	"slices"
	"testing"
)

func TestParseVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in                             string
		feature, interim, update, patch int
		pre                            string
	}{
		{"21", 21, 0, 0, 0, ""},
		{"17.0.9", 17, 0, 9, 0, ""},
		{"17.0.9+9", 17, 0, 9, 0, ""},
		{"21.0.1+12-LTS", 21, 0, 1, 0, ""},
		{"11.0.21.1", 11, 0, 21, 1, ""},
		{"22-ea", 22, 0, 0, 0, "ea"},
		{"1.8.0_392", 8, 0, 392, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			v, err := ParseVersion(tt.in)
			if err != nil {
				t.Fatalf("ParseVersion(%q) error = %v", tt.in, err)
			}
			if v.Feature != tt.feature || v.Interim != tt.interim || v.Update != tt.update || v.Patch != tt.patch || v.Pre != tt.pre {
				t.Errorf("ParseVersion(%q) = %+v", tt.in, v)
			}
			if v.String() != tt.in {
				t.Errorf("String() = %q, want %q", v.String(), tt.in)
			}
		})
	}
}

func TestParseVersion_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "latest", "v17", "17..0"} {
		_, err := ParseVersion(in)
		if !errors.Is(err, ErrInvalidVersion) {
			t.Errorf("ParseVersion(%q) error = %v, want ErrInvalidVersion", in, err)
		}
	}
}

func TestVersionCompare_Sorts(t *testing.T) {
	t.Parallel()

	raw := []string{"21.0.1", "1.8.0_392", "17.0.9", "21-ea", "11", "17.0.10", "21"}
	var versions []Version
	for _, r := range raw {
		v, err := ParseVersion(r)
		if err != nil {
			t.Fatal(err)
		}
		versions = append(versions, v)
	}
	slices.SortFunc(versions, Version.Compare)

	var got []string
	for _, v := range versions {
		got = append(got, v.String())
	}
	want := []string{"1.8.0_392", "11", "17.0.9", "17.0.10", "21-ea", "21", "21.0.1"}
	if !slices.Equal(got, want) {
		t.Errorf("sorted = %v, want %v", got, want)
	}
}

func TestFeatureOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"21", 21, false},
		{"17.0.9", 17, false},
		{"21-graalvm", 21, false},
		{"1.8", 8, false},
		{"graalvm", 0, true},
		{"0", 0, true},
	}
	for _, tt := range tests {
		got, err := FeatureOf(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("FeatureOf(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("FeatureOf(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
