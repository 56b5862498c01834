// SPDX-License-Identifier: MPL-2.0

package jdk

import (
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrInvalidVersion is the sentinel wrapped by InvalidVersionError.
var ErrInvalidVersion = errors.New("invalid Java version")

// versionRe accepts JEP 223 strings ("21", "17.0.9+9", "22-ea") and the
// legacy "1.8.0_392" form.
var versionRe = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:\.(\d+))?(?:_(\d+))?(?:-([0-9A-Za-z.]+))?(?:\+([0-9A-Za-z.-]+))?$`)

type (
	// Version is a parsed Java version. Legacy 1.x versions are normalized
	// so "1.8.0_392" has Feature 8 and Update 392.
	Version struct {
		Feature int
		Interim int
		Update  int
		Patch   int
		Pre     string
		Build   string
		Raw     string
	}

	// InvalidVersionError is returned when a string is not a Java version.
	InvalidVersionError struct {
		Value string
	}
)

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid Java version %q", e.Value)
}

func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// ParseVersion parses a Java version string.
func ParseVersion(s string) (Version, error) {
	m := versionRe.FindStringSubmatch(s)
	if m == nil {
		return Version{}, &InvalidVersionError{Value: s}
	}
	num := func(i int) int {
		n, _ := strconv.Atoi(m[i])
		return n
	}

	v := Version{
		Feature: num(1),
		Interim: num(2),
		Update:  num(3),
		Patch:   num(4),
		Pre:     m[6],
		Build:   m[7],
		Raw:     s,
	}
	if v.Feature == 1 && v.Interim > 1 {
		// 1.8.0_392 -> 8.0.392
		v.Feature, v.Interim, v.Update, v.Patch = v.Interim, 0, num(5), 0
	}
	return v, nil
}

// String returns the string the version was parsed from.
func (v Version) String() string {
	if v.Raw != "" {
		return v.Raw
	}
	return fmt.Sprintf("%d.%d.%d", v.Feature, v.Interim, v.Update)
}

// Compare orders versions numerically; a pre-release sorts before the
// matching release.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.Feature, o.Feature); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Interim, o.Interim); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Update, o.Update); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Patch, o.Patch); c != 0 {
		return c
	}
	switch {
	case v.Pre == o.Pre:
		return 0
	case v.Pre == "":
		return 1
	case o.Pre == "":
		return -1
	}
	return cmp.Compare(v.Pre, o.Pre)
}

// FeatureOf extracts the feature release from a requested version such as
// "21", "17.0.9" or "21-graalvm".
func FeatureOf(requested string) (int, error) {
	m := leadingDigits.FindString(requested)
	if m == "" {
		return 0, &InvalidVersionError{Value: requested}
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 1 {
		return 0, &InvalidVersionError{Value: requested}
	}
	if n == 1 {
		// 1.8 style
		if v, err := ParseVersion(requested); err == nil {
			return v.Feature, nil
		}
	}
	return n, nil
}

var leadingDigits = regexp.MustCompile(`^\d+`)

// versionFromName guesses a version from a managed directory name such as
// "jdk-21" or "graalvm-17.0.9".
func versionFromName(name string) (Version, bool) {
	m := nameVersionRe.FindString(name)
	if m == "" {
		return Version{}, false
	}
	v, err := ParseVersion(m)
	return v, err == nil
}

var nameVersionRe = regexp.MustCompile(`\d+(?:\.\d+)*(?:_\d+)?`)
