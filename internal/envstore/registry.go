// SPDX-License-Identifier: MPL-2.0

package envstore

import (
	"context"
	"regexp"
	"strings"

	"github.com/amankrmj/javawizard/internal/runner"
)

const registryKey = `HKCU\Environment`

// regValueRe matches "    Path    REG_EXPAND_SZ    C:\a;C:\b" lines of reg query output.
var regValueRe = regexp.MustCompile(`^\s*(\S+)\s+(REG_[A-Z_]+)\s+(.*?)\s*$`)

// RegistryStore persists variables in the current user's registry hive.
type RegistryStore struct {
	runner runner.Runner
}

// NewRegistryStore returns a RegistryStore driving reg.exe through r.
func NewRegistryStore(r runner.Runner) *RegistryStore {
	return &RegistryStore{runner: r}
}

// Location implements Store.
func (s *RegistryStore) Location() string { return registryKey }

// Get implements Store. A missing value is reported as "".
func (s *RegistryStore) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	name := registryName(key)
	res, err := s.runner.Run(ctx, runner.Command{Name: "reg", Args: []string{"query", registryKey, "/v", name}})
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", nil
	}
	for _, line := range strings.Split(res.Stdout, "\n") {
		m := regValueRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m != nil && strings.EqualFold(m[1], name) {
			return m[3], nil
		}
	}
	return "", nil
}

// Set implements Store. PATH is written as REG_EXPAND_SZ so %VAR%
// references keep expanding.
func (s *RegistryStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	typ := "REG_SZ"
	if key == KeyPath {
		typ = "REG_EXPAND_SZ"
	}
	res, err := s.runner.Run(ctx, runner.Command{
		Name: "reg",
		Args: []string{"add", registryKey, "/v", registryName(key), "/t", typ, "/d", value, "/f"},
	})
	if err != nil {
		return &SetError{Key: key, Err: err}
	}
	if !res.Success() {
		return &SetError{Key: key, Detail: strings.TrimSpace(res.Stderr)}
	}
	return nil
}

// registryName maps PATH to the "Path" value Windows uses.
func registryName(key string) string {
	if key == KeyPath {
		return "Path"
	}
	return key
}
