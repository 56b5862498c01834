// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	stderrors "errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// FormatError flattens a CUE error into "<file>: <json-path>: <message>"
// lines, one per underlying CUE error.
//
// Examples:
//   - javawizard.cue: installer.script: conflicting values "a" and 1
//   - config.cue: download.retries: invalid value -1 (out of bound >=0)
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	// errors.Errors wraps plain Go errors too, which would drop their chain.
	var cueErr errors.Error
	if !stderrors.As(err, &cueErr) {
		return fmt.Errorf("%s: %w", filePath, err)
	}
	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	lines := make([]string, 0, len(cueErrors))
	for _, e := range cueErrors {
		pathStr := formatPath(errors.Path(e))
		msg := e.Error()

		// CUE sometimes repeats the path at the start of the message.
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, pathStr), ":"))
		}

		if pathStr == "" {
			lines = append(lines, msg)
			continue
		}
		lines = append(lines, pathStr+": "+msg)
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// formatPath converts a CUE error path to JSON-path notation:
// ["java", "scan_paths", "0"] becomes "java.scan_paths[0]".
func formatPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize returns an error when data exceeds maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
