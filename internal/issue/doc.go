// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and the catalog of Markdown
// guides (installation walkthroughs, missing-tool remediation) that the CLI
// renders with glamour.
package issue
