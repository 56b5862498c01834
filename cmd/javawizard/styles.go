// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Color palette shared by all CLI output, tuned for dark terminals.
const (
	// ColorPrimary is used for titles and headers.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is used for hints and de-emphasized content.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is used for checkmarks and completed work.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is used for failures.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is used for warnings and missing items.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is used for commands, paths and versions.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and hints.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warnings.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// CmdStyle is for command names, paths and versions.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary).
				Padding(0, 1)

	tableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

// newTable returns a borderless listing table with styled headers.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
}
