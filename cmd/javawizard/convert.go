// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amankrmj/javawizard/internal/fileops"
)

type convertFlagValues struct {
	to                string
	output            string
	overwrite         bool
	preserveStructure bool
}

func newConvertCommand(app *App) *cobra.Command {
	flags := &convertFlagValues{}
	cmd := &cobra.Command{
		Use:   "convert -t FORMAT [flags] FILES...",
		Short: "Convert files between formats",
		Long: `Convert files between formats.

Inputs are read by extension: JSON, YAML, TOML, CSV and XML are decoded
into records; anything else is treated as lines of text. The output file
keeps the input's base name with the target format as extension.

Supported target formats: ` + strings.Join(fileops.TargetFormats, ", "),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, app, flags, args)
		},
	}
	cmd.Flags().StringVarP(&flags.to, "to", "t", "", "target format ("+strings.Join(fileops.TargetFormats, ", ")+")")
	cmd.Flags().StringVarP(&flags.output, "output", "o", ".", "output directory")
	cmd.Flags().BoolVar(&flags.overwrite, "overwrite", false, "overwrite existing files")
	cmd.Flags().BoolVar(&flags.preserveStructure, "preserve-structure", true, "recreate the input directories under the output directory")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func runConvert(cmd *cobra.Command, app *App, flags *convertFlagValues, files []string) error {
	s := app.session(cmd.Context())
	out, errOut := app.stdout, app.stderr

	if s.verbose {
		fmt.Fprintf(out, "Converting files to: %s\n", strings.ToUpper(flags.to))
		fmt.Fprintf(out, "Output path: %s\n", flags.output)
		fmt.Fprintf(out, "Overwrite existing: %t\n", flags.overwrite)
	}

	if len(files) == 0 {
		fmt.Fprintln(errOut, "No files specified for conversion")
		return silentExit()
	}

	format, err := fileops.ParseTargetFormat(flags.to)
	if err != nil {
		fmt.Fprintln(errOut, err.Error())
		fmt.Fprintf(errOut, "Supported formats: %s\n", strings.Join(fileops.TargetFormats, ", "))
		return silentExit()
	}

	results, err := fileops.Convert(cmd.Context(), files, fileops.ConvertOptions{
		Format:            format,
		OutputDir:         flags.output,
		Overwrite:         flags.overwrite,
		PreserveStructure: flags.preserveStructure,
	})
	if err != nil {
		return err
	}

	failed := false
	for _, r := range results {
		switch r.Status {
		case fileops.StatusNotFound:
			fmt.Fprintf(errOut, "File not found: %s\n", r.Input)
		case fileops.StatusExists:
			fmt.Fprintf(errOut, "Output file exists (use --overwrite): %s\n", r.OutName)
		case fileops.StatusFailed:
			failed = true
			fmt.Fprintf(errOut, "%s Failed to convert %s: %v\n", ErrorStyle.Render("✗"), r.Name, r.Err)
		case fileops.StatusDone:
			if s.verbose {
				fmt.Fprintf(out, "Converting: %s → %s\n", r.Name, r.OutName)
			}
			fmt.Fprintf(out, "✓ Converted %s to %s\n", r.Name, strings.ToUpper(format))
		}
	}

	fmt.Fprintln(out, "Conversion completed!")
	if failed {
		return silentExit()
	}
	return nil
}
