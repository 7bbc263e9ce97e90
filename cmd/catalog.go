/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/fulmenhq/gig/internal/manage"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the schemas available in the catalog",
		Args:  usageArgs(cobra.NoArgs),
		RunE:  runList,
	}
	cmd.Flags().String("format", formatText, "Output format (text|json|yaml)")
	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	_, res, err := run(cmd, manage.List{})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format != formatText {
		return encode(out, format, listReport{
			Names:    res.Names,
			Warnings: res.WarningMessages(),
		})
	}
	for _, name := range res.Names {
		fmt.Fprintln(out, name)
	}
	return nil
}

type listReport struct {
	Names    []string `json:"names" yaml:"names"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func newStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Compare each block's recorded version with the catalog",
		Long: `Status reports one row per block of the managed region:

  current   the recorded version matches the catalog
  outdated  the catalog has a newer version (run 'gig update')
  missing   the catalog no longer has this schema
  local     the block was not sourced from the catalog`,
		Args: usageArgs(cobra.NoArgs),
		RunE: runStatus,
	}
	cmd.Flags().String("format", formatText, "Output format (text|json|yaml)")
	return cmd
}

type statusReport struct {
	File     string               `json:"file" yaml:"file"`
	Blocks   []manage.BlockStatus `json:"blocks" yaml:"blocks"`
	Warnings []string             `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	s, res, err := run(cmd, manage.Status{})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format != formatText {
		return encode(out, format, statusReport{
			File:     relTarget(s),
			Blocks:   res.Status,
			Warnings: res.WarningMessages(),
		})
	}
	if len(res.Status) == 0 {
		fmt.Fprintf(out, "%s has an empty managed region\n", relTarget(s))
		return nil
	}
	writeStatusTable(out, res.Status, s.runner.Color)
	return nil
}

var stateColors = map[manage.State]color.Attribute{
	manage.StateCurrent:  color.FgGreen,
	manage.StateOutdated: color.FgYellow,
	manage.StateMissing:  color.FgRed,
	manage.StateLocal:    color.FgCyan,
}

// writeStatusTable prints an aligned table; widths are measured in terminal
// cells so wide schema names line up.
func writeStatusTable(w io.Writer, rows []manage.BlockStatus, useColor bool) {
	headers := []string{"NAME", "STATE", "RECORDED", "LATEST"}
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{r.Name, string(r.State), shortVersion(r.Recorded), shortVersion(r.Latest)})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range cells {
		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	writeRow := func(row []string, state manage.State) {
		parts := make([]string, len(row))
		for i, c := range row {
			padded := c
			if i < len(row)-1 {
				padded = runewidth.FillRight(c, widths[i])
			}
			if i == 1 && state != "" {
				sc := color.New(stateColors[state])
				if useColor {
					sc.EnableColor()
				} else {
					sc.DisableColor()
				}
				padded = sc.Sprint(padded)
			}
			parts[i] = padded
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	writeRow(headers, "")
	for i, row := range cells {
		writeRow(row, rows[i].State)
	}
}

// shortVersion abbreviates commit hashes; content hashes are already short.
func shortVersion(v string) string {
	if len(v) == 40 && !strings.Contains(v, ":") {
		return v[:12]
	}
	return v
}
