/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"

	"github.com/fulmenhq/gig/pkg/buildinfo"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  usageArgs(cobra.NoArgs),
		RunE:  runVersion,
	}
	cmd.Flags().Bool("json", false, "Output version information in JSON format")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	info := buildinfo.Current()
	out := cmd.OutOrStdout()

	if jsonOutput {
		return encode(out, formatJSON, info)
	}

	fmt.Fprintf(out, "gig %s\n", info.Version)
	if info.ModuleVersion != "" && info.ModuleVersion != "(devel)" {
		fmt.Fprintf(out, "Module: %s\n", info.ModuleVersion)
	}
	if info.Commit != "" {
		fmt.Fprintf(out, "Commit: %s\n", info.Commit)
	}
	fmt.Fprintf(out, "Go Version: %s\n", info.GoVersion)
	fmt.Fprintf(out, "OS/Arch: %s\n", info.Platform)
	return nil
}
