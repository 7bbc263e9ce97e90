/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"github.com/fulmenhq/gig/internal/manage"
	"github.com/spf13/cobra"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [schema...]",
		Short: "Create the managed region from catalog schemas",
		Long: `Init writes a new managed region containing one block per schema, in the
order given. A missing .gitignore is created; an existing one keeps its lines
and gets the region appended after them.

If the file already has a managed region, init refuses to touch it unless
--force is given, in which case the region is rebuilt and the lines around it
are kept.

Schemas the catalog does not know are reported as warnings and skipped.

Examples:
  gig init Go Node
  gig init --force Python`,
		Args: usageArgs(cobra.ArbitraryArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			return runMutation(cmd, manage.Build{Names: args, Force: force})
		},
	}
	cmd.Flags().Bool("force", false, "Rebuild an existing managed region")
	return cmd
}

func newAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <schema>",
		Short: "Append a catalog schema to the managed region",
		Long: `Add resolves one schema from the catalog and appends it as the last block
of the managed region. Adding a schema that is already present is an error.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, manage.Add{Name: args[0]})
		},
	}
}

func newAddUntrackedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add-untracked",
		Short: "Ignore every untracked file in a local block",
		Long: `Add-untracked lists files git reports as untracked and not ignored, and
records them as anchored paths (/path) in the local "` + manage.UntrackedBlock + `" block.
Entries from earlier runs are kept. The catalog is not contacted.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMutation(cmd, manage.AddUntracked{})
		},
	}
}

func newUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update [schema]",
		Short: "Refresh one or all catalog schemas in place",
		Long: `Update re-resolves blocks from the catalog without moving them. With a name,
only that block is refreshed and failures are errors. Without one, every
catalog block is refreshed, local blocks are skipped, and per-block failures
are reported as warnings.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			op := manage.Update{}
			if len(args) == 1 {
				op.Name = args[0]
			}
			return runMutation(cmd, op)
		},
	}
}

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <schema>",
		Aliases: []string{"rm"},
		Short:   "Remove a block from the managed region",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, manage.Remove{Name: args[0]})
		},
	}
}
