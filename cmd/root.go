/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"os"

	"github.com/fulmenhq/gig/internal/ops"
	"github.com/fulmenhq/gig/pkg/buildinfo"
	"github.com/fulmenhq/gig/pkg/exitcode"
	"github.com/fulmenhq/gig/pkg/logger"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// newRootCommand creates a fresh root command instance with all subcommands.
// Tests build their own tree so flag values never leak between runs.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gig",
		Short: "Manage a generated region of .gitignore from a snippet catalog",
		Long: `gig maintains a machine-owned region inside your .gitignore, filled with
snippets from a catalog repository (github.com/github/gitignore by default).
Everything outside the region is left exactly as you wrote it.

Examples:
   gig init Go Node     # Create the managed region with two schemas
   gig add Python       # Append a schema to the region
   gig update           # Refresh every catalog schema in place
   gig status           # Compare recorded versions with the catalog
   gig list             # Show the schemas the catalog offers`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	// Add global flags
	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().Bool("no-op", false, "Show the changes as a diff without writing them")
	cmd.PersistentFlags().String("repo", ".", "Path inside the git repository to manage")
	cmd.PersistentFlags().String("catalog-url", "", "Catalog repository URL (overrides catalog.url)")
	cmd.PersistentFlags().String("catalog-branch", "", "Catalog branch to pull (overrides catalog.branch)")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &exitcode.Usage{Err: err}
	})

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("gig {{.Version}}\n")

	reg := ops.NewRegistry()
	registerSubcommands(cmd, reg)

	// Grouped help by command group (Manage → Catalog → Support)
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		if c != cmd {
			c.Println(c.Long)
			c.Println()
			c.Print(c.UsageString())
			return
		}
		c.Println(c.Long)
		c.Println()
		for _, g := range ops.Groups {
			commands := reg.GetCommandsByGroup(g.Group)
			if len(commands) == 0 {
				continue
			}
			c.Println(g.Heading)
			for _, r := range commands {
				c.Printf("  %-14s %s\n", r.Name, r.Description)
			}
			c.Println()
		}
		c.Println("Flags:")
		c.Print(c.LocalFlags().FlagUsages())
	})

	return cmd
}

// registerSubcommands adds all subcommands to the root command and
// classifies them for help output.
func registerSubcommands(root *cobra.Command, reg *ops.Registry) {
	subcommands := []struct {
		group ops.CommandGroup
		cmd   *cobra.Command
	}{
		{ops.GroupManage, newInitCommand()},
		{ops.GroupManage, newAddCommand()},
		{ops.GroupManage, newAddUntrackedCommand()},
		{ops.GroupManage, newUpdateCommand()},
		{ops.GroupManage, newRemoveCommand()},
		{ops.GroupCatalog, newListCommand()},
		{ops.GroupCatalog, newStatusCommand()},
		{ops.GroupSupport, newVersionCommand()},
	}
	for _, s := range subcommands {
		root.AddCommand(s.cmd)
		if err := reg.Register(s.cmd.Name(), s.group, s.cmd, s.cmd.Short); err != nil {
			panic(err)
		}
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// Execute runs the root command and exits with the mapped exit code.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		code := exitcode.ForError(err)
		logger.Error(err.Error())
		if code == exitcode.UsageError {
			_, _ = os.Stderr.WriteString("Run 'gig --help' for usage.\n")
		}
		os.Exit(code)
	}
}

// usageArgs marks positional-argument failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &exitcode.Usage{Err: err}
		}
		return nil
	}
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	noOp, _ := cmd.Flags().GetBool("no-op")

	config := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor && isatty.IsTerminal(os.Stderr.Fd()),
		JSON:      jsonLogs,
		Component: "gig",
		NoOp:      noOp,
		Output:    cmd.ErrOrStderr(),
	}

	if err := logger.Initialize(config); err != nil {
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.GeneralError)
	}
}
