package terminal

import (
	"io"
	"os"

	"github.com/de-tools/medical-reports/pkg/runtime/terminal/commands"
	"github.com/de-tools/medical-reports/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	reporter *export.Reporter
	printer  *Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	Args   []string
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		reporter: export.NewReporter(opts.Output),
		printer:  NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	if opts.Args != nil {
		cli.rootCmd.SetArgs(opts.Args)
	}
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "reports",
		Short:        "Medical report maintenance tool",
		SilenceUsage: true,
	}

	cmd.AddCommand(commands.NewGenerateCmd(cli.printer))
	cmd.AddCommand(commands.NewListCmd(cli.reporter))

	return cmd
}
