package cli

import (
	"context"

	"github.com/spf13/cobra"
)

type banksCmd struct {
	cli     *CLI
	refresh bool
}

func (cli *CLI) newBanksCmd() *cobra.Command {
	bc := &banksCmd{cli: cli}
	cmd := &cobra.Command{
		Use:   "banks",
		Short: "List the banks the backend tracks",
		Args:  cobra.NoArgs,
		RunE:  bc.run,
	}
	cmd.Flags().BoolVar(&bc.refresh, "refresh", false, "Drop the cached bank list before reading it")
	return cmd
}

func (bc *banksCmd) run(cmd *cobra.Command, args []string) error {
	return bc.cli.withDeps(cmd, func(ctx context.Context, deps *Deps) error {
		if bc.refresh {
			if err := deps.Catalog.Invalidate(ctx); err != nil {
				return err
			}
		}

		banks, err := deps.Catalog.Banks(ctx)
		if err != nil {
			return err
		}

		return bc.cli.printer(cmd).emit(banks, []string{"NAME", "LABEL", "VARIATIONS"}, func() [][]string {
			rows := make([][]string, 0, len(banks))
			for _, b := range banks {
				rows = append(rows, []string{b.Name, b.Label(), joinOrDash(b.Variations)})
			}
			return rows
		})
	})
}
