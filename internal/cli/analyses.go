package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"iedi-workers/internal/analysis"
	"iedi-workers/internal/backend"

	"github.com/spf13/cobra"
)

func (cli *CLI) newAnalysesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "analyses",
		Aliases: []string{"analysis"},
		Short:   "List, inspect, create and delete analyses",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List analyses",
		Args:  cobra.NoArgs,
		RunE:  cli.runList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  cli.runGet,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "results <id>",
		Short: "Show per-bank results ranked by IEDI score",
		Args:  cobra.ExactArgs(1),
		RunE:  cli.runResults,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  cli.runDelete,
	})
	cmd.AddCommand(cli.newCreateCmd())
	cmd.AddCommand(cli.newSubmitCmd())
	return cmd
}

func analysisRow(a backend.Analysis) []string {
	return []string{a.ID, a.Name, a.QueryName, a.TypeLabel(), a.Status.Label(), dashIfEmpty(a.CreatedAt)}
}

var analysisHeaders = []string{"ID", "NAME", "QUERY", "TYPE", "STATUS", "CREATED"}

func (cli *CLI) runList(cmd *cobra.Command, args []string) error {
	return cli.withDeps(cmd, func(ctx context.Context, deps *Deps) error {
		list, err := deps.Backend.ListAnalyses(ctx)
		if err != nil {
			return err
		}
		p := cli.printer(cmd)
		if !p.isJSON() && len(list) == 0 {
			p.line("No analyses found")
			return nil
		}
		return p.emit(list, analysisHeaders, func() [][]string {
			rows := make([][]string, 0, len(list))
			for _, a := range list {
				rows = append(rows, analysisRow(a))
			}
			return rows
		})
	})
}

func (cli *CLI) runGet(cmd *cobra.Command, args []string) error {
	return cli.withDeps(cmd, func(ctx context.Context, deps *Deps) error {
		a, err := deps.Backend.GetAnalysis(ctx, args[0])
		if err != nil {
			return err
		}
		return cli.printer(cmd).emit(a, analysisHeaders, func() [][]string {
			return [][]string{analysisRow(*a)}
		})
	})
}

func (cli *CLI) runResults(cmd *cobra.Command, args []string) error {
	return cli.withDeps(cmd, func(ctx context.Context, deps *Deps) error {
		rows, err := deps.Backend.GetBankAnalyses(ctx, args[0])
		if err != nil {
			return err
		}
		ranked := backend.SortByScore(rows)

		p := cli.printer(cmd)
		if !p.isJSON() && len(ranked) == 0 {
			p.line("No results yet for analysis %s", args[0])
			return nil
		}
		return p.emit(ranked, []string{"BANK", "PERIOD", "MENTIONS", "POSITIVE", "NEGATIVE", "IEDI MEAN", "IEDI"}, func() [][]string {
			out := make([][]string, 0, len(ranked))
			for _, r := range ranked {
				out = append(out, []string{
					analysis.FormatBankName(r.BankName),
					period(r.StartDate, r.EndDate),
					strconv.Itoa(r.TotalMentions),
					analysis.FormatVolume(r.PositiveVolume),
					analysis.FormatVolume(r.NegativeVolume),
					analysis.FormatScore(r.IEDIMean),
					analysis.FormatScore(r.IEDIScore),
				})
			}
			return out
		})
	})
}

func (cli *CLI) runDelete(cmd *cobra.Command, args []string) error {
	return cli.withDeps(cmd, func(ctx context.Context, deps *Deps) error {
		if err := deps.Backend.DeleteAnalysis(ctx, args[0]); err != nil {
			return err
		}
		p := cli.printer(cmd)
		if p.isJSON() {
			return p.json(map[string]interface{}{"id": args[0], "deleted": true})
		}
		p.line("Deleted analysis %s", args[0])
		return nil
	})
}

type createCmd struct {
	cli    *CLI
	flags  requestFlags
	dryRun bool
}

func (cli *CLI) newCreateCmd() *cobra.Command {
	cc := &createCmd{cli: cli}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Validate an analysis request and post it to the backend",
		Example: `  iedictl analyses create --name "Q1" --query "Bancos" --bank ITAU --bank BRADESCO \
      --start 2024-01-01T00:00 --end 2024-03-31T23:59
  iedictl analyses create --name "Campanha" --query "Bancos" \
      --period "ITAU,2024-01-01,2024-01-31,Marketing" --period "BRADESCO,2024-02-01,2024-02-28"`,
		Args: cobra.NoArgs,
		RunE: cc.run,
	}
	cc.flags.register(cmd)
	cmd.Flags().BoolVar(&cc.dryRun, "dry-run", false, "Print the request body without posting it")
	return cmd
}

func (cc *createCmd) run(cmd *cobra.Command, args []string) error {
	return cc.cli.withDeps(cmd, func(ctx context.Context, deps *Deps) error {
		req, err := buildChecked(ctx, deps, &cc.flags)
		if err != nil {
			return err
		}

		p := cc.cli.printer(cmd)
		if cc.dryRun {
			return p.json(req)
		}

		created, err := deps.Backend.CreateAnalysis(ctx, req)
		if err != nil {
			return err
		}
		if p.isJSON() {
			return p.json(created)
		}
		p.line("Created analysis %s (%s, %s)", created.ID, created.Status.Label(), analysis.TypeLabel(req.Mode() == analysis.ModeCustom))
		return nil
	})
}

type submitCmd struct {
	cli   *CLI
	flags requestFlags
}

func (cli *CLI) newSubmitCmd() *cobra.Command {
	sc := &submitCmd{cli: cli}
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Validate an analysis request and start the analysis process with it",
		Args:  cobra.NoArgs,
		RunE:  sc.run,
	}
	sc.flags.register(cmd)
	return cmd
}

func (sc *submitCmd) run(cmd *cobra.Command, args []string) error {
	return sc.cli.withDeps(cmd, func(ctx context.Context, deps *Deps) error {
		req, err := buildChecked(ctx, deps, &sc.flags)
		if err != nil {
			return err
		}
		if deps.OpenEngine == nil {
			return fmt.Errorf("no workflow engine configured")
		}

		engine, err := deps.OpenEngine(ctx)
		if err != nil {
			return err
		}
		defer engine.Close()

		instance, err := engine.StartProcess(ctx, deps.ProcessID, processVariables(req))
		if err != nil {
			return err
		}

		p := sc.cli.printer(cmd)
		if p.isJSON() {
			return p.json(instance)
		}
		p.line("Started %s instance %d (version %d)", instance.BPMNProcessID, instance.ProcessInstanceKey, instance.Version)
		return nil
	})
}

func period(start, end string) string {
	if start == "" && end == "" {
		return "-"
	}
	return dashIfEmpty(start) + " → " + dashIfEmpty(end)
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
