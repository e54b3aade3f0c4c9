package cli

import (
	"strconv"
	"strings"

	"iedi-workers/pkg/registry"

	"github.com/spf13/cobra"
)

type workersCmd struct {
	cli  *CLI
	path string
}

func (cli *CLI) newWorkersCmd() *cobra.Command {
	wc := &workersCmd{cli: cli}
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "List the job types the worker host serves",
		Args:  cobra.NoArgs,
		RunE:  wc.run,
	}
	cmd.Flags().StringVar(&wc.path, "registry", "configs/activities.json", "Path to the activity registry")
	return cmd
}

func (wc *workersCmd) run(cmd *cobra.Command, args []string) error {
	reg, err := registry.LoadRegistry(wc.path)
	if err != nil {
		return err
	}

	return wc.cli.printer(cmd).emit(reg.Activities, []string{"TASK TYPE", "NAME", "TIMEOUT", "RETRIES", "ERROR CODES"}, func() [][]string {
		rows := make([][]string, 0, len(reg.Activities))
		for _, a := range reg.Activities {
			rows = append(rows, []string{
				a.TaskType,
				a.DisplayName,
				dashIfEmpty(a.Timeout),
				strconv.Itoa(a.Retries),
				strings.Join(a.ErrorCodes, ","),
			})
		}
		return rows
	})
}
