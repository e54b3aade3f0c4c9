// Package cli implements iedictl, the operator command line for the IEDI analysis backend.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"iedi-workers/internal/analysis"
	"iedi-workers/internal/backend"
	"iedi-workers/internal/cache"
	"iedi-workers/internal/common/camunda"
	"iedi-workers/internal/common/config"
	"iedi-workers/internal/common/database"
	"iedi-workers/internal/common/logger"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// Backend is the part of *backend.Client the commands call.
type Backend interface {
	ListAnalyses(ctx context.Context) ([]backend.Analysis, error)
	GetAnalysis(ctx context.Context, id string) (*backend.Analysis, error)
	GetBankAnalyses(ctx context.Context, id string) ([]backend.BankAnalysis, error)
	CreateAnalysis(ctx context.Context, req *analysis.AnalysisRequest) (*backend.Analysis, error)
	DeleteAnalysis(ctx context.Context, id string) error
}

// Catalog is satisfied by *cache.BankCatalog.
type Catalog interface {
	Banks(ctx context.Context) ([]analysis.Bank, error)
	Unknown(ctx context.Context, names []string) ([]string, error)
	Invalidate(ctx context.Context) error
}

// Engine starts analysis processes; *camunda.Client satisfies it.
type Engine interface {
	StartProcess(ctx context.Context, processID string, variables map[string]interface{}) (*camunda.ProcessInstance, error)
	Close() error
}

type Deps struct {
	Backend   Backend
	Catalog   Catalog
	Builder   *analysis.Builder
	ProcessID string
	// OpenEngine dials the workflow engine; only submit needs it.
	OpenEngine func(ctx context.Context) (Engine, error)
	Close      func() error
}

// Connector builds the dependencies from the --config value ("" means the default search path).
type Connector func(ctx context.Context, configPath string) (*Deps, error)

type Options struct {
	Output  io.Writer
	Connect Connector
}

type CLI struct {
	out        io.Writer
	connect    Connector
	rootCmd    *cobra.Command
	configPath string
	format     string
}

func New(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Connect == nil {
		opts.Connect = Connect
	}

	cli := &CLI{out: opts.Output, connect: opts.Connect}
	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// ExecuteArgs runs the command tree with explicit arguments.
func (cli *CLI) ExecuteArgs(ctx context.Context, args ...string) error {
	cli.rootCmd.SetArgs(args)
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "iedictl",
		Short:         "Manage IEDI analyses",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cli.format != formatTable && cli.format != formatJSON {
				return fmt.Errorf("--output must be %q or %q, got %q", formatTable, formatJSON, cli.format)
			}
			return nil
		},
	}
	cmd.SetOut(cli.out)

	cmd.PersistentFlags().StringVar(&cli.configPath, "config", "", "Path to a config file (default: configs/config.yaml)")
	cmd.PersistentFlags().StringVarP(&cli.format, "output", "o", formatTable, "Output format: table or json")

	cmd.AddCommand(cli.newBanksCmd())
	cmd.AddCommand(cli.newAnalysesCmd())
	cmd.AddCommand(cli.newWorkersCmd())
	return cmd
}

// withDeps connects, runs fn and releases whatever connect opened.
func (cli *CLI) withDeps(cmd *cobra.Command, fn func(ctx context.Context, deps *Deps) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	deps, err := cli.connect(ctx, cli.configPath)
	if err != nil {
		return err
	}
	if deps.Close != nil {
		defer deps.Close()
	}
	return fn(ctx, deps)
}

func (cli *CLI) printer(cmd *cobra.Command) *printer {
	return &printer{w: cmd.OutOrStdout(), format: cli.format}
}

// Connect is the production Connector: backend client, optional redis bank cache and a lazy engine.
func Connect(ctx context.Context, configPath string) (*Deps, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	log := logger.NewService("iedictl", cfg.Logging.Level, "console")
	client := backend.NewFromConfig(cfg.Backend, log)

	loc, err := cfg.Backend.Location()
	if err != nil {
		return nil, err
	}

	var (
		rdb     redis.Cmdable
		closers []func() error
	)
	if cfg.Cache.Enabled {
		r := database.NewRedis(cfg.Redis)
		if err := r.Ping(ctx); err != nil {
			log.Warn("Bank cache unavailable, reading banks from the backend", map[string]interface{}{"error": err.Error()})
			r.Close()
		} else {
			rdb = r.Client
			closers = append(closers, r.Close)
		}
	}

	return &Deps{
		Backend:   client,
		Catalog:   cache.NewBankCatalog(client, rdb, config.GetDuration(cfg.Cache.BankTTL), log),
		Builder:   analysis.NewBuilder(nil, analysis.WithLocation(loc)),
		ProcessID: cfg.Camunda.AnalysisProcessID,
		OpenEngine: func(ctx context.Context) (Engine, error) {
			if cfg.Camunda.BrokerAddress == "" {
				return nil, fmt.Errorf("camunda.broker_address is required to submit analyses")
			}
			client, err := camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
			if err != nil {
				return nil, err
			}
			return client, nil
		},
		Close: func() error {
			for _, c := range closers {
				c()
			}
			return nil
		},
	}, nil
}
