package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"csvmerge/internal/app"
	"csvmerge/internal/config"
	"csvmerge/internal/domain"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// run executes the root command with args and returns the process exit code.
// Diagnostics always go to stderr; with -o json they are a JSON object.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == config.OutputJSON {
			_ = printJSON(stderr, map[string]interface{}{
				"error": err.Error(),
				"kind":  errorKind(err),
			})
		} else {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// errorKind names the pipeline stage that produced err.
func errorKind(err error) string {
	var (
		readErr    *domain.FileReadError
		schemaErr  *domain.SchemaError
		mergeErr   *domain.MergeError
		missingErr *domain.MissingColumnError
		writeErr   *domain.FileWriteError
	)
	switch {
	case errors.As(err, &readErr):
		return "file_read"
	case errors.As(err, &schemaErr):
		return "schema"
	case errors.As(err, &mergeErr):
		return "merge"
	case errors.As(err, &missingErr):
		return "missing_column"
	case errors.As(err, &writeErr):
		return "file_write"
	default:
		return "usage"
	}
}

// rootFlags holds the raw flag values before precedence is applied.
type rootFlags struct {
	file1    string
	file2    string
	outfile  string
	engine   string
	output   string
	profile  string
	logLevel string
	envFile  string
}

func newRootCmd() *cobra.Command {
	var (
		f      rootFlags
		cfg    *config.Config
		logger *slog.Logger
	)

	rootCmd := &cobra.Command{
		Use:   "csvmerge --file1 <path> --file2 <path> [--outfile <path>]",
		Short: "Combine two CSV files on CompanyID",
		Long: `Reads two CSV files, checks both carry a CompanyID column, combines them
with a full outer join on CompanyID, reports how many distinct CompanyName
values the result holds and writes it to a new CSV file.

Locations may be local paths or s3://bucket/key URIs.`,
		Example: `  # Combine two local files into combined.csv
  csvmerge --file1 companies.csv --file2 revenue.csv

  # Use the DuckDB engine and write to object storage
  csvmerge --file1 a.csv --file2 b.csv --engine duckdb --outfile s3://reports/combined.csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if f.envFile != "" {
				if err := config.LoadDotEnv(f.envFile); err != nil {
					return err
				}
			}
			resolved, err := resolveConfig(cmd.Root(), &f)
			if err != nil {
				return err
			}
			cfg = resolved
			logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))
			for _, w := range cfg.Warnings {
				logger.Warn(w)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.NewStore(cfg)
			if err != nil {
				return err
			}
			merger, closer, err := app.NewMerger(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			var reporter app.Reporter
			if cfg.Output == config.OutputText {
				reporter = app.TextReporter{W: cmd.OutOrStdout()}
			}
			runner := app.New(app.Deps{
				Store:    store,
				Merger:   merger,
				Reporter: reporter,
				Logger:   logger,
			})

			res, err := runner.Run(cmd.Context(), app.Options{
				File1:   f.file1,
				File2:   f.file2,
				Outfile: cfg.Outfile,
			})
			if err != nil {
				return err
			}
			if cfg.Output == config.OutputJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&f.output, "output", "o", config.OutputText, "Output format (text, json)")
	rootCmd.PersistentFlags().StringVarP(&f.profile, "profile", "p", "", "Config profile to use")
	rootCmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&f.envFile, "env-file", "", "Load CSVMERGE_* variables from a .env file")

	rootCmd.Flags().StringVar(&f.file1, "file1", "", "Filepath of the first file to be combined")
	rootCmd.Flags().StringVar(&f.file2, "file2", "", "Filepath of the second file to be combined")
	rootCmd.Flags().StringVar(&f.outfile, "outfile", config.DefaultOutfile, "Filepath to place the file containing the combined data")
	rootCmd.Flags().StringVar(&f.engine, "engine", config.EngineNative, "Merge engine (native, duckdb)")
	_ = rootCmd.MarkFlagRequired("file1")
	_ = rootCmd.MarkFlagRequired("file2")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCommandsCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// resolveConfig applies precedence: flag > env > profile > default.
func resolveConfig(root *cobra.Command, f *rootFlags) (*config.Config, error) {
	cfg := config.Defaults()

	userCfg, err := LoadUserConfig()
	if err != nil {
		// Config file is optional
		userCfg = &UserConfig{
			CurrentProfile: "default",
			Profiles:       map[string]Profile{},
		}
	}
	p, err := userCfg.ActiveProfile(f.profile)
	if err != nil {
		return nil, err
	}
	p.applyTo(cfg)

	config.ApplyEnv(cfg)

	persistent := root.PersistentFlags()
	if persistent.Changed("output") {
		cfg.Output = f.output
	}
	if persistent.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	local := root.Flags()
	if local.Changed("outfile") {
		cfg.Outfile = f.outfile
	}
	if local.Changed("engine") {
		cfg.Engine = f.engine
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
	return cmd
}
