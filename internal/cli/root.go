// Package cli implements the sabergen command line.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries the state shared by the sabergen commands of one execution.
type app struct {
	configFile string
	verbose    bool

	cfg    *Config
	logger *zap.Logger
}

// NewRootCommand returns the sabergen command tree. Output goes to the
// command's configured writers.
func NewRootCommand() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "sabergen",
		Short: "Validate saber declarations and generate injector code",
		Long: `sabergen reads binding, module, component and injection target
declarations, validates the component hierarchy they describe, and generates
the Go providers and configurators that build it at run time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ./sabergen.yaml when present)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newAnalyzeCommand(a),
		newGenerateCommand(a),
		newBuildCommand(a),
		newVersionCommand(),
	)
	return root
}

// Execute runs sabergen with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln("Error:", err)
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log.Level, a.verbose)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger.Named("sabergen")
	a.logger.Debug("configuration loaded",
		zap.Strings("sources", cfg.Sources),
		zap.String("manifest", cfg.Manifest),
		zap.String("output", cfg.Output.Dir),
	)
	return nil
}
