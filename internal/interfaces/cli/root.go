package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/turtacn/molnotation/internal/application/notation"
	"github.com/turtacn/molnotation/internal/config"
	"github.com/turtacn/molnotation/internal/infrastructure/database/redis"
	"github.com/turtacn/molnotation/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molnotation/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/molnotation/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration
	NoCache      bool
	MetricsFile  string
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Service      notation.Service
	OutputFormat string
	Timeout      time.Duration
	NoCache      bool

	registry    *promclient.Registry
	metricsFile string
	closers     []func() error
}

// NewRootCommand creates the root cobra command with all global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "molnotation",
		Short: "Write molecular graphs as SMILES or SMARTS",
		Long: "molnotation reads a molecular graph document (JSON or YAML) and writes it as a\n" +
			"SMILES or SMARTS string, including stereochemistry and the ChemAxon\n" +
			"extension block for data the plain notation cannot carry.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPostRun(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./molnotation.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")
	pf.StringVarP(&opts.OutputFormat, "output", "o", OutputText, "output format (text, json)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "overall operation timeout")
	pf.BoolVar(&opts.NoCache, "no-cache", false, "bypass the redis result cache")
	pf.StringVar(&opts.MetricsFile, "metrics-file", "", "write metrics in Prometheus text format to this file on exit")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.InvalidParam(err.Error())
	})

	cmd.AddCommand(
		NewSmilesCmd(),
		NewSmartsCmd(),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// version needs no configuration
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "molnotation %s (commit: %s, built: %s)\n", Version, GitCommit, BuildDate)
			return nil
		},
	}
}

// persistentPreRun loads config, builds the logger and the notation service,
// then stores CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	switch strings.ToLower(opts.OutputFormat) {
	case OutputText, OutputJSON:
	default:
		return errors.InvalidParam("unknown output format").WithDetailf("output=%s", opts.OutputFormat)
	}

	cfg, err := initConfig(opts)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfig, "config initialization failed")
	}

	logger, err := initLogger(cmd.ErrOrStderr(), cfg, opts)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfig, "logger initialization failed")
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		OutputFormat: strings.ToLower(opts.OutputFormat),
		Timeout:      opts.Timeout,
		NoCache:      opts.NoCache,
		metricsFile:  opts.MetricsFile,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var svcOpts []notation.Option
	if cfg.Redis.Enabled && !opts.NoCache {
		cache, closeFn, cacheErr := initCache(ctx, cfg, logger)
		if cacheErr != nil {
			logger.Warn("result cache unavailable, continuing without it", logging.Err(cacheErr))
		} else {
			svcOpts = append(svcOpts, notation.WithCache(cache))
			cliCtx.closers = append(cliCtx.closers, closeFn)
		}
	}
	if cfg.Metrics.Enabled || opts.MetricsFile != "" {
		metrics, registry, metricsErr := initMetrics(cfg, logger)
		if metricsErr != nil {
			logger.Warn("metrics disabled", logging.Err(metricsErr))
		} else {
			svcOpts = append(svcOpts, notation.WithMetrics(metrics))
			cliCtx.registry = registry
		}
	}
	cliCtx.Service = notation.NewService(cfg.Notation, logger, svcOpts...)

	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// persistentPostRun flushes metrics and releases connections.
func persistentPostRun(cmd *cobra.Command) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil
	}
	var writeErr error
	if cliCtx.registry != nil && cliCtx.metricsFile != "" {
		if err := promclient.WriteToTextfile(cliCtx.metricsFile, cliCtx.registry); err != nil {
			writeErr = errors.Wrap(err, errors.ErrCodeInternal, "cannot write metrics file").
				WithDetailf("path=%s", cliCtx.metricsFile)
		}
	}
	var closeErr error
	for _, closeFn := range cliCtx.closers {
		closeErr = multierr.Append(closeErr, closeFn())
	}
	if closeErr != nil {
		cliCtx.Logger.Warn("close failed", logging.Err(closeErr))
	}
	_ = cliCtx.Logger.Sync()
	return writeErr
}

// initConfig loads configuration with priority: flags > env > file > defaults.
func initConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}

	searchPaths := []string{"./molnotation.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".molnotation", "config.yaml"))
	}
	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			return config.Load(p)
		}
	}

	// No config file found; environment and defaults only.
	return config.LoadFromEnv()
}

// initLogger creates a logger writing to w, the command's stderr.
func initLogger(w io.Writer, cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	logCfg := cfg.Log
	if opts.LogLevel != "" {
		if _, err := logging.ParseLevel(opts.LogLevel); err != nil {
			return nil, err
		}
		logCfg.Level = strings.ToLower(opts.LogLevel)
	}
	if opts.Verbose {
		logCfg.Level = logging.LevelDebug
	}
	logger := logging.NewWriterLogger(logCfg, w)
	logging.SetDefault(logger)
	return logger, nil
}

// initCache connects to redis and wraps the client in the result cache.
func initCache(ctx context.Context, cfg *config.Config, logger logging.Logger) (redis.Cache, func() error, error) {
	client, err := redis.NewClient(ctx, &cfg.Redis, logger)
	if err != nil {
		return nil, nil, err
	}
	opts := []redis.CacheOption{
		redis.WithDefaultTTL(cfg.Notation.CacheTTL),
		redis.WithJitter(cfg.Notation.CacheJitter),
	}
	if cfg.Redis.KeyPrefix != "" {
		opts = append(opts, redis.WithPrefix(cfg.Redis.KeyPrefix))
	}
	return redis.NewRedisCache(client, logger, opts...), client.Close, nil
}

func initMetrics(cfg *config.Config, logger logging.Logger) (*prometheus.NotationMetrics, *promclient.Registry, error) {
	mc := cfg.Metrics
	if mc.Namespace == "" {
		mc.Namespace = config.DefaultMetricsNamespace
	}
	collector, err := prometheus.NewMetricsCollector(mc, logger)
	if err != nil {
		return nil, nil, err
	}
	return prometheus.NewNotationMetrics(collector), collector.Registry(), nil
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}

	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// Execute runs the CLI with args and returns the process exit status.
func Execute(ctx context.Context, args []string) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		PrintError(rootCmd, err)
		return ExitStatus(err)
	}
	return errors.ExitOK
}

// ExitStatus maps a command error onto the process exit status.  Errors
// raised by cobra itself, such as an unknown command, count as usage errors.
func ExitStatus(err error) int {
	if err == nil {
		return errors.ExitOK
	}
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		return errors.ExitClientError
	}
	return errors.ExitStatusForCode(code)
}

// PrintResult outputs data in the format specified by CLIContext.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return printJSON(cmd, data)
	}

	switch cliCtx.OutputFormat {
	case OutputJSON:
		return printJSON(cmd, data)
	default:
		return printText(cmd, data)
	}
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(cmd *cobra.Command, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprintln(cmd.OutOrStdout(), v.String())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}
