package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-sod/knn/internal/impute"
	"github.com/go-sod/knn/internal/logging"
	"github.com/go-sod/knn/internal/metrics"
	"github.com/go-sod/knn/internal/predictor"
	"github.com/go-sod/knn/internal/setup"
)

// log file name pattern: hour_minute_day_month_year
const logFileLayout = "log_15_04_02_01_2006.log"

var imputeOpts struct {
	configPath     string
	input          string
	train          string
	output         string
	debug          bool
	k              int
	method         string
	target         string
	targetPosition int
	decimals       int
	logDir         string
}

var imputeCmd = &cobra.Command{
	Use:   "impute",
	Short: "Fill the missing cells of a csv column from the nearest rows of a training csv",
	Args:  cobra.NoArgs,
	RunE:  runImpute,
}

func init() {
	flag := imputeCmd.Flags()
	flag.StringVar(&imputeOpts.configPath, "config", "", "toml file with the impute settings")
	flag.StringVarP(&imputeOpts.input, "input", "i", "", "csv file with missing values")
	flag.StringVarP(&imputeOpts.train, "train", "t", "", "csv file with complete rows")
	flag.StringVarP(&imputeOpts.output, "output", "o", "", "csv file to write")
	flag.BoolVarP(&imputeOpts.debug, "debug", "d", false, "debug logging")
	flag.IntVar(&imputeOpts.k, "k", 2, "number of neighbors")
	flag.StringVar(&imputeOpts.method, "method", string(predictor.MethodRegression), "regression or classification")
	flag.StringVar(&imputeOpts.target, "target", "", "name of the column to fill")
	flag.IntVar(&imputeOpts.targetPosition, "target-position", 2, "position of the column to fill when --target is empty")
	flag.IntVar(&imputeOpts.decimals, "decimals", 1, "decimals kept in filled values, negative keeps all")
	flag.StringVar(&imputeOpts.logDir, "log-dir", "logs", "directory for a per run log file, empty disables it")
}

func runImpute(cmd *cobra.Command, _ []string) error {
	cfg, err := setup.LoadImputeConfig(imputeOpts.configPath)
	if err != nil {
		return fmt.Errorf("setup.LoadImputeConfig: %w", err)
	}
	applyImputeFlags(cmd, cfg)

	level := "info"
	if imputeOpts.debug {
		level = "debug"
	}
	var outputs []string
	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return fmt.Errorf("creating log dir: %w", err)
		}
		outputs = append(outputs, filepath.Join(cfg.LogDir, time.Now().Format(logFileLayout)))
	}
	logger := logging.NewLogger(level, true, outputs...)
	defer func() { _ = logger.Sync() }()
	ctx := logging.WithLogger(cmd.Context(), logger)

	if err := metrics.Register(); err != nil {
		return err
	}
	job, err := impute.New(*cfg)
	if err != nil {
		return fmt.Errorf("impute.New: %w", err)
	}
	result, err := job.Run(ctx)
	if err != nil {
		return fmt.Errorf("impute.Run: %w", err)
	}
	logger.Debugw("impute result",
		"run", result.RunID.String(),
		"reference", result.Reference,
		"imputed", result.Imputed,
		"skippedTrain", result.SkippedTrain,
		"skippedQueries", result.SkippedQueries,
	)
	return nil
}

// applyImputeFlags overrides cfg with the flags given on the command line.
func applyImputeFlags(cmd *cobra.Command, cfg *impute.Config) {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.InputPath = imputeOpts.input
	}
	if flags.Changed("train") {
		cfg.TrainPath = imputeOpts.train
	}
	if flags.Changed("output") {
		cfg.OutputPath = imputeOpts.output
	}
	if flags.Changed("k") {
		cfg.K = imputeOpts.k
	}
	if flags.Changed("method") {
		cfg.Method = predictor.Method(imputeOpts.method)
	}
	if flags.Changed("target") {
		cfg.Target = imputeOpts.target
	}
	if flags.Changed("target-position") {
		cfg.TargetPosition = imputeOpts.targetPosition
	}
	if flags.Changed("decimals") {
		cfg.Decimals = imputeOpts.decimals
	}
	if flags.Changed("log-dir") {
		cfg.LogDir = imputeOpts.logDir
	}
}
