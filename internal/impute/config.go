package impute

import (
	"fmt"

	"github.com/go-sod/knn/internal/predictor"
)

type Config struct {
	InputPath  string `envconfig:"KNN_IMPUTE_INPUT" toml:"input"`
	TrainPath  string `envconfig:"KNN_IMPUTE_TRAIN" toml:"train"`
	OutputPath string `envconfig:"KNN_IMPUTE_OUTPUT" toml:"output"`
	// Target column name. When empty TargetPosition is used.
	Target         string `envconfig:"KNN_IMPUTE_TARGET" toml:"target"`
	TargetPosition int    `envconfig:"KNN_IMPUTE_TARGET_POSITION" default:"2" toml:"target_position"`
	// Decimals kept after rounding predictions, negative disables rounding.
	Decimals int `envconfig:"KNN_IMPUTE_DECIMALS" default:"1" toml:"decimals"`
	// Directory for a per-run log file, empty disables it.
	LogDir string `envconfig:"KNN_IMPUTE_LOG_DIR" default:"logs" toml:"log_dir"`

	predictor.Config
}

func (c Config) PredictConfig() *predictor.Config {
	return &c.Config
}

func (c Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("input file is required")
	}
	if c.TrainPath == "" {
		return fmt.Errorf("train file is required")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output file is required")
	}
	if c.Target == "" && c.TargetPosition < 0 {
		return fmt.Errorf("target position must not be negative, got %d", c.TargetPosition)
	}
	return c.Config.Validate()
}
