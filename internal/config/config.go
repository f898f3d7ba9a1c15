package config

import (
	"github.com/go-sod/knn/internal/collect"
	"github.com/go-sod/knn/internal/database"
	"github.com/go-sod/knn/internal/dispatcher"
	"github.com/go-sod/knn/internal/predict"
	"github.com/go-sod/knn/internal/predictor"
	"github.com/go-sod/knn/internal/setup"
)

var (
	_ setup.PredictorConfigProvider  = (*Config)(nil)
	_ setup.DatabaseConfigProvider   = (*Config)(nil)
	_ setup.DispatcherConfigProvider = (*Config)(nil)
)

// Config of the knn http service. Sub configs are processed one by one by
// setup.Setup, so their variables keep their own KNN_ names.
type Config struct {
	SrvAddr          string `envconfig:"KNN_ADDR" default:":8787"`
	MetricsNamespace string `envconfig:"KNN_METRICS_NAMESPACE" default:"knn"`
	Dispatcher       dispatcher.Config
	Collect          collect.Config
	Predict          predict.Config
	Database         database.Config
	Predictor        predictor.Config
}

func (c *Config) DispatcherConfig() *dispatcher.Config {
	return &c.Dispatcher
}

func (c *Config) DatabaseConfig() *database.Config {
	return &c.Database
}

func (c *Config) PredictConfig() *predictor.Config {
	return &c.Predictor
}

func (c *Config) CollectConfig() *collect.Config {
	return &c.Collect
}

func (c *Config) PredictHandlerConfig() *predict.Config {
	return &c.Predict
}
