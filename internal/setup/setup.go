package setup

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/go-sod/knn/internal/collect"
	"github.com/go-sod/knn/internal/database"
	"github.com/go-sod/knn/internal/dispatcher"
	"github.com/go-sod/knn/internal/impute"
	"github.com/go-sod/knn/internal/logging"
	"github.com/go-sod/knn/internal/predict"
	"github.com/go-sod/knn/internal/predictor"
	"github.com/go-sod/knn/internal/predictor/knn"
	"github.com/go-sod/knn/internal/srvenv"
)

type DispatcherConfigProvider interface {
	DispatcherConfig() *dispatcher.Config
}

type PredictorConfigProvider interface {
	PredictConfig() *predictor.Config
}

type DatabaseConfigProvider interface {
	DatabaseConfig() *database.Config
}

type HandlerConfigProvider interface {
	CollectConfig() *collect.Config
	PredictHandlerConfig() *predict.Config
}

func Setup(ctx context.Context, config interface{}) (*srvenv.SrvEnv, error) {
	logger := logging.FromContext(ctx)
	var serverEnvOpts []srvenv.Option
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	if handlerConfigProvider, ok := config.(HandlerConfigProvider); ok {
		if err := envconfig.Process("", handlerConfigProvider.CollectConfig()); err != nil {
			return nil, fmt.Errorf("dont process collect env: %w", err)
		}
		if err := envconfig.Process("", handlerConfigProvider.PredictHandlerConfig()); err != nil {
			return nil, fmt.Errorf("dont process predict env: %w", err)
		}
	}

	var (
		db                  *database.DB
		estimatorProvideFn  knn.ProvideFn
		dispatcherProvideFn dispatcher.ProvideFn
	)
	if dbConfigProvider, ok := config.(DatabaseConfigProvider); ok {
		logger.Info("Configuring db")
		cfg := dbConfigProvider.DatabaseConfig()
		if err := envconfig.Process("", cfg); err != nil {
			return nil, fmt.Errorf("dont process db env: %w", err)
		}
		dbFromEnv, err := database.NewFromEnv(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		db = dbFromEnv
		serverEnvOpts = append(serverEnvOpts, srvenv.WithDatabase(db))
	}

	if predictConfigProvider, ok := config.(PredictorConfigProvider); ok {
		logger.Info("Configuring estimator")
		cfg := predictConfigProvider.PredictConfig()
		if err := envconfig.Process("", cfg); err != nil {
			return nil, fmt.Errorf("dont process predictor env: %w", err)
		}
		provideFn, err := ProvideEstimatorFor(cfg)
		if err != nil {
			return nil, fmt.Errorf("unable create estimator provide function: %w", err)
		}
		estimatorProvideFn = provideFn
		serverEnvOpts = append(serverEnvOpts, srvenv.WithEstimator(estimatorProvideFn))
	}

	if dispatcherConfigProvider, ok := config.(DispatcherConfigProvider); ok && db != nil && estimatorProvideFn != nil {
		logger.Info("Configuring dispatcher")
		provideFn, err := ProvideDispatcherFor(dispatcherConfigProvider, estimatorProvideFn, db)
		if err != nil {
			return nil, fmt.Errorf("unable create dispatcher provide function: %w", err)
		}
		dispatcherProvideFn = provideFn
		serverEnvOpts = append(serverEnvOpts, srvenv.WithDispatcher(dispatcherProvideFn))
	}

	return srvenv.New(serverEnvOpts...), nil
}

func ProvideEstimatorFor(cfg *predictor.Config) (knn.ProvideFn, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid predictor config: %w", err)
	}
	return func() (*knn.Estimator, error) {
		e, err := knn.NewFromConfig(*cfg)
		if err != nil {
			return nil, fmt.Errorf("unable create estimator instance: %w", err)
		}
		return e, nil
	}, nil
}

func ProvideDispatcherFor(provider DispatcherConfigProvider, provideEstimatorFn knn.ProvideFn, db *database.DB) (dispatcher.ProvideFn, error) {
	cfg := provider.DispatcherConfig()
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("dont process dispatcher env: %w", err)
	}
	return func() (dispatcher.Manager, error) {
		estimator, err := provideEstimatorFn()
		if err != nil {
			return nil, err
		}
		m, err := dispatcher.New(
			db,
			estimator,
			dispatcher.WithMaxQueries(cfg.MaxQueries),
			dispatcher.WithMaxCollect(cfg.MaxCollect),
		)
		if err != nil {
			return nil, fmt.Errorf("unable create dispatcher instance: %w", err)
		}
		return m, nil
	}, nil
}

// LoadImputeConfig fills an impute config from the environment and then,
// when path is set, from a toml file whose values take precedence.
func LoadImputeConfig(path string) (*impute.Config, error) {
	var cfg impute.Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}
	if path == "" {
		return &cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("decoding config file %s: %w", path, err)
	}
	return &cfg, nil
}
