package dispatcher

type Config struct {
	// Largest number of query vectors accepted by one predict call
	MaxQueries int `envconfig:"KNN_MAX_QUERIES" default:"1000"`
	// Largest number of samples accepted by one collect call
	MaxCollect int `envconfig:"KNN_MAX_COLLECT" default:"10000"`
}
