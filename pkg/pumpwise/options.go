package pumpwise

type options struct {
	configPath     string
	modelDir       string
	trainingData   string
	sourceProvider string
	logLevel       string
}

// Option configures an Engine.
type Option func(*options)

// WithConfigFile loads configuration from the given yaml file before
// applying other options and environment overrides.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configPath = path
	}
}

// WithModelDir sets the directory holding model, preprocessor and
// metadata artifacts. Default: "models".
func WithModelDir(dir string) Option {
	return func(o *options) {
		o.modelDir = dir
	}
}

// WithTrainingData sets the training source location read by Train and
// by the auto-training fallback. Default: "data/training_data.csv".
func WithTrainingData(location string) Option {
	return func(o *options) {
		o.trainingData = location
	}
}

// WithSourceProvider selects the registered training source provider.
// Default: "csv".
func WithSourceProvider(name string) Option {
	return func(o *options) {
		o.sourceProvider = name
	}
}

// WithLogLevel overrides the configured log level: "debug", "info",
// "warn" or "error".
func WithLogLevel(level string) Option {
	return func(o *options) {
		o.logLevel = level
	}
}

func defaultOptions() options {
	return options{
		sourceProvider: "csv",
	}
}
