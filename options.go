package jointown

// Option configures a World with optional dependencies.
type Option func(*worldOptions)

// worldOptions holds optional World configuration.
type worldOptions struct {
	logger  Logger
	metrics MetricsCollector
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with slog wrappers)
//
// Returns:
//   - Option: Functional option for New and NewWorld
//
// Example:
//
//	logger, _ := logging.New(os.Stderr, logging.Options{Level: "debug"})
//	w, err := jointown.New(10, jointown.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *worldOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for New and NewWorld
//
// Example:
//
//	collector := metrics.NewPrometheus(prometheus.DefaultRegisterer, "")
//	w, err := jointown.New(10, jointown.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *worldOptions) {
		o.metrics = metrics
	}
}
