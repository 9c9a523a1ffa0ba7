package types

// Logger defines methods for structured logging.
//
// Compatible with zap.SugaredLogger, slog wrappers and other structured
// loggers. All methods accept key-value pairs for structured fields.
type Logger interface {
	// Debug logs a message at DebugLevel.
	Debug(msg string, keysAndValues ...any)

	// Info logs a message at InfoLevel.
	Info(msg string, keysAndValues ...any)

	// Warn logs a message at WarnLevel.
	Warn(msg string, keysAndValues ...any)

	// Error logs a message at ErrorLevel.
	Error(msg string, keysAndValues ...any)

	// Fatal logs a message at FatalLevel and calls os.Exit(1).
	Fatal(msg string, keysAndValues ...any)
}

// MetricsCollector defines methods for recording distribution metrics.
//
// Implementations should be non-blocking and must be safe for concurrent use:
// several Worlds may share one collector.
//
// This interface composes smaller, component-focused interfaces.
type MetricsCollector interface {
	WorldMetrics
	TierMetrics
}

// WorldMetrics defines metrics recorded by the World coordinator.
type WorldMetrics interface {
	// RecordStep records one completed add/remove step.
	//
	// Parameters:
	//   - action: "add" or "remove"
	//   - duration: Time taken in seconds, even-out included
	RecordStep(action string, duration float64)

	// RecordPersons sets the current member count of a tier (gauge metric).
	RecordPersons(tier Tier, count int)

	// RecordFreeObjects sets the current number of free objects (gauge metric).
	RecordFreeObjects(count int)

	// RecordEvictions records objects taken from lowprio owners by a new
	// normal person.
	RecordEvictions(count int)

	// RecordPersonNotFound records a removal of an unknown person.
	RecordPersonNotFound()

	// RecordSnapshotDropped records a snapshot that could not be delivered to
	// a slow subscriber.
	RecordSnapshotDropped()
}

// TierMetrics defines metrics recorded by a tier while evening out capitals.
type TierMetrics interface {
	// RecordExchangeChain records one applied exchange chain.
	//
	// Parameters:
	//   - tier: Tier the chain was applied in
	//   - hops: Number of objects moved along the chain (1 = direct transfer)
	RecordExchangeChain(tier Tier, hops int)
}
