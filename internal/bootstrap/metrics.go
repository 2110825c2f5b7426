package bootstrap

import (
	"log/slog"

	"github.com/target/chunkwise/config"
	"github.com/target/chunkwise/internal/observability/statsd"
)

// BuildMetrics constructs the StatsD sink when metrics are enabled. A sink
// that cannot be initialized is reported and skipped; metrics are never worth
// failing a run over.
func BuildMetrics(logger *slog.Logger, cfg config.ObservabilityConfig) *statsd.Client {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Metrics.IsEnabled() {
		return nil
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  "chunkwise",
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialize statsd client", "error", err)
		return nil
	}
	return client
}
