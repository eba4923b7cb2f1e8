package pricing

import (
	"log/slog"

	"github.com/helmwise/helmwise-backend/internal/catalog"
)

// LogNotifier writes triggered alerts to the structured log. Delivery is
// best effort: there is nothing to fail.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// AlertTriggered implements Notifier.
func (n *LogNotifier) AlertTriggered(alert Alert, product catalog.Product, currentPrice float64) {
	n.logger.Info("price alert triggered",
		"alertId", alert.ID,
		"type", alert.Type,
		"product", product.Name,
		"target", alert.TargetPrice,
		"current", currentPrice,
		"notify", alert.NotifyMethod,
	)
}
