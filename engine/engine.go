package engine

import (
	"context"
	"emcts/experiments/metrics"
)

type Engine interface {
	// Run plays a game till there's a winner or the move cap is reached
	Run(ctx context.Context) (gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
