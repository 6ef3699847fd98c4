package dbal

import (
	"time"

	"github.com/uber-go/tally/v4"
)

type ConnectionMetrics struct {
	Connections        tally.Counter
	Queries            tally.Counter
	QueryErrors        tally.Counter
	Transactions       tally.Counter
	QueryExecutionTime tally.Histogram
}

func NewConnectionMetrics(scope tally.Scope) *ConnectionMetrics {
	return &ConnectionMetrics{
		Connections:  scope.Counter("connections"),
		Queries:      scope.Counter("queries"),
		QueryErrors:  scope.Counter("query_errors"),
		Transactions: scope.Counter("transactions"),
		QueryExecutionTime: scope.Histogram(
			"query_execution_time",
			tally.MustMakeExponentialDurationBuckets(time.Millisecond, 2, 12),
		),
	}
}
