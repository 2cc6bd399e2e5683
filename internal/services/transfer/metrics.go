package transfer

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MetricsCollector receives one observation per Transfer call.
type MetricsCollector interface {
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)
	RecordTransactionVolume(amount, fee decimal.Decimal)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration)          {}
func (n *NoopMetricsCollector) RecordOperationResult(string, string)                   {}
func (n *NoopMetricsCollector) RecordTransactionVolume(decimal.Decimal, decimal.Decimal) {}

// LoggingMetricsCollector writes observations at debug level.
type LoggingMetricsCollector struct {
	logger *zap.Logger
}

func NewLoggingMetricsCollector(logger *zap.Logger) *LoggingMetricsCollector {
	return &LoggingMetricsCollector{logger: logger.Named("metrics")}
}

func (l *LoggingMetricsCollector) RecordOperationDuration(operation string, duration time.Duration) {
	l.logger.Debug("operation duration", zap.String("operation", operation), zap.Duration("duration", duration))
}

func (l *LoggingMetricsCollector) RecordOperationResult(operation, result string) {
	l.logger.Debug("operation result", zap.String("operation", operation), zap.String("result", result))
}

func (l *LoggingMetricsCollector) RecordTransactionVolume(amount, fee decimal.Decimal) {
	l.logger.Debug("transaction volume", zap.Stringer("amount", amount), zap.Stringer("fee", fee))
}

// resultLabel maps a Transfer outcome to a low-cardinality label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "completed"
	case isKind(err, ErrInvalidAmount):
		return "invalid_amount"
	case isKind(err, ErrSelfTransfer):
		return "self_transfer"
	case isKind(err, ErrAccountNotFound):
		return "account_not_found"
	case isKind(err, ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return "store_failure"
	}
}
