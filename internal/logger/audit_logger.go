// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides a dedicated audit trail for slip lifecycle events.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogSlipIngested logs a successfully parsed slip.
func (al *AuditLogger) LogSlipIngested(slipID, sourceFormat string, legCount int, totalStake string, ingestedAt time.Time) {
	al.WithFields(logrus.Fields{
		"slip_id":       slipID,
		"source_format": sourceFormat,
		"leg_count":     legCount,
		"total_stake":   totalStake,
		"ingested_at":   ingestedAt.Unix(),
	}).Info("Slip ingested")
}

// LogEventBound logs a leg binding to a live event.
func (al *AuditLogger) LogEventBound(betID, legID, eventID string, score float64) {
	al.WithFields(logrus.Fields{
		"bet_id":      betID,
		"leg_id":      legID,
		"event_id":    eventID,
		"match_score": score,
	}).Info("Leg bound to event")
}

// LogLegSettled logs a leg result transition.
func (al *AuditLogger) LogLegSettled(betID, legID, eventID, result string) {
	al.WithFields(logrus.Fields{
		"bet_id":   betID,
		"leg_id":   legID,
		"event_id": eventID,
		"result":   result,
	}).Info("Leg settled")
}

// LogBetStateChange logs a tracked bet status transition.
func (al *AuditLogger) LogBetStateChange(betID string, oldStatus, newStatus string) {
	al.WithFields(logrus.Fields{
		"bet_id":     betID,
		"old_status": oldStatus,
		"new_status": newStatus,
	}).Info("Bet status changed")
}

// LogBindingExpired logs a binding that exhausted its match attempts.
func (al *AuditLogger) LogBindingExpired(betID, legID string, attempts int) {
	al.WithFields(logrus.Fields{
		"bet_id":   betID,
		"leg_id":   legID,
		"attempts": attempts,
	}).Warn("Binding expired without a matching event")
}
