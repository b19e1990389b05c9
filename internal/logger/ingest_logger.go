// Package logger provides ingest pipeline logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// IngestLogger provides dedicated logging for pipeline stages.
type IngestLogger struct {
	*logrus.Entry
}

// NewIngestLogger creates a new ingest logger.
func NewIngestLogger(baseLogger *logrus.Logger) *IngestLogger {
	return &IngestLogger{
		Entry: baseLogger.WithField("component", "ingest"),
	}
}

// LogRouteDecision logs the format detected for a raw slip.
func (il *IngestLogger) LogRouteDecision(sourceFormat string, confidence float64, lineCount int) {
	il.WithFields(logrus.Fields{
		"source_format": sourceFormat,
		"confidence":    confidence,
		"line_count":    lineCount,
	}).Debug("Slip routed")
}

// LogSegmentation logs the block split for a normalized slip.
func (il *IngestLogger) LogSegmentation(sourceFormat string, blockCount int, degenerate bool) {
	il.WithFields(logrus.Fields{
		"source_format": sourceFormat,
		"block_count":   blockCount,
		"degenerate":    degenerate,
	}).Debug("Slip segmented")
}

// LogClassification logs the bet type and league decided for a block.
func (il *IngestLogger) LogClassification(blockIndex int, betType, league string) {
	il.WithFields(logrus.Fields{
		"block_index": blockIndex,
		"bet_type":    betType,
		"league":      league,
	}).Debug("Block classified")
}

// LogExtractionFailure logs a block that could not be turned into a leg.
func (il *IngestLogger) LogExtractionFailure(blockIndex int, field string, err error) {
	il.WithFields(logrus.Fields{
		"block_index": blockIndex,
		"field":       field,
		"error":       err,
	}).Warn("Leg extraction failed")
}

// LogStakeInconsistency logs a slip whose stated stake disagrees with its legs.
func (il *IngestLogger) LogStakeInconsistency(slipID, statedStake, summedStake string) {
	il.WithFields(logrus.Fields{
		"slip_id":      slipID,
		"stated_stake": statedStake,
		"summed_stake": summedStake,
	}).Warn("Slip stake inconsistent with leg stakes")
}
