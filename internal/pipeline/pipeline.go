// Package pipeline orchestrates the slip ingest stages: route, segment,
// classify, extract, assemble.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/slip-tracker/internal/assemble"
	"github.com/yourusername/slip-tracker/internal/classify"
	"github.com/yourusername/slip-tracker/internal/extract"
	applog "github.com/yourusername/slip-tracker/internal/logger"
	"github.com/yourusername/slip-tracker/internal/metrics"
	"github.com/yourusername/slip-tracker/internal/models"
	"github.com/yourusername/slip-tracker/internal/router"
	"github.com/yourusername/slip-tracker/internal/segment"
)

// Config tunes the ingest stages. Zero values select each stage's defaults.
type Config struct {
	MinRouteScore    int
	MinLegConfidence float64
	SegmentLookahead int
}

// Pipeline wires the ingest stages together. Each stage is independently
// constructed so tests can exercise them in isolation.
type Pipeline struct {
	router     *router.Router
	segmenter  *segment.Segmenter
	classifier *classify.Classifier
	extractor  *extract.Extractor
	assembler  *assemble.Assembler
	logger     *logrus.Logger
	ingestLog  *applog.IngestLogger
	now        func() time.Time
}

// New builds a Pipeline with default stage tuning.
func New(logger *logrus.Logger) *Pipeline {
	return NewWithConfig(Config{}, logger)
}

// NewWithConfig builds a Pipeline with operator-supplied stage tuning.
func NewWithConfig(cfg Config, logger *logrus.Logger) *Pipeline {
	var ingestLog *applog.IngestLogger
	if logger != nil {
		ingestLog = applog.NewIngestLogger(logger)
	}
	return &Pipeline{
		router:     router.New(cfg.MinRouteScore, logger),
		segmenter:  segment.New(cfg.SegmentLookahead, logger),
		classifier: classify.New(cfg.MinLegConfidence, logger),
		extractor:  extract.New(logger),
		assembler:  assemble.New(logger),
		logger:     logger,
		ingestLog:  ingestLog,
		now:        time.Now,
	}
}

// IngestSlip runs raw OCR text through the full ingest pipeline and returns
// the assembled slip. Individual legs that fail extraction are dropped and the
// slip continues with the rest; models.ErrParseFailure is returned only when
// no leg survives. models.ErrAssemblyInconsistent is returned alongside a
// usable slip and is safe to treat as a warning.
func (p *Pipeline) IngestSlip(ctx context.Context, raw models.RawText) (models.ParsedSlip, error) {
	start := p.now()

	if err := ctx.Err(); err != nil {
		return models.ParsedSlip{}, err
	}

	normalized := p.router.Route(raw)
	if p.ingestLog != nil {
		p.ingestLog.LogRouteDecision(string(normalized.Format), normalized.Confidence, strings.Count(normalized.Text, "\n")+1)
	}

	blocks, err := p.segmenter.Segment(normalized)
	if err != nil && !errors.Is(err, models.ErrSegmentationDegenerate) {
		metrics.SlipsFailedTotal.Inc()
		return models.ParsedSlip{}, err
	}
	if p.ingestLog != nil {
		p.ingestLog.LogSegmentation(string(normalized.Format), len(blocks), errors.Is(err, models.ErrSegmentationDegenerate))
	}
	if len(blocks) == 0 {
		metrics.SlipsFailedTotal.Inc()
		return models.ParsedSlip{}, models.ErrParseFailure
	}

	legs := make([]models.ParsedLeg, 0, len(blocks))
	for _, block := range blocks {
		leg, ok := p.ingestLeg(block, normalized.Format)
		if ok {
			legs = append(legs, leg)
		}
	}

	if len(legs) == 0 {
		metrics.SlipsFailedTotal.Inc()
		return models.ParsedSlip{}, models.ErrParseFailure
	}

	stake, payout, odds := extract.SlipTotals(normalized.Format, normalized.Text)
	totals := assemble.Totals{Stake: stake, Payout: payout, Odds: odds}

	slip, err := p.assembler.Assemble(normalized.Format, legs, totals, p.now().UTC())
	if err != nil && !errors.Is(err, models.ErrAssemblyInconsistent) {
		metrics.SlipsFailedTotal.Inc()
		return models.ParsedSlip{}, err
	}
	if slip.StakeInconsistent && p.ingestLog != nil {
		if sum, ok := models.SumLegStakes(slip.Legs); ok {
			p.ingestLog.LogStakeInconsistency(slip.SlipID.String(), slip.TotalStake.StringFixed(2), sum.StringFixed(2))
		}
	}

	metrics.RecordSlipIngested(p.now().Sub(start).Seconds())

	if p.logger != nil {
		p.logger.WithFields(logrus.Fields{
			"slip_id": slip.SlipID,
			"format":  slip.SourceFormat,
			"legs":    len(slip.Legs),
			"dropped": len(blocks) - len(legs),
		}).Info("Ingested slip")
	}

	return slip, err
}

// ingestLeg classifies and extracts one block. Low classification confidence
// is logged but does not drop the leg; only extraction failures do.
func (p *Pipeline) ingestLeg(block models.LegBlock, format models.SourceFormat) (models.ParsedLeg, bool) {
	result, err := p.classifier.Classify(block)
	if p.ingestLog != nil {
		p.ingestLog.LogClassification(block.Index, string(result.BetType), string(result.League))
		if err != nil {
			p.ingestLog.WithFields(logrus.Fields{
				"block_index": block.Index,
				"confidence":  result.Confidence,
			}).Warn("Low confidence leg classification")
		}
	}

	leg, err := p.extractor.Extract(block, result.League, result.BetType, format)
	if err != nil {
		metrics.LegsDroppedTotal.Inc()
		if p.ingestLog != nil {
			field := ""
			var legErr *models.LegError
			if errors.As(err, &legErr) {
				field = legErr.Field
			}
			p.ingestLog.LogExtractionFailure(block.Index, field, err)
		}
		return models.ParsedLeg{}, false
	}
	return leg, true
}
