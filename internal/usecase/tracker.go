package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"flight-price-tracker/internal/domain/entity"
	"flight-price-tracker/internal/domain/repository"
	"flight-price-tracker/pkg/logger"
	"flight-price-tracker/pkg/metrics"
)

// RunSummary describes one pass over a message source
type RunSummary struct {
	RunID     string
	Scanned   int
	Skipped   int
	Failed    int
	ByVariant map[entity.Variant]int
	Extracted int // priced records found in this run
	Exported  int // records handed to the exporter
	Duration  time.Duration
}

// Tracker runs the whole pipeline: source, extraction, storage and export
type Tracker struct {
	// AfterRun, when set, is called with the summary of every successful run
	AfterRun func(*RunSummary)

	source    repository.MessageSource
	processor *MessageProcessor
	store     repository.ObservationRepository
	exporter  Exporter
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// NewTracker creates a new tracker. store and exporter may be nil.
func NewTracker(
	source repository.MessageSource,
	processor *MessageProcessor,
	store repository.ObservationRepository,
	exporter Exporter,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *Tracker {
	return &Tracker{
		source:    source,
		processor: processor,
		store:     store,
		exporter:  exporter,
		metrics:   metrics,
		logger:    logger,
	}
}

// Run walks the source once, in order, and exports the result. Without an observation
// store the export holds this run's records; with one it holds the stored history.
func (t *Tracker) Run(ctx context.Context) (*RunSummary, error) {
	start := time.Now()
	summary := &RunSummary{
		RunID:     uuid.NewString(),
		ByVariant: make(map[entity.Variant]int),
	}
	log := t.logger.With("runId", summary.RunID, "source", t.source.Name())
	log.Info("Parsing messages")

	var batch []entity.PriceObservation
	err := t.source.Walk(ctx, func(msg *entity.Message) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.Scanned++

		result := t.processor.ProcessMessage(ctx, summary.RunID, msg)
		switch result.Status {
		case entity.StatusCompleted:
			summary.ByVariant[result.Variant]++
			batch = append(batch, result.Records...)
		case entity.StatusFailed:
			summary.Failed++
		default:
			summary.Skipped++
		}
		return nil
	})
	if err != nil {
		t.metrics.ErrorsCount.WithLabelValues("source").Inc()
		return summary, fmt.Errorf("walk %s source: %w", t.source.Name(), err)
	}
	summary.Extracted = len(batch)
	log.Info("Found flight records", "count", len(batch), "scanned", summary.Scanned)

	records := batch
	if t.store != nil {
		if err := t.store.SaveAll(ctx, batch); err != nil {
			t.metrics.ErrorsCount.WithLabelValues("store").Inc()
			return summary, fmt.Errorf("save observations: %w", err)
		}
		records, err = t.store.List(ctx)
		if err != nil {
			t.metrics.ErrorsCount.WithLabelValues("store").Inc()
			return summary, fmt.Errorf("list observations: %w", err)
		}
		log.Info("Observation history loaded", "count", len(records))
	}

	if t.exporter != nil {
		if len(records) == 0 {
			log.Warn("No flight data found")
		} else if err := t.exporter.Export(ctx, records); err != nil {
			t.metrics.ErrorsCount.WithLabelValues("export").Inc()
			return summary, fmt.Errorf("export: %w", err)
		}
	}
	summary.Exported = len(records)
	summary.Duration = time.Since(start)

	t.metrics.RunDuration.Observe(summary.Duration.Seconds())
	t.metrics.LastRunRecords.Set(float64(summary.Exported))

	if counts := t.processor.StatusCounts(ctx, summary.RunID); counts != nil {
		log.Info("Message log status", "counts", counts)
	}

	log.Info("Tracker run completed",
		"scanned", summary.Scanned,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"extracted", summary.Extracted,
		"exported", summary.Exported,
		"duration", summary.Duration.String())

	if t.AfterRun != nil {
		t.AfterRun(summary)
	}
	return summary, nil
}

// Watch repeats Run every interval until ctx is cancelled. Runs never overlap.
func (t *Tracker) Watch(ctx context.Context, interval time.Duration) error {
	if _, err := t.Run(ctx); err != nil {
		t.logger.Error("Tracker run failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Tracker watch stopped")
			return nil
		case <-ticker.C:
			if _, err := t.Run(ctx); err != nil {
				t.logger.Error("Tracker run failed", "error", err)
			}
		}
	}
}
