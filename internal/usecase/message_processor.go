package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flight-price-tracker/internal/domain/entity"
	"flight-price-tracker/internal/domain/repository"
	"flight-price-tracker/pkg/logger"
	"flight-price-tracker/pkg/metrics"
)

// Skip reasons recorded in the message log and the skipped-messages metric
const (
	ReasonEmptyBody   = "empty_body"
	ReasonNoVariant   = "no_matching_variant"
	ReasonNoPrice     = "no_price"
	ReasonExtractFail = "extract_failed"
	ReasonProcessed   = "already_processed"
)

// ProcessResult is the outcome of one message
type ProcessResult struct {
	Status  string
	Reason  string
	Variant entity.Variant
	Records []entity.PriceObservation
	Error   string
}

// MessageProcessor handles variant detection and extraction for single messages
type MessageProcessor struct {
	// History, when set, lets a run skip messages the message log has as COMPLETED
	// and whose observations History already holds.
	History repository.ObservationRepository

	router     VariantRouter
	messageLog repository.MessageLogRepository
	metrics    *metrics.Metrics
	logger     logger.Logger
}

// NewMessageProcessor creates a new message processor. messageLog may be nil.
func NewMessageProcessor(
	router VariantRouter,
	messageLog repository.MessageLogRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *MessageProcessor {
	return &MessageProcessor{
		router:     router,
		messageLog: messageLog,
		metrics:    metrics,
		logger:     logger,
	}
}

// ProcessMessage detects the variant of msg and extracts its priced observations.
// Problems with a single message never fail the run; they end up in the result status.
func (mp *MessageProcessor) ProcessMessage(ctx context.Context, runID string, msg *entity.Message) ProcessResult {
	log := mp.logger.With("messageId", msg.MessageID)
	mp.metrics.MessagesScanned.Inc()

	if mp.alreadyProcessed(ctx, msg.MessageID) {
		mp.metrics.MessagesSkipped.WithLabelValues(ReasonProcessed).Inc()
		log.Debug("Message already processed")
		return ProcessResult{Status: entity.StatusSkipped, Reason: ReasonProcessed}
	}

	result := mp.process(msg)

	switch result.Status {
	case entity.StatusCompleted:
		mp.metrics.RecordsExtracted.WithLabelValues(string(result.Variant)).Add(float64(len(result.Records)))
		log.Info("Message processed",
			"variant", result.Variant,
			"records", len(result.Records))
	case entity.StatusFailed:
		mp.metrics.ErrorsCount.WithLabelValues("extract").Inc()
		mp.metrics.MessagesSkipped.WithLabelValues(result.Reason).Inc()
		log.Error("Extraction failed", "variant", result.Variant, "error", result.Error)
	default:
		mp.metrics.MessagesSkipped.WithLabelValues(result.Reason).Inc()
		log.Debug("Message skipped", "reason", result.Reason, "subject", msg.Subject)
	}

	mp.saveLog(ctx, runID, msg, result)
	return result
}

func (mp *MessageProcessor) alreadyProcessed(ctx context.Context, messageID string) bool {
	if mp.History == nil || mp.messageLog == nil {
		return false
	}

	existing, err := mp.messageLog.FindByMessageID(ctx, messageID)
	if err != nil {
		mp.metrics.ErrorsCount.WithLabelValues("message_log").Inc()
		mp.logger.Warn("Failed to look up message log", "messageId", messageID, "error", err)
		return false
	}
	if existing == nil || existing.ProcessStatus != entity.StatusCompleted {
		return false
	}

	// A COMPLETED entry may come from a run without a store
	stored, err := mp.History.HasMessage(ctx, messageID)
	if err != nil {
		mp.metrics.ErrorsCount.WithLabelValues("store").Inc()
		mp.logger.Warn("Failed to look up stored observations", "messageId", messageID, "error", err)
		return false
	}
	return stored
}

// StatusCounts returns how many messages of a run ended in each status, or nil without a message log
func (mp *MessageProcessor) StatusCounts(ctx context.Context, runID string) map[string]int64 {
	if mp.messageLog == nil {
		return nil
	}

	counts, err := mp.messageLog.CountByStatus(ctx, runID)
	if err != nil {
		mp.metrics.ErrorsCount.WithLabelValues("message_log").Inc()
		mp.logger.Warn("Failed to count message statuses", "runId", runID, "error", err)
		return nil
	}
	return counts
}

func (mp *MessageProcessor) process(msg *entity.Message) ProcessResult {
	if strings.TrimSpace(msg.Body) == "" {
		return ProcessResult{Status: entity.StatusSkipped, Reason: ReasonEmptyBody}
	}

	extractor := mp.router.GetExtractor(msg.Body)
	if extractor == nil {
		return ProcessResult{Status: entity.StatusSkipped, Reason: ReasonNoVariant}
	}

	result := ProcessResult{Variant: extractor.Variant()}
	observations, err := safeExtract(extractor, msg)
	if err != nil {
		result.Status = entity.StatusFailed
		result.Reason = ReasonExtractFail
		result.Error = err.Error()
		return result
	}

	for _, o := range observations {
		if o.HasPrice() {
			result.Records = append(result.Records, o)
		}
	}

	if len(result.Records) == 0 {
		result.Status = entity.StatusSkipped
		result.Reason = ReasonNoPrice
		return result
	}

	result.Status = entity.StatusCompleted
	return result
}

func safeExtract(extractor Extractor, msg *entity.Message) (observations []entity.PriceObservation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s extractor: %v", extractor.Variant(), r)
		}
	}()
	return extractor.Extract(msg), nil
}

func (mp *MessageProcessor) saveLog(ctx context.Context, runID string, msg *entity.Message, result ProcessResult) {
	if mp.messageLog == nil {
		return
	}

	prices := make([]string, 0, len(result.Records))
	for _, r := range result.Records {
		prices = append(prices, r.Price)
	}

	entry := &entity.MessageLog{
		MessageID:     msg.MessageID,
		Source:        msg.Source,
		Subject:       msg.Subject,
		ReceivedAt:    msg.Date,
		RunID:         runID,
		Variant:       string(result.Variant),
		ProcessStatus: result.Status,
		Reason:        result.Reason,
		ExtractedData: map[string]interface{}{
			"recordCount": len(result.Records),
			"prices":      prices,
			"encoding":    msg.Encoding,
		},
		ErrorDetail: result.Error,
		ProcessedAt: time.Now(),
	}

	if err := mp.messageLog.Save(ctx, entry); err != nil {
		mp.metrics.ErrorsCount.WithLabelValues("message_log").Inc()
		mp.logger.Error("Failed to save message log", "messageId", msg.MessageID, "error", err)
	}
}
