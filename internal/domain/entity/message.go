package entity

import (
	"time"
)

// Message Process Status
const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
	StatusSkipped   = "SKIPPED"
)

// Text encodings a message body may have been decoded with
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

// Message represents a notification message read from a message source
type Message struct {
	MessageID string
	Source    string
	From      string
	Subject   string
	Date      time.Time // parsed Date header, zero when missing or invalid
	Body      string    // decoded text used for extraction
	Encoding  string
}

// MessageLog is the audit trail entry written for every message a run touches
type MessageLog struct {
	MessageID     string                 `bson:"messageId"`
	Source        string                 `bson:"source"`
	Subject       string                 `bson:"subject"`
	ReceivedAt    time.Time              `bson:"receivedAt"`
	RunID         string                 `bson:"runId"`
	Variant       string                 `bson:"variant"`
	ProcessStatus string                 `bson:"processStatus"`
	Reason        string                 `bson:"reason,omitempty"`
	ErrorDetail   string                 `bson:"errorDetail,omitempty"`
	ExtractedData map[string]interface{} `bson:"extractedData,omitempty"`
	ProcessedAt   time.Time              `bson:"processedAt"`
}
