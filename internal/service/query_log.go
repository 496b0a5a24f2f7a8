package service

import "context"

// QueryLogResult captures a single retrieved match for logging.
type QueryLogResult struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
	Topic  string  `json:"topic,omitempty"`
}

// QueryLogEntry captures a retrieval request and its results.
type QueryLogEntry struct {
	ExpertID   string
	Question   string
	TopScore   float64
	DurationMs int
	Results    []QueryLogResult
}

// QueryLogRepository persists retrieval logs.
type QueryLogRepository interface {
	CreateQueryLog(ctx context.Context, entry QueryLogEntry) (string, error)
}
