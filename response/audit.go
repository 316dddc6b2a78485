package response

import (
	"encoding/json"
	"time"
)

type QueryLogResponse struct {
	CreatedAt    time.Time       `json:"created_at"`
	SessionID    string          `json:"session_id,omitempty"`
	QueryText    string          `json:"query_text"`
	QueryKind    string          `json:"query_kind"`
	Provider     string          `json:"provider"`
	Model        string          `json:"model"`
	Intent       string          `json:"intent,omitempty"`
	LatencyMS    int64           `json:"latency_ms"`
	Success      bool            `json:"success"`
	ErrorMessage string          `json:"error_message,omitempty"`
	ChunksUsed   json.RawMessage `json:"chunks_used,omitempty"`
}

type GetQueryLogsResponse struct {
	Logs []QueryLogResponse `json:"logs"`
}

type ProviderUsageResponse struct {
	Provider     string  `json:"provider"`
	Queries      int64   `json:"queries"`
	Successful   int64   `json:"successful"`
	Failed       int64   `json:"failed"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

type GetProviderStatsResponse struct {
	Stats []ProviderUsageResponse `json:"stats"`
}

type PurgeLogsResponse struct {
	Deleted int64 `json:"deleted"`
}
