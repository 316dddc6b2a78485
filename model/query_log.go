package model

import (
	"encoding/json"
	"time"
)

type QueryKind string

const (
	QueryKindAsk     QueryKind = "ask"
	QueryKindUpload  QueryKind = "upload"
	QueryKindReindex QueryKind = "reindex"
)

// QueryLog 审计日志，每次入口操作一条，只追加
// 仅可通过保留策略按时间清理
type QueryLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UserEmail string    `gorm:"not null;index" json:"user_email"`
	SessionID string    `gorm:"size:36;index" json:"session_id"`

	QueryText string    `gorm:"type:text;not null" json:"query_text"`
	QueryKind QueryKind `gorm:"not null;index" json:"query_kind"`

	// 使用的模型服务（不含凭证）
	Provider string `gorm:"not null;index" json:"provider"`
	Model    string `gorm:"not null" json:"model"`

	// 路由到的查询意图
	Intent string `json:"intent"`

	LatencyMS int64 `gorm:"not null" json:"latency_ms"`
	Success   bool  `gorm:"not null" json:"success"`

	ErrorMessage string `gorm:"type:text" json:"error_message"`

	// 实际进入上下文的chunk ID列表（按排名顺序）
	ChunksUsed json.RawMessage `gorm:"type:json" json:"chunks_used"`
}

func (QueryLog) TableName() string {
	return "query_logs"
}
