package audit

import (
	"encoding/json"
	"finreport-backend/dao"
	"finreport-backend/model"
	"log/slog"
	"time"
)

// Entry 一次入口操作的审计信息
type Entry struct {
	UserEmail string
	SessionID string
	QueryText string
	QueryKind model.QueryKind
	Provider  string
	Model     string
	Intent    string
	Started   time.Time
	Success   bool
	Err       error
	ChunkIDs  []string
}

// Record 写入审计日志，成功和失败都记录
// 审计写入失败只告警，不影响请求结果
func Record(entry Entry) {
	var chunksJSON json.RawMessage
	if len(entry.ChunkIDs) > 0 {
		chunksJSON, _ = json.Marshal(entry.ChunkIDs)
	}

	errMessage := ""
	if entry.Err != nil {
		errMessage = entry.Err.Error()
	}

	logEntry := &model.QueryLog{
		UserEmail:    entry.UserEmail,
		SessionID:    entry.SessionID,
		QueryText:    entry.QueryText,
		QueryKind:    entry.QueryKind,
		Provider:     entry.Provider,
		Model:        entry.Model,
		Intent:       entry.Intent,
		LatencyMS:    time.Since(entry.Started).Milliseconds(),
		Success:      entry.Success,
		ErrorMessage: errMessage,
		ChunksUsed:   chunksJSON,
	}

	if err := dao.CreateQueryLog(logEntry); err != nil {
		slog.Error("failed to write audit log",
			"user_email", entry.UserEmail,
			"query_kind", entry.QueryKind,
			"err", err,
		)
	}
}

// Purge 删除一个用户超过保留期限的审计日志，不涉及其他用户的记录
func Purge(email string, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	deleted, err := dao.PurgeQueryLogs(email, cutoff)
	if err != nil {
		return 0, err
	}

	slog.Info("purged audit logs",
		"user_email", email,
		"retention_days", retentionDays,
		"deleted", deleted,
	)
	return deleted, nil
}
