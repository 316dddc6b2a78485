package dao

import (
	"finreport-backend/model"
	"fmt"
	"time"
)

func CreateQueryLog(entry *model.QueryLog) error {
	if err := DB.Create(entry).Error; err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return nil
}

func GetQueryLogsByEmail(email string, limit int) ([]model.QueryLog, error) {
	var logs []model.QueryLog
	if err := DB.Where("user_email = ?", email).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return logs, nil
}

// PurgeQueryLogs 按保留策略删除一个用户的过期日志，返回删除行数
// 审计日志只能通过该入口清理，且只能清理自己的
func PurgeQueryLogs(email string, olderThan time.Time) (int64, error) {
	result := DB.Where("user_email = ? AND created_at < ?", email, olderThan).
		Delete(&model.QueryLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrStorageFailure, result.Error)
	}
	return result.RowsAffected, nil
}

// ProviderUsage 按模型服务聚合的使用统计
type ProviderUsage struct {
	Provider     string  `json:"provider"`
	Queries      int64   `json:"queries"`
	Successful   int64   `json:"successful"`
	Failed       int64   `json:"failed"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

func GetProviderUsageStats(email string) ([]ProviderUsage, error) {
	var stats []ProviderUsage
	err := DB.Model(&model.QueryLog{}).
		Select(`provider,
			COUNT(*) AS queries,
			COUNT(*) FILTER (WHERE success) AS successful,
			COUNT(*) FILTER (WHERE NOT success) AS failed,
			AVG(latency_ms) AS avg_latency_ms`).
		Where("user_email = ?", email).
		Group("provider").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return stats, nil
}
