package controller

import (
	"finreport-backend/config"
	"finreport-backend/dao"
	"finreport-backend/response"
	"finreport-backend/service/audit"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultQueryLogLimit = 100

func GetQueryLogs(c *gin.Context) {
	email := c.GetString("email")
	limit := defaultQueryLogLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
				Msg: ErrParseRequest.Error(),
			})
			return
		}
		limit = parsed
	}

	logs, err := dao.GetQueryLogsByEmail(email, limit)
	if err != nil {
		slog.Error(ErrGetQueryLogs.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetQueryLogs.Error(),
		})
		return
	}

	var resp response.GetQueryLogsResponse
	for _, entry := range logs {
		resp.Logs = append(resp.Logs, response.QueryLogResponse{
			CreatedAt:    entry.CreatedAt,
			SessionID:    entry.SessionID,
			QueryText:    entry.QueryText,
			QueryKind:    string(entry.QueryKind),
			Provider:     entry.Provider,
			Model:        entry.Model,
			Intent:       entry.Intent,
			LatencyMS:    entry.LatencyMS,
			Success:      entry.Success,
			ErrorMessage: entry.ErrorMessage,
			ChunksUsed:   entry.ChunksUsed,
		})
	}

	c.JSON(http.StatusOK, response.Response{
		Data: resp,
	})
}

func GetProviderStats(c *gin.Context) {
	email := c.GetString("email")
	stats, err := dao.GetProviderUsageStats(email)
	if err != nil {
		slog.Error(ErrGetProviderStats.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetProviderStats.Error(),
		})
		return
	}

	var resp response.GetProviderStatsResponse
	for _, usage := range stats {
		resp.Stats = append(resp.Stats, response.ProviderUsageResponse{
			Provider:     usage.Provider,
			Queries:      usage.Queries,
			Successful:   usage.Successful,
			Failed:       usage.Failed,
			AvgLatencyMS: usage.AvgLatencyMS,
		})
	}

	c.JSON(http.StatusOK, response.Response{
		Data: resp,
	})
}

// PurgeQueryLogs 按保留期限清理当前用户自己的审计日志，days为空时使用全局配置
func PurgeQueryLogs(c *gin.Context) {
	email := c.GetString("email")
	retentionDays := config.Cfg.Audit.RetentionDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
				Msg: ErrParseRequest.Error(),
			})
			return
		}
		retentionDays = parsed
	}

	deleted, err := audit.Purge(email, retentionDays)
	if err != nil {
		slog.Error(ErrPurgeQueryLogs.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrPurgeQueryLogs.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.PurgeLogsResponse{
			Deleted: deleted,
		},
	})
}
