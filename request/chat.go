package request

type ChatRequest struct {
	SessionID string         `json:"session_id" binding:"required"`
	Query     string         `json:"query" binding:"required"`
	Provider  ProviderConfig `json:"provider" binding:"required"`

	// 可选的检索参数覆盖，零值使用全局配置
	TopK          int     `json:"top_k"`
	MinSimilarity float64 `json:"min_similarity"`
}

type UpdateSessionTitleRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Title     string `json:"title" binding:"required"`
}
