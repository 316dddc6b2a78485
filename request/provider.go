package request

// ProviderConfig 随请求传入的模型服务凭证，仅在本次调用内有效
// 服务端不存储、不缓存
type ProviderConfig struct {
	Provider       string `json:"provider"`
	APIKey         string `json:"api_key" binding:"required"`
	BaseURL        string `json:"base_url"`
	Model          string `json:"model"`
	EmbeddingModel string `json:"embedding_model"`
}
