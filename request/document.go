package request

// UploadDocumentRequest 随multipart表单提交的字段，文件本体在file字段
type UploadDocumentRequest struct {
	// 加密文件的密码，可选
	Password string `form:"password"`

	Provider       string `form:"provider"`
	APIKey         string `form:"api_key" binding:"required"`
	BaseURL        string `form:"base_url"`
	EmbeddingModel string `form:"embedding_model"`
}

type ReindexDocumentRequest struct {
	Provider ProviderConfig `json:"provider" binding:"required"`
}
