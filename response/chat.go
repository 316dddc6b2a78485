package response

type CitationResponse struct {
	DocumentName string `json:"document_name"`
	PageLabel    string `json:"page_label"`
}

type ChatResponse struct {
	SessionID string             `json:"session_id"`
	Answer    string             `json:"answer"`
	Citations []CitationResponse `json:"citations"`
	Intent    string             `json:"intent"`

	// 检索无命中时为true，与回答失败是不同含义
	NoContext bool `json:"no_context"`
}
