package response

import "time"

type DocumentResponse struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	Status     string    `json:"status"`
	FailReason string    `json:"fail_reason,omitempty"`
	ChunkCount int       `json:"chunk_count"`
	Provider   string    `json:"embedding_provider,omitempty"`
	Model      string    `json:"embedding_model,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type GetDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
}
