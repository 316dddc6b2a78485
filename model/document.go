package model

import "time"

type FileType string

const (
	FileTypePDF      FileType = "pdf"
	FileTypeMarkdown FileType = "md"
	FileTypeText     FileType = "txt"
	FileTypeCSV      FileType = "csv"
	FileTypeJSON     FileType = "json"
)

type Status string

const (
	// 文件已接收，等待处理
	StatusPending Status = "PENDING"

	// 文件解析和向量化处理中
	StatusProcessing Status = "PROCESSING"

	// 文件向量化处理完成，可检索
	StatusReady Status = "READY"

	// 文件处理失败，原因见 FailReason
	StatusFailed Status = "FAILED"
)

// Document 上传的财报文件
// 建立联合索引 (user_email, created_at)
type Document struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"not null;index:idx_email_created" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
	UserEmail string    `gorm:"not null;index:idx_email_created" json:"user_email"`
	FileName  string    `gorm:"not null" json:"file_name"`
	FileType  FileType  `gorm:"not null" json:"file_type"`
	FileSize  int64     `gorm:"not null" json:"file_size"`

	Status Status `gorm:"not null;default:PENDING" json:"status"`

	// 处理失败的具体原因，用于前端展示
	FailReason string `gorm:"type:text" json:"fail_reason"`

	// 向量化完成后回填
	ChunkCount        int    `json:"chunk_count"`
	EmbeddingProvider string `json:"embedding_provider"`
	EmbeddingModel    string `json:"embedding_model"`
}

func (Document) TableName() string {
	return "documents"
}
