package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

const PageLabelUnknown = "unknown"

// Chunk 文档切分后的文本块，向量检索的基本单位
// 除重建索引（整体替换向量和模型标记）外不可变更
type Chunk struct {
	ID         string    `gorm:"primarykey;size:36" json:"id"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	DocumentID string    `gorm:"not null;size:36;index" json:"document_id"`

	// 文档内的顺序编号，定义阅读顺序
	ChunkIndex int    `gorm:"not null" json:"chunk_index"`
	Text       string `gorm:"type:text;not null" json:"text"`

	// 在全文中的字符区间 [StartOffset, EndOffset)
	StartOffset int `gorm:"not null" json:"start_offset"`
	EndOffset   int `gorm:"not null" json:"end_offset"`

	// 页码标签，无法确定时为 unknown
	PageLabel string `gorm:"not null;default:unknown" json:"page_label"`

	// 向量与生成它的模型必须成对记录，混用不同模型的向量空间会破坏距离比较
	Embedding         pgvector.Vector `gorm:"type:vector(1536)" json:"-"`
	EmbeddingProvider string          `gorm:"not null" json:"embedding_provider"`
	EmbeddingModel    string          `gorm:"not null" json:"embedding_model"`
}

func (Chunk) TableName() string {
	return "chunks"
}

// ChunkMatch 检索候选，Similarity 为与查询向量的余弦相似度
type ChunkMatch struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	ChunkIndex   int     `json:"chunk_index"`
	Text         string  `json:"text"`
	PageLabel    string  `json:"page_label"`
	Similarity   float64 `json:"similarity"`
}
