package dao

import (
	"context"
	"finreport-backend/model"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

const storeBatchSize = 100

// VectorIndex 基于pgvector的向量索引，实现检索管线依赖的查询接口
type VectorIndex struct{}

// Store 持久化chunk及其向量，单事务写入
func (VectorIndex) Store(ctx context.Context, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(chunks, storeBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("%w: failed to store chunks: %v", model.ErrStorageFailure, err)
	}
	return nil
}

// Search 返回指定用户文档中与查询向量余弦相似度不低于minSimilarity的至多k个chunk
// 相似度降序，相同相似度按chunk顺序编号升序，保证结果确定
// 检索范围限定在该用户自己的文档内，无命中返回空列表，不是错误
func (VectorIndex) Search(ctx context.Context, email string, vector []float32, k int, minSimilarity float64) ([]model.ChunkMatch, error) {
	vec := pgvector.NewVector(vector)

	var matches []model.ChunkMatch
	err := DB.WithContext(ctx).Raw(`
		SELECT c.id AS chunk_id,
		       c.document_id,
		       d.file_name AS document_name,
		       c.chunk_index,
		       c.text,
		       c.page_label,
		       1 - (c.embedding <=> ?) AS similarity
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.user_email = ?
		  AND d.status = ?
		  AND 1 - (c.embedding <=> ?) >= ?
		ORDER BY similarity DESC, c.chunk_index ASC
		LIMIT ?`,
		vec, email, model.StatusReady, vec, minSimilarity, k,
	).Scan(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("%w: vector search failed: %v", model.ErrStorageFailure, err)
	}

	return matches, nil
}

// Keyword 全文检索候选，作为向量检索之外的第二路召回，同样限定在该用户的文档内
// ts_rank_cd 分值归一化到 (0,1)，与余弦相似度同序但不同尺度，仅用于合并排序
func (VectorIndex) Keyword(ctx context.Context, email, query string, k int) ([]model.ChunkMatch, error) {
	var matches []model.ChunkMatch
	err := DB.WithContext(ctx).Raw(`
		SELECT c.id AS chunk_id,
		       c.document_id,
		       d.file_name AS document_name,
		       c.chunk_index,
		       c.text,
		       c.page_label,
		       ts_rank_cd(to_tsvector('english', c.text), plainto_tsquery('english', ?), 32) AS similarity
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.user_email = ?
		  AND d.status = ?
		  AND to_tsvector('english', c.text) @@ plainto_tsquery('english', ?)
		ORDER BY similarity DESC, c.chunk_index ASC
		LIMIT ?`,
		query, email, model.StatusReady, query, k,
	).Scan(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("%w: keyword search failed: %v", model.ErrStorageFailure, err)
	}

	return matches, nil
}

// Reindex 在单个事务内整体替换一个文档的全部向量和模型标记
// 并发的Search要么看到全部旧向量，要么看到全部新向量，不会出现混用
func (VectorIndex) Reindex(ctx context.Context, documentID string, vectors []pgvector.Vector, provider, embeddingModel string) error {
	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chunks []model.Chunk
		if err := tx.Where("document_id = ?", documentID).
			Order("chunk_index ASC").
			Find(&chunks).Error; err != nil {
			return err
		}

		if len(chunks) != len(vectors) {
			return fmt.Errorf("vector count %d does not match chunk count %d", len(vectors), len(chunks))
		}

		for i, chunk := range chunks {
			if err := tx.Model(&model.Chunk{}).
				Where("id = ?", chunk.ID).
				Updates(map[string]any{
					"embedding":          vectors[i],
					"embedding_provider": provider,
					"embedding_model":    embeddingModel,
				}).Error; err != nil {
				return err
			}
		}

		return tx.Model(&model.Document{}).
			Where("id = ?", documentID).
			Updates(map[string]any{
				"embedding_provider": provider,
				"embedding_model":    embeddingModel,
			}).Error
	})
	if err != nil {
		return fmt.Errorf("%w: failed to reindex document %s: %v", model.ErrStorageFailure, documentID, err)
	}
	return nil
}

func GetChunksByDocumentID(documentID string) ([]model.Chunk, error) {
	var chunks []model.Chunk
	if err := DB.Where("document_id = ?", documentID).
		Order("chunk_index ASC").
		Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return chunks, nil
}
