package dao

import (
	"errors"
	"finreport-backend/model"
	"fmt"

	"gorm.io/gorm"
)

func CreateDocument(doc *model.Document) error {
	if err := DB.Create(doc).Error; err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return nil
}

func GetDocumentsByEmail(email string) ([]model.Document, error) {
	var docs []model.Document
	if err := DB.Where("user_email = ?", email).
		Order("created_at DESC").
		Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return docs, nil
}

func GetDocumentByID(id string) (*model.Document, error) {
	var doc model.Document
	if err := DB.Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return &doc, nil
}

// DeleteDocument 删除文档并级联删除其全部chunk
func DeleteDocument(email, id string) error {
	err := DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_email = ? AND id = ?", email, id).
			Delete(&model.Document{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Where("document_id = ?", id).
			Delete(&model.Chunk{}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return nil
}

func UpdateDocumentStatus(id string, status model.Status) error {
	if err := DB.Model(&model.Document{}).
		Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return nil
}

// MarkDocumentFailed 记录失败状态和具体原因
func MarkDocumentFailed(id, reason string) error {
	if err := DB.Model(&model.Document{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      model.StatusFailed,
			"fail_reason": reason,
		}).Error; err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return nil
}

// MarkDocumentReady 回填chunk数量和向量模型标记
func MarkDocumentReady(id string, chunkCount int, provider, embeddingModel string) error {
	if err := DB.Model(&model.Document{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":             model.StatusReady,
			"fail_reason":        "",
			"chunk_count":        chunkCount,
			"embedding_provider": provider,
			"embedding_model":    embeddingModel,
		}).Error; err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return nil
}
