package document

import (
	"context"
	"errors"
	"finreport-backend/config"
	"finreport-backend/dao"
	"finreport-backend/model"
	"finreport-backend/service/document/converter"
	"finreport-backend/service/rag"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Store 处理管线依赖的持久化操作，由dao实现
type Store interface {
	CreateDocument(doc *model.Document) error
	UpdateStatus(id string, status model.Status) error
	MarkFailed(id, reason string) error
	MarkReady(id string, chunkCount int, provider, embeddingModel string) error
	StoreChunks(ctx context.Context, chunks []model.Chunk) error
}

type daoStore struct{}

func (daoStore) CreateDocument(doc *model.Document) error { return dao.CreateDocument(doc) }
func (daoStore) UpdateStatus(id string, status model.Status) error {
	return dao.UpdateDocumentStatus(id, status)
}
func (daoStore) MarkFailed(id, reason string) error { return dao.MarkDocumentFailed(id, reason) }
func (daoStore) MarkReady(id string, chunkCount int, provider, embeddingModel string) error {
	return dao.MarkDocumentReady(id, chunkCount, provider, embeddingModel)
}
func (daoStore) StoreChunks(ctx context.Context, chunks []model.Chunk) error {
	return dao.VectorIndex{}.Store(ctx, chunks)
}

// embedder 处理管线用到的向量化能力子集
type embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	Provider() string
	Model() string
}

// Processor 上传处理管线：解析 → 切分 → 向量化 → 入库
// 在上传请求内同步执行，无后台任务
type Processor struct {
	store       Store
	convert     func(ctx context.Context, data []byte, fileType model.FileType, password string) (*converter.Result, error)
	newEmbedder func(creds rag.Credentials) (embedder, error)
}

func NewProcessor() *Processor {
	return &Processor{
		store:   daoStore{},
		convert: converter.Convert,
		newEmbedder: func(creds rag.Credentials) (embedder, error) {
			return rag.NewEmbedder(creds)
		},
	}
}

// Upload 创建文档记录并同步处理，失败时文档停留在FAILED状态并记录原因
func (p *Processor) Upload(ctx context.Context, email, fileName string, fileType model.FileType, data []byte, password string, creds rag.Credentials) (*model.Document, error) {
	doc := &model.Document{
		ID:        uuid.New().String(),
		UserEmail: email,
		FileName:  fileName,
		FileType:  fileType,
		FileSize:  int64(len(data)),
		Status:    model.StatusPending,
	}
	if err := p.store.CreateDocument(doc); err != nil {
		return nil, err
	}

	if err := p.Process(ctx, doc, data, password, creds); err != nil {
		doc.Status = model.StatusFailed
		doc.FailReason = FailReason(err)
		return doc, err
	}

	doc.Status = model.StatusReady
	return doc, nil
}

func (p *Processor) Process(ctx context.Context, doc *model.Document, data []byte, password string, creds rag.Credentials) error {
	if err := p.store.UpdateStatus(doc.ID, model.StatusProcessing); err != nil {
		return err
	}

	result, err := p.convert(ctx, data, doc.FileType, password)
	if err != nil {
		return p.fail(doc.ID, err)
	}

	chunker, err := rag.NewChunker(config.Cfg.Retrieval.ChunkWindow, config.Cfg.Retrieval.ChunkOverlap)
	if err != nil {
		return p.fail(doc.ID, err)
	}

	chunks := chunker.Split(result.Text)
	if len(chunks) == 0 {
		return p.fail(doc.ID, fmt.Errorf("document contains no extractable text"))
	}

	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		texts = append(texts, chunk.Text)
	}

	embedder, err := p.newEmbedder(creds)
	if err != nil {
		return p.fail(doc.ID, err)
	}

	vectors, err := embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return p.fail(doc.ID, err)
	}

	rows := make([]model.Chunk, 0, len(chunks))
	for i, chunk := range chunks {
		rows = append(rows, model.Chunk{
			ID:                uuid.New().String(),
			DocumentID:        doc.ID,
			ChunkIndex:        chunk.Index,
			Text:              chunk.Text,
			StartOffset:       chunk.Start,
			EndOffset:         chunk.End,
			PageLabel:         converter.PageLabel(result.Pages, chunk.Start),
			Embedding:         pgvector.NewVector(vectors[i]),
			EmbeddingProvider: embedder.Provider(),
			EmbeddingModel:    embedder.Model(),
		})
	}

	if err := p.store.StoreChunks(ctx, rows); err != nil {
		return p.fail(doc.ID, err)
	}

	if err := p.store.MarkReady(doc.ID, len(rows), embedder.Provider(), embedder.Model()); err != nil {
		return err
	}

	slog.Info("document processed",
		"document_id", doc.ID,
		"file_name", doc.FileName,
		"chunks", len(rows),
	)
	return nil
}

// fail 先落状态再向上传递，保证失败操作也有审计痕迹
func (p *Processor) fail(docID string, cause error) error {
	if err := p.store.MarkFailed(docID, FailReason(cause)); err != nil {
		slog.Error("failed to mark document failed", "document_id", docID, "err", err)
	}
	return cause
}

// FailReason 把内部错误映射为可展示的失败原因
func FailReason(err error) string {
	switch {
	case errors.Is(err, model.ErrEncryptedDocument):
		return "file is password-protected: password missing or incorrect"
	case errors.Is(err, model.ErrUnsupportedFileType):
		return "unsupported file format"
	case errors.Is(err, model.ErrTextTooLong):
		return "a section of the document is too large to embed"
	case errors.Is(err, model.ErrProviderUnavailable):
		return "embedding provider unavailable, try again later"
	case errors.Is(err, model.ErrInvalidConfiguration):
		return "server misconfiguration"
	case errors.Is(err, model.ErrStorageFailure):
		return "storage failure"
	default:
		return err.Error()
	}
}

// Reindex 用新的模型服务重新生成一个文档的全部向量并原子替换
func Reindex(ctx context.Context, doc *model.Document, creds rag.Credentials) error {
	chunks, err := dao.GetChunksByDocumentID(doc.ID)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return fmt.Errorf("document %s has no chunks to reindex", doc.ID)
	}

	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		texts = append(texts, chunk.Text)
	}

	embedder, err := rag.NewEmbedder(creds)
	if err != nil {
		return err
	}

	vectors, err := embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return err
	}

	rows := make([]pgvector.Vector, 0, len(vectors))
	for _, v := range vectors {
		rows = append(rows, pgvector.NewVector(v))
	}

	return dao.VectorIndex{}.Reindex(ctx, doc.ID, rows, embedder.Provider(), embedder.Model())
}
