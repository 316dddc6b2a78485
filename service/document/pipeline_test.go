package document

import (
	"context"
	"errors"
	"finreport-backend/config"
	"finreport-backend/model"
	"finreport-backend/service/document/converter"
	"finreport-backend/service/rag"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	config.Cfg = config.Config{
		Retrieval: config.RetrievalConfig{
			ChunkWindow:         50,
			ChunkOverlap:        10,
			SimilarityThreshold: 0.7,
			TopK:                10,
			ContextBudget:       8000,
			MaxEmbedChars:       32000,
			EmbedBatchSize:      10,
			RetryAttempts:       3,
		},
	}
	os.Exit(m.Run())
}

// fakeStore 记录状态流转和落库的chunk
type fakeStore struct {
	created  *model.Document
	statuses []model.Status
	failed   string
	ready    bool
	chunks   []model.Chunk
}

func (s *fakeStore) CreateDocument(doc *model.Document) error {
	s.created = doc
	return nil
}

func (s *fakeStore) UpdateStatus(_ string, status model.Status) error {
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *fakeStore) MarkFailed(_ string, reason string) error {
	s.statuses = append(s.statuses, model.StatusFailed)
	s.failed = reason
	return nil
}

func (s *fakeStore) MarkReady(_ string, _ int, _, _ string) error {
	s.statuses = append(s.statuses, model.StatusReady)
	s.ready = true
	return nil
}

func (s *fakeStore) StoreChunks(_ context.Context, chunks []model.Chunk) error {
	s.chunks = chunks
	return nil
}

type fakeEmbedder struct {
	dim int
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for range texts {
		vectors = append(vectors, make([]float32, f.dim))
	}
	return vectors, nil
}

func (f *fakeEmbedder) Provider() string { return "openai" }
func (f *fakeEmbedder) Model() string    { return "text-embedding-3-small" }

func newTestProcessor(store *fakeStore, convertResult *converter.Result, convertErr error) *Processor {
	return &Processor{
		store: store,
		convert: func(_ context.Context, _ []byte, _ model.FileType, _ string) (*converter.Result, error) {
			return convertResult, convertErr
		},
		newEmbedder: func(_ rag.Credentials) (embedder, error) {
			return &fakeEmbedder{dim: 4}, nil
		},
	}
}

func TestUploadProcessesDocument(t *testing.T) {
	store := &fakeStore{}
	text := "Revenue was $1,000,000 in Q1. Net income was $200,000 for the same quarter."
	processor := newTestProcessor(store, &converter.Result{
		Text: text,
		Pages: []converter.PageBoundary{
			{Label: "page_1", Start: 0, End: len([]rune(text))},
		},
	}, nil)

	doc, err := processor.Upload(context.Background(), "user@example.com", "q1.txt", model.FileTypeText, []byte(text), "", rag.Credentials{APIKey: "sk-test"})
	require.NoError(t, err)

	assert.Equal(t, model.StatusReady, doc.Status)
	assert.Equal(t, "user@example.com", store.created.UserEmail)
	assert.Equal(t, []model.Status{model.StatusProcessing, model.StatusReady}, store.statuses)
	require.NotEmpty(t, store.chunks)

	for i, chunk := range store.chunks {
		assert.Equal(t, doc.ID, chunk.DocumentID)
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.Equal(t, "page_1", chunk.PageLabel)
		assert.Equal(t, "openai", chunk.EmbeddingProvider)
		assert.NotEmpty(t, chunk.ID)
	}
}

func TestUploadEncryptedDocumentFails(t *testing.T) {
	store := &fakeStore{}
	processor := newTestProcessor(store, nil, model.ErrEncryptedDocument)

	doc, err := processor.Upload(context.Background(), "user@example.com", "locked.pdf", model.FileTypePDF, []byte("%PDF"), "", rag.Credentials{APIKey: "sk-test"})

	require.ErrorIs(t, err, model.ErrEncryptedDocument)
	assert.Equal(t, model.StatusFailed, doc.Status)
	assert.Equal(t, "file is password-protected: password missing or incorrect", doc.FailReason)
	assert.False(t, store.ready, "a failed document must never become ready")
	assert.Equal(t, []model.Status{model.StatusProcessing, model.StatusFailed}, store.statuses)
}

func TestUploadEmptyDocumentFails(t *testing.T) {
	store := &fakeStore{}
	processor := newTestProcessor(store, &converter.Result{Text: ""}, nil)

	_, err := processor.Upload(context.Background(), "user@example.com", "empty.txt", model.FileTypeText, nil, "", rag.Credentials{APIKey: "sk-test"})

	require.Error(t, err)
	assert.False(t, store.ready)
	assert.NotEmpty(t, store.failed)
}

func TestUploadProviderFailureRecordsReason(t *testing.T) {
	store := &fakeStore{}
	processor := newTestProcessor(store, &converter.Result{Text: "some report text"}, nil)
	processor.newEmbedder = func(_ rag.Credentials) (embedder, error) {
		return nil, model.ErrProviderUnavailable
	}

	_, err := processor.Upload(context.Background(), "user@example.com", "q1.txt", model.FileTypeText, nil, "", rag.Credentials{APIKey: "sk-test"})

	require.ErrorIs(t, err, model.ErrProviderUnavailable)
	assert.Equal(t, "embedding provider unavailable, try again later", store.failed)
}

func TestFailReasonMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{model.ErrEncryptedDocument, "file is password-protected: password missing or incorrect"},
		{model.ErrUnsupportedFileType, "unsupported file format"},
		{model.ErrTextTooLong, "a section of the document is too large to embed"},
		{model.ErrProviderUnavailable, "embedding provider unavailable, try again later"},
		{model.ErrInvalidConfiguration, "server misconfiguration"},
		{model.ErrStorageFailure, "storage failure"},
		{errors.New("boom"), "boom"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FailReason(tc.err))
	}
}
