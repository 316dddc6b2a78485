package rag

import (
	"context"
	"errors"
	"finreport-backend/model"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbeddingClient 可配置前N次调用失败的伪向量化客户端
type fakeEmbeddingClient struct {
	calls    int
	failures int
}

func (f *fakeEmbeddingClient) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("upstream timeout")
	}

	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vectors = append(vectors, []float32{float32(len(text)), 1})
	}
	return vectors, nil
}

func newTestEmbedder(t *testing.T, client *fakeEmbeddingClient) *Embedder {
	t.Helper()
	embedder, err := newEmbedder(client, "openai", "text-embedding-3-small")
	require.NoError(t, err)
	return embedder
}

func TestEmbedTextsPreservesOrder(t *testing.T) {
	client := &fakeEmbeddingClient{}
	embedder := newTestEmbedder(t, client)

	texts := []string{"a", "ccc", "bb"}
	vectors, err := embedder.EmbedTexts(context.Background(), texts)
	require.NoError(t, err)

	require.Len(t, vectors, len(texts))
	for i, text := range texts {
		assert.Equal(t, float32(len(text)), vectors[i][0])
	}
}

func TestEmbedTextsRejectsOversizeBeforeCalling(t *testing.T) {
	client := &fakeEmbeddingClient{}
	embedder := newTestEmbedder(t, client)
	embedder.maxChars = 50

	_, err := embedder.EmbedTexts(context.Background(), []string{
		"short",
		strings.Repeat("x", 51),
	})

	require.ErrorIs(t, err, model.ErrTextTooLong)
	assert.Zero(t, client.calls, "oversize input must be rejected without a provider call")
}

func TestEmbedTextsRetriesTransientFailure(t *testing.T) {
	client := &fakeEmbeddingClient{failures: 2}
	embedder := newTestEmbedder(t, client)

	vectors, err := embedder.EmbedTexts(context.Background(), []string{"q"})
	require.NoError(t, err)

	assert.Len(t, vectors, 1)
	assert.Equal(t, 3, client.calls)
}

func TestEmbedTextsExhaustsRetries(t *testing.T) {
	client := &fakeEmbeddingClient{failures: 100}
	embedder := newTestEmbedder(t, client)

	_, err := embedder.EmbedTexts(context.Background(), []string{"q"})

	require.ErrorIs(t, err, model.ErrProviderUnavailable)
	assert.Equal(t, 3, client.calls)
}

func TestEmbedQueryReturnsSingleVector(t *testing.T) {
	embedder := newTestEmbedder(t, &fakeEmbeddingClient{})

	vector, err := embedder.EmbedQuery(context.Background(), "total revenue")
	require.NoError(t, err)
	assert.Equal(t, float32(len("total revenue")), vector[0])
}

func TestCredentialsResolvedFillsDefaults(t *testing.T) {
	resolved := Credentials{APIKey: "sk-test"}.Resolved()

	assert.Equal(t, "openai", resolved.Provider)
	assert.Equal(t, "https://api.openai.com/v1", resolved.BaseURL)
	assert.Equal(t, "gpt-4o-mini", resolved.Model)
	assert.Equal(t, "text-embedding-3-small", resolved.EmbeddingModel)
	assert.Equal(t, "sk-test", resolved.APIKey)
}

func TestCredentialsResolvedKeepsExplicitValues(t *testing.T) {
	creds := Credentials{
		Provider:       "custom",
		APIKey:         "sk-test",
		BaseURL:        "http://localhost:11434/v1",
		Model:          "llama3",
		EmbeddingModel: "nomic-embed-text",
	}

	assert.Equal(t, creds, creds.Resolved())
}
