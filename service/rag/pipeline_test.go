package rag

import (
	"context"
	"finreport-backend/model"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex 内存向量索引，余弦相似度检索，候选按文档归属用户过滤
type fakeIndex struct {
	entries []indexEntry
}

type indexEntry struct {
	owner  string
	match  model.ChunkMatch
	vector []float32
}

func (f *fakeIndex) Add(owner string, match model.ChunkMatch, vector []float32) {
	f.entries = append(f.entries, indexEntry{owner: owner, match: match, vector: vector})
}

func (f *fakeIndex) Search(_ context.Context, email string, vector []float32, k int, minSimilarity float64) ([]model.ChunkMatch, error) {
	var matches []model.ChunkMatch
	for _, entry := range f.entries {
		if entry.owner != email {
			continue
		}
		similarity := cosine(vector, entry.vector)
		if similarity < minSimilarity {
			continue
		}
		match := entry.match
		match.Similarity = similarity
		matches = append(matches, match)
	}
	return MergeMatches(k, matches), nil
}

func (f *fakeIndex) Keyword(_ context.Context, email, query string, k int) ([]model.ChunkMatch, error) {
	var matches []model.ChunkMatch
	for _, entry := range f.entries {
		if entry.owner != email {
			continue
		}
		for _, word := range strings.Fields(strings.ToLower(query)) {
			if strings.Contains(strings.ToLower(entry.match.Text), word) {
				match := entry.match
				match.Similarity = 0.5
				matches = append(matches, match)
				break
			}
		}
	}
	return MergeMatches(k, matches), nil
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func TestPipelineAnswersFromIndexedDocument(t *testing.T) {
	ctx := context.Background()
	embedder := newTestEmbedder(t, &fakeEmbeddingClient{})

	chunker, err := NewChunker(50, 10)
	require.NoError(t, err)

	text := "Revenue was $1,000,000 in Q1."
	chunks := chunker.Split(text)
	require.Len(t, chunks, 1)

	vectors, err := embedder.EmbedTexts(ctx, []string{chunks[0].Text})
	require.NoError(t, err)

	index := &fakeIndex{}
	index.Add("alice@example.com", model.ChunkMatch{
		ChunkID:      "c1",
		DocumentID:   "d1",
		DocumentName: "q1-report.txt",
		ChunkIndex:   0,
		Text:         chunks[0].Text,
		PageLabel:    "page_1",
	}, vectors[0])

	llm := &fakeChatModel{answer: "Revenue in Q1 was $1,000,000."}
	pipeline := NewPipeline(index, embedder, llm, Options{
		TopK:          5,
		MinSimilarity: 0.7,
		ContextBudget: 1000,
	})

	answer, err := pipeline.Ask(ctx, "alice@example.com", "What was the revenue in Q1?", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, "Revenue in Q1 was $1,000,000.", answer.Text)
	assert.False(t, answer.NoContext)
	assert.Equal(t, []string{"c1"}, answer.ChunkIDs)
	require.Len(t, answer.Citations, 1)
	assert.Equal(t, "q1-report.txt", answer.Citations[0].DocumentName)
	assert.Equal(t, "page_1", answer.Citations[0].PageLabel)

	// 检索到的原文进入了模型上下文
	prompt := contentOf(t, llm.messages[len(llm.messages)-1])
	assert.Contains(t, prompt, "$1,000,000")
}

func TestPipelineWithEmptyIndexShortCircuits(t *testing.T) {
	embedder := newTestEmbedder(t, &fakeEmbeddingClient{})
	llm := &fakeChatModel{answer: "should not be used"}

	pipeline := NewPipeline(&fakeIndex{}, embedder, llm, Options{
		TopK:          5,
		MinSimilarity: 0.7,
		ContextBudget: 1000,
	})

	answer, err := pipeline.Ask(context.Background(), "alice@example.com", "What was the revenue in Q1?", nil)
	require.NoError(t, err)

	assert.Zero(t, llm.calls)
	assert.True(t, answer.NoContext)
	assert.Equal(t, NoRelevantDocumentsAnswer, answer.Text)
	assert.Empty(t, answer.Citations)
}

func TestPipelineNeverRetrievesOtherUsersDocuments(t *testing.T) {
	ctx := context.Background()
	embedder := newTestEmbedder(t, &fakeEmbeddingClient{})

	text := "Revenue was $1,000,000 in Q1."
	vectors, err := embedder.EmbedTexts(ctx, []string{text})
	require.NoError(t, err)

	index := &fakeIndex{}
	index.Add("alice@example.com", model.ChunkMatch{
		ChunkID:      "c1",
		DocumentID:   "d1",
		DocumentName: "q1-report.txt",
		ChunkIndex:   0,
		Text:         text,
		PageLabel:    "page_1",
	}, vectors[0])

	llm := &fakeChatModel{answer: "should not be used"}
	pipeline := NewPipeline(index, embedder, llm, Options{
		TopK:          5,
		MinSimilarity: 0.7,
		ContextBudget: 1000,
	})

	// 其他用户的提问检索不到该文档，即使向量和关键词都高度相关
	answer, err := pipeline.Ask(ctx, "bob@example.com", "What was the revenue in Q1?", nil)
	require.NoError(t, err)

	assert.Zero(t, llm.calls)
	assert.True(t, answer.NoContext)
	assert.Equal(t, NoRelevantDocumentsAnswer, answer.Text)
	assert.Empty(t, answer.Citations)
	assert.Empty(t, answer.ChunkIDs)

	// 文档归属用户自己检索正常
	owned, err := pipeline.Ask(ctx, "alice@example.com", "What was the revenue in Q1?", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, owned.ChunkIDs)
}

func TestPipelineMergesVectorAndKeywordRecall(t *testing.T) {
	ctx := context.Background()
	embedder := newTestEmbedder(t, &fakeEmbeddingClient{})

	index := &fakeIndex{}
	// 与查询向量方向相反，只能被关键词召回
	index.Add("alice@example.com", model.ChunkMatch{
		ChunkID:      "c1",
		DocumentID:   "d1",
		DocumentName: "costs.txt",
		ChunkIndex:   0,
		Text:         "operating costs fell sharply",
		PageLabel:    "page_1",
	}, []float32{-1, 0})

	llm := &fakeChatModel{answer: "Costs fell."}
	pipeline := NewPipeline(index, embedder, llm, Options{
		TopK:          5,
		MinSimilarity: 0.7,
		ContextBudget: 1000,
	})

	answer, err := pipeline.Ask(ctx, "alice@example.com", "operating costs", nil)
	require.NoError(t, err)

	assert.False(t, answer.NoContext)
	assert.Equal(t, []string{"c1"}, answer.ChunkIDs)
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{}.withDefaults()

	assert.Equal(t, 10, opts.TopK)
	assert.Equal(t, 0.7, opts.MinSimilarity)
	assert.Equal(t, 8000, opts.ContextBudget)

	override := Options{TopK: 3, MinSimilarity: 0.5, ContextBudget: 100}.withDefaults()
	assert.Equal(t, Options{TopK: 3, MinSimilarity: 0.5, ContextBudget: 100}, override)
}
