package rag

import (
	"context"
	"finreport-backend/config"
	"finreport-backend/model"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
)

// Index 检索管线依赖的只读向量索引接口，由dao.VectorIndex实现
// 候选始终限定在email对应用户自己的文档内
type Index interface {
	Search(ctx context.Context, email string, vector []float32, k int, minSimilarity float64) ([]model.ChunkMatch, error)
	Keyword(ctx context.Context, email, query string, k int) ([]model.ChunkMatch, error)
}

// Options 每次查询可覆盖的检索参数，零值使用全局配置
type Options struct {
	TopK          int
	MinSimilarity float64
	ContextBudget int
}

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = config.Cfg.Retrieval.TopK
	}
	if o.MinSimilarity <= 0 {
		o.MinSimilarity = config.Cfg.Retrieval.SimilarityThreshold
	}
	if o.ContextBudget <= 0 {
		o.ContextBudget = config.Cfg.Retrieval.ContextBudget
	}
	return o
}

// Pipeline 查询管线：向量化 → 检索 → 合并排序 → 组装上下文 → 生成回答
// 每个请求独立构建，模型凭证不跨请求保留
type Pipeline struct {
	index    Index
	embedder *Embedder
	composer *Composer
	opts     Options
}

func NewPipeline(index Index, embedder *Embedder, llm llms.Model, opts Options) *Pipeline {
	opts = opts.withDefaults()
	return &Pipeline{
		index:    index,
		embedder: embedder,
		composer: NewComposer(llm, opts.ContextBudget),
		opts:     opts,
	}
}

// Ask 回答email对应用户的问题，只在该用户自己的文档内检索
// history为本会话此前的完整有序轮次
func (p *Pipeline) Ask(ctx context.Context, email, query string, history []llms.ChatMessage) (*Answer, error) {
	queryVector, err := p.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	// 排名前多取一倍候选，与关键词召回合并后再截断
	vectorMatches, err := p.index.Search(ctx, email, queryVector, p.opts.TopK*2, p.opts.MinSimilarity)
	if err != nil {
		return nil, err
	}

	keywordMatches, err := p.index.Keyword(ctx, email, query, p.opts.TopK)
	if err != nil {
		return nil, err
	}

	merged := MergeMatches(p.opts.TopK, vectorMatches, keywordMatches)

	slog.Debug("retrieval completed",
		"vector_candidates", len(vectorMatches),
		"keyword_candidates", len(keywordMatches),
		"merged", len(merged),
	)

	return p.composer.Compose(ctx, query, merged, history)
}
