package rag

import (
	"context"
	"finreport-backend/config"
	"finreport-backend/model"
	"finreport-backend/utils"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Credentials 模型服务凭证，随请求传入，仅在单次调用的生命周期内使用
// 不落库、不缓存，并发会话互不干扰
type Credentials struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
}

// Resolved 用全局配置补全未指定的字段
func (c Credentials) Resolved() Credentials {
	if c.BaseURL == "" {
		c.BaseURL = config.Cfg.Provider.BaseURL
	}
	if c.Model == "" {
		c.Model = config.Cfg.Provider.Model
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = config.Cfg.Provider.EmbeddingModel
	}
	if c.Provider == "" {
		c.Provider = "openai"
	}
	return c
}

// Embedder 向量化服务适配器
// 保持输入顺序，批大小受限，瞬时错误指数退避重试
type Embedder struct {
	embedder embeddings.Embedder
	provider string
	model    string

	maxChars int
	attempts uint
}

func NewEmbedder(creds Credentials) (*Embedder, error) {
	creds = creds.Resolved()

	httpClient := utils.NewHTTPClient(
		utils.WithTimeout(time.Duration(config.Cfg.Provider.TimeoutSeconds) * time.Second),
	)

	client, err := openai.New(
		openai.WithEmbeddingModel(creds.EmbeddingModel),
		openai.WithToken(creds.APIKey),
		openai.WithBaseURL(creds.BaseURL),
		openai.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %v", err)
	}

	return newEmbedder(client, creds.Provider, creds.EmbeddingModel)
}

// newEmbedder 从EmbedderClient组装，测试时注入伪实现
func newEmbedder(client embeddings.EmbedderClient, provider, embeddingModel string) (*Embedder, error) {
	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithBatchSize(config.Cfg.Retrieval.EmbedBatchSize),
		embeddings.WithStripNewLines(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %v", err)
	}

	return &Embedder{
		embedder: embedder,
		provider: provider,
		model:    embeddingModel,
		maxChars: config.Cfg.Retrieval.MaxEmbedChars,
		attempts: uint(config.Cfg.Retrieval.RetryAttempts),
	}, nil
}

func (e *Embedder) Provider() string { return e.provider }
func (e *Embedder) Model() string    { return e.model }

// EmbedTexts 为每条输入返回一个定长向量，顺序与输入一致
// 长度上限在调用前检查，保证超长错误归因到本端而不是服务端
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	for i, text := range texts {
		if n := len([]rune(text)); n > e.maxChars {
			return nil, fmt.Errorf("%w: text %d has %d chars, limit is %d", model.ErrTextTooLong, i, n, e.maxChars)
		}
	}

	var vectors [][]float32
	err := retry.Do(
		func() error {
			v, err := e.embedder.EmbedDocuments(ctx, texts)
			if err != nil {
				return err
			}
			vectors = v
			return nil
		},
		retry.Attempts(e.attempts),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("Retrying embedding call",
				"attempt", n+1,
				"model", e.model,
				"err", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding failed after %d attempts: %v", model.ErrProviderUnavailable, e.attempts, err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: provider returned %d vectors for %d texts", model.ErrProviderUnavailable, len(vectors), len(texts))
	}

	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
