package rag

import (
	"context"
	"finreport-backend/config"
	"finreport-backend/model"
	"finreport-backend/utils"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// NoRelevantDocumentsAnswer 检索无命中时的固定回答，不消耗模型配额
const NoRelevantDocumentsAnswer = "No relevant documents found. Please upload financial documents before asking questions."

const contextSeparator = "\n\n---\n\n"

type Citation struct {
	DocumentName string `json:"document_name"`
	PageLabel    string `json:"page_label"`
}

type Answer struct {
	Text      string
	Citations []Citation
	Intent    Intent

	// 进入上下文的chunk ID，按排名顺序
	ChunkIDs []string

	// 检索无命中直接短路，未调用模型
	NoContext bool
}

// NewChatModel 按请求凭证创建对话模型客户端，凭证不保留
func NewChatModel(creds Credentials) (llms.Model, error) {
	creds = creds.Resolved()

	httpClient := utils.NewHTTPClient(
		utils.WithTimeout(time.Duration(config.Cfg.Provider.TimeoutSeconds) * time.Second),
	)

	llm, err := openai.New(
		openai.WithModel(creds.Model),
		openai.WithToken(creds.APIKey),
		openai.WithBaseURL(creds.BaseURL),
		openai.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat client: %v", err)
	}
	return llm, nil
}

// Composer 组装上下文并调用对话模型
type Composer struct {
	llm    llms.Model
	budget int
}

func NewComposer(llm llms.Model, contextBudget int) *Composer {
	if contextBudget <= 0 {
		contextBudget = config.Cfg.Retrieval.ContextBudget
	}
	return &Composer{llm: llm, budget: contextBudget}
}

// Compose 按排名顺序拼接chunk直到字符预算耗尽，不截断chunk中段，
// 避免引用残缺文本；为每个实际进入上下文的chunk生成一条引用
// 候选为空时跳过模型调用，直接返回固定结果
func (c *Composer) Compose(ctx context.Context, query string, matches []model.ChunkMatch, history []llms.ChatMessage) (*Answer, error) {
	included, contextText := c.buildContext(matches)
	if len(included) == 0 {
		return &Answer{
			Text:      NoRelevantDocumentsAnswer,
			Citations: []Citation{},
			Intent:    ClassifyIntent(query),
			ChunkIDs:  []string{},
			NoContext: true,
		}, nil
	}

	intent := ClassifyIntent(query)

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, SystemPrompt(intent)),
	}
	for _, msg := range history {
		messages = append(messages, llms.TextParts(msg.GetType(), msg.GetContent()))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, fmt.Sprintf(
		"Context from the user's documents:\n\n%s\n\nQuestion: %s\n\nPlease answer based on the context above.",
		contextText, query,
	)))

	resp, err := c.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(0.7),
		llms.WithMaxTokens(1000),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: chat completion failed: %v", model.ErrProviderUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: chat completion returned no choices", model.ErrProviderUnavailable)
	}

	citations := make([]Citation, 0, len(included))
	chunkIDs := make([]string, 0, len(included))
	for _, match := range included {
		citations = append(citations, Citation{
			DocumentName: match.DocumentName,
			PageLabel:    match.PageLabel,
		})
		chunkIDs = append(chunkIDs, match.ChunkID)
	}

	return &Answer{
		Text:      resp.Choices[0].Content,
		Citations: citations,
		Intent:    intent,
		ChunkIDs:  chunkIDs,
	}, nil
}

// buildContext 在预算内选取chunk，遇到放不下的chunk即停止
// 预算与分块窗口、向量化上限一致，按字符（rune）计数
func (c *Composer) buildContext(matches []model.ChunkMatch) ([]model.ChunkMatch, string) {
	var included []model.ChunkMatch
	var sb strings.Builder

	separatorRunes := utf8.RuneCountInString(contextSeparator)
	used := 0
	for _, match := range matches {
		need := utf8.RuneCountInString(match.Text)
		if used > 0 {
			need += separatorRunes
		}
		if used+need > c.budget {
			break
		}

		if used > 0 {
			sb.WriteString(contextSeparator)
		}
		sb.WriteString(match.Text)
		used += need
		included = append(included, match)
	}

	return included, sb.String()
}
