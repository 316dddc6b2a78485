package controller

import (
	"encoding/json"
	"finreport-backend/dao"
	"finreport-backend/model"
	"finreport-backend/request"
	"finreport-backend/response"
	"finreport-backend/service/audit"
	"finreport-backend/service/chat"
	"finreport-backend/service/rag"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Chat 回答一个基于已上传财报的问题
// 流程：取会话历史 → 检索相关切片 → 生成带引用的回答 → 落库两轮发言
// 模型凭证随请求传入，仅在本次调用内使用
func Chat(c *gin.Context) {
	var req request.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	email := c.GetString("email")
	session, err := dao.GetSessionByID(req.SessionID)
	if err != nil || session == nil || session.UserEmail != email {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Msg: ErrSessionNotFound.Error(),
		})
		return
	}

	creds := rag.Credentials{
		Provider:       req.Provider.Provider,
		APIKey:         req.Provider.APIKey,
		BaseURL:        req.Provider.BaseURL,
		Model:          req.Provider.Model,
		EmbeddingModel: req.Provider.EmbeddingModel,
	}

	started := time.Now()
	answer, err := answerQuery(c, email, req, creds)

	entry := audit.Entry{
		UserEmail: email,
		SessionID: req.SessionID,
		QueryText: req.Query,
		QueryKind: model.QueryKindAsk,
		Provider:  creds.Resolved().Provider,
		Model:     creds.Resolved().Model,
		Started:   started,
		Success:   err == nil,
		Err:       err,
	}
	if answer != nil {
		entry.Intent = string(answer.Intent)
		entry.ChunkIDs = answer.ChunkIDs
	}
	audit.Record(entry)

	if err != nil {
		slog.Error(ErrAnswerQuery.Error(),
			"session_id", req.SessionID,
			"err", err,
		)
		c.AbortWithStatusJSON(statusFor(err), response.Response{
			Msg: userMessage(err, ErrAnswerQuery.Error()),
		})
		return
	}

	if err := saveTurns(c, req, creds, answer); err != nil {
		slog.Error("failed to persist chat turns",
			"session_id", req.SessionID,
			"err", err,
		)
	}

	citations := make([]response.CitationResponse, 0, len(answer.Citations))
	for _, citation := range answer.Citations {
		citations = append(citations, response.CitationResponse{
			DocumentName: citation.DocumentName,
			PageLabel:    citation.PageLabel,
		})
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.ChatResponse{
			SessionID: req.SessionID,
			Answer:    answer.Text,
			Citations: citations,
			Intent:    string(answer.Intent),
			NoContext: answer.NoContext,
		},
	})
}

func answerQuery(c *gin.Context, email string, req request.ChatRequest, creds rag.Credentials) (*rag.Answer, error) {
	ctx := c.Request.Context()

	history, err := chat.NewPostgresChatMessageHistory(req.SessionID).Messages(ctx)
	if err != nil {
		return nil, err
	}

	embedder, err := rag.NewEmbedder(creds)
	if err != nil {
		return nil, err
	}

	llm, err := rag.NewChatModel(creds)
	if err != nil {
		return nil, err
	}

	pipeline := rag.NewPipeline(dao.VectorIndex{}, embedder, llm, rag.Options{
		TopK:          req.TopK,
		MinSimilarity: req.MinSimilarity,
	})

	return pipeline.Ask(ctx, email, req.Query, history)
}

// saveTurns 成功回答后追加用户和助手两轮发言，引用随助手消息落库
func saveTurns(c *gin.Context, req request.ChatRequest, creds rag.Credentials, answer *rag.Answer) error {
	ctx := c.Request.Context()
	history := chat.NewPostgresChatMessageHistory(req.SessionID)

	if err := history.SaveTurn(ctx, chat.Turn{
		Role:    chat.RoleUser,
		Content: req.Query,
	}); err != nil {
		return err
	}

	var citationsJSON json.RawMessage
	if len(answer.Citations) > 0 {
		citationsJSON, _ = json.Marshal(answer.Citations)
	}

	resolved := creds.Resolved()
	return history.SaveTurn(ctx, chat.Turn{
		Role:      chat.RoleAssistant,
		Content:   answer.Text,
		Provider:  resolved.Provider,
		Model:     resolved.Model,
		Citations: citationsJSON,
	})
}
