package chat

import (
	"context"
	"encoding/json"
	"finreport-backend/dao"
	"finreport-backend/model"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"gorm.io/gorm"
)

const (
	tableName = "chat_message"
	limit     = 200

	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// PostgresChatMessageHistory 基于会话消息表的对话历史
type PostgresChatMessageHistory struct {
	DB        *gorm.DB
	TableName string
	Session   string
	Limit     int
}

var _ schema.ChatMessageHistory = &PostgresChatMessageHistory{}

func NewPostgresChatMessageHistory(session string) *PostgresChatMessageHistory {
	return &PostgresChatMessageHistory{
		DB:        dao.DB,
		TableName: tableName,
		Session:   session,
		Limit:     limit,
	}
}

func (h *PostgresChatMessageHistory) Messages(ctx context.Context) ([]llms.ChatMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var messages []struct {
		Content string
		Role    string
	}

	result := h.DB.WithContext(ctx).
		Table(h.TableName).
		Select("content, role").
		Where("session_id = ?", h.Session).
		Order("created_at ASC").
		Limit(h.Limit).
		Find(&messages)

	if result.Error != nil {
		return nil, result.Error
	}

	var msgs []llms.ChatMessage
	for _, msg := range messages {
		switch msg.Role {
		case RoleAssistant:
			msgs = append(msgs, llms.AIChatMessage{Content: msg.Content})
		case RoleUser:
			msgs = append(msgs, llms.HumanChatMessage{Content: msg.Content})
		}
	}

	return msgs, nil
}

func (h *PostgresChatMessageHistory) AddMessage(ctx context.Context, message llms.ChatMessage) error {
	return h.addMessage(ctx, message.GetContent(), roleOf(message.GetType()), nil)
}

func (h *PostgresChatMessageHistory) AddAIMessage(ctx context.Context, text string) error {
	return h.addMessage(ctx, text, RoleAssistant, nil)
}

func (h *PostgresChatMessageHistory) AddUserMessage(ctx context.Context, text string) error {
	return h.addMessage(ctx, text, RoleUser, nil)
}

// Turn 带模型归属和引用信息的一轮发言
type Turn struct {
	Role      string
	Content   string
	Provider  string
	Model     string
	Citations json.RawMessage
}

// SaveTurn 追加一轮发言，记录模型归属和引用
// 轮次编号在插入事务内计算，并先锁定会话行，
// 同一会话的并发写入串行化，编号不会重复
func (h *PostgresChatMessageHistory) SaveTurn(ctx context.Context, turn Turn) error {
	if ctx == nil {
		ctx = context.Background()
	}

	return h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).
			Exec("SELECT id FROM chat_session WHERE session_id = ? FOR UPDATE", h.Session).Error; err != nil {
			return err
		}

		var index int
		if err := tx.WithContext(ctx).
			Raw(fmt.Sprintf("SELECT COALESCE(MAX(turn_index) + 1, 0) FROM %s WHERE session_id = ?", h.TableName), h.Session).
			Scan(&index).Error; err != nil {
			return err
		}

		msg := model.Message{
			SessionID: h.Session,
			TurnIndex: index,
			Role:      turn.Role,
			Content:   turn.Content,
			Provider:  turn.Provider,
			Model:     turn.Model,
			Citations: turn.Citations,
		}

		return tx.WithContext(ctx).
			Table(h.TableName).
			Create(&msg).Error
	})
}

func (h *PostgresChatMessageHistory) addMessage(ctx context.Context, text, role string, citations json.RawMessage) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return h.SaveTurn(ctx, Turn{Role: role, Content: text, Citations: citations})
}

func (h *PostgresChatMessageHistory) Clear(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	result := h.DB.WithContext(ctx).
		Table(h.TableName).
		Where("session_id = ?", h.Session).
		Delete(nil)

	return result.Error
}

func (h *PostgresChatMessageHistory) SetMessages(ctx context.Context, messages []llms.ChatMessage) error {
	if ctx == nil {
		ctx = context.Background()
	}

	return h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).
			Table(h.TableName).
			Where("session_id = ?", h.Session).
			Delete(nil).Error; err != nil {
			return err
		}

		var values []map[string]any
		for i, msg := range messages {
			values = append(values, map[string]any{
				"session_id": h.Session,
				"turn_index": i,
				"content":    msg.GetContent(),
				"role":       roleOf(msg.GetType()),
			})
		}

		if len(values) > 0 {
			if err := tx.WithContext(ctx).
				Table(h.TableName).
				CreateInBatches(values, 100).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func roleOf(t llms.ChatMessageType) string {
	if t == llms.ChatMessageTypeAI {
		return RoleAssistant
	}
	return RoleUser
}
