package model

import (
	"encoding/json"
	"time"
)

const DefaultSessionTitle = "New conversation"

type Session struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserEmail string    `gorm:"not null;index" json:"user_email"`
	SessionID string    `gorm:"not null;size:36" json:"session_id"`
	Title     string    `json:"title"`
}

func (Session) TableName() string {
	return "chat_session"
}

// Message 会话内的一轮发言，按 (session_id, created_at) 建立联合索引
// 会话内只追加，完整有序序列即对话历史
type Message struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_session_created" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	SessionID string    `gorm:"not null;size:36;index:idx_session_created" json:"session_id"`

	// 会话内的轮次编号
	TurnIndex int `gorm:"not null" json:"turn_index"`

	Role    string `gorm:"not null" json:"role"`
	Content string `gorm:"type:text" json:"content"`

	// 生成该轮回答的模型服务
	Provider string `json:"provider"`
	Model    string `json:"model"`

	// 回答附带的引用列表
	Citations json.RawMessage `gorm:"type:json" json:"citations"`
}

func (Message) TableName() string {
	return "chat_message"
}
