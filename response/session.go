package response

import (
	"encoding/json"
	"time"
)

type SessionResponse struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
}

type GetSessionsResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

type MessageResponse struct {
	CreatedAt time.Time       `json:"created_at"`
	TurnIndex int             `json:"turn_index"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Provider  string          `json:"provider,omitempty"`
	Model     string          `json:"model,omitempty"`
	Citations json.RawMessage `json:"citations,omitempty"`
}

type GetSessionMessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
}
