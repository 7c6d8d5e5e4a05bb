package types

import "strings"

// Message roles used by the conversation backend
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a conversation message as returned by the backend
type Message struct {
	ID                  string                 `json:"id,omitempty"`
	Role                string                 `json:"role"`
	Content             string                 `json:"content"`
	Table               *bool                  `json:"table,omitempty"` // nil when the producer sent no hint
	ConversationContext map[string]interface{} `json:"conversation_context,omitempty"`
	CreatedAt           string                 `json:"createdAt,omitempty"`
}

// IsAssistant reports whether the message was produced by the assistant
func (m Message) IsAssistant() bool {
	return strings.EqualFold(strings.TrimSpace(m.Role), RoleAssistant)
}

// Conversation groups the messages of one chat thread
type Conversation struct {
	ID       string    `json:"id,omitempty"`
	Title    string    `json:"title,omitempty"`
	Messages []Message `json:"messages"`
}

// BoolPtr returns a pointer to b, for building table hints
func BoolPtr(b bool) *bool {
	return &b
}
