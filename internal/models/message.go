package models

// Role identifies who authored a turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn represents a message in the conversation for display
type Turn struct {
	Role Role
	Text string
}

// ChatMessage is a single message in a chat completions request
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chat/completions
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// NewChatRequest builds the single-turn streaming request for message
func NewChatRequest(modelID, message string) ChatRequest {
	return ChatRequest{
		Model: modelID,
		Messages: []ChatMessage{
			{Role: RoleUser, Content: message},
		},
		Stream: true,
	}
}
