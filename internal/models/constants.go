// Package models contains data types and constants for the local chat API.
package models

// Endpoints for the local OpenAI-compatible API
const (
	DefaultBaseURL          = "http://127.0.0.1:8000/v1"
	EndpointModels          = "/models"
	EndpointChatCompletions = "/chat/completions"
)

// PlaceholderToken is sent as the bearer credential. The local server
// requires the header but never validates it.
const PlaceholderToken = "anything"

// Stream framing
const (
	StreamDataPrefix = "data: "
	StreamDone       = "[DONE]"
)

// gjson paths into server payloads
const (
	PathDeltaContent = "choices.0.delta.content"
	PathErrorMessage = "error.message"
	PathModelIDs     = "data.#.id"
)

// WelcomeText is the assistant turn shown on an empty conversation.
const WelcomeText = "👋 Welcome! Select a model (Tab) and type a message to start the conversation."

// DefaultHeaders returns the headers sent with every chat request
func DefaultHeaders(token string) map[string]string {
	return map[string]string{
		"Content-Type":  "application/json",
		"Accept":        "text/event-stream",
		"Authorization": "Bearer " + token,
	}
}
