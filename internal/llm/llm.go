package llm

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a single generation call. When Schema is set the provider is
// asked to return JSON conforming to it instead of free text.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Schema   *Schema   `json:"-"`
}

type ChatResponse struct {
	Content      string
	Model        string
	FinishReason string
}

type Client interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

func UserPrompt(prompt string) []Message {
	return []Message{{Role: "user", Content: prompt}}
}
