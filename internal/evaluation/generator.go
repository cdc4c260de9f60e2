package evaluation

import (
	"context"
	"strings"
)

// Role marks the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one earlier exchange in a multi-turn chat.
type Message struct {
	Role Role
	Text string
}

// Prompt is a single provider-neutral generation request.
type Prompt struct {
	System string
	// History is sent before User, oldest first.
	History []Message
	User    string
	// JSON asks the provider to constrain output to the evaluation object.
	JSON bool
}

// Generator produces text from a prompt. Implementations must not retry internally.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt Prompt) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt Prompt) (string, error) {
	return f(ctx, prompt)
}

// cleanJSONResponse strips markdown code fences some models wrap JSON in.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}
