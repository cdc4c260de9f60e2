package evaluation

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"interview-coach/internal/config"
)

const defaultGeminiModel = "gemini-2.5-flash"

// evaluationSchema mirrors evaluationContract for Gemini's structured output mode.
var evaluationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"feedback":     {Type: genai.TypeString},
		"nextQuestion": {Type: genai.TypeString},
	},
	Required: []string{"feedback", "nextQuestion"},
}

// GeminiGenerator calls the Gemini API through the google genai SDK.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
}

// NewGeminiGenerator builds a generator. baseURL is optional and used by tests and proxies.
func NewGeminiGenerator(ctx context.Context, cfg config.AIConfig, baseURL string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.GeminiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: cfg.RequestTimeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.GeminiModel
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiGenerator{
		client:      client,
		model:       model,
		maxTokens:   int32(cfg.MaxTokens),
		temperature: float32(cfg.Temperature),
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: g.maxTokens,
	}
	if prompt.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}
	if prompt.JSON {
		genCfg.ResponseMIMEType = "application/json"
		genCfg.ResponseSchema = evaluationSchema
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, geminiContents(prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates returned from gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	return text.String(), nil
}

// geminiContents lays the chat history out as user/model turns ahead of the new message.
func geminiContents(prompt Prompt) []*genai.Content {
	contents := make([]*genai.Content, 0, len(prompt.History)+1)
	for _, m := range prompt.History {
		var role genai.Role = genai.RoleUser
		if m.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	return append(contents, genai.NewContentFromText(prompt.User, genai.RoleUser))
}
