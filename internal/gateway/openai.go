// internal/gateway/openai.go
package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/ZevCorp/iu-screenagent/internal/config"
	"github.com/ZevCorp/iu-screenagent/internal/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"

// -- Chat-completions wire structures (internal to this file) --

type oaImageURL struct {
	URL string `json:"url"`
}

type oaContentPart struct {
	Type     string      `json:"type"`
	Text     string      `json:"text,omitempty"`
	ImageURL *oaImageURL `json:"image_url,omitempty"`
}

type oaFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type oaToolCall struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Function oaFunctionCall `json:"function"`
}

type oaMessage struct {
	Role       string       `json:"role"`
	Content    any          `json:"content,omitempty"`
	ToolCalls  []oaToolCall `json:"tool_calls,omitempty"`
	ToolCallID string       `json:"tool_call_id,omitempty"`
}

type oaFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type oaTool struct {
	Type     string     `json:"type"`
	Function oaFunction `json:"function"`
}

type oaRequest struct {
	Model      string      `json:"model"`
	Messages   []oaMessage `json:"messages"`
	Tools      []oaTool    `json:"tools"`
	ToolChoice string      `json:"tool_choice"`
	MaxTokens  int         `json:"max_tokens"`
}

type oaResponse struct {
	Choices []struct {
		Message struct {
			Content   string       `json:"content"`
			ToolCalls []oaToolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// OpenAIGateway implements the Gateway interface over a chat-completions
// style vision and tool-calling HTTP API.
type OpenAIGateway struct {
	cfg        config.LLMConfig
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOpenAIGateway initializes Backend A.
func NewOpenAIGateway(cfg config.LLMConfig, logger *zap.Logger) (*OpenAIGateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultOpenAIEndpoint
	}
	return &OpenAIGateway{
		cfg:        cfg,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: cfg.APITimeout},
		logger:     logger.Named("gateway.openai"),
	}, nil
}

// Decide sends the conversation and returns the first tool call of the
// response.
func (g *OpenAIGateway) Decide(ctx context.Context, msgs []schemas.Message, tools []schemas.ToolDecl) (schemas.ActionDecision, schemas.Message, error) {
	payload := buildOpenAIRequest(g.cfg, msgs, tools)
	body, err := json.Marshal(payload)
	if err != nil {
		return schemas.ActionDecision{}, schemas.Message{}, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return schemas.ActionDecision{}, schemas.Message{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return schemas.ActionDecision{}, schemas.Message{}, fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return schemas.ActionDecision{}, schemas.Message{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return schemas.ActionDecision{}, schemas.Message{}, &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	var parsed oaResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return schemas.ActionDecision{}, schemas.Message{}, fmt.Errorf("failed to decode response payload: %w", err)
	}

	g.logger.Debug("Chat completion received",
		zap.Int("prompt_tokens", parsed.Usage.PromptTokens),
		zap.Int("completion_tokens", parsed.Usage.CompletionTokens),
	)

	return decodeOpenAIResponse(parsed)
}

// buildOpenAIRequest translates the internal message and tool shapes to the
// vendor wire format. Stateless by design.
func buildOpenAIRequest(cfg config.LLMConfig, msgs []schemas.Message, tools []schemas.ToolDecl) oaRequest {
	wire := make([]oaMessage, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case schemas.RoleSystem:
			wire = append(wire, oaMessage{Role: "system", Content: m.Text()})
		case schemas.RoleUser:
			if m.HasImage() {
				parts := make([]oaContentPart, 0, len(m.Parts))
				for _, p := range m.Parts {
					if p.Text != "" {
						parts = append(parts, oaContentPart{Type: "text", Text: p.Text})
					}
					if len(p.ImagePNG) > 0 {
						parts = append(parts, oaContentPart{
							Type:     "image_url",
							ImageURL: &oaImageURL{URL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(p.ImagePNG)},
						})
					}
				}
				wire = append(wire, oaMessage{Role: "user", Content: parts})
			} else {
				wire = append(wire, oaMessage{Role: "user", Content: m.Text()})
			}
		case schemas.RoleAssistant:
			om := oaMessage{Role: "assistant"}
			if text := m.Text(); text != "" {
				om.Content = text
			}
			if m.ToolCall != nil {
				args, _ := json.Marshal(m.ToolCall.Args)
				om.ToolCalls = []oaToolCall{{
					ID:       m.ToolCall.ID,
					Type:     "function",
					Function: oaFunctionCall{Name: m.ToolCall.Name, Arguments: string(args)},
				}}
			}
			wire = append(wire, om)
		case schemas.RoleTool:
			wire = append(wire, oaMessage{Role: "tool", ToolCallID: m.ToolCallID, Content: m.Text()})
		}
	}

	return oaRequest{
		Model:      cfg.Model,
		Messages:   wire,
		Tools:      toOpenAITools(tools),
		ToolChoice: "required",
		MaxTokens:  cfg.MaxTokens,
	}
}

func toOpenAITools(tools []schemas.ToolDecl) []oaTool {
	out := make([]oaTool, 0, len(tools))
	for _, t := range tools {
		props := make(map[string]any, len(t.Params))
		for name, p := range t.Params {
			prop := map[string]any{"type": p.Type, "description": p.Description}
			if len(p.Enum) > 0 {
				prop["enum"] = p.Enum
			}
			props[name] = prop
		}
		out = append(out, oaTool{
			Type: "function",
			Function: oaFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters: map[string]any{
					"type":       "object",
					"properties": props,
					"required":   t.Required,
				},
			},
		})
	}
	return out
}

// decodeOpenAIResponse reassembles choices[0].message.tool_calls[0] into the
// internal decision shape and the assistant turn to append.
func decodeOpenAIResponse(resp oaResponse) (schemas.ActionDecision, schemas.Message, error) {
	if len(resp.Choices) == 0 {
		return schemas.ActionDecision{}, schemas.Message{}, ErrNoToolCall
	}
	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) == 0 {
		return schemas.ActionDecision{}, schemas.Message{}, ErrNoToolCall
	}

	call := msg.ToolCalls[0]
	args := map[string]any{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return schemas.ActionDecision{}, schemas.Message{}, fmt.Errorf("failed to decode tool call arguments: %w", err)
		}
	}

	turn := schemas.Message{
		Role:     schemas.RoleAssistant,
		ToolCall: &schemas.ToolCall{ID: call.ID, Name: call.Function.Name, Args: args},
	}
	if msg.Content != "" {
		turn.Parts = []schemas.Part{{Text: msg.Content}}
	}

	return schemas.DecisionFromToolCall(call.Function.Name, args), turn, nil
}
