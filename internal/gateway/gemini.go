// internal/gateway/gemini.go
package gateway

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/ZevCorp/iu-screenagent/internal/config"
	"github.com/ZevCorp/iu-screenagent/internal/schemas"
)

// GeminiGateway implements the Gateway interface over the Gemini native
// message/part/tool-declaration format. Responses are reassembled into the
// same internal shape Backend A produces.
type GeminiGateway struct {
	client    *genai.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// NewGeminiGateway initializes Backend B.
func NewGeminiGateway(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*GeminiGateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiGateway{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger.Named("gateway.gemini"),
	}, nil
}

// Decide converts the conversation into system instruction plus contents,
// calls the model with function calling forced on, and decodes the first
// function call.
func (g *GeminiGateway) Decide(ctx context.Context, msgs []schemas.Message, tools []schemas.ToolDecl) (schemas.ActionDecision, schemas.Message, error) {
	system, contents := toGeminiContents(msgs)

	genCfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{FunctionDeclarations: toFunctionDeclarations(tools)}},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeAny},
		},
		MaxOutputTokens: int32(g.maxTokens),
	}
	if system != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, genCfg)
	if err != nil {
		return schemas.ActionDecision{}, schemas.Message{}, classifyGenaiError(err)
	}

	calls := resp.FunctionCalls()
	if len(calls) == 0 {
		return schemas.ActionDecision{}, schemas.Message{}, ErrNoToolCall
	}
	call := calls[0]

	g.logger.Debug("Function call received", zap.String("name", call.Name))

	turn := schemas.Message{
		Role:     schemas.RoleAssistant,
		ToolCall: &schemas.ToolCall{ID: call.ID, Name: call.Name, Args: call.Args},
	}
	if text := resp.Text(); text != "" {
		turn.Parts = []schemas.Part{{Text: text}}
	}

	return schemas.DecisionFromToolCall(call.Name, call.Args), turn, nil
}

// toGeminiContents splits off the system instruction and maps every other
// turn to a role-tagged content of text/inlineData/functionCall/
// functionResponse parts.
func toGeminiContents(msgs []schemas.Message) (string, []*genai.Content) {
	var system string
	contents := make([]*genai.Content, 0, len(msgs))

	for _, m := range msgs {
		switch m.Role {
		case schemas.RoleSystem:
			if system != "" {
				system += "\n"
			}
			system += m.Text()
		case schemas.RoleUser:
			parts := make([]*genai.Part, 0, len(m.Parts))
			for _, p := range m.Parts {
				if p.Text != "" {
					parts = append(parts, &genai.Part{Text: p.Text})
				}
				if len(p.ImagePNG) > 0 {
					parts = append(parts, &genai.Part{
						InlineData: &genai.Blob{MIMEType: "image/png", Data: p.ImagePNG},
					})
				}
			}
			contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: parts})
		case schemas.RoleAssistant:
			parts := make([]*genai.Part, 0, 2)
			if text := m.Text(); text != "" {
				parts = append(parts, &genai.Part{Text: text})
			}
			if m.ToolCall != nil {
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{ID: m.ToolCall.ID, Name: m.ToolCall.Name, Args: m.ToolCall.Args},
				})
			}
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})
		case schemas.RoleTool:
			name := ""
			if m.ToolCall != nil {
				name = m.ToolCall.Name
			}
			contents = append(contents, &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						ID:       m.ToolCallID,
						Name:     name,
						Response: map[string]any{"result": m.Text()},
					},
				}},
			})
		}
	}
	return system, contents
}

// toFunctionDeclarations translates the neutral tool declarations into the
// Gemini schema dialect.
func toFunctionDeclarations(tools []schemas.ToolDecl) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		props := make(map[string]*genai.Schema, len(t.Params))
		for name, p := range t.Params {
			props[name] = &genai.Schema{
				Type:        genaiType(p.Type),
				Description: p.Description,
				Enum:        p.Enum,
			}
		}
		out = append(out, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   t.Required,
			},
		})
	}
	return out
}

func genaiType(t string) genai.Type {
	switch t {
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

// classifyGenaiError maps SDK errors onto StatusError so the retry wrapper
// classifies both backends uniformly.
func classifyGenaiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Code: apiErr.Code, Body: apiErr.Message}
	}
	return err
}
