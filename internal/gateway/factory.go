// internal/gateway/factory.go
package gateway

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ZevCorp/iu-screenagent/internal/config"
)

// New constructs the configured backend and wraps it with the retry and
// rate-limit policy. The backend is selected exactly once here; the rest of
// the application only ever sees the Gateway interface.
func New(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (Gateway, error) {
	var (
		inner Gateway
		err   error
	)
	switch cfg.Provider {
	case config.ProviderOpenAI:
		inner, err = NewOpenAIGateway(cfg, logger)
	case config.ProviderGemini:
		inner, err = NewGeminiGateway(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s gateway: %w", cfg.Provider, err)
	}

	logger.Info("Reasoning gateway ready",
		zap.String("provider", string(cfg.Provider)),
		zap.String("model", cfg.Model),
		zap.Int("retry_attempts", cfg.Retry.MaxAttempts),
	)
	return WithRetry(inner, cfg.Retry, cfg.RequestsPerMinute, logger), nil
}
