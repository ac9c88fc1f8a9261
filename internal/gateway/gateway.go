// internal/gateway/gateway.go
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ZevCorp/iu-screenagent/internal/config"
	"github.com/ZevCorp/iu-screenagent/internal/schemas"
)

// Gateway is the provider-agnostic bridge to a vision and function-calling
// model. Decide sends the conversation and the tool declarations, and
// returns the single decided tool call plus the assistant turn to append to
// the context. The controller never learns which backend served the call.
type Gateway interface {
	Decide(ctx context.Context, msgs []schemas.Message, tools []schemas.ToolDecl) (schemas.ActionDecision, schemas.Message, error)
}

// ErrNoToolCall marks a turn in which the model chose no tool. The protocol
// mandates exactly one tool per turn, so this is a contract violation and is
// never retried.
var ErrNoToolCall = errors.New("model response contained no tool call")

// StatusError carries a backend HTTP status for retry classification.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Body)
}

// Retryable reports whether an error is worth another attempt: rate limits,
// server-side failures, and connection-level faults qualify.
func Retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case 429, 500, 503:
			return true
		}
		return false
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// Retrying decorates a Gateway with bounded exponential backoff and an
// optional request rate limiter.
type Retrying struct {
	inner   Gateway
	cfg     config.RetryConfig
	limiter *rate.Limiter
	logger  *zap.Logger
}

// WithRetry wraps inner. requestsPerMinute of zero disables throttling.
func WithRetry(inner Gateway, cfg config.RetryConfig, requestsPerMinute int, logger *zap.Logger) *Retrying {
	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return &Retrying{
		inner:   inner,
		cfg:     cfg,
		limiter: limiter,
		logger:  logger.Named("gateway_retry"),
	}
}

// Decide retries transient failures up to cfg.MaxAttempts total calls.
// Non-retryable errors, including ErrNoToolCall, propagate immediately.
func (r *Retrying) Decide(ctx context.Context, msgs []schemas.Message, tools []schemas.ToolDecl) (schemas.ActionDecision, schemas.Message, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialInterval
	b.MaxInterval = r.cfg.MaxInterval
	b.MaxElapsedTime = 0

	var (
		decision schemas.ActionDecision
		turn     schemas.Message
		attempt  int
	)

	operation := func() error {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}
		attempt++
		d, m, err := r.inner.Decide(ctx, msgs, tools)
		if err != nil {
			if !Retryable(err) {
				return backoff.Permanent(err)
			}
			r.logger.Warn("Transient gateway failure, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", r.cfg.MaxAttempts),
				zap.Error(err),
			)
			return err
		}
		decision, turn = d, m
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.cfg.MaxAttempts-1)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return schemas.ActionDecision{}, schemas.Message{}, err
	}
	return decision, turn, nil
}
