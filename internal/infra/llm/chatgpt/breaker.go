package chatgpt

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/yanqian/ootd-recommender/pkg/metrics"
)

// Completer is anything that can serve a chat completion.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error)
}

// BreakerConfig tunes the circuit breaker in front of the chat API.
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	MaxRequests      uint32
	Interval         time.Duration
	OpenTimeout      time.Duration
}

// BreakerClient short-circuits calls while the chat API keeps failing. It never retries.
type BreakerClient struct {
	next Completer
	cb   *gobreaker.CircuitBreaker[ChatCompletionResponse]
}

// NewBreakerClient wraps next with a circuit breaker.
func NewBreakerClient(next Completer, cfg BreakerConfig, logger *slog.Logger) *BreakerClient {
	if cfg.Name == "" {
		cfg.Name = "chatgpt"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	log := logger.With("component", "chatgpt.breaker")
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Caller cancellation is not an upstream failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.Set(float64(to))
			log.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &BreakerClient{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[ChatCompletionResponse](settings),
	}
}

// CreateChatCompletion forwards the call unless the breaker is open.
func (b *BreakerClient) CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	return b.cb.Execute(func() (ChatCompletionResponse, error) {
		return b.next.CreateChatCompletion(ctx, req)
	})
}

// State exposes the breaker state for diagnostics.
func (b *BreakerClient) State() string {
	return b.cb.State().String()
}

var (
	_ Completer = (*Client)(nil)
	_ Completer = (*BreakerClient)(nil)
)
