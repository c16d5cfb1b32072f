// Package generation adapts an LLM provider into a stateless prompt→result
// call that never surfaces a Go error to its caller.
package generation

import (
	"context"
	"errors"
	"log/slog"

	"recipe-chat/internal/llm"
)

type Kind string

const (
	KindText       Kind = "text"
	KindStructured Kind = "structured"
)

// Request is one generation call. It lives only for the duration of Generate.
type Request struct {
	Prompt string
	Schema *llm.Schema
}

// Result carries either the returned text, the raw structured payload, or the
// failure that prevented one. Value is the provider's payload verbatim.
type Result struct {
	Kind  Kind
	Value string
	Err   error
}

func (r Result) Failed() bool {
	return r.Err != nil
}

func Failure(err error) Result {
	return Result{Err: err}
}

type Client struct {
	llm    llm.Client
	model  string
	logger *slog.Logger
}

type Option func(*Client)

func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(client llm.Client, opts ...Option) (*Client, error) {
	if client == nil {
		return nil, errors.New("llm client is required")
	}
	c := &Client{
		llm:    client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate performs exactly one provider call. Network, auth and API failures
// are returned in Result.Err. A structured payload is returned as-is even when
// it does not parse; diagnosing it is left to the formatter.
func (c *Client) Generate(ctx context.Context, req Request) Result {
	resp, err := c.llm.Chat(ctx, llm.ChatRequest{
		Model:    c.model,
		Messages: llm.UserPrompt(req.Prompt),
		Schema:   req.Schema,
	})
	if err != nil {
		c.logger.Warn("generation failed", "error", err, "structured", req.Schema != nil)
		return Failure(err)
	}
	c.logger.Debug("generation completed",
		"model", resp.Model,
		"finish_reason", resp.FinishReason,
		"bytes", len(resp.Content),
	)
	kind := KindText
	if req.Schema != nil {
		kind = KindStructured
	}
	return Result{Kind: kind, Value: resp.Content}
}
