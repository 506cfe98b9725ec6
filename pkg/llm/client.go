// Package llm provides the one looprun.Executor implementation that
// actually calls out to a model: a thin gRPC client over the LLMService
// defined in proto/agentcore.proto.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	pb "github.com/codeready-toolchain/agentcore/proto"
	"github.com/codeready-toolchain/agentcore/pkg/looprun"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client wraps the gRPC connection to the LLM service and implements
// looprun.Executor for "llm" and "hybrid" steps.
type Client struct {
	conn        *grpc.ClientConn
	client      pb.LLMServiceClient
	model       string
	temperature *float32
	maxTokens   *int32
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithModel overrides the model read from GEMINI_MODEL (or its default).
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// NewClient dials addr and configures model/temperature/max-tokens from
// the environment, matching the teacher's GEMINI_* knobs.
func NewClient(addr string, opts ...Option) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("llm: connecting to LLM service: %w", err)
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.0-flash-thinking-exp-01-21"
	}

	var temperature *float32
	if tempStr := os.Getenv("GEMINI_TEMPERATURE"); tempStr != "" {
		if temp, err := strconv.ParseFloat(tempStr, 32); err == nil {
			temp32 := float32(temp)
			temperature = &temp32
		}
	}

	var maxTokens *int32
	if maxStr := os.Getenv("GEMINI_MAX_TOKENS"); maxStr != "" {
		if max, err := strconv.ParseInt(maxStr, 10, 32); err == nil {
			max32 := int32(max)
			maxTokens = &max32
		}
	}

	c := &Client{
		conn:        conn,
		client:      pb.NewLLMServiceClient(conn),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Execute implements looprun.Executor. It sends the loop context's last
// output (or the original input, for the first step) as a single user
// message and returns the model's content plus split input/output token
// counts, satisfying spec §4.5's Executor contract.
func (c *Client) Execute(ctx context.Context, toolName string, lc looprun.LoopContext, step looprun.LoopStep) (any, int, int, error) {
	prompt := lc.Last
	if prompt == nil {
		prompt = lc.Input
	}
	content, ok := prompt.(string)
	if !ok {
		content = fmt.Sprintf("%v", prompt)
	}

	req := &pb.CompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []*pb.Message{
			{Role: pb.Role_ROLE_USER, Content: content},
		},
	}

	c.logger.Debug("llm call", "tool", toolName, "step", step.Name, "model", c.model)

	resp, err := c.client.Complete(ctx, req)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("llm: Complete: %w", err)
	}
	return resp.Content, int(resp.TokensIn), int(resp.TokensOut), nil
}

var _ looprun.Executor = (*Client)(nil)
