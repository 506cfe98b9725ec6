package validator

import (
	"context"
	"log/slog"
)

// ChainResult is the outcome of running a full ValidatorChain.
type ChainResult struct {
	Success bool
	Results map[string]Result
	Order   []string
}

// Issues flattens every validator's issues, in chain order.
func (r ChainResult) Issues() []Issue {
	var out []Issue
	for _, name := range r.Order {
		out = append(out, r.Results[name].Issues...)
	}
	return out
}

// Chain runs an ordered list of Validators against one target path.
type Chain struct {
	validators []Validator
	logger     *slog.Logger
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(logger *slog.Logger) ChainOption {
	return func(c *Chain) { c.logger = logger }
}

// NewChain builds a Chain from validators, run in the given order.
func NewChain(validators []Validator, opts ...ChainOption) *Chain {
	c := &Chain{validators: validators, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate invokes each validator in sequence, accumulating issues and
// per-validator metadata. If stopOnError is true and a validator's result
// is unsuccessful, the chain stops after that validator. Final Success is
// the logical AND of every validator that actually ran.
func (c *Chain) Validate(ctx context.Context, path string, stopOnError bool) (ChainResult, error) {
	out := ChainResult{Success: true, Results: make(map[string]Result, len(c.validators))}

	for _, v := range c.validators {
		res, err := v.Validate(ctx, path)
		if err != nil {
			return ChainResult{}, err
		}
		out.Results[v.Name()] = res
		out.Order = append(out.Order, v.Name())
		out.Success = out.Success && res.Success

		c.logger.Debug("validator ran", "validator", v.Name(), "success", res.Success, "issues", len(res.Issues))

		if stopOnError && !res.Success {
			break
		}
	}
	return out, nil
}
