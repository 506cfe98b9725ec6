package looprun

import "time"

// Metrics accumulates bookkeeping for one loop run. A step execution is
// recorded by type: tool increments ToolCalls; llm increments LLMCalls and
// adds tokens; hybrid always increments ToolCalls, and also increments
// LLMCalls iff either token count is nonzero.
type Metrics struct {
	LLMCalls       int
	LLMTokensIn    int
	LLMTokensOut   int
	ToolCalls      int
	WallClock      time.Duration
	PerStepTime    map[string]time.Duration
	Iterations     int
	Retries        int
}

func newMetrics() *Metrics {
	return &Metrics{PerStepTime: make(map[string]time.Duration)}
}

func (m *Metrics) recordStep(step LoopStep, tokensIn, tokensOut int, elapsed time.Duration) {
	m.PerStepTime[step.Name] += elapsed
	switch step.Type {
	case StepLLM:
		m.LLMCalls++
		m.LLMTokensIn += tokensIn
		m.LLMTokensOut += tokensOut
	case StepHybrid:
		m.ToolCalls++
		if tokensIn != 0 || tokensOut != 0 {
			m.LLMCalls++
			m.LLMTokensIn += tokensIn
			m.LLMTokensOut += tokensOut
		}
	default: // StepTool
		m.ToolCalls++
	}
}

// TotalTokens returns the sum of input and output tokens accrued so far.
func (m *Metrics) TotalTokens() int {
	return m.LLMTokensIn + m.LLMTokensOut
}
