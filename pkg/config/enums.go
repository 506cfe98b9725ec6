package config

// LLMProviderType defines supported LLM providers.
type LLMProviderType string

const (
	// LLMProviderTypeGoogle is Google Gemini, reached over the gRPC LLMService.
	LLMProviderTypeGoogle LLMProviderType = "google"
	// LLMProviderTypeOpenAI is OpenAI, reached over the gRPC LLMService.
	LLMProviderTypeOpenAI LLMProviderType = "openai"
	// LLMProviderTypeAnthropic is Anthropic Claude, reached over the gRPC LLMService.
	LLMProviderTypeAnthropic LLMProviderType = "anthropic"
)

// IsValid checks if the LLM provider type is valid.
func (t LLMProviderType) IsValid() bool {
	switch t {
	case LLMProviderTypeGoogle, LLMProviderTypeOpenAI, LLMProviderTypeAnthropic:
		return true
	default:
		return false
	}
}

// OnErrorAction mirrors pkg/looprun.ErrorAction for config-file validation
// without importing pkg/looprun (config must stay leaf-level).
type OnErrorAction string

const (
	OnErrorActionAbort OnErrorAction = "abort"
	OnErrorActionRetry OnErrorAction = "retry"
	OnErrorActionSkip  OnErrorAction = "skip"
	OnErrorActionGoto  OnErrorAction = "goto"
)

// IsValid checks if the on_error action is valid (empty means default "abort").
func (a OnErrorAction) IsValid() bool {
	switch a {
	case "", OnErrorActionAbort, OnErrorActionRetry, OnErrorActionSkip, OnErrorActionGoto:
		return true
	default:
		return false
	}
}
