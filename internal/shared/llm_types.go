package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// GenerationMeta holds operational metadata for a single generation call.
type GenerationMeta struct {
	ArtifactType string
	Usage        TokenUsage
	Latency      time.Duration
	Outcome      string
}
