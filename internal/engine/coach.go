package engine

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bodygoal/internal/llm"
	"bodygoal/internal/profile"
)

//go:embed coach_prompt.md
var coachPromptTmpl string

// Coach answers free-text fitness questions against the user's profile.
// Answers are not cached and not shape-validated beyond being non-empty.
type Coach struct {
	textGen    llm.TextGenerator
	genTimeout time.Duration
	log        zerolog.Logger
}

// NewCoach creates a new Coach sharing the engine's text generator.
func NewCoach(textGen llm.TextGenerator, genTimeout time.Duration, logger zerolog.Logger) *Coach {
	return &Coach{textGen: textGen, genTimeout: genTimeout, log: logger}
}

// Ask answers a user question. The caller renders a static apology when an
// error comes back; failures here are never fatal for the surface.
func (c *Coach) Ask(ctx context.Context, b profile.Biometrics, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("question is required")
	}
	if err := b.Validate(); err != nil {
		return "", err
	}

	system, err := renderTemplate("coach", coachPromptTmpl, promptData{Profile: b})
	if err != nil {
		return "", err
	}

	genCtx, cancel := context.WithTimeout(ctx, c.genTimeout)
	defer cancel()

	resp, err := c.textGen.GenerateContent(genCtx, llm.Prompt{System: system, User: question})
	if err != nil {
		c.log.Warn().Err(err).Msg("coach generation failed")
		return "", err
	}

	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		return "", fmt.Errorf("%w: empty answer", llm.ErrUnavailable)
	}
	return answer, nil
}
