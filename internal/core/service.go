package core

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// GenerationService turns a prompt into a Draft via the generation collaborator
type GenerationService struct {
	llmClient LLMClient
	prompts   *PromptBuilder
	recorder  Recorder
	logger    *zap.Logger
}

// NewGenerationService creates a new generation service. A nil llmClient marks
// the collaborator as unavailable; Generate then fails fast.
func NewGenerationService(
	llmClient LLMClient,
	prompts *PromptBuilder,
	recorder Recorder,
	logger *zap.Logger,
) *GenerationService {
	if prompts == nil {
		prompts = NewPromptBuilder("", 0, 0)
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &GenerationService{
		llmClient: llmClient,
		prompts:   prompts,
		recorder:  recorder,
		logger:    logger,
	}
}

// Available reports whether the generation collaborator passed its startup check
func (s *GenerationService) Available() bool {
	return s.llmClient != nil
}

// Generate drafts an email for the prompt
func (s *GenerationService) Generate(ctx context.Context, prompt string) (*Draft, error) {
	if strings.TrimSpace(prompt) == "" {
		s.recorder.GenerationFinished(string(KindInvalidInput))
		return nil, &GenerationError{Kind: KindInvalidInput, Err: errPromptRequired}
	}

	if !s.Available() {
		s.recorder.GenerationFinished(string(KindServiceUnavailable))
		return nil, &GenerationError{Kind: KindServiceUnavailable, Err: errLLMNotConfigured}
	}

	s.logger.Info("Generating email", zap.Int("prompt_length", len(prompt)))

	start := time.Now()
	raw, err := s.llmClient.Complete(ctx, s.prompts.Build(prompt))
	if err != nil {
		s.logger.Error("Generation collaborator failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		s.recorder.GenerationFinished(string(KindUpstreamFailure))
		return nil, &GenerationError{Kind: KindUpstreamFailure, Err: err}
	}

	draft := ParseDraft(raw)
	if draft.Degraded.Any() {
		s.logger.Warn("Model response did not follow the draft format",
			zap.Bool("subject_fallback", draft.Degraded.SubjectFallback),
			zap.Bool("body_fallback", draft.Degraded.BodyFallback))
		if draft.Degraded.SubjectFallback {
			s.recorder.DraftDegraded("subject")
		}
		if draft.Degraded.BodyFallback {
			s.recorder.DraftDegraded("body")
		}
	}

	s.logger.Info("Email generated",
		zap.String("subject", draft.Subject),
		zap.Duration("duration", time.Since(start)))
	s.recorder.GenerationFinished("success")

	return &draft, nil
}
