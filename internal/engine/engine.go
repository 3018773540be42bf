package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"bodygoal/internal/artifact"
	"bodygoal/internal/llm"
	"bodygoal/internal/profile"
	"bodygoal/internal/shared"
)

// Status discriminates how a Result was produced.
type Status string

const (
	// StatusCached means a fresh artifact was served from the store.
	StatusCached Status = "cached"
	// StatusGenerated means a new artifact was generated, validated and persisted.
	StatusGenerated Status = "generated"
	// StatusFallback means static library content was substituted for a
	// failed suggestion generation. Nothing was persisted.
	StatusFallback Status = "fallback"
	// StatusUnavailable means a full plan could not be generated and no
	// substitute exists. Nothing was persisted.
	StatusUnavailable Status = "unavailable"
)

// Result is the discriminated outcome of a single engine request. Artifact
// is set for every status except unavailable; Err carries the absorbed
// failure for the fallback and unavailable statuses.
type Result struct {
	Status   Status
	Artifact *artifact.Generated
	Err      error
}

// Recorder receives operational metadata for generation calls. A nil
// Recorder disables recording.
type Recorder interface {
	RecordMeta(meta shared.GenerationMeta) error
}

// Engine orchestrates plan and suggestion generation: freshness check,
// request building, the single generation call, validation, persistence,
// and fallback. All collaborators are injected; the engine keeps no
// mutable state of its own, so one instance serves concurrent requests.
type Engine struct {
	store      artifact.Store
	textGen    llm.TextGenerator
	recorder   Recorder
	ttl        time.Duration
	genTimeout time.Duration
	log        zerolog.Logger

	now func() time.Time
}

// NewEngine creates a new Engine. ttl is the shared freshness window;
// genTimeout bounds each generation call.
func NewEngine(store artifact.Store, textGen llm.TextGenerator, recorder Recorder, ttl, genTimeout time.Duration, logger zerolog.Logger) *Engine {
	return &Engine{
		store:      store,
		textGen:    textGen,
		recorder:   recorder,
		ttl:        ttl,
		genTimeout: genTimeout,
		log:        logger,
		now:        time.Now,
	}
}

// Obtain returns a valid artifact for (userID, typ): the cached one when
// still fresh, a newly generated one otherwise, or fallback/unavailable
// content when generation or validation fails. Only store failures and
// incomplete profiles abort the request; every other failure is absorbed
// into the Result. Concurrent requests for the same pair may both generate;
// the later write wins.
func (e *Engine) Obtain(ctx context.Context, userID string, typ artifact.Type, b profile.Biometrics, snap Snapshot) (Result, error) {
	if !typ.Valid() {
		return Result{}, fmt.Errorf("unknown artifact type %q", typ)
	}
	if err := b.Validate(); err != nil {
		return Result{}, err
	}

	cached, err := e.store.Get(ctx, userID, typ)
	if err != nil {
		return Result{}, err
	}
	if isFresh(cached, e.now(), e.ttl) {
		return Result{Status: StatusCached, Artifact: cached}, nil
	}

	calorieTarget := profile.CalorieTarget(b)
	prompt, err := buildPrompt(b, snap, typ, calorieTarget)
	if err != nil {
		e.log.Error().Err(err).Str("artifact_type", string(typ)).Msg("prompt build failed")
		return e.absorb(typ, err), nil
	}

	genCtx, cancel := context.WithTimeout(ctx, e.genTimeout)
	defer cancel()

	start := e.now()
	resp, err := e.textGen.GenerateContent(genCtx, prompt)
	latency := e.now().Sub(start)
	if err != nil {
		e.log.Warn().Err(err).
			Str("user_id", userID).
			Str("artifact_type", string(typ)).
			Dur("latency", latency).
			Msg("generation failed")
		e.record(typ, resp.Usage, latency, "client_failure")
		return e.absorb(typ, err), nil
	}

	payload, err := validate(resp.Content, typ)
	if err != nil {
		e.log.Warn().Err(err).
			Str("user_id", userID).
			Str("artifact_type", string(typ)).
			Msg("generated output rejected")
		e.record(typ, resp.Usage, latency, "validation_failure")
		return e.absorb(typ, err), nil
	}

	generated := artifact.Generated{
		UserID:      userID,
		Type:        typ,
		Payload:     payload,
		GeneratedAt: e.now(),
	}
	if err := e.store.Upsert(ctx, generated); err != nil {
		return Result{}, err
	}

	e.record(typ, resp.Usage, latency, "success")
	return Result{Status: StatusGenerated, Artifact: &generated}, nil
}

// SuggestAll obtains every suggestion category for a user concurrently.
// Categories are independent requests, so a fallback in one does not
// affect the others; store or profile failures cancel the whole batch.
func (e *Engine) SuggestAll(ctx context.Context, userID string, b profile.Biometrics, snap Snapshot) (map[artifact.Type]Result, error) {
	results := make([]Result, len(artifact.SuggestionTypes))

	g, gctx := errgroup.WithContext(ctx)
	for i, typ := range artifact.SuggestionTypes {
		g.Go(func() error {
			res, err := e.Obtain(gctx, userID, typ, b, snap)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[artifact.Type]Result, len(results))
	for i, typ := range artifact.SuggestionTypes {
		out[typ] = results[i]
	}
	return out, nil
}

// absorb converts a generation or validation failure into the terminal
// result for the artifact type: static library content for suggestions, an
// explicit unavailable state for full plans. Nothing is persisted either way.
func (e *Engine) absorb(typ artifact.Type, cause error) Result {
	if typ.IsSuggestion() {
		return Result{
			Status: StatusFallback,
			Artifact: &artifact.Generated{
				Type:        typ,
				Payload:     fallbackPayload(typ),
				GeneratedAt: e.now(),
			},
			Err: cause,
		}
	}
	return Result{Status: StatusUnavailable, Err: cause}
}

func (e *Engine) record(typ artifact.Type, usage shared.TokenUsage, latency time.Duration, outcome string) {
	if e.recorder == nil {
		return
	}
	meta := shared.GenerationMeta{
		ArtifactType: string(typ),
		Usage:        usage,
		Latency:      latency,
		Outcome:      outcome,
	}
	if err := e.recorder.RecordMeta(meta); err != nil {
		e.log.Warn().Err(err).Msg("failed to record generation metric")
	}
}
