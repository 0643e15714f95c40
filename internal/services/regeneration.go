package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	rediscache "github.com/viorelmirea/provocations-backend/internal/clients/redis"
	"github.com/viorelmirea/provocations-backend/internal/platform/logger"
	"github.com/viorelmirea/provocations-backend/internal/repos"
	"github.com/viorelmirea/provocations-backend/internal/types"
	"golang.org/x/sync/singleflight"
)

// regenerateSystemPrompt is the fixed instruction sent with every
// regeneration call. The model must return only an updated "context" field,
// keeping the spirit of the original while staying in an academic register.
const regenerateSystemPrompt = `You will receive a structure for a conversation, a concern given a particular "text" question within a certain "context" based on various "references".
Generate only a new version of the "context" keeping more or less the initial line of thought,
don't be afraid to deviate from the original text, but keep the same "spirit",
try to look for new examples,
try to look for new questions,
maybe even look for references connected with those given,
try not to be overly verbose, yet use words and concepts that are in the scientific, academic area`

// RegenerationConfig carries the policy knobs for the regeneration pipeline.
//
// PerConcernLimit caps the stored history per concern: once a concern has
// that many completions the service recycles instead of generating. This is
// the chosen resolution of the one-vs-many schema ambiguity in the site's
// old schemas: history is unbounded by the table, bounded by policy.
type RegenerationConfig struct {
	Recycle         bool
	PerConcernLimit int
}

type RegenerationService interface {
	// Regenerate produces a fresh context for the concern, respecting the
	// daily quota and the per-concern history cap. Denied or capped calls
	// recycle a stored completion. Returns the concern with its context
	// replaced. Errors: ErrNotAvailable, ErrGenerationFailed.
	Regenerate(ctx context.Context, kind types.ContentKind, concern types.Concern) (types.Concern, error)

	// PickStored selects a stored completion uniformly at random and
	// returns the concern with its context replaced. ErrNotAvailable when
	// nothing is stored (or the store is unreachable).
	PickStored(ctx context.Context, kind types.ContentKind, concern types.Concern) (types.Concern, error)

	// ListCompletions returns every stored completion for the concern.
	ListCompletions(ctx context.Context, kind types.ContentKind, concern types.Concern) ([]*types.Completion, error)
}

type regenerationService struct {
	log *logger.Logger
	cfg RegenerationConfig

	completionRepo repos.CompletionRepo
	callLogRepo    repos.RegenCallLogRepo
	cache          rediscache.CompletionsCache
	limiter        *RequestLimiter
	openai         OpenAIClient

	sf singleflight.Group
}

func NewRegenerationService(
	baseLog *logger.Logger,
	cfg RegenerationConfig,
	completionRepo repos.CompletionRepo,
	callLogRepo repos.RegenCallLogRepo,
	cache rediscache.CompletionsCache,
	limiter *RequestLimiter,
	openai OpenAIClient,
) RegenerationService {
	return &regenerationService{
		log:            baseLog.With("service", "RegenerationService"),
		cfg:            cfg,
		completionRepo: completionRepo,
		callLogRepo:    callLogRepo,
		cache:          cache,
		limiter:        limiter,
		openai:         openai,
	}
}

var tracer = otel.Tracer("github.com/viorelmirea/provocations-backend/internal/services")

func (s *regenerationService) Regenerate(ctx context.Context, kind types.ContentKind, concern types.Concern) (types.Concern, error) {
	ctx, span := tracer.Start(ctx, "regeneration.Regenerate", trace.WithAttributes(
		attribute.String("content.kind", kind.String()),
		attribute.String("concern.id", concern.ID),
	))
	defer span.End()

	if s.shouldRecycle(ctx, kind, concern) {
		return s.PickStored(ctx, kind, concern)
	}

	updated, err := s.generate(ctx, kind, concern)
	if err != nil {
		span.RecordError(err)
		return types.Concern{}, err
	}
	return updated, nil
}

// shouldRecycle routes a call to the stored-completion path: the recycle
// flag wins, then the per-concern history cap, and only then is a quota
// unit consumed. A storage failure during the cap check does not block
// generation; the store is retried at insert time anyway.
func (s *regenerationService) shouldRecycle(ctx context.Context, kind types.ContentKind, concern types.Concern) bool {
	if s.cfg.Recycle {
		return true
	}
	if s.cfg.PerConcernLimit > 0 {
		count, err := s.completionRepo.CountByConcernID(ctx, nil, kind, concern.ID)
		if err != nil {
			s.log.Warn("Completion count unavailable, proceeding to generate", "concern_id", concern.ID, "error", err)
		} else if count >= int64(s.cfg.PerConcernLimit) {
			s.log.Debug("Per-concern completion cap reached, recycling", "concern_id", concern.ID, "count", count)
			return true
		}
	}
	return !s.limiter.TryConsume()
}

func (s *regenerationService) generate(ctx context.Context, kind types.ContentKind, concern types.Concern) (types.Concern, error) {
	serialized, err := json.Marshal(concern)
	if err != nil {
		return types.Concern{}, fmt.Errorf("serialize concern: %w", ErrGenerationFailed)
	}
	user := "``` json\n" + string(serialized) + "\n```"

	obj, usage, genErr := s.openai.GenerateJSON(ctx, regenerateSystemPrompt, user)

	newContext := ""
	if genErr == nil {
		value, ok := obj["context"].(string)
		if !ok || value == "" {
			genErr = fmt.Errorf("provider output missing context field")
		} else {
			newContext = value
		}
	}

	// The call consumed a quota unit either way; log it regardless of the
	// caller's fate. Persistence runs detached so a client abort does not
	// waste the generation.
	detached := context.WithoutCancel(ctx)
	s.logCall(detached, kind, concern.ID, usage, genErr)

	if genErr != nil {
		s.log.Warn("Generation failed", "concern_id", concern.ID, "error", genErr)
		return types.Concern{}, fmt.Errorf("%v: %w", genErr, ErrGenerationFailed)
	}

	if _, err := s.completionRepo.Create(detached, nil, kind, concern.ID, newContext); err != nil {
		// The text exists; losing the row only means it cannot be recycled
		// later. Still return it to the caller.
		s.log.Warn("Completion not persisted", "concern_id", concern.ID, "error", err)
	} else if s.cache != nil {
		s.cache.Invalidate(detached, kind, concern.ID)
	}

	return concern.WithContext(newContext), nil
}

func (s *regenerationService) logCall(ctx context.Context, kind types.ContentKind, concernID string, usage json.RawMessage, genErr error) {
	if s.callLogRepo == nil {
		return
	}
	entry := &types.RegenCallLog{
		Kind:      kind.String(),
		ConcernID: concernID,
		Model:     s.openai.Model(),
		Success:   genErr == nil,
	}
	if genErr != nil {
		entry.Error = genErr.Error()
	}
	if len(usage) > 0 {
		entry.Usage = datatypes.JSON(usage)
	}
	if _, err := s.callLogRepo.Create(ctx, nil, []*types.RegenCallLog{entry}); err != nil {
		s.log.Warn("Call log insert failed", "concern_id", concernID, "error", err)
	}
}

func (s *regenerationService) PickStored(ctx context.Context, kind types.ContentKind, concern types.Concern) (types.Concern, error) {
	completions, err := s.listStored(ctx, kind, concern.ID)
	if err != nil {
		s.log.Warn("Stored completions unavailable", "concern_id", concern.ID, "error", err)
		return types.Concern{}, ErrNotAvailable
	}
	if len(completions) == 0 {
		return types.Concern{}, ErrNotAvailable
	}
	picked := completions[rand.Intn(len(completions))]
	return concern.WithContext(picked.Completion), nil
}

func (s *regenerationService) ListCompletions(ctx context.Context, kind types.ContentKind, concern types.Concern) ([]*types.Completion, error) {
	return s.listStored(ctx, kind, concern.ID)
}

// listStored reads through the optional redis cache; concurrent misses for
// the same concern collapse into one database read.
func (s *regenerationService) listStored(ctx context.Context, kind types.ContentKind, concernID string) ([]*types.Completion, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, kind, concernID); ok {
			return cached, nil
		}
	}
	key := kind.String() + ":" + concernID
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		rows, err := s.completionRepo.GetByConcernID(ctx, nil, kind, concernID)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.cache.Set(ctx, kind, concernID, rows)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*types.Completion), nil
}
