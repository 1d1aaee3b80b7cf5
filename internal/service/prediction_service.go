package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jengzang/healthtwin-backend/internal/cache"
	"github.com/jengzang/healthtwin-backend/internal/engine"
	"github.com/jengzang/healthtwin-backend/internal/platform/apierr"
	"github.com/jengzang/healthtwin-backend/internal/platform/gemini"
	"github.com/jengzang/healthtwin-backend/internal/platform/logger"
	"github.com/jengzang/healthtwin-backend/internal/projection"
)

// Prediction sources
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

const (
	defaultAITimeout = 20 * time.Second
	defaultCacheTTL  = 10 * time.Minute
	maxPredictYears  = 100
)

var ErrInvalidYears = apierr.BadRequest("invalid_years", errors.New("years must be between 0 and 100"))

// TextGenerator produces free text for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AIOptions tunes calls to the text generator.
type AIOptions struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

func (o AIOptions) withDefaults() AIOptions {
	if o.Timeout <= 0 {
		o.Timeout = defaultAITimeout
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = defaultCacheTTL
	}
	return o
}

// Prediction is a numeric projection with a narrative around it.
type Prediction struct {
	Source          string                `json:"source"`
	Years           int                   `json:"years"`
	Projection      projection.Projection `json:"projection"`
	Description     string                `json:"description"`
	Recommendations []string              `json:"recommendations"`
}

type narrativeJSON struct {
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
}

// PredictionService explains projections with generated narratives.
type PredictionService struct {
	progress *ProgressService
	text     TextGenerator
	cache    cache.Cache
	opts     AIOptions
	log      *logger.Logger
	group    singleflight.Group
}

// NewPredictionService creates a prediction service. text and c may be nil,
// in which case every prediction uses the local narrative.
func NewPredictionService(progress *ProgressService, text TextGenerator, c cache.Cache, log *logger.Logger, opts AIOptions) *PredictionService {
	if log == nil {
		log = logger.Nop()
	}
	return &PredictionService{
		progress: progress,
		text:     text,
		cache:    c,
		opts:     opts.withDefaults(),
		log:      log.With("service", "PredictionService"),
	}
}

// cacheKey identifies a prediction by projection inputs, so users in the same
// situation share cached narratives.
func cacheKey(kind string, in projection.Input, years int) (string, error) {
	raw, err := json.Marshal(struct {
		Input projection.Input `json:"input"`
		Years int              `json:"years"`
	}{in, years})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return kind + ":" + hex.EncodeToString(sum[:]), nil
}

// Predict projects the user's health years ahead and describes the result.
func (s *PredictionService) Predict(ctx context.Context, userID string, years int) (*Prediction, error) {
	if years < 0 || years > maxPredictYears {
		return nil, ErrInvalidYears
	}
	st, err := s.progress.State(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := projection.Project(engine.ProjectionInput(st), years)
	if s.text == nil {
		return fallbackPrediction(st, p), nil
	}

	key, err := cacheKey("prediction", engine.ProjectionInput(st), years)
	if err != nil {
		return nil, fmt.Errorf("failed to build cache key: %w", err)
	}
	if pred, ok := s.cached(ctx, key); ok {
		return pred, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.generate(ctx, key, st, p), nil
	})
	if err != nil {
		return nil, err
	}
	pred := *v.(*Prediction)
	return &pred, nil
}

func (s *PredictionService) cached(ctx context.Context, key string) (*Prediction, bool) {
	if s.cache == nil {
		return nil, false
	}
	var pred Prediction
	ok, err := cache.GetJSON(ctx, s.cache, key, &pred)
	if err != nil {
		s.log.Warn("Prediction cache read failed", "key", key, "error", err)
		return nil, false
	}
	return &pred, ok
}

func (s *PredictionService) generate(ctx context.Context, key string, st *engine.State, p projection.Projection) *Prediction {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	text, err := s.text.Generate(ctx, predictionPrompt(st, p))
	if err != nil {
		s.log.Warn("Prediction generation failed, using fallback", "error", err)
		return fallbackPrediction(st, p)
	}

	var n narrativeJSON
	if err := gemini.DecodeJSON(text, &n); err != nil || n.Description == "" {
		s.log.Warn("Prediction response unusable, using fallback", "error", err)
		return fallbackPrediction(st, p)
	}
	if len(n.Recommendations) == 0 {
		_, n.Recommendations = localNarrative(st.Profile.Goal, p.CompletionRate, p.Years)
	}

	pred := &Prediction{
		Source:          SourceAI,
		Years:           p.Years,
		Projection:      p,
		Description:     n.Description,
		Recommendations: n.Recommendations,
	}
	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, pred, s.opts.CacheTTL); err != nil {
			s.log.Warn("Prediction cache write failed", "key", key, "error", err)
		}
	}
	return pred
}

func fallbackPrediction(st *engine.State, p projection.Projection) *Prediction {
	desc, recs := localNarrative(st.Profile.Goal, p.CompletionRate, p.Years)
	return &Prediction{
		Source:          SourceFallback,
		Years:           p.Years,
		Projection:      p,
		Description:     desc,
		Recommendations: recs,
	}
}
