package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/jengzang/healthtwin-backend/internal/cache"
	"github.com/jengzang/healthtwin-backend/internal/engine"
	"github.com/jengzang/healthtwin-backend/internal/platform/gemini"
	"github.com/jengzang/healthtwin-backend/internal/platform/logger"
	"github.com/jengzang/healthtwin-backend/internal/projection"
)

// TimelineYears is the length of a timeline.
const TimelineYears = 5

// HealthMetrics are display percentages such as "72%".
type HealthMetrics struct {
	Energy   string `json:"energy"`
	Strength string `json:"strength"`
	Overall  string `json:"overall"`
}

// TimelineYear describes one year of the timeline.
type TimelineYear struct {
	Year          int           `json:"year"`
	Description   string        `json:"description"`
	Achievements  []string      `json:"achievements"`
	HealthMetrics HealthMetrics `json:"health_metrics"`
}

// Timeline is a year-by-year story of the user's next five years.
type Timeline struct {
	Source              string         `json:"source"`
	Years               []TimelineYear `json:"years"`
	Summary             string         `json:"summary"`
	MotivationalMessage string         `json:"motivational_message"`
}

// TimelineService builds five year timelines.
type TimelineService struct {
	progress *ProgressService
	text     TextGenerator
	cache    cache.Cache
	opts     AIOptions
	log      *logger.Logger
	group    singleflight.Group
}

// NewTimelineService creates a timeline service. text and c may be nil.
func NewTimelineService(progress *ProgressService, text TextGenerator, c cache.Cache, log *logger.Logger, opts AIOptions) *TimelineService {
	if log == nil {
		log = logger.Nop()
	}
	return &TimelineService{
		progress: progress,
		text:     text,
		cache:    c,
		opts:     opts.withDefaults(),
		log:      log.With("service", "TimelineService"),
	}
}

// Timeline returns the user's five year timeline.
func (s *TimelineService) Timeline(ctx context.Context, userID string) (*Timeline, error) {
	st, err := s.progress.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.text == nil {
		return fallbackTimeline(st), nil
	}

	key, err := cacheKey("timeline", engine.ProjectionInput(st), TimelineYears)
	if err != nil {
		return nil, fmt.Errorf("failed to build cache key: %w", err)
	}
	if tl, ok := s.cached(ctx, key); ok {
		return tl, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.generate(ctx, key, st), nil
	})
	if err != nil {
		return nil, err
	}
	tl := *v.(*Timeline)
	tl.Years = append([]TimelineYear(nil), tl.Years...)
	return &tl, nil
}

func (s *TimelineService) cached(ctx context.Context, key string) (*Timeline, bool) {
	if s.cache == nil {
		return nil, false
	}
	var tl Timeline
	ok, err := cache.GetJSON(ctx, s.cache, key, &tl)
	if err != nil {
		s.log.Warn("Timeline cache read failed", "key", key, "error", err)
		return nil, false
	}
	return &tl, ok
}

func (s *TimelineService) generate(ctx context.Context, key string, st *engine.State) *Timeline {
	genCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	text, err := s.text.Generate(genCtx, timelinePrompt(st))
	if err != nil {
		s.log.Warn("Timeline generation failed, using fallback", "error", err)
		return fallbackTimeline(st)
	}

	var tl Timeline
	if err := gemini.DecodeJSON(text, &tl); err != nil || len(tl.Years) != TimelineYears {
		s.log.Warn("Timeline response unusable, using fallback", "error", err, "years", len(tl.Years))
		return fallbackTimeline(st)
	}
	tl.Source = SourceAI
	for i := range tl.Years {
		tl.Years[i].Year = i + 1
		if tl.Years[i].Achievements == nil {
			tl.Years[i].Achievements = []string{}
		}
	}

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, &tl, s.opts.CacheTTL); err != nil {
			s.log.Warn("Timeline cache write failed", "key", key, "error", err)
		}
	}
	return &tl
}

func pct(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}

// fallbackTimeline derives the timeline from local projections one to five
// years ahead.
func fallbackTimeline(st *engine.State) *Timeline {
	in := engine.ProjectionInput(st)
	goal := st.Profile.Goal.DisplayName()

	years := make([]TimelineYear, 0, TimelineYears)
	var last projection.Projection
	for y := 1; y <= TimelineYears; y++ {
		p := projection.Project(in, y)
		last = p
		years = append(years, TimelineYear{
			Year:         y,
			Description:  fmt.Sprintf("Year %d: at age %d your health score is projected at %.0f/100 with a %s trend. %s", y, p.FutureAge, p.ProjectedScore, p.Trend, p.Summary),
			Achievements: timelineAchievements(y, p, goal),
			HealthMetrics: HealthMetrics{
				Energy:   pct(p.Vitals.EnergyLevel),
				Strength: pct(p.Vitals.MuscleStrength),
				Overall:  pct(p.ProjectedScore),
			},
		})
	}

	return &Timeline{
		Source:              SourceFallback,
		Years:               years,
		Summary:             fmt.Sprintf("Five years of %s at your current %.0f%% completion rate takes your health score from %.0f to %.0f.", goal, last.CompletionRate, last.CurrentScore, last.ProjectedScore),
		MotivationalMessage: motivationFor(last.Trend),
	}
}

func timelineAchievements(year int, p projection.Projection, goal string) []string {
	out := []string{fmt.Sprintf("%d years on your %s journey", year, goal)}
	if p.ProjectedScore > p.CurrentScore {
		out = append(out, fmt.Sprintf("Health score up %.0f points", p.ProjectedScore-p.CurrentScore))
	}
	if p.RiskLevel == projection.RiskMinimal || p.RiskLevel == projection.RiskLow {
		out = append(out, "Low overall health risk")
	}
	if p.BodyState != "" {
		out = append(out, "Body state: "+p.BodyState)
	}
	return out
}

func motivationFor(trend string) string {
	switch trend {
	case projection.TrendImproving, projection.TrendRapidlyImproving:
		return "Small steps every day add up to big changes. Keep going!"
	case projection.TrendStable:
		return "Consistency is the foundation. One more completed task tips the scale."
	default:
		return "Every day is a fresh start. Your companion believes in you."
	}
}

// FutureLook is a short message about the user five years from now.
type FutureLook struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

const fallbackFutureLook = "Based on your dedication, in 5 years you'll have transformed into a stronger, more energetic version of yourself. Your consistent efforts will show in your posture, your glow, and the confidence you carry every day!"

// FutureLook returns a two or three sentence picture of the user in five
// years. It is not cached.
func (s *TimelineService) FutureLook(ctx context.Context, userID string) (*FutureLook, error) {
	st, err := s.progress.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	fallback := &FutureLook{Source: SourceFallback, Message: fallbackFutureLook}
	if s.text == nil {
		return fallback, nil
	}

	genCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	text, err := s.text.Generate(genCtx, futureLookPrompt(st))
	if err != nil {
		s.log.Warn("Future look generation failed, using fallback", "error", err)
		return fallback, nil
	}
	var out FutureLook
	if err := gemini.DecodeJSON(text, &out); err != nil || strings.TrimSpace(out.Message) == "" {
		s.log.Warn("Future look response unusable, using fallback", "error", err)
		return fallback, nil
	}
	out.Source = SourceAI
	out.Message = strings.TrimSpace(out.Message)
	return &out, nil
}
