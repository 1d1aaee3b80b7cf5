package stats

import (
	"math"

	"github.com/jengzang/healthtwin-backend/internal/models"
)

// TrendSummary describes how the health score moved over recorded days
type TrendSummary struct {
	Days               int     `json:"days"`
	MeanScore          float64 `json:"mean_score"`
	MedianScore        float64 `json:"median_score"`
	MinScore           float64 `json:"min_score"`
	MaxScore           float64 `json:"max_score"`
	ScoreStdDev        float64 `json:"score_std_dev"`
	SlopePerDay        float64 `json:"slope_per_day"`
	MeanCompletionRate float64 `json:"mean_completion_rate"`
	LongestStreak      int     `json:"longest_streak"`
	Direction          string  `json:"direction"` // up, down or flat
}

// flatSlope is the per-day change below which a trend counts as flat
const flatSlope = 0.1

// SummarizeHistory computes a TrendSummary over history entries
func SummarizeHistory(history []models.HistoryEntry) TrendSummary {
	sum := TrendSummary{Days: len(history), Direction: "flat"}
	if len(history) == 0 {
		return sum
	}

	days := make([]float64, len(history))
	scores := make([]float64, len(history))
	rates := make([]float64, len(history))
	for i, h := range history {
		days[i] = float64(h.Day)
		scores[i] = h.HealthScore
		rates[i] = h.CompletionRate
		if h.Streak > sum.LongestStreak {
			sum.LongestStreak = h.Streak
		}
	}

	sum.MeanScore = round2(Mean(scores))
	sum.MedianScore = round2(Median(scores))
	sum.MinScore, sum.MaxScore = MinMax(scores)
	sum.ScoreStdDev = round2(StdDev(scores))
	sum.MeanCompletionRate = round2(Mean(rates))

	slope, _ := LinearRegression(days, scores)
	sum.SlopePerDay = round2(slope)
	switch {
	case slope > flatSlope:
		sum.Direction = "up"
	case slope < -flatSlope:
		sum.Direction = "down"
	}
	return sum
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
