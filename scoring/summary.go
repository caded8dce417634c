package scoring

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SummaryStats describes the score distribution across all members, shown on
// the leaderboard header.
type SummaryStats struct {
	Members   int     `json:"members"`
	Mean      float64 `json:"mean"`
	Median    float64 `json:"median"`
	TopDecile float64 `json:"topDecile"`
	Max       int     `json:"max"`
}

// Summarize computes distribution stats over pre-ranked entries.
func Summarize(entries []*Entry) *SummaryStats {
	if len(entries) == 0 {
		return &SummaryStats{}
	}

	scores := make([]float64, 0, len(entries))
	for _, e := range entries {
		scores = append(scores, float64(e.Score))
	}
	// stat.Quantile requires ascending order.
	sort.Float64s(scores)

	return &SummaryStats{
		Members:   len(entries),
		Mean:      stat.Mean(scores, nil),
		Median:    stat.Quantile(0.5, stat.Empirical, scores, nil),
		TopDecile: stat.Quantile(0.9, stat.Empirical, scores, nil),
		Max:       int(scores[len(scores)-1]),
	}
}
