package service

import (
	"testing"

	"concierge/internal/config"
	"concierge/internal/model"
)

func scored(scores ...float64) []model.CandidateMatch {
	out := make([]model.CandidateMatch, len(scores))
	for i, s := range scores {
		out[i] = model.CandidateMatch{ID: string(rune('a' + i)), Score: s, Metadata: map[string]string{}}
	}
	return out
}

func TestResultSelector_Select(t *testing.T) {
	selector := NewResultSelector(&config.SelectionConfig{PerfectScore: 0.90, PerfectGap: 0.05}, 3)

	tests := []struct {
		name   string
		scores []float64
		want   int
	}{
		{
			name:   "no candidates",
			scores: nil,
			want:   0,
		},
		{
			name:   "single candidate shown regardless of score",
			scores: []float64{0.40},
			want:   1,
		},
		{
			name:   "dominant leader collapses to one",
			scores: []float64{0.95, 0.80, 0.70},
			want:   1,
		},
		{
			name:   "high leader without a gap keeps the set",
			scores: []float64{0.95, 0.93, 0.70},
			want:   3,
		},
		{
			name:   "leader below floor never collapses",
			scores: []float64{0.89, 0.60},
			want:   2,
		},
		{
			name:   "two candidates both shown",
			scores: []float64{0.85, 0.80},
			want:   2,
		},
		{
			name:   "close scores capped at three",
			scores: []float64{0.70, 0.68, 0.60, 0.55, 0.50},
			want:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selector.Select(scored(tt.scores...))
			if len(got) != tt.want {
				t.Fatalf("Select() returned %d candidates, want %d", len(got), tt.want)
			}
			// survivors must be the ranked prefix
			for i, m := range got {
				if m.Score != tt.scores[i] {
					t.Errorf("candidate[%d] score = %v, want %v", i, m.Score, tt.scores[i])
				}
			}
		})
	}
}
