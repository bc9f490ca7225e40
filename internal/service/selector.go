package service

import (
	"log"

	"concierge/internal/config"
	"concierge/internal/model"
)

// ResultSelector decides how many of the ranked candidates to surface.
// A single dominant match is shown alone; otherwise up to the top three
// are returned in their ranked order.
type ResultSelector struct {
	perfectScore float64
	perfectGap   float64
	maxResults   int
}

func NewResultSelector(selection *config.SelectionConfig, maxResults int) *ResultSelector {
	return &ResultSelector{
		perfectScore: selection.PerfectScore,
		perfectGap:   selection.PerfectGap,
		maxResults:   maxResults,
	}
}

// Select picks the final result set from candidates ranked best first.
func (s *ResultSelector) Select(candidates []model.CandidateMatch) []model.CandidateMatch {
	switch len(candidates) {
	case 0:
		return nil
	case 1:
		return candidates
	}

	leader := candidates[0].Score
	runnerUp := candidates[1].Score
	if leader > s.perfectScore && leader-runnerUp > s.perfectGap {
		log.Printf("Perfect match: %.60q (score %.3f, gap %.3f)", candidates[0].Title(), leader, leader-runnerUp)
		return candidates[:1]
	}

	if len(candidates) == 2 {
		return candidates
	}
	if len(candidates) > s.maxResults {
		return candidates[:s.maxResults]
	}
	return candidates
}
