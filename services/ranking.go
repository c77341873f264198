package services

import (
	"math"
	"sort"
	"time"

	"Hacknox/models"
)

// SubScoreMeans holds the per-criterion means of one team's submitted evaluations.
type SubScoreMeans struct {
	Innovation, Feasibility, Execution, Presentation float64
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}

// CompositeScore is the weighted mean of the four means, rounded to 4 decimals.
// Zero total weight falls back to equal weights.
func CompositeScore(m SubScoreMeans, w models.ScoringWeights) float64 {
	total := w.Innovation + w.Feasibility + w.Execution + w.Presentation
	if total <= 0 {
		w = models.DefaultScoringWeights()
		total = 4
	}
	sum := m.Innovation*w.Innovation +
		m.Feasibility*w.Feasibility +
		m.Execution*w.Execution +
		m.Presentation*w.Presentation
	return round4(sum / total)
}

// RankCandidate is one team going into the leaderboard.
type RankCandidate struct {
	TeamID      uint32
	TeamName    string
	Composite   float64
	SubmittedAt *time.Time
}

// RankTeams orders by composite descending, then earlier submission, then team
// id. Teams without a submission time sort after those with one. Ranks are 1..n.
func RankTeams(hackathonID uint32, candidates []RankCandidate) []models.LeaderboardEntry {
	sorted := make([]RankCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Composite != b.Composite {
			return a.Composite > b.Composite
		}
		switch {
		case a.SubmittedAt != nil && b.SubmittedAt != nil:
			if !a.SubmittedAt.Equal(*b.SubmittedAt) {
				return a.SubmittedAt.Before(*b.SubmittedAt)
			}
		case a.SubmittedAt != nil:
			return true
		case b.SubmittedAt != nil:
			return false
		}
		return a.TeamID < b.TeamID
	})

	entries := make([]models.LeaderboardEntry, len(sorted))
	for i, c := range sorted {
		entries[i] = models.LeaderboardEntry{
			HackathonID:    hackathonID,
			TeamID:         c.TeamID,
			TeamName:       c.TeamName,
			CompositeScore: c.Composite,
			SubmittedAt:    c.SubmittedAt,
			Rank:           uint(i + 1),
		}
	}
	return entries
}
