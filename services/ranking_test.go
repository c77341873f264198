package services

import (
	"testing"
	"time"

	"Hacknox/models"
)

func TestCompositeScore(t *testing.T) {
	means := SubScoreMeans{Innovation: 8, Feasibility: 6, Execution: 7, Presentation: 9}
	tests := []struct {
		name    string
		weights models.ScoringWeights
		want    float64
	}{
		{"equal weights", models.DefaultScoringWeights(), 7.5},
		{"zero weights fall back", models.ScoringWeights{}, 7.5},
		{"innovation only", models.ScoringWeights{Innovation: 1}, 8},
		{"weighted", models.ScoringWeights{Innovation: 2, Feasibility: 1, Execution: 0, Presentation: 0}, 7.3333},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompositeScore(means, tt.weights); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRankTeamsTieBreaks(t *testing.T) {
	early := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	entries := RankTeams(7, []RankCandidate{
		{TeamID: 4, TeamName: "no-time", Composite: 8},
		{TeamID: 3, TeamName: "late", Composite: 8, SubmittedAt: &late},
		{TeamID: 2, TeamName: "early", Composite: 8, SubmittedAt: &early},
		{TeamID: 1, TeamName: "top", Composite: 9.5, SubmittedAt: &late},
		{TeamID: 5, TeamName: "no-time-2", Composite: 8},
	})

	wantOrder := []uint32{1, 2, 3, 4, 5}
	for i, id := range wantOrder {
		if entries[i].TeamID != id {
			t.Errorf("Expected team %d at rank %d, got %d", id, i+1, entries[i].TeamID)
		}
		if entries[i].Rank != uint(i+1) {
			t.Errorf("Expected rank %d, got %d", i+1, entries[i].Rank)
		}
		if entries[i].HackathonID != 7 {
			t.Errorf("Expected hackathon 7, got %d", entries[i].HackathonID)
		}
	}
}

func TestRankTeamsEmpty(t *testing.T) {
	if got := RankTeams(1, nil); len(got) != 0 {
		t.Errorf("Expected no entries, got %d", len(got))
	}
}
