package services

import (
	"errors"
	"testing"
)

func loads(pairs []AssignmentPair) map[uint32]int {
	out := map[uint32]int{}
	for _, p := range pairs {
		out[p.JudgeID]++
	}
	return out
}

func spread(judges []uint32, pairs []AssignmentPair) int {
	l := loads(pairs)
	lo, hi := -1, -1
	for _, j := range judges {
		n := l[j]
		if lo == -1 || n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}
	return hi - lo
}

func TestBalanceAssignments(t *testing.T) {
	tests := []struct {
		name     string
		judges   []uint32
		teams    []uint32
		existing []AssignmentPair
	}{
		{"no existing", []uint32{1, 2, 3}, []uint32{10, 11, 12, 13, 14, 15, 16}, nil},
		{"more judges than teams", []uint32{1, 2, 3, 4}, []uint32{10, 11}, nil},
		{"skewed existing", []uint32{1, 2}, []uint32{10, 11, 12, 13, 14}, []AssignmentPair{
			{1, 10}, {1, 11}, {1, 12}, {1, 13}, {1, 14},
		}},
		{"unknown judge dropped", []uint32{1, 2}, []uint32{10, 11, 12}, []AssignmentPair{
			{9, 10}, {1, 11},
		}},
		{"double assigned team", []uint32{1, 2}, []uint32{10, 11}, []AssignmentPair{
			{1, 10}, {2, 10},
		}},
		{"no teams", []uint32{1, 2}, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BalanceAssignments(tt.judges, tt.teams, tt.existing)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(got) != len(tt.teams) {
				t.Errorf("Expected %d assignments, got %d", len(tt.teams), len(got))
			}
			seen := map[uint32]bool{}
			for _, p := range got {
				if seen[p.TeamID] {
					t.Errorf("Team %d assigned twice", p.TeamID)
				}
				seen[p.TeamID] = true
			}
			if s := spread(tt.judges, got); s > 1 {
				t.Errorf("Expected load spread <= 1, got %d", s)
			}

			again, err := BalanceAssignments(tt.judges, tt.teams, got)
			if err != nil {
				t.Fatalf("Unexpected error on second run: %v", err)
			}
			remove, add := DiffAssignments(got, again)
			if len(remove) != 0 || len(add) != 0 {
				t.Errorf("Expected second run to be a no-op, got remove=%v add=%v", remove, add)
			}
		})
	}
}

func TestBalanceAssignmentsKeepsExisting(t *testing.T) {
	existing := []AssignmentPair{{1, 10}, {2, 11}}
	got, err := BalanceAssignments([]uint32{1, 2}, []uint32{10, 11, 12}, existing)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []AssignmentPair{{1, 10}, {2, 11}, {1, 12}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v at %d, got %v", want[i], i, got[i])
		}
	}
}

func TestBalanceAssignmentsMovesLastTeam(t *testing.T) {
	existing := []AssignmentPair{{1, 10}, {1, 11}, {1, 12}}
	got, err := BalanceAssignments([]uint32{1, 2}, []uint32{10, 11, 12}, existing)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got[2].JudgeID != 2 {
		t.Errorf("Expected team 12 to move to judge 2, got judge %d", got[2].JudgeID)
	}
	if got[0].JudgeID != 1 || got[1].JudgeID != 1 {
		t.Errorf("Expected teams 10 and 11 to stay with judge 1, got %v", got)
	}
}

func TestBalanceAssignmentsNoJudges(t *testing.T) {
	_, err := BalanceAssignments(nil, []uint32{1}, nil)
	if !errors.Is(err, ErrNoJudges) {
		t.Errorf("Expected ErrNoJudges, got %v", err)
	}
}

func TestDiffAssignments(t *testing.T) {
	current := []AssignmentPair{{1, 10}, {1, 11}, {2, 12}}
	target := []AssignmentPair{{1, 10}, {2, 11}, {2, 12}}
	remove, add := DiffAssignments(current, target)
	if len(remove) != 1 || remove[0] != (AssignmentPair{1, 11}) {
		t.Errorf("Expected remove [{1 11}], got %v", remove)
	}
	if len(add) != 1 || add[0] != (AssignmentPair{2, 11}) {
		t.Errorf("Expected add [{2 11}], got %v", add)
	}
}
