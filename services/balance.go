package services

import (
	"errors"
	"sort"
)

// AssignmentPair is one judge-team link.
type AssignmentPair struct {
	JudgeID uint32
	TeamID  uint32
}

var ErrNoJudges = errors.New("no judges on the roster")

// BalanceAssignments computes a judge-team assignment where every team has
// exactly one judge and judge loads differ by at most one. judges and teams
// must be in roster and creation order; existing in insertion order.
//
// Existing links are kept when possible: a team keeps the first of its links
// whose judge is still on the roster, and only the minimum number of teams is
// moved to even out the loads. Running it on its own output changes nothing.
func BalanceAssignments(judges, teams []uint32, existing []AssignmentPair) ([]AssignmentPair, error) {
	judges, judgeIdx := dedupe(judges)
	teams, teamIdx := dedupe(teams)
	if len(judges) == 0 {
		return nil, ErrNoJudges
	}

	owner := make([]int, len(teams))
	for i := range owner {
		owner[i] = -1
	}
	for _, a := range existing {
		ti, okTeam := teamIdx[a.TeamID]
		ji, okJudge := judgeIdx[a.JudgeID]
		if !okTeam || !okJudge || owner[ti] != -1 {
			continue
		}
		owner[ti] = ji
	}

	load := make([]int, len(judges))
	for _, ji := range owner {
		if ji >= 0 {
			load[ji]++
		}
	}

	// Unassigned teams go to the least loaded judge, earliest judge on ties.
	for ti := range teams {
		if owner[ti] != -1 {
			continue
		}
		ji := argMin(load)
		owner[ti] = ji
		load[ji]++
	}

	for {
		hi, lo := argMax(load), argMin(load)
		if load[hi]-load[lo] <= 1 {
			break
		}
		last := -1
		for ti := len(teams) - 1; ti >= 0; ti-- {
			if owner[ti] == hi {
				last = ti
				break
			}
		}
		owner[last] = lo
		load[hi]--
		load[lo]++
	}

	out := make([]AssignmentPair, 0, len(teams))
	for ti, t := range teams {
		out = append(out, AssignmentPair{JudgeID: judges[owner[ti]], TeamID: t})
	}
	return out, nil
}

func dedupe(ids []uint32) ([]uint32, map[uint32]int) {
	index := make(map[uint32]int, len(ids))
	out := make([]uint32, 0, len(ids))
	for _, id := range ids {
		if _, dup := index[id]; dup {
			continue
		}
		index[id] = len(out)
		out = append(out, id)
	}
	return out, index
}

func argMin(xs []int) int {
	best := 0
	for i, x := range xs {
		if x < xs[best] {
			best = i
		}
	}
	return best
}

func argMax(xs []int) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}

// DiffAssignments returns the pairs to delete from current and to insert to reach target.
func DiffAssignments(current, target []AssignmentPair) (remove, add []AssignmentPair) {
	want := make(map[AssignmentPair]bool, len(target))
	for _, p := range target {
		want[p] = true
	}
	have := make(map[AssignmentPair]bool, len(current))
	for _, p := range current {
		if have[p] {
			continue
		}
		have[p] = true
		if !want[p] {
			remove = append(remove, p)
		}
	}
	for _, p := range target {
		if !have[p] {
			add = append(add, p)
		}
	}
	sort.SliceStable(add, func(i, j int) bool { return add[i].TeamID < add[j].TeamID })
	return remove, add
}
