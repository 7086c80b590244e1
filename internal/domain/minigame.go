package domain

import (
	"fmt"
	"slices"
	"time"
)

type Side int

const (
	SideA Side = iota
	SideB
)

func ParseSide(raw string) (Side, error) {
	switch raw {
	case "a", "A":
		return SideA, nil
	case "b", "B":
		return SideB, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSide, raw)
	}
}

type Goal struct {
	ID string
	// ScorerID is empty for goals entered only as a score change
	ScorerID   string
	AssisterID string
	Team       TeamKey
	ScoredAt   time.Time
}

type MiniGame struct {
	ID       string
	Sequence int

	TeamA  TeamKey
	TeamB  TeamKey
	ScoreA int
	ScoreB int
	Goals  []Goal

	// Team members when the game was added
	LineupA []string
	LineupB []string

	Live      bool
	Locked    bool
	StartedAt *time.Time
	Duration  time.Duration

	KnockoutMatchID string
}

func (g MiniGame) Clone() MiniGame {
	g.Goals = slices.Clone(g.Goals)
	g.LineupA = slices.Clone(g.LineupA)
	g.LineupB = slices.Clone(g.LineupB)
	if g.StartedAt != nil {
		startedAt := *g.StartedAt
		g.StartedAt = &startedAt
	}
	return g
}

func (g MiniGame) TeamFor(side Side) TeamKey {
	if side == SideB {
		return g.TeamB
	}
	return g.TeamA
}

func (g MiniGame) Score(side Side) int {
	if side == SideB {
		return g.ScoreB
	}
	return g.ScoreA
}

func (g *MiniGame) setScore(side Side, score int) {
	if side == SideB {
		g.ScoreB = score
	} else {
		g.ScoreA = score
	}
}

func (g MiniGame) sideOf(team TeamKey) (Side, bool) {
	switch team {
	case g.TeamA:
		return SideA, true
	case g.TeamB:
		return SideB, true
	default:
		return 0, false
	}
}

// CountGoals counts the goals attributed to the given team
func (g MiniGame) CountGoals(team TeamKey) int {
	count := 0
	for _, goal := range g.Goals {
		if goal.Team == team {
			count++
		}
	}
	return count
}

// Winner returns the team with the strictly higher score
func (g MiniGame) Winner() (TeamKey, bool) {
	switch {
	case g.ScoreA > g.ScoreB:
		return g.TeamA, true
	case g.ScoreB > g.ScoreA:
		return g.TeamB, true
	default:
		return "", false
	}
}

func (g MiniGame) Loser() (TeamKey, bool) {
	winner, ok := g.Winner()
	if !ok {
		return "", false
	}
	if winner == g.TeamA {
		return g.TeamB, true
	}
	return g.TeamA, true
}

// Validate checks that the scores agree with the entered goals
func (g MiniGame) Validate() error {
	if g.TeamA == g.TeamB {
		return ErrSameTeam
	}
	if g.ScoreA < 0 || g.ScoreB < 0 {
		return ErrNegativeScore
	}
	for _, goal := range g.Goals {
		if goal.Team != g.TeamA && goal.Team != g.TeamB {
			return fmt.Errorf("%w: goal for %s in %s-%s", ErrUnknownTeam, goal.Team, g.TeamA, g.TeamB)
		}
		if goal.AssisterID != "" && goal.AssisterID == goal.ScorerID {
			return ErrAssisterIsScorer
		}
	}
	goalsA, goalsB := g.CountGoals(g.TeamA), g.CountGoals(g.TeamB)
	if g.ScoreA != goalsA || g.ScoreB != goalsB {
		return fmt.Errorf(
			"%w: score %d-%d, goals %d-%d",
			ErrScoreGoalMismatch, g.ScoreA, g.ScoreB, goalsA, goalsB,
		)
	}
	return nil
}

// removeLastGoalFor removes the most recently added goal for the team
func (g *MiniGame) removeLastGoalFor(team TeamKey) bool {
	for i := len(g.Goals) - 1; i >= 0; i-- {
		if g.Goals[i].Team == team {
			g.Goals = slices.Delete(g.Goals, i, i+1)
			return true
		}
	}
	return false
}
