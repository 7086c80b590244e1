package domain

// WinCreditPolicy decides which players are credited with a win for a mini-game
type WinCreditPolicy int

const (
	// CreditCurrentRoster credits everyone on the winning team at reconciliation time.
	// A player moved to another team after the game is credited under the new team.
	CreditCurrentRoster WinCreditPolicy = iota
	// CreditLineupAtGameTime credits the lineup captured when the mini-game was added.
	// Games without a captured lineup fall back to the current roster.
	CreditLineupAtGameTime
)

func (p WinCreditPolicy) String() string {
	switch p {
	case CreditCurrentRoster:
		return "current-roster"
	case CreditLineupAtGameTime:
		return "lineup-at-game-time"
	default:
		return "<invalid win credit policy>"
	}
}

// RecomputeStats rebuilds the session stats of every player by replaying the full
// mini-game ledger. Stats are never updated incrementally.
func RecomputeStats(roster Roster, games []MiniGame, policy WinCreditPolicy) map[string]PlayerStats {
	stats := make(map[string]PlayerStats)

	for _, team := range roster.Teams {
		for _, playerID := range team.PlayerIDs {
			stats[playerID] = PlayerStats{}
		}
	}

	credit := func(playerID string, delta PlayerStats) {
		if playerID == "" {
			return
		}
		// Missing entries are created on demand
		stats[playerID] = stats[playerID].Add(delta)
	}

	for _, game := range games {
		for _, goal := range game.Goals {
			credit(goal.ScorerID, PlayerStats{Goals: 1})
			credit(goal.AssisterID, PlayerStats{Assists: 1})
		}

		winner, ok := game.Winner()
		if !ok {
			continue
		}
		for _, playerID := range winningPlayers(roster, game, winner, policy) {
			credit(playerID, PlayerStats{Wins: 1})
		}
	}

	return stats
}

func winningPlayers(roster Roster, game MiniGame, winner TeamKey, policy WinCreditPolicy) []string {
	if policy == CreditLineupAtGameTime {
		lineup := game.LineupA
		if winner == game.TeamB {
			lineup = game.LineupB
		}
		if len(lineup) > 0 {
			return lineup
		}
	}
	return roster.Members(winner)
}

// CareerDelta is what has to be added to the career counters to go from the stats
// applied by a previous finalization to the current stats. Players whose stats did
// not change are omitted.
func CareerDelta(applied, current map[string]PlayerStats) map[string]PlayerStats {
	delta := make(map[string]PlayerStats)
	for playerID, stats := range current {
		if d := stats.Sub(applied[playerID]); !d.IsZero() {
			delta[playerID] = d
		}
	}
	for playerID, stats := range applied {
		if _, ok := current[playerID]; ok {
			continue
		}
		if !stats.IsZero() {
			delta[playerID] = PlayerStats{}.Sub(stats)
		}
	}
	return delta
}
