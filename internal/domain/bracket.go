package domain

import (
	"fmt"
	"slices"
)

type Round string

const (
	RoundSemifinal  Round = "semifinal"
	RoundFinal      Round = "final"
	RoundThirdPlace Round = "third-place"
)

type MatchStatus int

const (
	MatchPending MatchStatus = iota
	MatchComplete
)

func (s MatchStatus) String() string {
	switch s {
	case MatchPending:
		return "pending"
	case MatchComplete:
		return "complete"
	default:
		return fmt.Sprintf("<invalid match status>(%d)", int(s))
	}
}

const (
	SemifinalOneID = "sf1"
	SemifinalTwoID = "sf2"
	FinalID        = "final"
	ThirdPlaceID   = "third-place"
)

type KnockoutMatch struct {
	ID     string
	Round  Round
	TeamA  TeamKey
	TeamB  TeamKey
	Winner TeamKey
	Status MatchStatus
	// MiniGameID is the mini-game the match was played as, if any
	MiniGameID string
}

func (m KnockoutMatch) Ready() bool {
	return m.TeamA != "" && m.TeamB != ""
}

func (m KnockoutMatch) Has(team TeamKey) bool {
	return team != "" && (m.TeamA == team || m.TeamB == team)
}

func (m KnockoutMatch) opponent(team TeamKey) TeamKey {
	if m.TeamA == team {
		return m.TeamB
	}
	return m.TeamA
}

func (m KnockoutMatch) Loser() (TeamKey, bool) {
	if m.Status != MatchComplete {
		return "", false
	}
	return m.opponent(m.Winner), true
}

type KnockoutBracket struct {
	Matches []KnockoutMatch
}

// NewKnockoutBracket creates semifinals seed 1 v seed 4 and seed 2 v seed 3
func NewKnockoutBracket(seeds [4]TeamKey) (KnockoutBracket, error) {
	for i, seed := range seeds {
		if seed == "" {
			return KnockoutBracket{}, fmt.Errorf("%w: seed %d is empty", ErrUnknownTeam, i+1)
		}
		if slices.Index(seeds[:], seed) != i {
			return KnockoutBracket{}, fmt.Errorf("%w: %s seeded twice", ErrSameTeam, seed)
		}
	}

	return KnockoutBracket{
		Matches: []KnockoutMatch{
			{ID: SemifinalOneID, Round: RoundSemifinal, TeamA: seeds[0], TeamB: seeds[3]},
			{ID: SemifinalTwoID, Round: RoundSemifinal, TeamA: seeds[1], TeamB: seeds[2]},
			{ID: FinalID, Round: RoundFinal},
			{ID: ThirdPlaceID, Round: RoundThirdPlace},
		},
	}, nil
}

func (b KnockoutBracket) Clone() KnockoutBracket {
	b.Matches = slices.Clone(b.Matches)
	return b
}

func (b KnockoutBracket) Match(matchID string) (KnockoutMatch, bool) {
	i := b.matchIndex(matchID)
	if i == -1 {
		return KnockoutMatch{}, false
	}
	return b.Matches[i], true
}

func (b KnockoutBracket) matchIndex(matchID string) int {
	return slices.IndexFunc(b.Matches, func(m KnockoutMatch) bool {
		return m.ID == matchID
	})
}

func (b KnockoutBracket) roundIndex(round Round) int {
	return slices.IndexFunc(b.Matches, func(m KnockoutMatch) bool {
		return m.Round == round
	})
}

// Champion returns the winner of the final, once played
func (b KnockoutBracket) Champion() (TeamKey, bool) {
	i := b.roundIndex(RoundFinal)
	if i == -1 || b.Matches[i].Status != MatchComplete {
		return "", false
	}
	return b.Matches[i].Winner, true
}

// ResolveMatch records the winner of a match and advances the teams.
//
// Semifinal winners go to the first open slot of the final and losers to the first
// open slot of the third-place match. The two semifinals may finish in any order.
func (b KnockoutBracket) ResolveMatch(matchID string, winner TeamKey) (KnockoutBracket, error) {
	i := b.matchIndex(matchID)
	if i == -1 {
		return b, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	match := b.Matches[i]

	if !match.Ready() {
		return b, fmt.Errorf("%w: %s", ErrMatchNotReady, matchID)
	}
	if !match.Has(winner) {
		return b, fmt.Errorf("%w: %s in %s", ErrInvalidWinner, winner, matchID)
	}
	if match.Status == MatchComplete {
		if match.Winner == winner {
			return b, nil
		}
		return b, fmt.Errorf("%w: %s won %s", ErrMatchAlreadyResolved, match.Winner, matchID)
	}

	resolved := b.Clone()
	match.Winner = winner
	match.Status = MatchComplete
	resolved.Matches[i] = match

	if match.Round != RoundSemifinal {
		return resolved, nil
	}

	loser := match.opponent(winner)
	var err error
	resolved, err = resolved.placeInFirstOpenSlot(RoundFinal, winner)
	if err != nil {
		return b, err
	}
	resolved, err = resolved.placeInFirstOpenSlot(RoundThirdPlace, loser)
	if err != nil {
		return b, err
	}
	return resolved, nil
}

func (b KnockoutBracket) placeInFirstOpenSlot(round Round, team TeamKey) (KnockoutBracket, error) {
	i := b.roundIndex(round)
	if i == -1 {
		return b, fmt.Errorf("%w: no %s match", ErrMatchNotFound, round)
	}
	match := &b.Matches[i]
	switch {
	case match.Has(team):
		// Already placed
	case match.TeamA == "":
		match.TeamA = team
	case match.TeamB == "":
		match.TeamB = team
	default:
		return b, fmt.Errorf("%w: %s is already full", ErrMatchAlreadyResolved, match.ID)
	}
	return b, nil
}

// RollbackMatch undoes ResolveMatch.
//
// The match is reset and the teams it advanced are scrubbed from the downstream
// slots. Downstream matches that were already played by a scrubbed team are reset too.
func (b KnockoutBracket) RollbackMatch(matchID string) (KnockoutBracket, error) {
	i := b.matchIndex(matchID)
	if i == -1 {
		return b, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	match := b.Matches[i]
	if match.Status != MatchComplete {
		return b, nil
	}

	rolledBack := b.Clone()
	winner := match.Winner
	loser := match.opponent(winner)
	match.Winner = ""
	match.Status = MatchPending
	rolledBack.Matches[i] = match

	if match.Round != RoundSemifinal {
		return rolledBack, nil
	}

	rolledBack = rolledBack.scrub(RoundFinal, winner)
	rolledBack = rolledBack.scrub(RoundThirdPlace, loser)
	return rolledBack, nil
}

func (b KnockoutBracket) scrub(round Round, team TeamKey) KnockoutBracket {
	i := b.roundIndex(round)
	if i == -1 {
		return b
	}
	match := &b.Matches[i]
	if !match.Has(team) {
		return b
	}
	if match.Status == MatchComplete {
		match.Winner = ""
		match.Status = MatchPending
		match.MiniGameID = ""
	}
	if match.TeamA == team {
		match.TeamA = ""
	} else {
		match.TeamB = ""
	}
	return b
}

// PlayedAs reports whether the match is currently linked to the mini-game
func (b KnockoutBracket) PlayedAs(matchID, miniGameID string) bool {
	if matchID == "" {
		return false
	}
	match, ok := b.Match(matchID)
	return ok && match.MiniGameID == miniGameID
}

// LinkMiniGame records which mini-game a match is being played as
func (b KnockoutBracket) LinkMiniGame(matchID, miniGameID string) (KnockoutBracket, error) {
	i := b.matchIndex(matchID)
	if i == -1 {
		return b, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	linked := b.Clone()
	linked.Matches[i].MiniGameID = miniGameID
	return linked, nil
}
