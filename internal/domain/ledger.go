package domain

import (
	"fmt"
	"slices"
	"time"
)

func (s Session) MiniGame(gameID string) (MiniGame, bool) {
	i := s.miniGameIndex(gameID)
	if i == -1 {
		return MiniGame{}, false
	}
	return s.MiniGames[i], true
}

func (s Session) miniGameIndex(gameID string) int {
	return slices.IndexFunc(s.MiniGames, func(g MiniGame) bool {
		return g.ID == gameID
	})
}

// editMiniGame clones the session and applies edit to the clone's copy of the game
func (s Session) editMiniGame(gameID string, edit func(updated *Session, game *MiniGame) error) (Session, error) {
	i := s.miniGameIndex(gameID)
	if i == -1 {
		return s, fmt.Errorf("%w: %s", ErrMiniGameNotFound, gameID)
	}
	updated := s.Clone()
	if err := edit(&updated, &updated.MiniGames[i]); err != nil {
		return s, err
	}
	return updated, nil
}

func (s Session) HasLiveMiniGame() bool {
	return slices.ContainsFunc(s.MiniGames, func(g MiniGame) bool {
		return g.Live
	})
}

// AddMiniGame adds an empty game between two of the session's teams.
//
// The current members of both teams are captured as the game's lineups.
func (s Session) AddMiniGame(gameID string, teamA, teamB TeamKey, now time.Time) (Session, error) {
	if s.miniGameIndex(gameID) != -1 {
		return s, fmt.Errorf("%w: %s", ErrMiniGameExists, gameID)
	}
	if teamA == teamB {
		return s, fmt.Errorf("%w: %s", ErrSameTeam, teamA)
	}
	for _, key := range []TeamKey{teamA, teamB} {
		if _, ok := s.Roster.Team(key); !ok {
			return s, fmt.Errorf("%w: %s", ErrUnknownTeam, key)
		}
	}

	updated := s.Clone()
	updated.NextSequence++
	updated.MiniGames = append(updated.MiniGames, MiniGame{
		ID:       gameID,
		Sequence: updated.NextSequence,
		TeamA:    teamA,
		TeamB:    teamB,
		Goals:    []Goal{},
		LineupA:  s.Roster.Members(teamA),
		LineupB:  s.Roster.Members(teamB),
	})
	return updated, nil
}

// SetScore sets the score of one side directly.
//
// Lowering the score drops the most recently added goals for that side. Raising it
// adds goals without a scorer.
func (s Session) SetScore(gameID string, side Side, score int, newGoalID func() string, now time.Time) (Session, error) {
	if score < 0 {
		return s, fmt.Errorf("%w: %d", ErrNegativeScore, score)
	}
	return s.editMiniGame(gameID, func(_ *Session, game *MiniGame) error {
		if game.Locked {
			return fmt.Errorf("%w: %s", ErrMiniGameLocked, gameID)
		}
		team := game.TeamFor(side)
		for game.CountGoals(team) > score {
			game.removeLastGoalFor(team)
		}
		for game.CountGoals(team) < score {
			game.Goals = append(game.Goals, Goal{
				ID:       newGoalID(),
				Team:     team,
				ScoredAt: now,
			})
		}
		game.setScore(side, score)
		return nil
	})
}

// EligibleScorers returns the current members of the two teams in the game
func (s Session) EligibleScorers(gameID string) ([]string, error) {
	game, ok := s.MiniGame(gameID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMiniGameNotFound, gameID)
	}
	return append(s.Roster.Members(game.TeamA), s.Roster.Members(game.TeamB)...), nil
}

// AddGoal records a goal for the team the scorer is currently on
func (s Session) AddGoal(gameID, goalID, scorerID, assisterID string, now time.Time) (Session, error) {
	if scorerID == "" {
		return s, fmt.Errorf("%w: scorer is required", ErrIneligiblePlayer)
	}
	if assisterID == scorerID {
		return s, fmt.Errorf("%w: %s", ErrAssisterIsScorer, scorerID)
	}
	return s.editMiniGame(gameID, func(updated *Session, game *MiniGame) error {
		if game.Locked {
			return fmt.Errorf("%w: %s", ErrMiniGameLocked, gameID)
		}

		team, ok := updated.Roster.TeamOf(scorerID)
		if !ok {
			return fmt.Errorf("%w: %s is not on a team", ErrIneligiblePlayer, scorerID)
		}
		side, ok := game.sideOf(team)
		if !ok {
			return fmt.Errorf("%w: %s is not playing in %s", ErrIneligiblePlayer, scorerID, gameID)
		}
		if assisterID != "" {
			if assisterTeam, _ := updated.Roster.TeamOf(assisterID); assisterTeam != team {
				return fmt.Errorf("%w: assister %s is not on %s", ErrIneligiblePlayer, assisterID, team)
			}
		}

		game.Goals = append(game.Goals, Goal{
			ID:         goalID,
			ScorerID:   scorerID,
			AssisterID: assisterID,
			Team:       team,
			ScoredAt:   now,
		})
		game.setScore(side, game.Score(side)+1)
		return nil
	})
}

// RemoveGoal removes the goal at index and lowers its side's score
func (s Session) RemoveGoal(gameID string, index int) (Session, error) {
	return s.editMiniGame(gameID, func(_ *Session, game *MiniGame) error {
		if game.Locked {
			return fmt.Errorf("%w: %s", ErrMiniGameLocked, gameID)
		}
		if index < 0 || index >= len(game.Goals) {
			return fmt.Errorf("%w: index %d in %s", ErrGoalNotFound, index, gameID)
		}
		goal := game.Goals[index]
		game.Goals = slices.Delete(game.Goals, index, index+1)
		if side, ok := game.sideOf(goal.Team); ok && game.Score(side) > 0 {
			game.setScore(side, game.Score(side)-1)
		}
		return nil
	})
}

// RemoveMiniGame deletes a game.
//
// A knockout match is rolled back only while it is still linked to this game. A match
// that was replayed as another game keeps its result.
func (s Session) RemoveMiniGame(gameID string) (Session, error) {
	i := s.miniGameIndex(gameID)
	if i == -1 {
		return s, fmt.Errorf("%w: %s", ErrMiniGameNotFound, gameID)
	}
	game := s.MiniGames[i]

	updated := s.Clone()
	updated.MiniGames = slices.Delete(updated.MiniGames, i, i+1)

	if updated.Bracket != nil && updated.Bracket.PlayedAs(game.KnockoutMatchID, gameID) {
		bracket, err := updated.Bracket.RollbackMatch(game.KnockoutMatchID)
		if err != nil {
			return s, err
		}
		bracket, err = bracket.LinkMiniGame(game.KnockoutMatchID, "")
		if err != nil {
			return s, err
		}
		updated.Bracket = &bracket
	}
	return updated, nil
}

// ReplaceMiniGame saves an edited game. The scores must agree with the goals, and every
// scorer and assister must be eligible for the team the goal is credited to.
func (s Session) ReplaceMiniGame(edited MiniGame) (Session, error) {
	if err := edited.Validate(); err != nil {
		return s, err
	}
	return s.editMiniGame(edited.ID, func(updated *Session, game *MiniGame) error {
		if game.Locked {
			return fmt.Errorf("%w: %s", ErrMiniGameLocked, edited.ID)
		}
		if edited.TeamA != game.TeamA || edited.TeamB != game.TeamB {
			return fmt.Errorf("%w: teams of %s cannot change", ErrInvalidSide, edited.ID)
		}
		for _, goal := range edited.Goals {
			if err := updated.checkEditedGoal(*game, goal); err != nil {
				return err
			}
		}
		game.ScoreA = edited.ScoreA
		game.ScoreB = edited.ScoreB
		game.Goals = slices.Clone(edited.Goals)
		return nil
	})
}

// checkEditedGoal checks that the scorer and assister of goal could have played for its
// team. Players on the team now and players in the lineup of the game both count.
func (s Session) checkEditedGoal(game MiniGame, goal Goal) error {
	side, ok := game.sideOf(goal.Team)
	if !ok {
		return fmt.Errorf("%w: goal for %s in %s", ErrUnknownTeam, goal.Team, game.ID)
	}
	lineup := game.LineupA
	if side == SideB {
		lineup = game.LineupB
	}
	eligible := func(playerID string) bool {
		team, _ := s.Roster.TeamOf(playerID)
		return team == goal.Team || slices.Contains(lineup, playerID)
	}

	if goal.ScorerID != "" && !eligible(goal.ScorerID) {
		return fmt.Errorf("%w: %s did not play for %s in %s", ErrIneligiblePlayer, goal.ScorerID, goal.Team, game.ID)
	}
	if goal.AssisterID != "" && !eligible(goal.AssisterID) {
		return fmt.Errorf("%w: assister %s did not play for %s in %s", ErrIneligiblePlayer, goal.AssisterID, goal.Team, game.ID)
	}
	return nil
}

func (s Session) StartMiniGame(gameID string, now time.Time) (Session, error) {
	return s.editMiniGame(gameID, func(_ *Session, game *MiniGame) error {
		if game.Locked {
			return fmt.Errorf("%w: %s", ErrMiniGameLocked, gameID)
		}
		if game.Live {
			return nil
		}
		startedAt := now
		game.StartedAt = &startedAt
		game.Live = true
		return nil
	})
}

// EndMiniGame stops the clock and locks the game.
//
// If the game is a knockout match the match is resolved. A tied knockout game needs an
// explicit winner.
func (s Session) EndMiniGame(gameID string, now time.Time, explicitWinner TeamKey) (Session, error) {
	return s.editMiniGame(gameID, func(updated *Session, game *MiniGame) error {
		if !game.Live || game.StartedAt == nil {
			return fmt.Errorf("%w: %s", ErrMiniGameNotLive, gameID)
		}

		if game.KnockoutMatchID != "" {
			if updated.Bracket == nil {
				return ErrNoBracket
			}
			winner, ok := game.Winner()
			if !ok {
				if explicitWinner == "" {
					return fmt.Errorf("%w: %s is tied %d-%d", ErrWinnerRequired, gameID, game.ScoreA, game.ScoreB)
				}
				winner = explicitWinner
			}
			bracket, err := updated.Bracket.ResolveMatch(game.KnockoutMatchID, winner)
			if err != nil {
				return err
			}
			updated.Bracket = &bracket
		}

		game.Live = false
		game.Duration = now.Sub(*game.StartedAt)
		if game.Duration <= 0 {
			game.Duration = time.Second
		}
		game.Locked = true
		return nil
	})
}

func (s Session) LockMiniGame(gameID string) (Session, error) {
	return s.editMiniGame(gameID, func(_ *Session, game *MiniGame) error {
		game.Locked = true
		return nil
	})
}

// UnlockMiniGame reopens a game for editing. Not allowed while any game is being played.
func (s Session) UnlockMiniGame(gameID string) (Session, error) {
	if s.HasLiveMiniGame() {
		return s, ErrLiveGameInProgress
	}
	return s.editMiniGame(gameID, func(_ *Session, game *MiniGame) error {
		game.Locked = false
		return nil
	})
}
