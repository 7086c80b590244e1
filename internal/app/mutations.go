package app

import (
	"fmt"

	"github.com/Amund211/gamenight/internal/domain"
)

func AddMiniGame(teamA, teamB domain.TeamKey) Mutation {
	return func(session domain.Session, env MutationEnv) (domain.Session, error) {
		return session.AddMiniGame(env.NewID(), teamA, teamB, env.Now)
	}
}

func SetScore(gameID string, side domain.Side, score int) Mutation {
	return func(session domain.Session, env MutationEnv) (domain.Session, error) {
		return session.SetScore(gameID, side, score, env.NewID, env.Now)
	}
}

func AddGoal(gameID, scorerID, assisterID string) Mutation {
	return func(session domain.Session, env MutationEnv) (domain.Session, error) {
		return session.AddGoal(gameID, env.NewID(), scorerID, assisterID, env.Now)
	}
}

func RemoveGoal(gameID string, index int) Mutation {
	return func(session domain.Session, _ MutationEnv) (domain.Session, error) {
		return session.RemoveGoal(gameID, index)
	}
}

func RemoveMiniGame(gameID string) Mutation {
	return func(session domain.Session, _ MutationEnv) (domain.Session, error) {
		return session.RemoveMiniGame(gameID)
	}
}

// ReplaceMiniGame saves an edited game. Goals without an id are new and get an id and timestamp.
func ReplaceMiniGame(edited domain.MiniGame) Mutation {
	return func(session domain.Session, env MutationEnv) (domain.Session, error) {
		edited := edited.Clone()
		for i := range edited.Goals {
			if edited.Goals[i].ID == "" {
				edited.Goals[i].ID = env.NewID()
			}
			if edited.Goals[i].ScoredAt.IsZero() {
				edited.Goals[i].ScoredAt = env.Now
			}
		}
		return session.ReplaceMiniGame(edited)
	}
}

// StartMiniGame starts the clock of a game and marks the session Live
func StartMiniGame(gameID string) Mutation {
	return func(session domain.Session, env MutationEnv) (domain.Session, error) {
		updated, err := session.StartMiniGame(gameID, env.Now)
		if err != nil {
			return session, err
		}
		if updated.Status == domain.StatusLive {
			return updated, nil
		}
		return updated.SetStatus(domain.StatusLive)
	}
}

func EndMiniGame(gameID string, explicitWinner domain.TeamKey) Mutation {
	return func(session domain.Session, env MutationEnv) (domain.Session, error) {
		return session.EndMiniGame(gameID, env.Now, explicitWinner)
	}
}

func LockMiniGame(gameID string) Mutation {
	return func(session domain.Session, _ MutationEnv) (domain.Session, error) {
		return session.LockMiniGame(gameID)
	}
}

func UnlockMiniGame(gameID string) Mutation {
	return func(session domain.Session, _ MutationEnv) (domain.Session, error) {
		return session.UnlockMiniGame(gameID)
	}
}

func MovePlayer(playerID string, from, to domain.TeamKey) Mutation {
	return func(session domain.Session, _ MutationEnv) (domain.Session, error) {
		return session.MovePlayer(playerID, from, to)
	}
}

func MakeCaptain(playerID string, team domain.TeamKey) Mutation {
	return func(session domain.Session, _ MutationEnv) (domain.Session, error) {
		return session.MakeCaptain(playerID, team)
	}
}

// SetStatus moves a session to any status except Completed, which only finalizing sets
func SetStatus(status domain.Status) Mutation {
	return func(session domain.Session, _ MutationEnv) (domain.Session, error) {
		if status == domain.StatusCompleted {
			return session, fmt.Errorf("%w: sessions are completed by finalizing them", domain.ErrInvalidStatus)
		}
		return session.SetStatus(status)
	}
}

func AddKnockoutBracket(seeds [4]domain.TeamKey) Mutation {
	return func(session domain.Session, _ MutationEnv) (domain.Session, error) {
		return session.AddKnockoutBracket(seeds)
	}
}

func AddKnockoutMiniGame(matchID string) Mutation {
	return func(session domain.Session, env MutationEnv) (domain.Session, error) {
		return session.AddKnockoutMiniGame(env.NewID(), matchID, env.Now)
	}
}

func ResolveKnockoutMatch(matchID string, winner domain.TeamKey) Mutation {
	return func(session domain.Session, _ MutationEnv) (domain.Session, error) {
		return session.ResolveKnockoutMatch(matchID, winner)
	}
}

func RollbackKnockoutMatch(matchID string) Mutation {
	return func(session domain.Session, _ MutationEnv) (domain.Session, error) {
		return session.RollbackKnockoutMatch(matchID)
	}
}
