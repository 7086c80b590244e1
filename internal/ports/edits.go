package ports

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Amund211/gamenight/internal/app"
	"github.com/Amund211/gamenight/internal/domain"
)

type noBody struct{}

type setStatusRequest struct {
	Status string `json:"status"`
}

func parseSetStatus(_ *http.Request, body setStatusRequest) (app.Mutation, error) {
	status, err := domain.ParseStatus(body.Status)
	if err != nil {
		return nil, err
	}
	return app.SetStatus(status), nil
}

type movePlayerRequest struct {
	PlayerID string `json:"playerId"`
	// From is empty when moving a player from the bench
	From string `json:"from"`
	// To is empty when moving a player to the bench
	To string `json:"to"`
}

func parseMovePlayer(_ *http.Request, body movePlayerRequest) (app.Mutation, error) {
	if body.PlayerID == "" {
		return nil, fmt.Errorf("%w: missing playerId", errBadRequest)
	}
	return app.MovePlayer(body.PlayerID, domain.TeamKey(body.From), domain.TeamKey(body.To)), nil
}

type makeCaptainRequest struct {
	PlayerID string `json:"playerId"`
	Team     string `json:"team"`
}

func parseMakeCaptain(_ *http.Request, body makeCaptainRequest) (app.Mutation, error) {
	if body.PlayerID == "" {
		return nil, fmt.Errorf("%w: missing playerId", errBadRequest)
	}
	return app.MakeCaptain(body.PlayerID, domain.TeamKey(body.Team)), nil
}

type addMiniGameRequest struct {
	TeamA string `json:"teamA"`
	TeamB string `json:"teamB"`
}

func parseAddMiniGame(_ *http.Request, body addMiniGameRequest) (app.Mutation, error) {
	return app.AddMiniGame(domain.TeamKey(body.TeamA), domain.TeamKey(body.TeamB)), nil
}

type goalRequest struct {
	// ID is empty for goals added in this edit
	ID         string     `json:"id"`
	ScorerID   string     `json:"scorerId"`
	AssisterID string     `json:"assisterId"`
	Team       string     `json:"team"`
	ScoredAt   *time.Time `json:"scoredAt"`
}

type replaceMiniGameRequest struct {
	TeamA  string        `json:"teamA"`
	TeamB  string        `json:"teamB"`
	ScoreA int           `json:"scoreA"`
	ScoreB int           `json:"scoreB"`
	Goals  []goalRequest `json:"goals"`
}

func parseReplaceMiniGame(r *http.Request, body replaceMiniGameRequest) (app.Mutation, error) {
	goals := make([]domain.Goal, 0, len(body.Goals))
	for _, goal := range body.Goals {
		var scoredAt time.Time
		if goal.ScoredAt != nil {
			scoredAt = *goal.ScoredAt
		}
		goals = append(goals, domain.Goal{
			ID:         goal.ID,
			ScorerID:   goal.ScorerID,
			AssisterID: goal.AssisterID,
			Team:       domain.TeamKey(goal.Team),
			ScoredAt:   scoredAt,
		})
	}

	return app.ReplaceMiniGame(domain.MiniGame{
		ID:     r.PathValue("game"),
		TeamA:  domain.TeamKey(body.TeamA),
		TeamB:  domain.TeamKey(body.TeamB),
		ScoreA: body.ScoreA,
		ScoreB: body.ScoreB,
		Goals:  goals,
	}), nil
}

func parseRemoveMiniGame(r *http.Request, _ noBody) (app.Mutation, error) {
	return app.RemoveMiniGame(r.PathValue("game")), nil
}

type setScoreRequest struct {
	Side  string `json:"side"`
	Score int    `json:"score"`
}

func parseSetScore(r *http.Request, body setScoreRequest) (app.Mutation, error) {
	side, err := domain.ParseSide(body.Side)
	if err != nil {
		return nil, err
	}
	return app.SetScore(r.PathValue("game"), side, body.Score), nil
}

type addGoalRequest struct {
	ScorerID   string `json:"scorerId"`
	AssisterID string `json:"assisterId"`
}

func parseAddGoal(r *http.Request, body addGoalRequest) (app.Mutation, error) {
	if body.ScorerID == "" {
		return nil, fmt.Errorf("%w: missing scorerId", errBadRequest)
	}
	return app.AddGoal(r.PathValue("game"), body.ScorerID, body.AssisterID), nil
}

func parseRemoveGoal(r *http.Request, _ noBody) (app.Mutation, error) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid goal index %q", errBadRequest, r.PathValue("index"))
	}
	return app.RemoveGoal(r.PathValue("game"), index), nil
}

func parseStartMiniGame(r *http.Request, _ noBody) (app.Mutation, error) {
	return app.StartMiniGame(r.PathValue("game")), nil
}

type endMiniGameRequest struct {
	// Winner decides a tied knockout game
	Winner string `json:"winner"`
}

func parseEndMiniGame(r *http.Request, body endMiniGameRequest) (app.Mutation, error) {
	return app.EndMiniGame(r.PathValue("game"), domain.TeamKey(body.Winner)), nil
}

func parseLockMiniGame(r *http.Request, _ noBody) (app.Mutation, error) {
	return app.LockMiniGame(r.PathValue("game")), nil
}

func parseUnlockMiniGame(r *http.Request, _ noBody) (app.Mutation, error) {
	return app.UnlockMiniGame(r.PathValue("game")), nil
}

type addBracketRequest struct {
	// Seeds are the four teams in seed order. Seed 1 meets seed 4, seed 2 meets seed 3.
	Seeds []string `json:"seeds"`
}

func parseAddBracket(_ *http.Request, body addBracketRequest) (app.Mutation, error) {
	if len(body.Seeds) != 4 {
		return nil, fmt.Errorf("%w: a bracket needs 4 seeds, got %d", errBadRequest, len(body.Seeds))
	}
	var seeds [4]domain.TeamKey
	for i, seed := range body.Seeds {
		seeds[i] = domain.TeamKey(seed)
	}
	return app.AddKnockoutBracket(seeds), nil
}

func parseAddKnockoutMiniGame(r *http.Request, _ noBody) (app.Mutation, error) {
	return app.AddKnockoutMiniGame(r.PathValue("match")), nil
}

type resolveMatchRequest struct {
	Winner string `json:"winner"`
}

func parseResolveMatch(r *http.Request, body resolveMatchRequest) (app.Mutation, error) {
	if body.Winner == "" {
		return nil, fmt.Errorf("%w: missing winner", errBadRequest)
	}
	return app.ResolveKnockoutMatch(r.PathValue("match"), domain.TeamKey(body.Winner)), nil
}

func parseRollbackMatch(r *http.Request, _ noBody) (app.Mutation, error) {
	return app.RollbackKnockoutMatch(r.PathValue("match")), nil
}
