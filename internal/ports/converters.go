package ports

import (
	"time"

	"github.com/Amund211/gamenight/internal/app"
	"github.com/Amund211/gamenight/internal/domain"
)

type dataResponse[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

func success[T any](data T) dataResponse[T] {
	return dataResponse[T]{Success: true, Data: data}
}

type statsResponse struct {
	Goals   int `json:"goals"`
	Assists int `json:"assists"`
	Wins    int `json:"wins"`
}

func statsToResponse(stats domain.PlayerStats) statsResponse {
	return statsResponse{Goals: stats.Goals, Assists: stats.Assists, Wins: stats.Wins}
}

func statsMapToResponse(stats map[string]domain.PlayerStats) map[string]statsResponse {
	response := make(map[string]statsResponse, len(stats))
	for playerID, s := range stats {
		response[playerID] = statsToResponse(s)
	}
	return response
}

type playerResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Career    statsResponse `json:"career"`
	CreatedAt time.Time     `json:"createdAt"`
}

func playerToResponse(player domain.Player) playerResponse {
	return playerResponse{
		ID:        player.ID,
		Name:      player.Name,
		Career:    statsToResponse(player.Career),
		CreatedAt: player.CreatedAt,
	}
}

func playersToResponse(players []domain.Player) []playerResponse {
	response := make([]playerResponse, 0, len(players))
	for _, player := range players {
		response = append(response, playerToResponse(player))
	}
	return response
}

type teamResponse struct {
	Key       string   `json:"key"`
	PlayerIDs []string `json:"playerIds"`
	CaptainID string   `json:"captainId,omitempty"`
}

type goalResponse struct {
	ID         string    `json:"id"`
	ScorerID   string    `json:"scorerId,omitempty"`
	AssisterID string    `json:"assisterId,omitempty"`
	Team       string    `json:"team"`
	ScoredAt   time.Time `json:"scoredAt"`
}

type miniGameResponse struct {
	ID              string         `json:"id"`
	Sequence        int            `json:"sequence"`
	TeamA           string         `json:"teamA"`
	TeamB           string         `json:"teamB"`
	ScoreA          int            `json:"scoreA"`
	ScoreB          int            `json:"scoreB"`
	Goals           []goalResponse `json:"goals"`
	Live            bool           `json:"live"`
	Locked          bool           `json:"locked"`
	StartedAt       *time.Time     `json:"startedAt,omitempty"`
	DurationMs      int64          `json:"durationMs,omitempty"`
	KnockoutMatchID string         `json:"knockoutMatchId,omitempty"`
}

type matchResponse struct {
	ID         string `json:"id"`
	Round      string `json:"round"`
	TeamA      string `json:"teamA,omitempty"`
	TeamB      string `json:"teamB,omitempty"`
	Winner     string `json:"winner,omitempty"`
	Status     string `json:"status"`
	MiniGameID string `json:"miniGameId,omitempty"`
}

type sessionResponse struct {
	Kind           string                   `json:"kind"`
	ID             string                   `json:"id"`
	Name           string                   `json:"name"`
	Date           string                   `json:"date"`
	Status         string                   `json:"status"`
	ParticipantIDs []string                 `json:"participantIds"`
	TeamCapacity   int                      `json:"teamCapacity"`
	Teams          []teamResponse           `json:"teams"`
	MiniGames      []miniGameResponse       `json:"miniGames"`
	Knockout       []matchResponse          `json:"knockout,omitempty"`
	Champion       string                   `json:"champion,omitempty"`
	AppliedStats   map[string]statsResponse `json:"appliedStats"`
	UpdatedAt      time.Time                `json:"updatedAt"`
}

func sessionToResponse(session domain.Session) sessionResponse {
	teams := make([]teamResponse, 0, len(session.Roster.Teams))
	for _, team := range session.Roster.Teams {
		teams = append(teams, teamResponse{
			Key:       string(team.Key),
			PlayerIDs: nonNil(team.PlayerIDs),
			CaptainID: team.CaptainID,
		})
	}

	games := make([]miniGameResponse, 0, len(session.MiniGames))
	for _, game := range session.MiniGames {
		goals := make([]goalResponse, 0, len(game.Goals))
		for _, goal := range game.Goals {
			goals = append(goals, goalResponse{
				ID:         goal.ID,
				ScorerID:   goal.ScorerID,
				AssisterID: goal.AssisterID,
				Team:       string(goal.Team),
				ScoredAt:   goal.ScoredAt,
			})
		}
		games = append(games, miniGameResponse{
			ID:              game.ID,
			Sequence:        game.Sequence,
			TeamA:           string(game.TeamA),
			TeamB:           string(game.TeamB),
			ScoreA:          game.ScoreA,
			ScoreB:          game.ScoreB,
			Goals:           goals,
			Live:            game.Live,
			Locked:          game.Locked,
			StartedAt:       game.StartedAt,
			DurationMs:      game.Duration.Milliseconds(),
			KnockoutMatchID: game.KnockoutMatchID,
		})
	}

	var knockout []matchResponse
	var champion string
	if session.Bracket != nil {
		for _, match := range session.Bracket.Matches {
			knockout = append(knockout, matchResponse{
				ID:         match.ID,
				Round:      string(match.Round),
				TeamA:      string(match.TeamA),
				TeamB:      string(match.TeamB),
				Winner:     string(match.Winner),
				Status:     match.Status.String(),
				MiniGameID: match.MiniGameID,
			})
		}
		if team, ok := session.Bracket.Champion(); ok {
			champion = string(team)
		}
	}

	return sessionResponse{
		Kind:           string(session.Kind),
		ID:             session.ID,
		Name:           session.Name,
		Date:           session.Date,
		Status:         session.Status.String(),
		ParticipantIDs: nonNil(session.ParticipantIDs),
		TeamCapacity:   session.Roster.Capacity,
		Teams:          teams,
		MiniGames:      games,
		Knockout:       knockout,
		Champion:       champion,
		AppliedStats:   statsMapToResponse(session.AppliedStats),
		UpdatedAt:      session.UpdatedAt,
	}
}

func sessionsToResponse(sessions []domain.Session) []sessionResponse {
	response := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		response = append(response, sessionToResponse(session))
	}
	return response
}

type sessionStatsResponse struct {
	Session sessionResponse          `json:"session"`
	Players map[string]statsResponse `json:"players"`
}

func sessionStatsToResponse(stats app.SessionStats) sessionStatsResponse {
	return sessionStatsResponse{
		Session: sessionToResponse(stats.Session),
		Players: statsMapToResponse(stats.Players),
	}
}

type subscriptionResponse struct {
	Weekday   string   `json:"weekday"`
	PlayerIDs []string `json:"playerIds"`
}

func subscriptionToResponse(subscription domain.Subscription) subscriptionResponse {
	return subscriptionResponse{
		Weekday:   subscription.Key(),
		PlayerIDs: nonNil(subscription.PlayerIDs),
	}
}

func subscriptionsToResponse(subscriptions []domain.Subscription) []subscriptionResponse {
	response := make([]subscriptionResponse, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		response = append(response, subscriptionToResponse(subscription))
	}
	return response
}

type adminResponse struct {
	Email   string     `json:"email"`
	Name    string     `json:"name,omitempty"`
	AddedAt *time.Time `json:"addedAt,omitempty"`
}

func adminToResponse(admin domain.Admin) adminResponse {
	response := adminResponse{Email: admin.Email, Name: admin.Name}
	if !admin.AddedAt.IsZero() {
		addedAt := admin.AddedAt
		response.AddedAt = &addedAt
	}
	return response
}

func adminsToResponse(admins []domain.Admin) []adminResponse {
	response := make([]adminResponse, 0, len(admins))
	for _, admin := range admins {
		response = append(response, adminToResponse(admin))
	}
	return response
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
