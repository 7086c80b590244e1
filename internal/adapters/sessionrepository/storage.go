package sessionrepository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Amund211/gamenight/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// storedStatus is written as an integer. Older documents hold a string synonym.
type storedStatus domain.Status

func (s *storedStatus) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal status: %w", err)
	}
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = storedStatus(status)
	return nil
}

func (s *storedStatus) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	value := bson.RawValue{Type: t, Value: data}

	var raw any
	switch t {
	case bsontype.String:
		raw = value.StringValue()
	case bsontype.Int32:
		raw = value.Int32()
	case bsontype.Int64:
		raw = value.Int64()
	case bsontype.Double:
		raw = value.Double()
	default:
		return fmt.Errorf("%w: unsupported bson type %s", domain.ErrInvalidStatus, t)
	}

	status, err := domain.ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = storedStatus(status)
	return nil
}

type storedStats struct {
	Goals   int `json:"goals" bson:"goals"`
	Assists int `json:"assists" bson:"assists"`
	Wins    int `json:"wins" bson:"wins"`
}

type storedTeam struct {
	Key       string   `json:"key" bson:"key"`
	PlayerIDs []string `json:"playerIds" bson:"playerIds"`
	CaptainID string   `json:"captainId,omitempty" bson:"captainId,omitempty"`
}

type storedGoal struct {
	ID         string    `json:"id" bson:"id"`
	ScorerID   string    `json:"scorerId,omitempty" bson:"scorerId,omitempty"`
	AssisterID string    `json:"assisterId,omitempty" bson:"assisterId,omitempty"`
	Team       string    `json:"team" bson:"team"`
	ScoredAt   time.Time `json:"scoredAt" bson:"scoredAt"`
}

type storedMiniGame struct {
	ID       string `json:"id" bson:"id"`
	Sequence int    `json:"sequence,omitempty" bson:"sequence,omitempty"`

	TeamA  string       `json:"teamA" bson:"teamA"`
	TeamB  string       `json:"teamB" bson:"teamB"`
	ScoreA int          `json:"scoreA" bson:"scoreA"`
	ScoreB int          `json:"scoreB" bson:"scoreB"`
	Goals  []storedGoal `json:"goals" bson:"goals"`

	LineupA []string `json:"lineupA,omitempty" bson:"lineupA,omitempty"`
	LineupB []string `json:"lineupB,omitempty" bson:"lineupB,omitempty"`

	Live       bool       `json:"live,omitempty" bson:"live,omitempty"`
	Locked     bool       `json:"locked,omitempty" bson:"locked,omitempty"`
	StartedAt  *time.Time `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	DurationMs int64      `json:"durationMs,omitempty" bson:"durationMs,omitempty"`

	KnockoutMatchID string `json:"knockoutMatchId,omitempty" bson:"knockoutMatchId,omitempty"`
}

type storedMatch struct {
	ID         string `json:"id" bson:"id"`
	Round      string `json:"round" bson:"round"`
	TeamA      string `json:"teamA,omitempty" bson:"teamA,omitempty"`
	TeamB      string `json:"teamB,omitempty" bson:"teamB,omitempty"`
	Winner     string `json:"winner,omitempty" bson:"winner,omitempty"`
	Complete   bool   `json:"complete,omitempty" bson:"complete,omitempty"`
	MiniGameID string `json:"miniGameId,omitempty" bson:"miniGameId,omitempty"`
}

type storedSession struct {
	Name   string       `json:"name" bson:"name"`
	Date   string       `json:"date" bson:"date"`
	Status storedStatus `json:"status" bson:"status"`

	ParticipantIDs []string     `json:"participantIds" bson:"participantIds"`
	TeamCapacity   int          `json:"teamCapacity,omitempty" bson:"teamCapacity,omitempty"`
	Teams          []storedTeam `json:"teams" bson:"teams"`

	MiniGames    []storedMiniGame `json:"miniGames" bson:"miniGames"`
	NextSequence int              `json:"nextSequence,omitempty" bson:"nextSequence,omitempty"`

	Knockout []storedMatch `json:"knockout,omitempty" bson:"knockout,omitempty"`

	AppliedStats map[string]storedStats `json:"appliedStats,omitempty" bson:"appliedStats,omitempty"`

	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func toStoredStats(stats map[string]domain.PlayerStats) map[string]storedStats {
	if len(stats) == 0 {
		return nil
	}
	stored := make(map[string]storedStats, len(stats))
	for playerID, s := range stats {
		stored[playerID] = storedStats{Goals: s.Goals, Assists: s.Assists, Wins: s.Wins}
	}
	return stored
}

func toStoredSession(session domain.Session) storedSession {
	teams := make([]storedTeam, 0, len(session.Roster.Teams))
	for _, team := range session.Roster.Teams {
		teams = append(teams, storedTeam{
			Key:       string(team.Key),
			PlayerIDs: team.PlayerIDs,
			CaptainID: team.CaptainID,
		})
	}

	games := make([]storedMiniGame, 0, len(session.MiniGames))
	for _, game := range session.MiniGames {
		goals := make([]storedGoal, 0, len(game.Goals))
		for _, goal := range game.Goals {
			goals = append(goals, storedGoal{
				ID:         goal.ID,
				ScorerID:   goal.ScorerID,
				AssisterID: goal.AssisterID,
				Team:       string(goal.Team),
				ScoredAt:   goal.ScoredAt,
			})
		}
		games = append(games, storedMiniGame{
			ID:              game.ID,
			Sequence:        game.Sequence,
			TeamA:           string(game.TeamA),
			TeamB:           string(game.TeamB),
			ScoreA:          game.ScoreA,
			ScoreB:          game.ScoreB,
			Goals:           goals,
			LineupA:         game.LineupA,
			LineupB:         game.LineupB,
			Live:            game.Live,
			Locked:          game.Locked,
			StartedAt:       game.StartedAt,
			DurationMs:      game.Duration.Milliseconds(),
			KnockoutMatchID: game.KnockoutMatchID,
		})
	}

	var knockout []storedMatch
	if session.Bracket != nil {
		for _, match := range session.Bracket.Matches {
			knockout = append(knockout, storedMatch{
				ID:         match.ID,
				Round:      string(match.Round),
				TeamA:      string(match.TeamA),
				TeamB:      string(match.TeamB),
				Winner:     string(match.Winner),
				Complete:   match.Status == domain.MatchComplete,
				MiniGameID: match.MiniGameID,
			})
		}
	}

	participantIDs := session.ParticipantIDs
	if participantIDs == nil {
		participantIDs = []string{}
	}

	return storedSession{
		Name:           session.Name,
		Date:           session.Date,
		Status:         storedStatus(session.Status),
		ParticipantIDs: participantIDs,
		TeamCapacity:   session.Roster.Capacity,
		Teams:          teams,
		MiniGames:      games,
		NextSequence:   session.NextSequence,
		Knockout:       knockout,
		AppliedStats:   toStoredStats(session.AppliedStats),
		UpdatedAt:      session.UpdatedAt,
	}
}

// fromStoredSession converts a stored session, filling in what older documents lack.
//
// Teams without a captain get their first player as captain, and games without a
// sequence number are numbered in ledger order.
func fromStoredSession(kind domain.SessionKind, id string, stored storedSession) domain.Session {
	capacity := stored.TeamCapacity
	if capacity == 0 {
		capacity = domain.DefaultTeamCapacity
	}

	teams := make([]domain.Team, 0, len(stored.Teams))
	for _, team := range stored.Teams {
		playerIDs := team.PlayerIDs
		if playerIDs == nil {
			playerIDs = []string{}
		}
		captainID := team.CaptainID
		if captainID == "" && len(playerIDs) > 0 {
			captainID = playerIDs[0]
		}
		teams = append(teams, domain.Team{
			Key:       domain.TeamKey(team.Key),
			PlayerIDs: playerIDs,
			CaptainID: captainID,
		})
	}

	nextSequence := stored.NextSequence
	games := make([]domain.MiniGame, 0, len(stored.MiniGames))
	for _, game := range stored.MiniGames {
		goals := make([]domain.Goal, 0, len(game.Goals))
		for _, goal := range game.Goals {
			goals = append(goals, domain.Goal{
				ID:         goal.ID,
				ScorerID:   goal.ScorerID,
				AssisterID: goal.AssisterID,
				Team:       domain.TeamKey(goal.Team),
				ScoredAt:   goal.ScoredAt,
			})
		}

		sequence := game.Sequence
		if sequence == 0 {
			nextSequence++
			sequence = nextSequence
		}
		nextSequence = max(nextSequence, sequence)

		duration := time.Duration(game.DurationMs) * time.Millisecond
		games = append(games, domain.MiniGame{
			ID:              game.ID,
			Sequence:        sequence,
			TeamA:           domain.TeamKey(game.TeamA),
			TeamB:           domain.TeamKey(game.TeamB),
			ScoreA:          game.ScoreA,
			ScoreB:          game.ScoreB,
			Goals:           goals,
			LineupA:         game.LineupA,
			LineupB:         game.LineupB,
			Live:            game.Live,
			Locked:          game.Locked || duration > 0,
			StartedAt:       game.StartedAt,
			Duration:        duration,
			KnockoutMatchID: game.KnockoutMatchID,
		})
	}

	var bracket *domain.KnockoutBracket
	if len(stored.Knockout) > 0 {
		matches := make([]domain.KnockoutMatch, 0, len(stored.Knockout))
		for _, match := range stored.Knockout {
			status := domain.MatchPending
			if match.Complete {
				status = domain.MatchComplete
			}
			matches = append(matches, domain.KnockoutMatch{
				ID:         match.ID,
				Round:      domain.Round(match.Round),
				TeamA:      domain.TeamKey(match.TeamA),
				TeamB:      domain.TeamKey(match.TeamB),
				Winner:     domain.TeamKey(match.Winner),
				Status:     status,
				MiniGameID: match.MiniGameID,
			})
		}
		bracket = &domain.KnockoutBracket{Matches: matches}
	}

	appliedStats := make(map[string]domain.PlayerStats, len(stored.AppliedStats))
	for playerID, s := range stored.AppliedStats {
		appliedStats[playerID] = domain.PlayerStats{Goals: s.Goals, Assists: s.Assists, Wins: s.Wins}
	}

	participantIDs := stored.ParticipantIDs
	if participantIDs == nil {
		participantIDs = []string{}
	}

	return domain.Session{
		Kind:           kind,
		ID:             id,
		Name:           stored.Name,
		Date:           stored.Date,
		Status:         domain.Status(stored.Status),
		ParticipantIDs: participantIDs,
		Roster: domain.Roster{
			Capacity: capacity,
			Teams:    teams,
		},
		MiniGames:    games,
		NextSequence: nextSequence,
		Bracket:      bracket,
		AppliedStats: appliedStats,
		UpdatedAt:    stored.UpdatedAt,
	}
}
