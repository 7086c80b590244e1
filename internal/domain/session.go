package domain

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

type SessionKind string

const (
	SessionKindGameDay    SessionKind = "gameday"
	SessionKindTournament SessionKind = "tournament"
)

func (k SessionKind) Valid() bool {
	return k == SessionKindGameDay || k == SessionKindTournament
}

// Session is a game day or a tournament: the participants, their teams and the ledger
// of mini-games played.
//
// All operations return an updated copy and leave the receiver untouched.
type Session struct {
	Kind SessionKind
	// ID is the date for game days and a generated id for tournaments
	ID     string
	Name   string
	Date   string
	Status Status

	ParticipantIDs []string
	Roster         Roster

	MiniGames    []MiniGame
	NextSequence int

	Bracket *KnockoutBracket

	// AppliedStats are the stats added to the career counters by the last finalization
	AppliedStats map[string]PlayerStats

	UpdatedAt time.Time
}

// MaxTeams is the number of distinct single letter team keys
const MaxTeams = 26

func validateTeamCount(teamCount int) error {
	if teamCount < 2 || teamCount > MaxTeams {
		return fmt.Errorf("%w: %d", ErrInvalidTeamCount, teamCount)
	}
	return nil
}

func NewGameDay(date string, teamCount, capacity int, participantIDs []string) (Session, error) {
	day, err := ParseDate(date)
	if err != nil {
		return Session{}, err
	}
	if err := validateTeamCount(teamCount); err != nil {
		return Session{}, err
	}
	return Session{
		Kind:           SessionKindGameDay,
		ID:             FormatDate(day),
		Name:           fmt.Sprintf("%s %s", day.Weekday(), FormatDate(day)),
		Date:           FormatDate(day),
		Status:         StatusUpcoming,
		ParticipantIDs: dedupe(participantIDs),
		Roster:         NewRoster(capacity, TeamKeys(teamCount)...),
		MiniGames:      []MiniGame{},
		AppliedStats:   map[string]PlayerStats{},
	}, nil
}

func NewTournament(id, name, date string, teamCount, capacity int) (Session, error) {
	day, err := ParseDate(date)
	if err != nil {
		return Session{}, err
	}
	if name == "" {
		return Session{}, fmt.Errorf("%w: tournament name is empty", ErrInvalidName)
	}
	if err := validateTeamCount(teamCount); err != nil {
		return Session{}, err
	}
	return Session{
		Kind:           SessionKindTournament,
		ID:             id,
		Name:           name,
		Date:           FormatDate(day),
		Status:         StatusDraft,
		ParticipantIDs: []string{},
		Roster:         NewRoster(capacity, TeamKeys(teamCount)...),
		MiniGames:      []MiniGame{},
		AppliedStats:   map[string]PlayerStats{},
	}, nil
}

func (s Session) Clone() Session {
	s.ParticipantIDs = slices.Clone(s.ParticipantIDs)
	s.Roster = s.Roster.Clone()
	if s.MiniGames != nil {
		games := make([]MiniGame, len(s.MiniGames))
		for i, game := range s.MiniGames {
			games[i] = game.Clone()
		}
		s.MiniGames = games
	}
	if s.Bracket != nil {
		bracket := s.Bracket.Clone()
		s.Bracket = &bracket
	}
	s.AppliedStats = maps.Clone(s.AppliedStats)
	return s
}

func (s Session) Stats(policy WinCreditPolicy) map[string]PlayerStats {
	return RecomputeStats(s.Roster, s.MiniGames, policy)
}

func (s Session) IsParticipant(playerID string) bool {
	return slices.Contains(s.ParticipantIDs, playerID)
}

func (s Session) SetStatus(status Status) (Session, error) {
	if !status.Valid() {
		return s, fmt.Errorf("%w: %d", ErrInvalidStatus, int(status))
	}
	updated := s.Clone()
	updated.Status = status
	return updated, nil
}

// SelectParticipants replaces the participant list. Players no longer participating
// are taken off their teams.
func (s Session) SelectParticipants(playerIDs []string) (Session, error) {
	ids := dedupe(playerIDs)
	teamCount := len(s.Roster.Teams)
	maxPlayers := teamCount * s.Roster.Capacity
	if len(ids) < teamCount || (s.Roster.Capacity > 0 && len(ids) > maxPlayers) {
		return s, fmt.Errorf(
			"%w: got %d, need between %d and %d",
			ErrWrongPlayerCount, len(ids), teamCount, maxPlayers,
		)
	}

	updated := s.Clone()
	updated.ParticipantIDs = ids
	for _, team := range s.Roster.Teams {
		for _, playerID := range team.PlayerIDs {
			if !slices.Contains(ids, playerID) {
				updated.Roster = updated.Roster.RemovePlayer(playerID)
			}
		}
	}
	return updated, nil
}

func (s Session) MovePlayer(playerID string, from, to TeamKey) (Session, error) {
	if to != "" && !s.IsParticipant(playerID) {
		return s, fmt.Errorf("%w: %s", ErrPlayerNotParticipating, playerID)
	}
	roster, err := s.Roster.MovePlayer(playerID, from, to)
	if err != nil {
		return s, err
	}
	updated := s.Clone()
	updated.Roster = roster
	return updated, nil
}

func (s Session) MakeCaptain(playerID string, team TeamKey) (Session, error) {
	roster, err := s.Roster.MakeCaptain(playerID, team)
	if err != nil {
		return s, err
	}
	updated := s.Clone()
	updated.Roster = roster
	return updated, nil
}

// AddKnockoutBracket seeds a knockout bracket with four of the session's teams
func (s Session) AddKnockoutBracket(seeds [4]TeamKey) (Session, error) {
	if s.Bracket != nil {
		return s, ErrBracketExists
	}
	for _, seed := range seeds {
		if _, ok := s.Roster.Team(seed); !ok {
			return s, fmt.Errorf("%w: %s", ErrUnknownTeam, seed)
		}
	}
	bracket, err := NewKnockoutBracket(seeds)
	if err != nil {
		return s, err
	}
	updated := s.Clone()
	updated.Bracket = &bracket
	return updated, nil
}

// AddKnockoutMiniGame creates the mini-game a knockout match is played as
func (s Session) AddKnockoutMiniGame(miniGameID, matchID string, now time.Time) (Session, error) {
	if s.Bracket == nil {
		return s, ErrNoBracket
	}
	match, ok := s.Bracket.Match(matchID)
	if !ok {
		return s, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if !match.Ready() {
		return s, fmt.Errorf("%w: %s", ErrMatchNotReady, matchID)
	}
	if match.Status == MatchComplete {
		return s, fmt.Errorf("%w: %s", ErrMatchAlreadyResolved, matchID)
	}

	updated, err := s.AddMiniGame(miniGameID, match.TeamA, match.TeamB, now)
	if err != nil {
		return s, err
	}
	i := updated.miniGameIndex(miniGameID)
	updated.MiniGames[i].KnockoutMatchID = matchID

	bracket, err := updated.Bracket.LinkMiniGame(matchID, miniGameID)
	if err != nil {
		return s, err
	}
	updated.Bracket = &bracket
	return updated, nil
}

// ResolveKnockoutMatch resolves a match directly, without a mini-game
func (s Session) ResolveKnockoutMatch(matchID string, winner TeamKey) (Session, error) {
	if s.Bracket == nil {
		return s, ErrNoBracket
	}
	bracket, err := s.Bracket.ResolveMatch(matchID, winner)
	if err != nil {
		return s, err
	}
	updated := s.Clone()
	updated.Bracket = &bracket
	return updated, nil
}

func (s Session) RollbackKnockoutMatch(matchID string) (Session, error) {
	if s.Bracket == nil {
		return s, ErrNoBracket
	}
	bracket, err := s.Bracket.RollbackMatch(matchID)
	if err != nil {
		return s, err
	}
	updated := s.Clone()
	updated.Bracket = &bracket
	return updated, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	deduped := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		deduped = append(deduped, id)
	}
	return deduped
}
