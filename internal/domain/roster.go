package domain

import (
	"fmt"
	"slices"
)

const DefaultTeamCapacity = 7

type TeamKey string

type Team struct {
	Key       TeamKey
	PlayerIDs []string
	// CaptainID is the first player to join the team, unless reassigned.
	// PlayerIDs[0] is always the captain.
	CaptainID string
}

func (t Team) Has(playerID string) bool {
	return slices.Contains(t.PlayerIDs, playerID)
}

func (t Team) clone() Team {
	t.PlayerIDs = slices.Clone(t.PlayerIDs)
	return t
}

// TeamDisplayName names the team after its captain
func TeamDisplayName(team Team, names map[string]string) string {
	if team.CaptainID != "" {
		if name, ok := names[team.CaptainID]; ok && name != "" {
			return fmt.Sprintf("Team %s", name)
		}
	}
	return fmt.Sprintf("Team %s", team.Key)
}

// TeamKeys returns the keys A, B, C, ... for count teams
func TeamKeys(count int) []TeamKey {
	keys := make([]TeamKey, count)
	for i := range count {
		keys[i] = TeamKey(rune('A' + i))
	}
	return keys
}

type Roster struct {
	Capacity int
	Teams    []Team
}

func NewRoster(capacity int, keys ...TeamKey) Roster {
	teams := make([]Team, len(keys))
	for i, key := range keys {
		teams[i] = Team{Key: key, PlayerIDs: []string{}}
	}
	return Roster{
		Capacity: capacity,
		Teams:    teams,
	}
}

func (r Roster) Clone() Roster {
	if r.Teams == nil {
		return r
	}
	teams := make([]Team, len(r.Teams))
	for i, team := range r.Teams {
		teams[i] = team.clone()
	}
	r.Teams = teams
	return r
}

func (r Roster) Team(key TeamKey) (Team, bool) {
	i := r.teamIndex(key)
	if i == -1 {
		return Team{}, false
	}
	return r.Teams[i], true
}

// TeamOf returns the key of the team the player is on, if any
func (r Roster) TeamOf(playerID string) (TeamKey, bool) {
	for _, team := range r.Teams {
		if team.Has(playerID) {
			return team.Key, true
		}
	}
	return "", false
}

// Members returns the player ids of the given team, or nil for unknown teams
func (r Roster) Members(key TeamKey) []string {
	team, ok := r.Team(key)
	if !ok {
		return nil
	}
	return slices.Clone(team.PlayerIDs)
}

func (r Roster) teamIndex(key TeamKey) int {
	return slices.IndexFunc(r.Teams, func(t Team) bool {
		return t.Key == key
	})
}

// MovePlayer moves a player between teams.
//
// An empty from means the player comes from the bench, an empty to means the player
// is sent to the bench.
func (r Roster) MovePlayer(playerID string, from, to TeamKey) (Roster, error) {
	if from == to {
		if from == "" {
			return r, nil
		}
		team, ok := r.Team(from)
		if !ok {
			return r, fmt.Errorf("%w: %s", ErrUnknownTeam, from)
		}
		if !team.Has(playerID) {
			return r, fmt.Errorf("%w: %s not on %s", ErrPlayerNotOnTeam, playerID, from)
		}
		return r, nil
	}

	fromIndex := -1
	if from != "" {
		fromIndex = r.teamIndex(from)
		if fromIndex == -1 {
			return r, fmt.Errorf("%w: %s", ErrUnknownTeam, from)
		}
		if !r.Teams[fromIndex].Has(playerID) {
			return r, fmt.Errorf("%w: %s not on %s", ErrPlayerNotOnTeam, playerID, from)
		}
	} else if current, ok := r.TeamOf(playerID); ok {
		return r, fmt.Errorf("%w: %s is on %s", ErrPlayerAlreadyAssigned, playerID, current)
	}

	toIndex := -1
	if to != "" {
		toIndex = r.teamIndex(to)
		if toIndex == -1 {
			return r, fmt.Errorf("%w: %s", ErrUnknownTeam, to)
		}
		if r.Capacity > 0 && len(r.Teams[toIndex].PlayerIDs) >= r.Capacity {
			return r, fmt.Errorf("%w: %s has %d players", ErrTeamFull, to, len(r.Teams[toIndex].PlayerIDs))
		}
	}

	moved := r.Clone()
	if fromIndex != -1 {
		moved.Teams[fromIndex] = removeFromTeam(moved.Teams[fromIndex], playerID)
	}
	if toIndex != -1 {
		moved.Teams[toIndex] = addToTeam(moved.Teams[toIndex], playerID)
	}
	return moved, nil
}

// RemovePlayer sends the player to the bench, wherever they are
func (r Roster) RemovePlayer(playerID string) Roster {
	key, ok := r.TeamOf(playerID)
	if !ok {
		return r
	}
	removed := r.Clone()
	i := removed.mustIndex(key)
	removed.Teams[i] = removeFromTeam(removed.Teams[i], playerID)
	return removed
}

// MakeCaptain makes the player captain of the team they are on
func (r Roster) MakeCaptain(playerID string, key TeamKey) (Roster, error) {
	i := r.teamIndex(key)
	if i == -1 {
		return r, fmt.Errorf("%w: %s", ErrUnknownTeam, key)
	}
	if !r.Teams[i].Has(playerID) {
		return r, fmt.Errorf("%w: %s not on %s", ErrPlayerNotOnTeam, playerID, key)
	}

	updated := r.Clone()
	team := updated.Teams[i]
	ids := slices.DeleteFunc(team.PlayerIDs, func(id string) bool { return id == playerID })
	team.PlayerIDs = append([]string{playerID}, ids...)
	team.CaptainID = playerID
	updated.Teams[i] = team
	return updated, nil
}

func (r Roster) mustIndex(key TeamKey) int {
	i := r.teamIndex(key)
	if i == -1 {
		panic(fmt.Sprintf("logic error: team %s missing from roster", key))
	}
	return i
}

func addToTeam(team Team, playerID string) Team {
	team.PlayerIDs = append(team.PlayerIDs, playerID)
	if team.CaptainID == "" {
		team.CaptainID = playerID
	}
	return team
}

func removeFromTeam(team Team, playerID string) Team {
	team.PlayerIDs = slices.DeleteFunc(team.PlayerIDs, func(id string) bool { return id == playerID })
	if team.CaptainID == playerID {
		team.CaptainID = ""
		if len(team.PlayerIDs) > 0 {
			team.CaptainID = team.PlayerIDs[0]
		}
	}
	return team
}
