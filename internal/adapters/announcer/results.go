package announcer

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/Amund211/gamenight/internal/domain"
)

const topScorerCount = 3

type teamRecord struct {
	team   domain.Team
	wins   int
	draws  int
	losses int
}

// FormatResults renders the final standings of a session as a chat message
func FormatResults(session domain.Session, stats map[string]domain.PlayerStats, names map[string]string) string {
	records := make([]teamRecord, 0, len(session.Roster.Teams))
	indexByKey := make(map[domain.TeamKey]int, len(session.Roster.Teams))
	for _, team := range session.Roster.Teams {
		indexByKey[team.Key] = len(records)
		records = append(records, teamRecord{team: team})
	}

	for _, game := range session.MiniGames {
		a, okA := indexByKey[game.TeamA]
		b, okB := indexByKey[game.TeamB]
		if !okA || !okB {
			continue
		}
		winner, ok := game.Winner()
		switch {
		case !ok:
			records[a].draws++
			records[b].draws++
		case winner == game.TeamA:
			records[a].wins++
			records[b].losses++
		default:
			records[b].wins++
			records[a].losses++
		}
	}

	slices.SortStableFunc(records, func(x, y teamRecord) int {
		if c := cmp.Compare(y.wins, x.wins); c != 0 {
			return c
		}
		return cmp.Compare(x.team.Key, y.team.Key)
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** results (%d mini-games)\n", session.Name, len(session.MiniGames))
	for _, record := range records {
		fmt.Fprintf(
			&sb, "%s: %d W / %d D / %d L\n",
			domain.TeamDisplayName(record.team, names), record.wins, record.draws, record.losses,
		)
	}

	if session.Bracket != nil {
		if champion, ok := session.Bracket.Champion(); ok {
			if team, ok := session.Roster.Team(champion); ok {
				fmt.Fprintf(&sb, "Champion: %s\n", domain.TeamDisplayName(team, names))
			}
		}
	}

	if scorers := topScorers(stats, names); len(scorers) > 0 {
		fmt.Fprintf(&sb, "Top scorers: %s\n", strings.Join(scorers, ", "))
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

func topScorers(stats map[string]domain.PlayerStats, names map[string]string) []string {
	type scorer struct {
		name  string
		goals int
	}

	scorers := make([]scorer, 0, len(stats))
	for playerID, s := range stats {
		if s.Goals == 0 {
			continue
		}
		name := names[playerID]
		if name == "" {
			name = playerID
		}
		scorers = append(scorers, scorer{name: name, goals: s.Goals})
	}

	slices.SortFunc(scorers, func(a, b scorer) int {
		if c := cmp.Compare(b.goals, a.goals); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})

	lines := make([]string, 0, topScorerCount)
	for _, s := range scorers[:min(len(scorers), topScorerCount)] {
		lines = append(lines, fmt.Sprintf("%s %d", s.name, s.goals))
	}
	return lines
}
