package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Amund211/gamenight/internal/adapters/cache"
	"github.com/Amund211/gamenight/internal/domain"
	"github.com/go-andiamo/splitter"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

const playersCacheKey = "players"

const maxPlayerNameLength = 100

type ListPlayers func(ctx context.Context) ([]domain.Player, error)

type playerLister interface {
	ListPlayers(ctx context.Context) ([]domain.Player, error)
}

func BuildListPlayersWithCache(playerCache cache.Cache[[]domain.Player], repository playerLister, timeout time.Duration) ListPlayers {
	return func(ctx context.Context) ([]domain.Player, error) {
		players, err := cache.GetOrCreate(ctx, playerCache, playersCacheKey, func() ([]domain.Player, error) {
			return withTimeout(ctx, timeout, repository.ListPlayers)
		})
		if err != nil {
			// NOTE: The player repository handles its own error reporting
			return nil, fmt.Errorf("failed to list players: %w", err)
		}

		return players, nil
	}
}

type CreatePlayer func(ctx context.Context, name string) (domain.Player, error)

type playerCreator interface {
	CreatePlayer(ctx context.Context, player domain.Player) error
}

func normalizePlayerName(raw string) (string, error) {
	name := strings.Join(strings.Fields(raw), " ")
	if name == "" {
		return "", fmt.Errorf("%w: player name is empty", domain.ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > maxPlayerNameLength {
		return "", fmt.Errorf("%w: player name is longer than %d characters", domain.ErrInvalidName, maxPlayerNameLength)
	}
	return name, nil
}

func BuildCreatePlayer(
	repository playerCreator,
	playerCache cache.Cache[[]domain.Player],
	newID func() string,
	nowFunc func() time.Time,
	timeout time.Duration,
) CreatePlayer {
	return func(ctx context.Context, rawName string) (domain.Player, error) {
		name, err := normalizePlayerName(rawName)
		if err != nil {
			return domain.Player{}, err
		}

		player := domain.Player{
			ID:        newID(),
			Name:      name,
			CreatedAt: nowFunc(),
		}

		err = withTimeoutNoResult(ctx, timeout, func(ctx context.Context) error {
			return repository.CreatePlayer(ctx, player)
		})
		if err != nil {
			// NOTE: The player repository handles its own error reporting
			return domain.Player{}, fmt.Errorf("failed to create player: %w", err)
		}

		cache.Invalidate(playerCache, playersCacheKey)

		return player, nil
	}
}

// ImportPlayers creates every name in a comma or newline separated list.
//
// Names matching an existing player (ignoring case) are skipped. Returns the created players.
type ImportPlayers func(ctx context.Context, raw string) ([]domain.Player, error)

func BuildImportPlayers(listPlayers ListPlayers, createPlayer CreatePlayer) ImportPlayers {
	return func(ctx context.Context, raw string) ([]domain.Player, error) {
		names, err := ParsePlayerNames(raw)
		if err != nil {
			return nil, err
		}

		existing, err := listPlayers(ctx)
		if err != nil {
			return nil, err
		}

		seen := make(map[string]bool, len(existing)+len(names))
		for _, player := range existing {
			seen[strings.ToLower(player.Name)] = true
		}

		created := []domain.Player{}
		for _, name := range names {
			key := strings.ToLower(name)
			if seen[key] {
				continue
			}
			seen[key] = true

			player, err := createPlayer(ctx, name)
			if err != nil {
				return created, fmt.Errorf("failed to import %q: %w", name, err)
			}
			created = append(created, player)
		}

		return created, nil
	}
}

var nameSplitter = mustNameSplitter()

func mustNameSplitter() splitter.Splitter {
	s, err := splitter.NewSplitter(',', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	if err != nil {
		panic(fmt.Sprintf("failed to create name splitter: %s", err))
	}
	return s
}

// ParsePlayerNames splits a pasted list of names on commas and newlines.
//
// Names containing a comma can be wrapped in double quotes, straight or curly.
func ParsePlayerNames(raw string) ([]string, error) {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\n", ",")

	parts, err := nameSplitter.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidName, err)
	}

	names := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		part = unquoteName(part)
		if strings.TrimSpace(part) == "" {
			continue
		}

		name, err := normalizePlayerName(part)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, nil
}

func unquoteName(part string) string {
	for _, quotes := range [][2]string{{`"`, `"`}, {"\u201c", "\u201d"}} {
		if len(part) >= len(quotes[0])+len(quotes[1]) && strings.HasPrefix(part, quotes[0]) && strings.HasSuffix(part, quotes[1]) {
			return part[len(quotes[0]) : len(part)-len(quotes[1])]
		}
	}
	return part
}

type SearchPlayers func(ctx context.Context, query string) ([]domain.Player, error)

func BuildSearchPlayers(listPlayers ListPlayers) SearchPlayers {
	return func(ctx context.Context, query string) ([]domain.Player, error) {
		players, err := listPlayers(ctx)
		if err != nil {
			return nil, err
		}

		query = strings.TrimSpace(query)
		if query == "" {
			return players, nil
		}

		names := make([]string, 0, len(players))
		for _, player := range players {
			names = append(names, player.Name)
		}

		ranks := fuzzy.RankFindFold(query, names)
		sort.Stable(ranks)

		matches := make([]domain.Player, 0, len(ranks))
		for _, rank := range ranks {
			matches = append(matches, players[rank.OriginalIndex])
		}

		return matches, nil
	}
}

type DeletePlayer func(ctx context.Context, playerID string) error

type playerDeleter interface {
	DeletePlayer(ctx context.Context, playerID string) error
}

func BuildDeletePlayer(repository playerDeleter, playerCache cache.Cache[[]domain.Player], timeout time.Duration) DeletePlayer {
	return func(ctx context.Context, playerID string) error {
		err := withTimeoutNoResult(ctx, timeout, func(ctx context.Context) error {
			return repository.DeletePlayer(ctx, playerID)
		})
		if err != nil {
			// NOTE: The player repository handles its own error reporting
			return fmt.Errorf("failed to delete player: %w", err)
		}

		cache.Invalidate(playerCache, playersCacheKey)

		return nil
	}
}

// playerNames maps player ids to display names
func playerNames(players []domain.Player) map[string]string {
	names := make(map[string]string, len(players))
	for _, player := range players {
		names[player.ID] = player.Name
	}
	return names
}
