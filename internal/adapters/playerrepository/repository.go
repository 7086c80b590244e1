package playerrepository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Amund211/gamenight/internal/adapters/documentstore"
	"github.com/Amund211/gamenight/internal/domain"
	"github.com/Amund211/gamenight/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const collection = "players"

type Repository struct {
	store documentstore.Store

	tracer trace.Tracer
}

func New(store documentstore.Store) *Repository {
	tracer := otel.Tracer("gamenight/playerrepository")

	return &Repository{
		store: store,

		tracer: tracer,
	}
}

type storedStats struct {
	Goals   int `json:"goals" bson:"goals"`
	Assists int `json:"assists" bson:"assists"`
	Wins    int `json:"wins" bson:"wins"`
}

type storedPlayer struct {
	Name      string      `json:"name" bson:"name"`
	Career    storedStats `json:"career" bson:"career"`
	CreatedAt time.Time   `json:"createdAt" bson:"createdAt"`
}

func toStoredPlayer(player domain.Player) storedPlayer {
	return storedPlayer{
		Name: player.Name,
		Career: storedStats{
			Goals:   player.Career.Goals,
			Assists: player.Career.Assists,
			Wins:    player.Career.Wins,
		},
		CreatedAt: player.CreatedAt,
	}
}

func fromStoredPlayer(id string, stored storedPlayer) domain.Player {
	return domain.Player{
		ID:   id,
		Name: stored.Name,
		Career: domain.PlayerStats{
			Goals:   stored.Career.Goals,
			Assists: stored.Career.Assists,
			Wins:    stored.Career.Wins,
		},
		CreatedAt: stored.CreatedAt,
	}
}

func (r *Repository) CreatePlayer(ctx context.Context, player domain.Player) error {
	ctx, span := r.tracer.Start(ctx, "Repository.CreatePlayer")
	defer span.End()

	err := r.store.Create(ctx, collection, player.ID, toStoredPlayer(player))
	if err != nil {
		// NOTE: The document store handles its own error reporting
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *Repository) GetPlayer(ctx context.Context, playerID string) (domain.Player, error) {
	ctx, span := r.tracer.Start(ctx, "Repository.GetPlayer")
	defer span.End()

	var stored storedPlayer
	err := r.store.Get(ctx, collection, playerID, &stored)
	if errors.Is(err, documentstore.ErrNotFound) {
		return domain.Player{}, fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, playerID)
	} else if err != nil {
		// NOTE: The document store handles its own error reporting
		return domain.Player{}, fmt.Errorf("failed to get player: %w", err)
	}

	return fromStoredPlayer(playerID, stored), nil
}

// ListPlayers returns all players sorted by name
func (r *Repository) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	ctx, span := r.tracer.Start(ctx, "Repository.ListPlayers")
	defer span.End()

	documents, err := r.store.List(ctx, collection)
	if err != nil {
		// NOTE: The document store handles its own error reporting
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	players := make([]domain.Player, 0, len(documents))
	for _, document := range documents {
		var stored storedPlayer
		if err := document.Decode(&stored); err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "Skipping undecodable player", "playerID", document.ID, "error", err.Error())
			continue
		}
		players = append(players, fromStoredPlayer(document.ID, stored))
	}

	slices.SortFunc(players, func(a, b domain.Player) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	return players, nil
}

func (r *Repository) DeletePlayer(ctx context.Context, playerID string) error {
	ctx, span := r.tracer.Start(ctx, "Repository.DeletePlayer")
	defer span.End()

	err := r.store.Delete(ctx, collection, playerID)
	if errors.Is(err, documentstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, playerID)
	} else if err != nil {
		// NOTE: The document store handles its own error reporting
		return fmt.Errorf("failed to delete player: %w", err)
	}
	return nil
}

// AddCareerStats adds the deltas to the career counters of each player.
//
// Players that have been deleted are skipped.
func (r *Repository) AddCareerStats(ctx context.Context, deltas map[string]domain.PlayerStats) error {
	ctx, span := r.tracer.Start(ctx, "Repository.AddCareerStats")
	defer span.End()

	playerIDs := make([]string, 0, len(deltas))
	for playerID := range deltas {
		playerIDs = append(playerIDs, playerID)
	}
	slices.Sort(playerIDs)

	for _, playerID := range playerIDs {
		delta := deltas[playerID]
		if delta.IsZero() {
			continue
		}

		err := r.store.Increment(ctx, collection, playerID, map[string]int{
			"career.goals":   delta.Goals,
			"career.assists": delta.Assists,
			"career.wins":    delta.Wins,
		})
		if errors.Is(err, documentstore.ErrNotFound) {
			logging.FromContext(ctx).WarnContext(ctx, "Skipping career stats for missing player", "playerID", playerID)
			continue
		} else if err != nil {
			// NOTE: The document store handles its own error reporting
			return fmt.Errorf("failed to add career stats for %s: %w", playerID, err)
		}
	}

	return nil
}
