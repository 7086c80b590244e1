// Session-stats prints the recomputed stats of a session next to what the last
// finalization applied, without changing anything.
//
// Usage: session-stats <gameday|tournament> <id>
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Amund211/gamenight/internal/adapters/database"
	"github.com/Amund211/gamenight/internal/adapters/documentstore"
	"github.com/Amund211/gamenight/internal/adapters/playerrepository"
	"github.com/Amund211/gamenight/internal/adapters/sessionrepository"
	"github.com/Amund211/gamenight/internal/config"
	"github.com/Amund211/gamenight/internal/domain"
	"github.com/joho/godotenv"
)

func openStore(ctx context.Context, conf config.Config) (documentstore.Store, func(), error) {
	switch conf.DBBackend() {
	case config.DBBackendPostgres:
		db, err := database.NewCloudsqlPostgresDatabase(conf)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		schemaName := database.GetSchemaName(!conf.IsProduction())
		return documentstore.NewPostgres(db, schemaName), func() { db.Close() }, nil
	case config.DBBackendMongo:
		db, disconnect, err := documentstore.ConnectMongo(ctx, conf.MongoURI(), "gamenight")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		return documentstore.NewMongo(db), func() { _ = disconnect(context.Background()) }, nil
	default:
		return nil, nil, fmt.Errorf("backend %s holds no sessions to inspect", conf.DBBackend())
	}
}

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: session-stats <gameday|tournament> <id>")
	}

	kind := domain.SessionKind(os.Args[1])
	if !kind.Valid() {
		log.Fatalf("Unknown session kind %q", os.Args[1])
	}
	sessionID := os.Args[2]

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to load .env: %v", err)
	}

	conf, err := config.ConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, closeStore, err := openStore(ctx, conf)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	session, err := sessionrepository.New(store).GetSession(ctx, kind, sessionID)
	if err != nil {
		log.Fatalf("Failed to get session: %v", err)
	}

	players, err := playerrepository.New(store).ListPlayers(ctx)
	if err != nil {
		log.Fatalf("Failed to list players: %v", err)
	}
	names := make(map[string]string, len(players))
	for _, player := range players {
		names[player.ID] = player.Name
	}

	current := session.Stats(conf.WinCreditPolicy())
	delta := domain.CareerDelta(session.AppliedStats, current)

	playerIDs := make([]string, 0, len(current)+len(session.AppliedStats))
	for playerID := range current {
		playerIDs = append(playerIDs, playerID)
	}
	for playerID := range session.AppliedStats {
		if _, ok := current[playerID]; !ok {
			playerIDs = append(playerIDs, playerID)
		}
	}
	slices.SortFunc(playerIDs, func(a, b string) int {
		return strings.Compare(strings.ToLower(names[a]), strings.ToLower(names[b]))
	})

	fmt.Printf("%s %s (%s), status %s, policy %s\n", kind, session.ID, session.Date, session.Status, conf.WinCreditPolicy())

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PLAYER\tGOALS\tASSISTS\tWINS\tPENDING")
	for _, playerID := range playerIDs {
		name := names[playerID]
		if name == "" {
			name = playerID
		}
		stats := current[playerID]
		pending := "-"
		if d, ok := delta[playerID]; ok {
			pending = fmt.Sprintf("%+d/%+d/%+d", d.Goals, d.Assists, d.Wins)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", name, stats.Goals, stats.Assists, stats.Wins, pending)
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("Failed to write stats: %v", err)
	}
}
