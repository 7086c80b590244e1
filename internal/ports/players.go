package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/gamenight/internal/app"
	"github.com/Amund211/gamenight/internal/logging"
	"github.com/Amund211/gamenight/internal/reporting"
)

func MakeListPlayersHandler(listPlayers app.ListPlayers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		players, err := listPlayers(ctx)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, success(playersToResponse(players)))
	}
}

type createPlayerRequest struct {
	Name string `json:"name"`
}

func MakeCreatePlayerHandler(createPlayer app.CreatePlayer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		request, err := decodeJSON[createPlayerRequest](r, w)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		player, err := createPlayer(ctx, request.Name)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusCreated, success(playerToResponse(player)))
	}
}

type importPlayersRequest struct {
	// Names separated by commas or newlines, optionally quoted
	Names string `json:"names"`
}

func MakeImportPlayersHandler(importPlayers app.ImportPlayers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		request, err := decodeJSON[importPlayersRequest](r, w)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		created, err := importPlayers(ctx, request.Names)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		logging.FromContext(ctx).InfoContext(ctx, "Imported players", "count", len(created))

		writeJSON(ctx, w, http.StatusCreated, success(playersToResponse(created)))
	}
}

func MakeSearchPlayersHandler(searchPlayers app.SearchPlayers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		players, err := searchPlayers(ctx, r.URL.Query().Get("q"))
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, success(playersToResponse(players)))
	}
}

func MakeDeletePlayerHandler(deletePlayer app.DeletePlayer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.PathValue("id")

		ctx := logging.AddMetaToContext(r.Context(), slog.String("playerID", playerID))
		ctx = reporting.AddTagsToContext(ctx, map[string]string{"playerID": playerID})

		err := deletePlayer(ctx, playerID)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, successResponse{Success: true})
	}
}
