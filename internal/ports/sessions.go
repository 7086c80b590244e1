package ports

import (
	"context"
	"net/http"

	"github.com/Amund211/gamenight/internal/app"
	"github.com/Amund211/gamenight/internal/domain"
	"github.com/Amund211/gamenight/internal/logging"
	"github.com/Amund211/gamenight/internal/reporting"
)

// sessionContext adds the session being worked on to the logger and error reports
func sessionContext(r *http.Request, kind domain.SessionKind) (context.Context, string) {
	id := r.PathValue("id")

	ctx := logging.AddSessionToContext(r.Context(), string(kind), id)
	ctx = reporting.AddTagsToContext(ctx, map[string]string{
		"sessionKind": string(kind),
		"sessionID":   id,
	})
	return ctx, id
}

type createGameDayRequest struct {
	Date      string `json:"date"`
	TeamCount int    `json:"teamCount"`
}

func MakeCreateGameDayHandler(createGameDay app.CreateGameDay) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		request, err := decodeJSON[createGameDayRequest](r, w)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		session, err := createGameDay(ctx, request.Date, request.TeamCount)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusCreated, success(sessionToResponse(session)))
	}
}

type createTournamentRequest struct {
	Name      string `json:"name"`
	Date      string `json:"date"`
	TeamCount int    `json:"teamCount"`
}

func MakeCreateTournamentHandler(createTournament app.CreateTournament) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		request, err := decodeJSON[createTournamentRequest](r, w)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		session, err := createTournament(ctx, request.Name, request.Date, request.TeamCount)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusCreated, success(sessionToResponse(session)))
	}
}

func MakeListSessionsHandler(listSessions app.ListSessions, kind domain.SessionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sessions, err := listSessions(ctx, kind)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, success(sessionsToResponse(sessions)))
	}
}

func MakeGetSessionHandler(getSession app.GetSession, kind domain.SessionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, id := sessionContext(r, kind)

		session, err := getSession(ctx, kind, id)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, success(sessionToResponse(session)))
	}
}

func MakeDeleteSessionHandler(deleteSession app.DeleteSession, kind domain.SessionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, id := sessionContext(r, kind)

		err := deleteSession(ctx, kind, id)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		logging.FromContext(ctx).InfoContext(ctx, "Deleted session")

		writeJSON(ctx, w, http.StatusOK, successResponse{Success: true})
	}
}

type selectParticipantsRequest struct {
	PlayerIDs []string `json:"playerIds"`
}

func MakeSelectParticipantsHandler(selectParticipants app.SelectParticipants, kind domain.SessionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, id := sessionContext(r, kind)

		request, err := decodeJSON[selectParticipantsRequest](r, w)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		session, err := selectParticipants(ctx, kind, id, request.PlayerIDs)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, success(sessionToResponse(session)))
	}
}

func MakeGetSessionStatsHandler(getSessionStats app.GetSessionStats, kind domain.SessionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, id := sessionContext(r, kind)

		stats, err := getSessionStats(ctx, kind, id)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, success(sessionStatsToResponse(stats)))
	}
}

func MakeFinalizeSessionHandler(finalizeSession app.FinalizeSession, kind domain.SessionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, id := sessionContext(r, kind)

		stats, err := finalizeSession(ctx, kind, id)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, success(sessionStatsToResponse(stats)))
	}
}

// MakeUpdateSessionHandler applies the edit parse builds from the request and returns the updated session.
//
// The request body is optional. Edits without parameters ignore it.
func MakeUpdateSessionHandler[T any](
	updateSession app.UpdateSession,
	kind domain.SessionKind,
	parse func(r *http.Request, body T) (app.Mutation, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, id := sessionContext(r, kind)
		extras := make(map[string]string)
		if gameID := r.PathValue("game"); gameID != "" {
			extras["miniGameID"] = gameID
		}
		if matchID := r.PathValue("match"); matchID != "" {
			extras["matchID"] = matchID
		}
		ctx = reporting.AddExtrasToContext(ctx, extras)

		body, err := decodeOptionalJSON[T](r, w)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		mutation, err := parse(r, body)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		session, err := updateSession(ctx, kind, id, mutation)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, success(sessionToResponse(session)))
	}
}
