package ports

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Amund211/gamenight/internal/app"
	"github.com/Amund211/gamenight/internal/domain"
	"github.com/Amund211/gamenight/internal/logging"
	"github.com/Amund211/gamenight/internal/ratelimiting"
)

// Operations are the use cases exposed over http
type Operations struct {
	ListPlayers   app.ListPlayers
	CreatePlayer  app.CreatePlayer
	ImportPlayers app.ImportPlayers
	SearchPlayers app.SearchPlayers
	DeletePlayer  app.DeletePlayer

	CreateGameDay      app.CreateGameDay
	CreateTournament   app.CreateTournament
	ListSessions       app.ListSessions
	GetSession         app.GetSession
	DeleteSession      app.DeleteSession
	UpdateSession      app.UpdateSession
	SelectParticipants app.SelectParticipants
	GetSessionStats    app.GetSessionStats
	FinalizeSession    app.FinalizeSession

	ListSubscriptions  app.ListSubscriptions
	GetSubscription    app.GetSubscription
	PutSubscription    app.PutSubscription
	DeleteSubscription app.DeleteSubscription

	ListAdmins  app.ListAdmins
	AddAdmin    app.AddAdmin
	RemoveAdmin app.RemoveAdmin
}

// sessionPaths are the path segments sessions of each kind are served under
var sessionPaths = []struct {
	segment string
	kind    domain.SessionKind
}{
	{segment: "gamedays", kind: domain.SessionKindGameDay},
	{segment: "tournaments", kind: domain.SessionKindTournament},
}

// RegisterRoutes registers the admin api on the mux.
//
// middleware is applied to every route, after the per route metrics.
func RegisterRoutes(mux *http.ServeMux, ops Operations, middleware func(http.HandlerFunc) http.HandlerFunc) {
	handle := func(pattern string, handler http.HandlerFunc) {
		mux.HandleFunc(pattern, buildMetricsMiddleware()(middleware(handler)))
	}

	handle("GET /v1/players", MakeListPlayersHandler(ops.ListPlayers))
	handle("POST /v1/players", MakeCreatePlayerHandler(ops.CreatePlayer))
	handle("POST /v1/players/import", MakeImportPlayersHandler(ops.ImportPlayers))
	handle("GET /v1/players/search", MakeSearchPlayersHandler(ops.SearchPlayers))
	handle("DELETE /v1/players/{id}", MakeDeletePlayerHandler(ops.DeletePlayer))

	handle("POST /v1/gamedays", MakeCreateGameDayHandler(ops.CreateGameDay))
	handle("POST /v1/tournaments", MakeCreateTournamentHandler(ops.CreateTournament))

	for _, path := range sessionPaths {
		kind := path.kind
		prefix := fmt.Sprintf("/v1/%s", path.segment)
		session := prefix + "/{id}"
		game := session + "/minigames/{game}"
		match := session + "/bracket/{match}"

		handle("GET "+prefix, MakeListSessionsHandler(ops.ListSessions, kind))
		handle("GET "+session, MakeGetSessionHandler(ops.GetSession, kind))
		handle("DELETE "+session, MakeDeleteSessionHandler(ops.DeleteSession, kind))
		handle("GET "+session+"/stats", MakeGetSessionStatsHandler(ops.GetSessionStats, kind))
		handle("POST "+session+"/finalize", MakeFinalizeSessionHandler(ops.FinalizeSession, kind))

		handle("PUT "+session+"/participants", MakeSelectParticipantsHandler(ops.SelectParticipants, kind))
		handle("PUT "+session+"/status", MakeUpdateSessionHandler(ops.UpdateSession, kind, parseSetStatus))
		handle("POST "+session+"/roster/move", MakeUpdateSessionHandler(ops.UpdateSession, kind, parseMovePlayer))
		handle("POST "+session+"/roster/captain", MakeUpdateSessionHandler(ops.UpdateSession, kind, parseMakeCaptain))

		handle("POST "+session+"/minigames", MakeUpdateSessionHandler(ops.UpdateSession, kind, parseAddMiniGame))
		handle("PUT "+game, MakeUpdateSessionHandler(ops.UpdateSession, kind, parseReplaceMiniGame))
		handle("DELETE "+game, MakeUpdateSessionHandler(ops.UpdateSession, kind, parseRemoveMiniGame))
		handle("POST "+game+"/score", MakeUpdateSessionHandler(ops.UpdateSession, kind, parseSetScore))
		handle("POST "+game+"/goals", MakeUpdateSessionHandler(ops.UpdateSession, kind, parseAddGoal))
		handle("DELETE "+game+"/goals/{index}", MakeUpdateSessionHandler(ops.UpdateSession, kind, parseRemoveGoal))
		handle("POST "+game+"/start", MakeUpdateSessionHandler(ops.UpdateSession, kind, parseStartMiniGame))
		handle("POST "+game+"/end", MakeUpdateSessionHandler(ops.UpdateSession, kind, parseEndMiniGame))
		handle("POST "+game+"/lock", MakeUpdateSessionHandler(ops.UpdateSession, kind, parseLockMiniGame))
		handle("POST "+game+"/unlock", MakeUpdateSessionHandler(ops.UpdateSession, kind, parseUnlockMiniGame))

		handle("POST "+session+"/bracket", MakeUpdateSessionHandler(ops.UpdateSession, kind, parseAddBracket))
		handle("POST "+match+"/minigame", MakeUpdateSessionHandler(ops.UpdateSession, kind, parseAddKnockoutMiniGame))
		handle("POST "+match+"/resolve", MakeUpdateSessionHandler(ops.UpdateSession, kind, parseResolveMatch))
		handle("POST "+match+"/rollback", MakeUpdateSessionHandler(ops.UpdateSession, kind, parseRollbackMatch))
	}

	handle("GET /v1/subscriptions", MakeListSubscriptionsHandler(ops.ListSubscriptions))
	handle("GET /v1/subscriptions/{weekday}", MakeGetSubscriptionHandler(ops.GetSubscription))
	handle("PUT /v1/subscriptions/{weekday}", MakePutSubscriptionHandler(ops.PutSubscription))
	handle("DELETE /v1/subscriptions/{weekday}", MakeDeleteSubscriptionHandler(ops.DeleteSubscription))

	handle("GET /v1/admins", MakeListAdminsHandler(ops.ListAdmins))
	handle("POST /v1/admins", MakeAddAdminHandler(ops.AddAdmin))
	handle("DELETE /v1/admins/{email}", MakeRemoveAdminHandler(ops.RemoveAdmin))
}

// NewAPIMiddleware builds the middleware every api route is served through.
//
// Call stop to release the rate limiters.
func NewAPIMiddleware(
	logger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
	allowedOrigins *DomainSuffixes,
	isAdmin app.IsAdmin,
) (func(http.HandlerFunc) http.HandlerFunc, func()) {
	ipLimiter, stopIPLimiter := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(10),
		ratelimiting.BurstSize(200),
	)
	// Admins enter results live, one request per goal
	emailLimiter, stopEmailLimiter := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(5),
		ratelimiting.BurstSize(100),
	)

	middleware := ComposeMiddlewares(
		logging.NewRequestLoggerMiddleware(logger),
		sentryMiddleware,
		BuildCORSMiddleware(allowedOrigins),
		NewRateLimitMiddleware(
			ratelimiting.NewRequestBasedRateLimiter(ipLimiter, ratelimiting.IPKeyFunc),
			writeRateLimitExceeded,
		),
		NewAdminMiddleware(isAdmin),
		NewRateLimitMiddleware(
			ratelimiting.NewRequestBasedRateLimiter(emailLimiter, ratelimiting.UserEmailKeyFunc),
			writeRateLimitExceeded,
		),
	)

	stop := func() {
		stopIPLimiter()
		stopEmailLimiter()
	}

	return middleware, stop
}
