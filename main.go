package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Amund211/gamenight/internal/adapters/adminrepository"
	"github.com/Amund211/gamenight/internal/adapters/announcer"
	"github.com/Amund211/gamenight/internal/adapters/cache"
	"github.com/Amund211/gamenight/internal/adapters/database"
	"github.com/Amund211/gamenight/internal/adapters/documentstore"
	"github.com/Amund211/gamenight/internal/adapters/playerrepository"
	"github.com/Amund211/gamenight/internal/adapters/sessionrepository"
	"github.com/Amund211/gamenight/internal/adapters/subscriptionrepository"
	"github.com/Amund211/gamenight/internal/app"
	"github.com/Amund211/gamenight/internal/config"
	"github.com/Amund211/gamenight/internal/domain"
	"github.com/Amund211/gamenight/internal/logging"
	"github.com/Amund211/gamenight/internal/ports"
	"github.com/Amund211/gamenight/internal/reporting"
	"github.com/Amund211/gamenight/internal/telemetry"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	_ "golang.org/x/crypto/x509roots/fallback"
)

const serviceName = "gamenight"

const mongoDatabaseName = "gamenight"

func main() {
	instanceID := uuid.New().String()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("instanceID", instanceID)

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		os.Exit(1)
	}

	// Local development reads its environment from .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fail("Failed to load .env", "error", err.Error())
	}

	conf, err := config.ConfigFromEnv()
	if err != nil {
		fail("Failed to load config", "error", err.Error())
	}

	logger = slog.New(
		logging.NewTracingLogHandler(slog.NewJSONHandler(os.Stdout, nil), conf.GoogleCloudProject()),
	).With("instanceID", instanceID)
	logger.Info("Loaded config", "config", conf.NonSensitiveString())

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	shutdownTelemetry, metricsHandler, err := telemetry.SetupOTelSDK(ctx, serviceName, !conf.IsDevelopment())
	if err != nil {
		fail("Failed to initialize telemetry", "error", err.Error())
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Error("Failed to shut down telemetry", "error", err.Error())
		}
	}()
	logger.Info("Initialized telemetry")

	sentryMiddleware, flush, err := reporting.NewSentryMiddlewareOrMock(conf)
	if err != nil {
		fail("Failed to initialize Sentry", "error", err.Error())
	}
	defer flush()
	logger.Info("Initialized Sentry middleware")

	var store documentstore.Store
	switch conf.DBBackend() {
	case config.DBBackendPostgres:
		logger.Info("Initializing database connection")
		db, err := database.NewCloudsqlPostgresDatabase(conf)
		if err != nil {
			fail("Failed to initialize database connection", "error", err.Error())
		}
		defer db.Close()

		schemaName := database.GetSchemaName(!conf.IsProduction())
		err = database.NewDatabaseMigrator(db, logger.With("component", "migrator")).Migrate(ctx, schemaName)
		if err != nil {
			fail("Failed to migrate database", "error", err.Error())
		}

		store = documentstore.NewPostgres(db, schemaName)
	case config.DBBackendMongo:
		logger.Info("Initializing mongo connection")
		db, disconnect, err := documentstore.ConnectMongo(ctx, conf.MongoURI(), mongoDatabaseName)
		if err != nil {
			fail("Failed to initialize mongo connection", "error", err.Error())
		}
		defer func() {
			if err := disconnect(context.Background()); err != nil {
				logger.Error("Failed to disconnect from mongo", "error", err.Error())
			}
		}()

		store = documentstore.NewMongo(db)
	case config.DBBackendMemory:
		logger.Warn("Using in-memory storage, nothing will be persisted")
		store = documentstore.NewInMemory()
	default:
		fail("Unknown database backend", "backend", string(conf.DBBackend()))
	}
	logger.Info("Initialized document store", "backend", string(conf.DBBackend()))

	playerRepo := playerrepository.New(store)
	subscriptionRepo := subscriptionrepository.New(store)
	adminRepo := adminrepository.New(store)

	sessionWriter := app.NewSessionWriter(
		sessionrepository.New(store),
		conf.AutosaveDelay(),
		conf.OperationTimeout(),
		app.AfterFuncScheduler,
		logger.With("component", "autosave"),
	)

	resultsAnnouncer, err := announcer.NewDiscordOrLogOnly(conf, logger.With("component", "announcer"))
	if err != nil {
		fail("Failed to initialize announcer", "error", err.Error())
	}

	var playerCache cache.Cache[[]domain.Player] = cache.NewTTLCache[[]domain.Player](5 * time.Minute)
	var adminCache cache.Cache[[]domain.Admin] = cache.NewTTLCache[[]domain.Admin](1 * time.Minute)
	if conf.DBBackend() == config.DBBackendMemory {
		// Nothing but this process writes to the in-memory store
		playerCache = cache.NewBasicCache[[]domain.Player]()
		adminCache = cache.NewBasicCache[[]domain.Admin]()
	}

	newID := uuid.NewString
	timeout := conf.OperationTimeout()
	policy := conf.WinCreditPolicy()

	listPlayers := app.BuildListPlayersWithCache(playerCache, playerRepo, timeout)
	createPlayer := app.BuildCreatePlayer(playerRepo, playerCache, newID, time.Now, timeout)
	getSession := app.BuildGetSession(sessionWriter, timeout)
	updateSession := app.BuildUpdateSession(sessionWriter, newID, time.Now, timeout)
	listAdmins := app.BuildListAdminsWithCache(adminCache, adminRepo, conf.AdminEmails(), timeout)

	ops := ports.Operations{
		ListPlayers:   listPlayers,
		CreatePlayer:  createPlayer,
		ImportPlayers: app.BuildImportPlayers(listPlayers, createPlayer),
		SearchPlayers: app.BuildSearchPlayers(listPlayers),
		DeletePlayer:  app.BuildDeletePlayer(playerRepo, playerCache, timeout),

		CreateGameDay:      app.BuildCreateGameDay(sessionWriter, subscriptionRepo, conf.TeamCapacity(), time.Now, timeout),
		CreateTournament:   app.BuildCreateTournament(sessionWriter, newID, conf.TeamCapacity(), time.Now, timeout),
		ListSessions:       app.BuildListSessions(sessionWriter, timeout),
		GetSession:         getSession,
		DeleteSession:      app.BuildDeleteSession(sessionWriter, timeout),
		UpdateSession:      updateSession,
		SelectParticipants: app.BuildSelectParticipants(listPlayers, updateSession),
		GetSessionStats:    app.BuildGetSessionStats(getSession, policy),
		FinalizeSession: app.BuildFinalizeSession(
			sessionWriter,
			playerRepo,
			playerCache,
			listPlayers,
			resultsAnnouncer,
			policy,
			time.Now,
			timeout,
		),

		ListSubscriptions:  app.BuildListSubscriptions(subscriptionRepo, timeout),
		GetSubscription:    app.BuildGetSubscription(subscriptionRepo, timeout),
		PutSubscription:    app.BuildPutSubscription(subscriptionRepo, listPlayers, timeout),
		DeleteSubscription: app.BuildDeleteSubscription(subscriptionRepo, timeout),

		ListAdmins:  listAdmins,
		AddAdmin:    app.BuildAddAdmin(adminRepo, adminCache, time.Now, timeout),
		RemoveAdmin: app.BuildRemoveAdmin(adminRepo, adminCache, timeout),
	}

	allowedOrigins, err := ports.NewDomainSuffixes(conf.AllowedOriginSuffixes()...)
	if err != nil {
		fail("Failed to initialize allowed origins", "error", err.Error())
	}
	if conf.IsDevelopment() {
		allowedOrigins = allowedOrigins.WithLocalhost()
	}

	apiMiddleware, stopRateLimiters := ports.NewAPIMiddleware(
		logger.With("port", "api"),
		sentryMiddleware,
		allowedOrigins,
		app.BuildIsAdmin(listAdmins),
	)
	defer stopRateLimiters()

	mux := http.NewServeMux()
	ports.RegisterRoutes(mux, ops, apiMiddleware)
	mux.HandleFunc("OPTIONS /v1/", ports.BuildCORSHandler(allowedOrigins))
	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", conf.Port()),
		Handler:           otelhttp.NewHandler(mux, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()
	logger.Info("Init complete", "port", conf.Port())

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			fail("Server error", "error", err.Error())
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down server", "error", err.Error())
	}

	// Write out edits to live sessions still waiting for their autosave
	if err := sessionWriter.Close(shutdownCtx); err != nil {
		logger.Error("Failed to save pending session edits", "error", err.Error())
	}

	logger.Info("Server shutdown")
}
