package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Amund211/gamenight/internal/domain"
)

var ErrMissingRequiredValue = errors.New("missing required value")
var ErrInvalidValue = errors.New("invalid value")

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

type DBBackend string

const (
	DBBackendPostgres DBBackend = "postgres"
	DBBackendMongo    DBBackend = "mongo"
	// DBBackendMemory keeps everything in memory. Only allowed in development.
	DBBackendMemory DBBackend = "memory"
)

const (
	defaultPort             = "8080"
	defaultTeamCapacity     = 7
	defaultOperationTimeout = 10 * time.Second
	defaultAutosaveDelay    = 2 * time.Second
)

type Config struct {
	env  environment
	port string

	dbBackend              DBBackend
	cloudSQLUnixSocketPath string
	dBPassword             string
	dBUsername             string
	mongoURI               string

	sentryDSN          string
	googleCloudProject string

	discordBotToken  string
	discordChannelID string

	adminEmails           []string
	allowedOriginSuffixes []string

	teamCapacity     int
	winCreditPolicy  domain.WinCreditPolicy
	operationTimeout time.Duration
	autosaveDelay    time.Duration
}

func (c *Config) Port() string {
	return c.port
}

func (c *Config) DBBackend() DBBackend {
	return c.dbBackend
}

func (c *Config) CloudSQLUnixSocketPath() string {
	return c.cloudSQLUnixSocketPath
}

func (c *Config) DBPassword() string {
	return c.dBPassword
}

func (c *Config) DBUsername() string {
	return c.dBUsername
}

func (c *Config) MongoURI() string {
	return c.mongoURI
}

func (c *Config) SentryDSN() string {
	return c.sentryDSN
}

func (c *Config) DiscordBotToken() string {
	return c.discordBotToken
}

func (c *Config) DiscordChannelID() string {
	return c.discordChannelID
}

// AnnouncementsEnabled is true when finalized sessions should be posted to discord
func (c *Config) AnnouncementsEnabled() bool {
	return c.discordBotToken != "" && c.discordChannelID != ""
}

// AdminEmails are always treated as admins, in addition to the stored ones
func (c *Config) AdminEmails() []string {
	return c.adminEmails
}

// GoogleCloudProject is used to link log lines to traces. Empty when not running on GCP.
func (c *Config) GoogleCloudProject() string {
	return c.googleCloudProject
}

// AllowedOriginSuffixes are the domains (and their subdomains) the admin UI is served from
func (c *Config) AllowedOriginSuffixes() []string {
	return c.allowedOriginSuffixes
}

func (c *Config) TeamCapacity() int {
	return c.teamCapacity
}

func (c *Config) WinCreditPolicy() domain.WinCreditPolicy {
	return c.winCreditPolicy
}

func (c *Config) OperationTimeout() time.Duration {
	return c.operationTimeout
}

func (c *Config) AutosaveDelay() time.Duration {
	return c.autosaveDelay
}

// Environment is the name errors and traces are reported under
func (c *Config) Environment() string {
	return string(c.env)
}

func (c *Config) IsProduction() bool {
	return c.env == production
}

func (c *Config) IsStaging() bool {
	return c.env == staging
}

func (c *Config) IsDevelopment() bool {
	return c.env == development
}

// Return a string representation suitable for logging etc
func (c *Config) NonSensitiveString() string {
	return fmt.Sprintf(
		"Config{env: %s, port: %s, dbBackend: %s, admins: %d, teamCapacity: %d, winCreditPolicy: %s, operationTimeout: %s, autosaveDelay: %s, announcements: %t, ...}",
		string(c.env),
		c.port,
		string(c.dbBackend),
		len(c.adminEmails),
		c.teamCapacity,
		c.winCreditPolicy,
		c.operationTimeout,
		c.autosaveDelay,
		c.AnnouncementsEnabled(),
	)
}

func ConfigFromEnv() (Config, error) {
	missingKey := func(key string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequiredValue, key)
	}
	invalidValue := func(key, value string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s (%s)", ErrInvalidValue, key, value)
	}

	var env environment
	rawEnv, ok := os.LookupEnv("GAMENIGHT_ENVIRONMENT")
	if !ok {
		return missingKey("GAMENIGHT_ENVIRONMENT")
	}
	switch rawEnv {
	case "production":
		env = production
	case "staging":
		env = staging
	case "development":
		env = development
	default:
		return invalidValue("GAMENIGHT_ENVIRONMENT", rawEnv)
	}
	if string(env) == "" {
		panic("logic error: env is empty")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	var dbBackend DBBackend
	switch rawBackend := os.Getenv("DB_BACKEND"); rawBackend {
	case "", "postgres":
		dbBackend = DBBackendPostgres
	case "mongo":
		dbBackend = DBBackendMongo
	case "memory":
		if env != development {
			return invalidValue("DB_BACKEND", rawBackend)
		}
		dbBackend = DBBackendMemory
	default:
		return invalidValue("DB_BACKEND", rawBackend)
	}

	cloudSQLUnixSocketPath := os.Getenv("CLOUDSQL_UNIX_SOCKET")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbUsername := os.Getenv("DB_USERNAME")
	mongoURI := os.Getenv("MONGO_URI")
	sentryDSN := os.Getenv("SENTRY_DSN")
	googleCloudProject := os.Getenv("GOOGLE_CLOUD_PROJECT")
	discordBotToken := os.Getenv("DISCORD_BOT_TOKEN")
	discordChannelID := os.Getenv("DISCORD_CHANNEL_ID")

	var adminEmails []string
	if raw := os.Getenv("ADMIN_EMAILS"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			email, err := domain.NormalizeEmail(part)
			if err != nil {
				return invalidValue("ADMIN_EMAILS", part)
			}
			adminEmails = append(adminEmails, email)
		}
	}

	var allowedOriginSuffixes []string
	for _, part := range strings.Split(os.Getenv("ALLOWED_ORIGIN_SUFFIXES"), ",") {
		if suffix := strings.TrimSpace(part); suffix != "" {
			allowedOriginSuffixes = append(allowedOriginSuffixes, suffix)
		}
	}

	teamCapacity := defaultTeamCapacity
	if raw := os.Getenv("TEAM_CAPACITY"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return invalidValue("TEAM_CAPACITY", raw)
		}
		teamCapacity = parsed
	}

	var winCreditPolicy domain.WinCreditPolicy
	switch raw := os.Getenv("WIN_CREDIT_POLICY"); raw {
	case "", domain.CreditCurrentRoster.String():
		winCreditPolicy = domain.CreditCurrentRoster
	case domain.CreditLineupAtGameTime.String():
		winCreditPolicy = domain.CreditLineupAtGameTime
	default:
		return invalidValue("WIN_CREDIT_POLICY", raw)
	}

	operationTimeout := defaultOperationTimeout
	if raw := os.Getenv("OPERATION_TIMEOUT"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			return invalidValue("OPERATION_TIMEOUT", raw)
		}
		operationTimeout = parsed
	}

	autosaveDelay := defaultAutosaveDelay
	if raw := os.Getenv("AUTOSAVE_DELAY"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed < 0 {
			return invalidValue("AUTOSAVE_DELAY", raw)
		}
		autosaveDelay = parsed
	}

	if env == production || env == staging {
		switch dbBackend {
		case DBBackendPostgres:
			if cloudSQLUnixSocketPath == "" {
				return missingKey("CLOUDSQL_UNIX_SOCKET")
			}
			if dbUsername == "" {
				return missingKey("DB_USERNAME")
			}
			if dbPassword == "" {
				return missingKey("DB_PASSWORD")
			}
		case DBBackendMongo:
			if mongoURI == "" {
				return missingKey("MONGO_URI")
			}
		}
		if sentryDSN == "" {
			return missingKey("SENTRY_DSN")
		}
	}

	return Config{
		env:                    env,
		port:                   port,
		dbBackend:              dbBackend,
		cloudSQLUnixSocketPath: cloudSQLUnixSocketPath,
		dBPassword:             dbPassword,
		dBUsername:             dbUsername,
		mongoURI:               mongoURI,
		sentryDSN:              sentryDSN,
		googleCloudProject:     googleCloudProject,
		discordBotToken:        discordBotToken,
		discordChannelID:       discordChannelID,
		adminEmails:            adminEmails,
		allowedOriginSuffixes:  allowedOriginSuffixes,
		teamCapacity:           teamCapacity,
		winCreditPolicy:        winCreditPolicy,
		operationTimeout:       operationTimeout,
		autosaveDelay:          autosaveDelay,
	}, nil
}
