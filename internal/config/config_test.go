package config_test

import (
	"testing"
	"time"

	"github.com/Amund211/gamenight/internal/config"
	"github.com/Amund211/gamenight/internal/domain"
	"github.com/stretchr/testify/require"
)

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

var postgresVariables = []string{"CLOUDSQL_UNIX_SOCKET", "DB_PASSWORD", "DB_USERNAME", "SENTRY_DSN"}

var optionalVariables = []string{"PORT", "DB_BACKEND", "MONGO_URI", "DISCORD_BOT_TOKEN", "DISCORD_CHANNEL_ID", "ADMIN_EMAILS", "ALLOWED_ORIGIN_SUFFIXES", "GOOGLE_CLOUD_PROJECT", "TEAM_CAPACITY", "WIN_CREDIT_POLICY", "OPERATION_TIMEOUT", "AUTOSAVE_DELAY"}

func clearOptional(t *testing.T) {
	t.Helper()
	for _, variable := range optionalVariables {
		t.Setenv(variable, "")
	}
}

func TestGetConfig(t *testing.T) {
	compareConfig := func(socketPath, username, password, sentryDSN string, env environment, conf config.Config) {
		t.Helper()
		require.Equal(t, socketPath, conf.CloudSQLUnixSocketPath())
		require.Equal(t, username, conf.DBUsername())
		require.Equal(t, password, conf.DBPassword())
		require.Equal(t, sentryDSN, conf.SentryDSN())
		require.Equal(t, env == production, conf.IsProduction())
		require.Equal(t, env == staging, conf.IsStaging())
		require.Equal(t, env == development, conf.IsDevelopment())
		require.Equal(t, string(env), conf.Environment())
	}

	t.Run("ensure base environment is clean", func(t *testing.T) {
		t.Run("environment is missing", func(t *testing.T) {
			// GAMENIGHT_ENVIRONMENT is required, so this should fail
			_, err := config.ConfigFromEnv()
			require.ErrorIs(t, err, config.ErrMissingRequiredValue)
		})

		t.Run("development environment uses defaults", func(t *testing.T) {
			clearOptional(t)
			t.Setenv("GAMENIGHT_ENVIRONMENT", "development")

			conf, err := config.ConfigFromEnv()
			require.NoError(t, err)
			compareConfig("", "", "", "", development, conf)
			require.Equal(t, "8080", conf.Port())
			require.Equal(t, config.DBBackendPostgres, conf.DBBackend())
			require.Equal(t, 7, conf.TeamCapacity())
			require.Equal(t, domain.CreditCurrentRoster, conf.WinCreditPolicy())
			require.Empty(t, conf.AdminEmails())
			require.Empty(t, conf.AllowedOriginSuffixes())
			require.Empty(t, conf.GoogleCloudProject())
			require.Equal(t, 10*time.Second, conf.OperationTimeout())
			require.Equal(t, 2*time.Second, conf.AutosaveDelay())
			require.False(t, conf.AnnouncementsEnabled())
		})
	})

	t.Run("values are read correctly", func(t *testing.T) {
		for _, variable := range postgresVariables {
			t.Setenv(variable, variable)
		}
		t.Setenv("PORT", "9000")
		t.Setenv("TEAM_CAPACITY", "6")
		t.Setenv("WIN_CREDIT_POLICY", "lineup-at-game-time")
		t.Setenv("ADMIN_EMAILS", "Coach@Example.com, ref@example.com,")
		t.Setenv("ALLOWED_ORIGIN_SUFFIXES", "league.example.com , admin.example.org")
		t.Setenv("OPERATION_TIMEOUT", "3s")
		t.Setenv("AUTOSAVE_DELAY", "500ms")
		t.Setenv("DISCORD_BOT_TOKEN", "token")
		t.Setenv("DISCORD_CHANNEL_ID", "channel")

		for _, env := range []environment{production, staging, development} {
			t.Run(string(env), func(t *testing.T) {
				t.Setenv("GAMENIGHT_ENVIRONMENT", string(env))

				conf, err := config.ConfigFromEnv()
				require.NoError(t, err)
				compareConfig("CLOUDSQL_UNIX_SOCKET", "DB_USERNAME", "DB_PASSWORD", "SENTRY_DSN", env, conf)
				require.Equal(t, "9000", conf.Port())
				require.Equal(t, 6, conf.TeamCapacity())
				require.Equal(t, domain.CreditLineupAtGameTime, conf.WinCreditPolicy())
				require.Equal(t, []string{"coach@example.com", "ref@example.com"}, conf.AdminEmails())
				require.Equal(t, []string{"league.example.com", "admin.example.org"}, conf.AllowedOriginSuffixes())
				require.Equal(t, 3*time.Second, conf.OperationTimeout())
				require.Equal(t, 500*time.Millisecond, conf.AutosaveDelay())
				require.Equal(t, "token", conf.DiscordBotToken())
				require.Equal(t, "channel", conf.DiscordChannelID())
				require.True(t, conf.AnnouncementsEnabled())
			})
		}
	})

	t.Run("production and staging fail when missing variables", func(t *testing.T) {
		clearOptional(t)
		for _, variable := range postgresVariables {
			t.Setenv(variable, "placeholder_value")
		}

		for _, env := range []environment{production, staging} {
			t.Run(string(env), func(t *testing.T) {
				t.Setenv("GAMENIGHT_ENVIRONMENT", string(env))

				for _, variable := range postgresVariables {
					t.Run(variable, func(t *testing.T) {
						t.Setenv(variable, "")

						_, err := config.ConfigFromEnv()
						require.ErrorIs(t, err, config.ErrMissingRequiredValue)
					})
				}
			})
		}
	})

	t.Run("mongo backend requires MONGO_URI", func(t *testing.T) {
		clearOptional(t)
		t.Setenv("GAMENIGHT_ENVIRONMENT", "production")
		t.Setenv("SENTRY_DSN", "dsn")
		t.Setenv("CLOUDSQL_UNIX_SOCKET", "")
		t.Setenv("DB_USERNAME", "")
		t.Setenv("DB_PASSWORD", "")
		t.Setenv("DB_BACKEND", "mongo")

		_, err := config.ConfigFromEnv()
		require.ErrorIs(t, err, config.ErrMissingRequiredValue)

		t.Setenv("MONGO_URI", "mongodb://localhost:27017")
		conf, err := config.ConfigFromEnv()
		require.NoError(t, err)
		require.Equal(t, config.DBBackendMongo, conf.DBBackend())
		require.Equal(t, "mongodb://localhost:27017", conf.MongoURI())
	})

	t.Run("memory backend is only allowed in development", func(t *testing.T) {
		clearOptional(t)
		t.Setenv("DB_BACKEND", "memory")

		t.Setenv("GAMENIGHT_ENVIRONMENT", "development")
		conf, err := config.ConfigFromEnv()
		require.NoError(t, err)
		require.Equal(t, config.DBBackendMemory, conf.DBBackend())

		for _, variable := range postgresVariables {
			t.Setenv(variable, "placeholder_value")
		}
		t.Setenv("GAMENIGHT_ENVIRONMENT", "production")
		_, err = config.ConfigFromEnv()
		require.ErrorIs(t, err, config.ErrInvalidValue)
	})

	t.Run("invalid values", func(t *testing.T) {
		tests := []struct {
			variable string
			value    string
		}{
			{variable: "GAMENIGHT_ENVIRONMENT", value: "invalid"},
			{variable: "GAMENIGHT_ENVIRONMENT", value: ""},
			{variable: "DB_BACKEND", value: "sqlite"},
			{variable: "TEAM_CAPACITY", value: "0"},
			{variable: "TEAM_CAPACITY", value: "seven"},
			{variable: "OPERATION_TIMEOUT", value: "10"},
			{variable: "OPERATION_TIMEOUT", value: "-1s"},
			{variable: "AUTOSAVE_DELAY", value: "soon"},
			{variable: "WIN_CREDIT_POLICY", value: "everyone"},
			{variable: "ADMIN_EMAILS", value: "coach@example.com,not an email"},
		}
		for _, tt := range tests {
			t.Run(tt.variable+"="+tt.value, func(t *testing.T) {
				clearOptional(t)
				t.Setenv("GAMENIGHT_ENVIRONMENT", "development")
				t.Setenv(tt.variable, tt.value)

				_, err := config.ConfigFromEnv()
				require.ErrorIs(t, err, config.ErrInvalidValue)
			})
		}
	})

	t.Run("non sensitive string hides secrets", func(t *testing.T) {
		clearOptional(t)
		t.Setenv("GAMENIGHT_ENVIRONMENT", "development")
		t.Setenv("DB_PASSWORD", "hunter2")
		t.Setenv("DISCORD_BOT_TOKEN", "secret-token")

		conf, err := config.ConfigFromEnv()
		require.NoError(t, err)
		require.NotContains(t, conf.NonSensitiveString(), "hunter2")
		require.NotContains(t, conf.NonSensitiveString(), "secret-token")
	})
}
