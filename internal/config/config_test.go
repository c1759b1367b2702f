package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validBase is a complete configuration that passes the schema.
func validBase() Config {
	cfg := Default()
	cfg.GroupMe.Token = "tok"
	cfg.GroupMe.GroupID = "g1"
	cfg.GroupMe.StreaksChannel = "s1"
	cfg.GroupMe.CheckinChannels = []Channel{{ID: "c1", Name: "TAWG 1"}}
	return cfg
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// clearEnv unsets every variable Load reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		EnvEnvironment, EnvToken, EnvGroupID, EnvBaseURL, EnvCheckinChannels,
		EnvSubgroupTAWG1, EnvSubgroupTAWG2, EnvSubgroupCheckin, EnvSubgroupStreaks,
		EnvMessageLimit, EnvStreaksFilename, EnvStoreBackend, EnvStorePath,
		EnvDatabaseURL, EnvRedisAddr, EnvRedisPassword, EnvRedisDB, EnvRedisKey,
		EnvRetryAttempts, EnvRetryDelay, EnvTimezone, EnvDayStartHour, EnvTitle,
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestValidate_Defaults(t *testing.T) {
	err := Default().Validate()
	require.Error(t, err, "defaults lack credentials")
	assert.Contains(t, err.Error(), "invalid config")
}

func TestValidate_Complete(t *testing.T) {
	require.NoError(t, validBase().Validate())
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown environment", func(c *Config) { c.Environment = "staging" }, "environment"},
		{"no channels", func(c *Config) { c.GroupMe.CheckinChannels = []Channel{} }, "checkin_channels"},
		{"channel without id", func(c *Config) { c.GroupMe.CheckinChannels = []Channel{{Name: "x"}} }, "id"},
		{"limit too large", func(c *Config) { c.GroupMe.MessageLimit = 500 }, "message_limit"},
		{"zero attempts", func(c *Config) { c.Retry.Attempts = 0 }, "attempts"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "mongo" }, "backend"},
		{"postgres without dsn", func(c *Config) { c.Store.Backend = "postgres" }, "dsn"},
		{"redis without addr", func(c *Config) { c.Store.Backend = "redis" }, "addr"},
		{"file without path", func(c *Config) { c.Store.Path = "" }, "path"},
		{"hour out of range", func(c *Config) { c.Schedule.DayStartHour = 24 }, "day_start_hour"},
		{"bad base url", func(c *Config) { c.GroupMe.BaseURL = "api.groupme.com" }, "base_url"},
		{"unknown timezone", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }, "timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBase()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDryRun(t *testing.T) {
	cfg := validBase()
	assert.True(t, cfg.DryRun())

	cfg.Environment = EnvTest
	assert.True(t, cfg.DryRun())

	cfg.Environment = EnvProd
	assert.False(t, cfg.DryRun())
}

func TestRedacted(t *testing.T) {
	cfg := validBase()
	cfg.Store.DSN = "postgres://user:pw@host/db"
	cfg.Store.Password = "pw"

	red := cfg.Redacted()
	assert.Equal(t, "REDACTED", red.GroupMe.Token)
	assert.Equal(t, "REDACTED", red.Store.DSN)
	assert.Equal(t, "REDACTED", red.Store.Password)
	assert.Equal(t, "tok", cfg.GroupMe.Token, "original untouched")

	red.GroupMe.CheckinChannels[0].ID = "changed"
	assert.Equal(t, "c1", cfg.GroupMe.CheckinChannels[0].ID)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvEnvironment, "prod")
	t.Setenv(EnvToken, "tok")
	t.Setenv(EnvGroupID, "g1")
	t.Setenv(EnvSubgroupTAWG1, "c1")
	t.Setenv(EnvSubgroupTAWG2, "c2")
	t.Setenv(EnvSubgroupStreaks, "s1")
	t.Setenv(EnvStreaksFilename, "data/streaks.json")
	t.Setenv(EnvRetryDelay, "250ms")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.False(t, cfg.DryRun())
	assert.Equal(t, []Channel{{ID: "c1", Name: "TAWG 1"}, {ID: "c2", Name: "TAWG 2"}}, cfg.GroupMe.CheckinChannels)
	assert.Equal(t, "s1", cfg.GroupMe.StreaksChannel)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, "data/streaks.json", cfg.Store.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.Delay)
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, "America/New_York", cfg.Schedule.Timezone)
}

func TestLoad_ChannelListWins(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvToken, "tok")
	t.Setenv(EnvGroupID, "g1")
	t.Setenv(EnvSubgroupStreaks, "s1")
	t.Setenv(EnvSubgroupTAWG1, "ignored")
	t.Setenv(EnvCheckinChannels, "c1:Morning, c2 ,")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []Channel{{ID: "c1", Name: "Morning"}, {ID: "c2"}}, cfg.GroupMe.CheckinChannels)
	assert.Equal(t, "c2", cfg.GroupMe.CheckinChannels[1].Label())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "streakbot.yaml", `
environment: test
groupme:
  token: file-token
  group_id: g1
  streaks_channel: s1
  checkin_channels:
    - id: c1
      name: Early
retry:
  attempts: 5
  delay: 1s
store:
  backend: redis
  addr: localhost:6379
schedule:
  title: Reading Streaks
`)
	t.Setenv(EnvToken, "env-token")

	cfg, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)

	assert.Equal(t, EnvTest, cfg.Environment)
	assert.Equal(t, "env-token", cfg.GroupMe.Token, "environment overrides file")
	assert.Equal(t, 5, cfg.Retry.Attempts)
	assert.Equal(t, time.Second, cfg.Retry.Delay)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "streaks", cfg.Store.Key, "default survives partial section")
	assert.Equal(t, "Reading Streaks", cfg.Schedule.Title)
	assert.Equal(t, 5, cfg.Schedule.DayStartHour)
}

func TestLoad_YAMLUnknownField(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "streakbot.yaml", "groupme:\n  tokn: oops\n")

	_, err := Load(LoadOptions{Path: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoad_MissingYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(LoadOptions{Path: filepath.Join(t.TempDir(), "nope.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	envFile := writeFile(t, ".env", `
GROUPME_ACCESS_TOKEN=dotenv-token
GROUPME_GROUP_ID=g1
GROUPME_SUBGROUP_ID_CHECKINS=c9
GROUPME_SUBGROUP_ID_STREAKS=s1
`)
	cfg, err := Load(LoadOptions{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "dotenv-token", cfg.GroupMe.Token)
	assert.Equal(t, []Channel{{ID: "c9", Name: "Check-ins"}}, cfg.GroupMe.CheckinChannels)

	// godotenv sets real process variables; clean them up.
	for _, name := range []string{EnvToken, EnvGroupID, EnvSubgroupCheckin, EnvSubgroupStreaks} {
		os.Unsetenv(name)
	}
}

func TestLoad_MissingEnvFileIsFine(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvToken, "tok")
	t.Setenv(EnvGroupID, "g1")
	t.Setenv(EnvSubgroupTAWG1, "c1")
	t.Setenv(EnvSubgroupStreaks, "s1")

	_, err := Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), ".env")})
	assert.NoError(t, err)
}

func TestLoad_BadNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvRedisDB, "zero")

	_, err := Load(LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvRedisDB)
}

func TestApplyEnv_EmptyChannelListClears(t *testing.T) {
	cfg := validBase()
	env := map[string]string{EnvCheckinChannels: ""}
	require.NoError(t, applyEnv(&cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))
	assert.Empty(t, cfg.GroupMe.CheckinChannels)
}
