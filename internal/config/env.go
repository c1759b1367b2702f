package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Environment variable names. The GROUPME_* and STREAKS_FILENAME names are
// the ones existing deployments already set.
const (
	EnvEnvironment     = "ENVIRONMENT"
	EnvToken           = "GROUPME_ACCESS_TOKEN"
	EnvGroupID         = "GROUPME_GROUP_ID"
	EnvBaseURL         = "GROUPME_BASE_URL"
	EnvCheckinChannels = "GROUPME_CHECKIN_CHANNELS"
	EnvSubgroupTAWG1   = "GROUPME_SUBGROUP_ID_TAWG1"
	EnvSubgroupTAWG2   = "GROUPME_SUBGROUP_ID_TAWG2"
	EnvSubgroupCheckin = "GROUPME_SUBGROUP_ID_CHECKINS"
	EnvSubgroupStreaks = "GROUPME_SUBGROUP_ID_STREAKS"
	EnvMessageLimit    = "GROUPME_MESSAGE_LIMIT"
	EnvStreaksFilename = "STREAKS_FILENAME"
	EnvStoreBackend    = "STREAKBOT_STORE"
	EnvStorePath       = "STREAKBOT_STORE_PATH"
	EnvDatabaseURL     = "DATABASE_URL"
	EnvRedisAddr       = "REDIS_ADDR"
	EnvRedisPassword   = "REDIS_PASSWORD"
	EnvRedisDB         = "REDIS_DB"
	EnvRedisKey        = "REDIS_KEY"
	EnvRetryAttempts   = "STREAKBOT_RETRY_ATTEMPTS"
	EnvRetryDelay      = "STREAKBOT_RETRY_DELAY"
	EnvTimezone        = "STREAKBOT_TIMEZONE"
	EnvDayStartHour    = "STREAKBOT_DAY_START_HOUR"
	EnvTitle           = "STREAKBOT_TITLE"
)

type lookupFunc func(string) (string, bool)

// applyEnv overrides cfg with any variables that are set.
func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = n
		return nil
	}

	str(EnvEnvironment, &cfg.Environment)
	str(EnvToken, &cfg.GroupMe.Token)
	str(EnvGroupID, &cfg.GroupMe.GroupID)
	str(EnvBaseURL, &cfg.GroupMe.BaseURL)
	str(EnvSubgroupStreaks, &cfg.GroupMe.StreaksChannel)

	if channels, ok := envChannels(lookup); ok {
		cfg.GroupMe.CheckinChannels = channels
	}

	str(EnvStoreBackend, &cfg.Store.Backend)
	str(EnvStreaksFilename, &cfg.Store.Path)
	str(EnvStorePath, &cfg.Store.Path)
	str(EnvDatabaseURL, &cfg.Store.DSN)
	str(EnvRedisAddr, &cfg.Store.Addr)
	str(EnvRedisPassword, &cfg.Store.Password)
	str(EnvRedisKey, &cfg.Store.Key)

	str(EnvTimezone, &cfg.Schedule.Timezone)
	str(EnvTitle, &cfg.Schedule.Title)

	for name, dst := range map[string]*int{
		EnvMessageLimit:  &cfg.GroupMe.MessageLimit,
		EnvRedisDB:       &cfg.Store.DB,
		EnvRetryAttempts: &cfg.Retry.Attempts,
		EnvDayStartHour:  &cfg.Schedule.DayStartHour,
	} {
		if err := num(name, dst); err != nil {
			return fmt.Errorf("parse environment: %w", err)
		}
	}

	if v, ok := lookup(EnvRetryDelay); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse environment: %s: %w", EnvRetryDelay, err)
		}
		cfg.Retry.Delay = d
	}
	return nil
}

// envChannels reads the check-in channel list. GROUPME_CHECKIN_CHANNELS
// ("id:Name,id:Name") wins over the per-subgroup variables.
func envChannels(lookup lookupFunc) ([]Channel, bool) {
	if v, ok := lookup(EnvCheckinChannels); ok {
		return parseChannels(v), true
	}

	var channels []Channel
	for _, sub := range []struct{ env, name string }{
		{EnvSubgroupTAWG1, "TAWG 1"},
		{EnvSubgroupTAWG2, "TAWG 2"},
		{EnvSubgroupCheckin, "Check-ins"},
	} {
		if id, ok := lookup(sub.env); ok && id != "" {
			channels = append(channels, Channel{ID: id, Name: sub.name})
		}
	}
	return channels, len(channels) > 0
}

// parseChannels parses "id:Name,id:Name". A bare id gets no name.
func parseChannels(s string) []Channel {
	var channels []Channel
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, name, _ := strings.Cut(part, ":")
		channels = append(channels, Channel{ID: strings.TrimSpace(id), Name: strings.TrimSpace(name)})
	}
	return channels
}
