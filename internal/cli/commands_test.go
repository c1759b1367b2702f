package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/streakbot/internal/checkin"
	"github.com/roach88/streakbot/internal/config"
	"github.com/roach88/streakbot/internal/run"
	"github.com/roach88/streakbot/internal/store"
	"github.com/roach88/streakbot/internal/testutil"
)

const testConfigYAML = `
environment: prod
groupme:
  token: tok
  group_id: g1
  streaks_channel: s1
  checkin_channels:
    - id: c1
      name: TAWG 1
`

type harness struct {
	chat   *testutil.FakeChat
	store  *testutil.MemoryStore
	opts   *RootOptions
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, yaml string) *harness {
	t.Helper()
	for _, name := range []string{
		config.EnvEnvironment, config.EnvToken, config.EnvGroupID, config.EnvCheckinChannels,
		config.EnvSubgroupTAWG1, config.EnvSubgroupTAWG2, config.EnvSubgroupCheckin,
		config.EnvSubgroupStreaks, config.EnvStoreBackend, config.EnvStreaksFilename, config.EnvStorePath,
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}

	path := filepath.Join(t.TempDir(), "streakbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	log := testutil.NewCallLog()
	h := &harness{
		chat:   testutil.NewFakeChat(log, checkin.Member{ID: "u1", Name: "Amy"}, checkin.Member{ID: "u2", Name: "Bo"}),
		store:  testutil.NewMemoryStore(log, map[string]int{"u1": 2}),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	h.opts = &RootOptions{
		ConfigPath: path,
		NewChat:    func(config.Config, *slog.Logger) Chat { return h.chat },
		OpenStore: func(context.Context, config.Config) (store.Store, error) {
			return h.store, nil
		},
		Now: func() time.Time { return time.Date(2025, 7, 19, 10, 0, 0, 0, loc) },
	}
	return h
}

func (h *harness) execute(args ...string) error {
	cmd := NewRootCommandWithOptions(h.opts)
	cmd.SetOut(h.stdout)
	cmd.SetErr(h.stderr)
	cmd.SetArgs(append(args, "--env-file", ""))
	return cmd.Execute()
}

func TestRun_PostsLeaderboard(t *testing.T) {
	h := newHarness(t, testConfigYAML)
	h.chat.SetMessages("c1", checkin.Message{MemberID: "u2", Text: "1) done"})

	require.NoError(t, h.execute("run"))

	want := "TAWG Streaks for July 18, 2025:\n1 - Bo\n-1 - Amy"
	assert.Equal(t, want+"\n", h.stdout.String())
	assert.Equal(t, []testutil.Post{{ChannelID: "s1", Text: want}}, h.chat.Posts())
	assert.Equal(t, map[string]int{"u1": -1, "u2": 1}, h.store.Snapshot())
}

func TestRun_DryRunFlag(t *testing.T) {
	h := newHarness(t, testConfigYAML)
	h.chat.SetMessages("c1", checkin.Message{MemberID: "u1", Text: "1) done"})

	require.NoError(t, h.execute("run", "--dry-run", "-v"))

	assert.Equal(t, "TAWG Streaks for July 18, 2025:\n3 - Amy\n-1 - Bo\n", h.stdout.String())
	assert.Contains(t, h.stderr.String(), "dry run")
	assert.Empty(t, h.chat.Posts())
	assert.Equal(t, map[string]int{"u1": 2}, h.store.Snapshot())
}

func TestRun_JSONReport(t *testing.T) {
	h := newHarness(t, testConfigYAML)

	require.NoError(t, h.execute("run", "--format", "json"))

	var resp struct {
		Status string     `json:"status"`
		Data   run.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "July 18, 2025", resp.Data.Day)
	assert.True(t, resp.Data.Persisted)
	assert.True(t, resp.Data.Posted)
	assert.Len(t, resp.Data.Leaderboard, 2)
}

func TestRun_PublishFailure(t *testing.T) {
	h := newHarness(t, testConfigYAML)
	h.chat.PostErr = errors.New("groupme down")

	err := h.execute("run", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, run.Persisted(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PUBLISH_FAILED", resp.Error.Code)
	assert.Equal(t, map[string]any{"stage": "post leaderboard", "persisted": true}, resp.Error.Details)
}

func TestRun_ConfigError(t *testing.T) {
	h := newHarness(t, "environment: prod\n")

	err := h.execute("run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, h.stderr.String(), "Error [CONFIG]")
	assert.Empty(t, h.chat.Posts())
}

func TestRun_StoreError(t *testing.T) {
	h := newHarness(t, testConfigYAML)
	h.opts.OpenStore = func(context.Context, config.Config) (store.Store, error) {
		return nil, errors.New("connection refused")
	}

	err := h.execute("run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, h.stderr.String(), "Error [STORE]")
}

func TestShow(t *testing.T) {
	h := newHarness(t, testConfigYAML)

	require.NoError(t, h.execute("show"))

	assert.Equal(t, "TAWG Streaks for July 18, 2025:\n2 - Amy\n0 - Bo\n", h.stdout.String())
	assert.Empty(t, h.chat.Posts())
	assert.Equal(t, 0, h.store.Writes())
}

func TestShow_EmptyRoster(t *testing.T) {
	h := newHarness(t, testConfigYAML)
	h.chat.Members = nil

	err := h.execute("show")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, h.stderr.String(), "EMPTY_ROSTER")
}

func TestDump(t *testing.T) {
	h := newHarness(t, testConfigYAML)
	dir := t.TempDir()

	require.NoError(t, h.execute("dump", "--out-dir", dir))

	path := filepath.Join(dir, "07-19-25_users.json")
	assert.Equal(t, path+"\n", h.stdout.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n            {\n                \"user_id\": \"u1\",")

	var doc struct {
		Response struct {
			Members []struct {
				UserID   string `json:"user_id"`
				Nickname string `json:"nickname"`
			} `json:"members"`
		} `json:"response"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Response.Members, 2)
	assert.Equal(t, "Bo", doc.Response.Members[1].Nickname)
}

func TestDump_MissingDir(t *testing.T) {
	h := newHarness(t, testConfigYAML)

	err := h.execute("dump", "--out-dir", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, h.stderr.String(), "Error [DUMP]")
}
