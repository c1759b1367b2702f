package cli

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/streakbot/internal/config"
	"github.com/roach88/streakbot/internal/groupme"
	"github.com/roach88/streakbot/internal/run"
	"github.com/roach88/streakbot/internal/store"
)

// Chat is the GroupMe surface the commands use.
type Chat interface {
	run.Chat
	RawRoster(ctx context.Context) (json.RawMessage, error)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func (o *RootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{Path: o.ConfigPath, EnvFile: o.EnvFile})
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// logger installs and returns a text logger on w. Debug logging is on
// with --verbose and outside prod.
func (o *RootOptions) logger(w io.Writer, cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose || cfg.Environment != config.EnvProd {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	return log
}

func (o *RootOptions) chat(cfg config.Config, log *slog.Logger) Chat {
	if o.NewChat != nil {
		return o.NewChat(cfg, log)
	}
	return groupme.New(groupme.Options{
		BaseURL: cfg.GroupMe.BaseURL,
		Token:   cfg.GroupMe.Token,
		GroupID: cfg.GroupMe.GroupID,
		Limit:   cfg.GroupMe.MessageLimit,
		Retry: groupme.RetryPolicy{
			Attempts: cfg.Retry.Attempts,
			Delay:    cfg.Retry.Delay,
		},
		Logger: log,
	})
}

func (o *RootOptions) openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if o.OpenStore != nil {
		return o.OpenStore(ctx, cfg)
	}
	return store.Open(ctx, store.Options{
		Backend:  cfg.Store.Backend,
		Path:     cfg.Store.Path,
		DSN:      cfg.Store.DSN,
		Addr:     cfg.Store.Addr,
		Password: cfg.Store.Password,
		DB:       cfg.Store.DB,
		Key:      cfg.Store.Key,
	})
}

func (o *RootOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
