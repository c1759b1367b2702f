// Package postgres stores streak snapshots in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// streak is a row of the streaks table.
type streak struct {
	bun.BaseModel `bun:"table:streaks"`

	UserID string `bun:"user_id,pk"`
	Streak int    `bun:"streak,notnull,default:0"`
}

// Postgres provides storage in PostgreSQL.
type Postgres struct {
	bun *bun.DB
}

// Connect connects to the database and pings it to ensure the connection
// is working.
func Connect(ctx context.Context, connStr string) (*Postgres, error) {
	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())
	return &Postgres{
		bun: db,
	}, nil
}

// Migrate creates the streaks table if it does not exist.
func (pg *Postgres) Migrate(ctx context.Context) error {
	_, err := pg.bun.NewCreateTable().
		Model((*streak)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (pg *Postgres) Close() error {
	return pg.bun.Close()
}

// ReadStreaks returns all rows of the streaks table.
func (pg *Postgres) ReadStreaks(ctx context.Context) (map[string]int, error) {
	var rows []streak
	if err := pg.bun.NewSelect().Model(&rows).Order("user_id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.UserID] = r.Streak
	}
	return out, nil
}

// WriteStreaks upserts the batch in one transaction.
func (pg *Postgres) WriteStreaks(ctx context.Context, streaks map[string]int) error {
	if len(streaks) == 0 {
		return nil
	}

	rows := make([]streak, 0, len(streaks))
	for id, s := range streaks {
		rows = append(rows, streak{UserID: id, Streak: s})
	}

	err := pg.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&rows).
			On("CONFLICT (user_id) DO UPDATE").
			Set("streak = EXCLUDED.streak").
			Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}
