package journal

import (
	"context"
	"encoding/json"
	"log"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/types"
)

// Store persists what the drone did and what it saw.
type Store interface {
	LogAction(ctx context.Context, action types.ActionRecorded) error
	LogObservation(ctx context.Context, obs types.ObservationRecorded) error
}

// execer is the part of pgxpool.Pool the store needs.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresStore struct {
	db execer
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: pool}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS actions (
            id SERIAL PRIMARY KEY,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            action_type TEXT NOT NULL,
            x INTEGER NOT NULL,
            y INTEGER NOT NULL,
            kg DOUBLE PRECISION,
            notes TEXT
        )`,
		`CREATE TABLE IF NOT EXISTS observations (
            id SERIAL PRIMARY KEY,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            x INTEGER NOT NULL,
            y INTEGER NOT NULL,
            lat DOUBLE PRECISION NOT NULL,
            lon DOUBLE PRECISION NOT NULL,
            features JSONB NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS observations_cell_idx ON observations (x, y)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to ensure journal schema")
		}
	}
	return nil
}

func (s *PostgresStore) LogAction(ctx context.Context, action types.ActionRecorded) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO actions (action_type, x, y, kg, notes) VALUES ($1, $2, $3, $4, $5)`,
		action.Type, action.Cell.X, action.Cell.Y, action.Kg, action.Notes,
	)
	return errors.WithMessagef(err, "could not log %s action", action.Type)
}

func (s *PostgresStore) LogObservation(ctx context.Context, obs types.ObservationRecorded) error {
	features, err := json.Marshal(obs.Features)
	if err != nil {
		return errors.Wrap(err, "could not marshal features")
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO observations (x, y, lat, lon, features) VALUES ($1, $2, $3, $4, $5)`,
		obs.Cell.X, obs.Cell.Y, obs.Geo.Lat, obs.Geo.Lon, features,
	)
	return errors.WithMessagef(err, "could not log observation at %dx%d", obs.Cell.X, obs.Cell.Y)
}

type logStore struct{}

// NewLogStore only writes to the process log. Used when no database is
// configured.
func NewLogStore() Store {
	return logStore{}
}

func (logStore) LogAction(ctx context.Context, action types.ActionRecorded) error {
	kg := "-"
	if action.Kg != nil {
		kg = strconv.FormatFloat(*action.Kg, 'g', -1, 64)
	}
	log.Printf("Journal: action %s at %dx%d kg=%s notes=%q", action.Type, action.Cell.X, action.Cell.Y, kg, action.Notes)
	return nil
}

func (logStore) LogObservation(ctx context.Context, obs types.ObservationRecorded) error {
	b, _ := json.Marshal(obs.Features)
	log.Printf("Journal: observation at %dx%d: %s", obs.Cell.X, obs.Cell.Y, string(b))
	return nil
}
