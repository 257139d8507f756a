package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"crypto-weather/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createSettingsTable = `
CREATE TABLE IF NOT EXISTS settings (
    key        TEXT        PRIMARY KEY,
    value      JSONB       NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const preferencesKey = "preferences"

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SettingsRepository persists the user preference set as a single JSONB
// row. Missing fields in a stored row fall back to the defaults, so old
// rows survive new preference fields.
type SettingsRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewSettingsRepository(pool PgxPool, tracer trace.Tracer) *SettingsRepository {
	return &SettingsRepository{pool: pool, tracer: tracer}
}

func (r *SettingsRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "settings-repo.run-migrations")
	defer span.End()

	if _, err := r.pool.Exec(ctx, createSettingsTable); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, createConversationTable)
	return err
}

// Load reads the stored preference set, merged over the defaults. A
// missing row is not an error: the defaults come back as-is.
func (r *SettingsRepository) Load(ctx context.Context) (domain.Settings, error) {
	_, span := r.tracer.Start(ctx, "settings-repo.load")
	defer span.End()

	settings := domain.DefaultSettings()

	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT value FROM settings WHERE key = $1`, preferencesKey,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("load settings: %w", err)
	}

	if err := json.Unmarshal(raw, &settings); err != nil {
		return domain.DefaultSettings(), fmt.Errorf("decode settings: %w", err)
	}
	if !settings.APITier.IsValid() {
		settings.APITier = domain.TierDemo
	}
	if len(settings.TrackedAssets) == 0 {
		settings.TrackedAssets = append([]string(nil), domain.DefaultTrackedAssets...)
	}
	if settings.UpdateIntervalMins <= 0 {
		settings.UpdateIntervalMins = domain.DefaultSettings().UpdateIntervalMins
	}
	return settings, nil
}

// Save upserts the preference set.
func (r *SettingsRepository) Save(ctx context.Context, settings domain.Settings) error {
	_, span := r.tracer.Start(ctx, "settings-repo.save")
	defer span.End()

	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		preferencesKey, raw,
	)
	return err
}
