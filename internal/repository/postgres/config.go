package postgresrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/standpos/internal/domain"
	"github.com/kirinyoku/standpos/internal/repository"
)

// ConfigRepo reads and writes the single event_config row (id = 1).
type ConfigRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *ConfigRepo) With(db DB) *ConfigRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ConfigRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *ConfigRepo) Get(ctx context.Context) (domain.EventConfig, error) {
	const op = "postgresrepo.ConfigRepo.Get"

	var (
		cfg      domain.EventConfig
		fixed    []byte
		seasonal []byte
	)

	if err := r.handle().QueryRow(ctx,
		`SELECT starting_cash_float, fixed_flavors, seasonal_flavors
		 FROM event_config WHERE id = 1`,
	).Scan(&cfg.StartingCashFloat, &fixed, &seasonal); err != nil {
		return domain.EventConfig{}, wrapDBErr(op, err)
	}

	if err := json.Unmarshal(fixed, &cfg.FixedFlavors); err != nil {
		return domain.EventConfig{}, fmt.Errorf("%s: decode fixed flavors: %w", op, err)
	}
	if err := json.Unmarshal(seasonal, &cfg.SeasonalFlavors); err != nil {
		return domain.EventConfig{}, fmt.Errorf("%s: decode seasonal flavors: %w", op, err)
	}

	return cfg, nil
}

// Save replaces the whole configuration.
func (r *ConfigRepo) Save(ctx context.Context, cfg domain.EventConfig) error {
	const op = "postgresrepo.ConfigRepo.Save"

	fixed, err := json.Marshal(nonNil(cfg.FixedFlavors))
	if err != nil {
		return fmt.Errorf("%s: encode fixed flavors: %w", op, err)
	}
	seasonal, err := json.Marshal(nonNil(cfg.SeasonalFlavors))
	if err != nil {
		return fmt.Errorf("%s: encode seasonal flavors: %w", op, err)
	}

	tag, err := r.handle().Exec(ctx,
		`UPDATE event_config
		 SET starting_cash_float = $1, fixed_flavors = $2, seasonal_flavors = $3, updated_at = now()
		 WHERE id = 1`,
		cfg.StartingCashFloat, fixed, seasonal,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func nonNil(f []domain.Flavor) []domain.Flavor {
	if f == nil {
		return []domain.Flavor{}
	}
	return f
}
