package postgresrepo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/standpos/internal/repository"
)

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type Store struct {
	pool *pgxpool.Pool
}

var _ repository.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
	}
}

func (s *Store) RunTx(
	ctx context.Context,
	opts *pgx.TxOptions,
	fn func(ctx context.Context, tx DB) error,
) error {
	txOpts := pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	}

	if opts != nil {
		txOpts.IsoLevel = opts.IsoLevel
		txOpts.AccessMode = opts.AccessMode
		txOpts.DeferrableMode = opts.DeferrableMode
	}

	tx, err := s.pool.BeginTx(ctx, txOpts)
	if err != nil {
		return wrapDBErr("postgresrepo.Store.RunTx: begin", err)
	}

	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return wrapDBErr("postgresrepo.Store.RunTx: commit", err)
	}

	return nil
}

// unitOfWork is the isolation of every InTx call. Writes that race take row
// locks (SELECT ... FOR UPDATE, the VIP upsert) and queue instead of failing.
var unitOfWork = pgx.TxOptions{
	IsoLevel:   pgx.ReadCommitted,
	AccessMode: pgx.ReadWrite,
}

// InTx runs fn in a read-committed read-write transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	return s.RunTx(ctx, &unitOfWork, func(ctx context.Context, db DB) error {
		return fn(ctx, txScope{db: db, store: s})
	})
}

func (s *Store) Sales() repository.Sales         { return &SaleRepo{pool: s.pool} }
func (s *Store) Vips() repository.Vips           { return &VipRepo{pool: s.pool} }
func (s *Store) Config() repository.EventConfigs { return &ConfigRepo{pool: s.pool} }

type txScope struct {
	db    DB
	store *Store
}

func (t txScope) Sales() repository.Sales {
	return (&SaleRepo{pool: t.store.pool}).With(t.db)
}

func (t txScope) Vips() repository.Vips {
	return (&VipRepo{pool: t.store.pool}).With(t.db)
}

func (t txScope) Config() repository.EventConfigs {
	return (&ConfigRepo{pool: t.store.pool}).With(t.db)
}
