package postgresrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/standpos/internal/domain"
	"github.com/kirinyoku/standpos/internal/repository"
	"github.com/shopspring/decimal"
)

type VipRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *VipRepo) With(db DB) *VipRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *VipRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Accrue adds amount to the VIP's running tab, creating the account on first use.
// The upsert is a single statement, so concurrent accruals for one name
// serialize on the row and never lose an increment.
func (r *VipRepo) Accrue(ctx context.Context, name string, amount decimal.Decimal) error {
	const op = "postgresrepo.VipRepo.Accrue"

	if _, err := r.handle().Exec(ctx,
		`INSERT INTO vip_accounts(name, accumulated_total)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE
		 SET accumulated_total = vip_accounts.accumulated_total + EXCLUDED.accumulated_total,
		     updated_at = now()`,
		name, amount,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *VipRepo) Get(ctx context.Context, name string) (*domain.VipAccount, error) {
	const op = "postgresrepo.VipRepo.Get"

	var a domain.VipAccount
	if err := r.handle().QueryRow(ctx,
		`SELECT name, accumulated_total FROM vip_accounts WHERE name = $1`,
		name,
	).Scan(&a.Name, &a.AccumulatedTotal); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &a, nil
}

func (r *VipRepo) GetForUpdate(ctx context.Context, name string) (*domain.VipAccount, error) {
	const op = "postgresrepo.VipRepo.GetForUpdate"

	var a domain.VipAccount
	if err := r.handle().QueryRow(ctx,
		`SELECT name, accumulated_total FROM vip_accounts WHERE name = $1 FOR UPDATE`,
		name,
	).Scan(&a.Name, &a.AccumulatedTotal); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &a, nil
}

func (r *VipRepo) List(ctx context.Context) ([]domain.VipAccount, error) {
	const op = "postgresrepo.VipRepo.List"

	rows, err := r.handle().Query(ctx,
		`SELECT name, accumulated_total FROM vip_accounts ORDER BY name`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := []domain.VipAccount{}
	for rows.Next() {
		var a domain.VipAccount
		if err := rows.Scan(&a.Name, &a.AccumulatedTotal); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// Settle records s and zeroes the account balance.
//
// Returns:
//   - int64: the settlement ID.
//   - error: repository.ErrNotFound if the account does not exist.
func (r *VipRepo) Settle(ctx context.Context, s domain.VipSettlement) (int64, error) {
	const op = "postgresrepo.VipRepo.Settle"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE vip_accounts SET accumulated_total = 0, updated_at = now() WHERE name = $1`,
		s.VipName,
	)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return 0, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO vip_settlements(vip_name, amount, payment_method, settled_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		s.VipName, s.Amount, string(s.Method), s.SettledAt,
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

// DeleteAll removes every VIP account and settlement.
func (r *VipRepo) DeleteAll(ctx context.Context) error {
	const op = "postgresrepo.VipRepo.DeleteAll"

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM vip_settlements`)
	batch.Queue(`DELETE FROM vip_accounts`)
	if err := r.handle().SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}
