package postgresrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/standpos/internal/domain"
	"github.com/kirinyoku/standpos/internal/repository"
	"github.com/shopspring/decimal"
)

type SaleRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *SaleRepo) With(db DB) *SaleRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *SaleRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const saleColumns = `id, created_at, line_items, total, payment_method,
	change_given, COALESCE(vip_name, ''), status`

// Insert stores a new sale and returns its assigned ID.
//
// Returns:
//   - int64: the sale ID.
//   - error: wrapped storage error on failure.
func (r *SaleRepo) Insert(ctx context.Context, sale domain.Sale) (int64, error) {
	const op = "postgresrepo.SaleRepo.Insert"

	db := r.handle()

	items, err := json.Marshal(sale.LineItems)
	if err != nil {
		return 0, fmt.Errorf("%s: marshal line items: %w", op, err)
	}

	var vipName *string
	if sale.VipName != "" {
		vipName = &sale.VipName
	}

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO sales(created_at, line_items, total, payment_method, change_given, vip_name, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		sale.CreatedAt,
		items,
		sale.Total,
		string(sale.PaymentMethod),
		sale.ChangeGiven,
		vipName,
		string(sale.Status),
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

// Get retrieves a sale by its ID.
//
// Returns:
//   - error: repository.ErrNotFound if the sale does not exist.
func (r *SaleRepo) Get(ctx context.Context, id int64) (*domain.Sale, error) {
	const op = "postgresrepo.SaleRepo.Get"

	s, err := scanSale(r.handle().QueryRow(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return s, nil
}

// GetForUpdate retrieves a sale and locks its row for the rest of the transaction.
//
// Returns:
//   - error: repository.ErrNotFound if the sale does not exist.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Sale, error) {
	const op = "postgresrepo.SaleRepo.GetForUpdate"

	s, err := scanSale(r.handle().QueryRow(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return s, nil
}

func (r *SaleRepo) List(ctx context.Context) ([]domain.Sale, error) {
	const op = "postgresrepo.SaleRepo.List"

	rows, err := r.handle().Query(ctx,
		`SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := []domain.Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *SaleRepo) UpdateLines(
	ctx context.Context,
	id int64,
	lines []domain.CartLine,
	total decimal.Decimal,
) error {
	const op = "postgresrepo.SaleRepo.UpdateLines"

	items, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("%s: marshal line items: %w", op, err)
	}

	tag, err := r.handle().Exec(ctx,
		`UPDATE sales SET line_items = $2, total = $3 WHERE id = $1`,
		id, items, total,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *SaleRepo) UpdateStatus(ctx context.Context, id int64, status domain.SaleStatus) error {
	const op = "postgresrepo.SaleRepo.UpdateStatus"

	tag, err := r.handle().Exec(ctx,
		`UPDATE sales SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *SaleRepo) AppendEvent(ctx context.Context, ev domain.SaleEvent) error {
	const op = "postgresrepo.SaleRepo.AppendEvent"

	payload := ev.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	if _, err := r.handle().Exec(ctx,
		`INSERT INTO sale_events(sale_id, kind, amount, payload, occurred_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		ev.SaleID, string(ev.Kind), ev.Amount, []byte(payload), ev.OccurredAt,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *SaleRepo) ListEvents(ctx context.Context, saleID int64) ([]domain.SaleEvent, error) {
	const op = "postgresrepo.SaleRepo.ListEvents"

	rows, err := r.handle().Query(ctx,
		`SELECT id, sale_id, kind, amount, payload, occurred_at
		 FROM sale_events
		 WHERE sale_id = $1
		 ORDER BY id`,
		saleID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := []domain.SaleEvent{}
	for rows.Next() {
		var (
			ev      domain.SaleEvent
			kind    string
			payload []byte
		)
		if err := rows.Scan(&ev.ID, &ev.SaleID, &kind, &ev.Amount, &payload, &ev.OccurredAt); err != nil {
			return nil, wrapDBErr(op, err)
		}
		ev.Kind = domain.SaleEventKind(kind)
		ev.Payload = json.RawMessage(payload)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// DeleteAll removes every sale together with its audit events.
func (r *SaleRepo) DeleteAll(ctx context.Context) error {
	const op = "postgresrepo.SaleRepo.DeleteAll"

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM sale_events`)
	batch.Queue(`DELETE FROM sales`)
	if err := r.handle().SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func scanSale(row pgx.Row) (*domain.Sale, error) {
	var (
		s      domain.Sale
		items  []byte
		method string
		status string
	)

	if err := row.Scan(
		&s.ID,
		&s.CreatedAt,
		&items,
		&s.Total,
		&method,
		&s.ChangeGiven,
		&s.VipName,
		&status,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &s.LineItems); err != nil {
		return nil, fmt.Errorf("decode line items of sale %d: %w", s.ID, err)
	}

	s.PaymentMethod = domain.PaymentMethod(method)
	s.Status = domain.SaleStatus(status)

	return &s, nil
}
