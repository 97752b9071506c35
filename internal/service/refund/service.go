package refund

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/standpos/internal/domain"
	"github.com/kirinyoku/standpos/internal/repository"
	redisrepo "github.com/kirinyoku/standpos/internal/repository/redis"
	"github.com/kirinyoku/standpos/internal/service/notify"
	"github.com/kirinyoku/standpos/internal/uow"
)

type Config struct {
	Now func() time.Time
}

// Service reverses paid sales. Refunds never touch VIP balances: a tab keeps
// what was charged to it until it is settled.
type Service struct {
	notify *notify.Notifier
	uow    *uow.UoW
	cfg    Config
}

func New(store repository.Store, n *notify.Notifier, cfg Config) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		notify: n,
		uow:    uow.NewUoW(store),
		cfg:    cfg,
	}
}

// Full marks a paid sale as refunded. Its line items and total are kept,
// and it no longer counts towards revenue.
//
// Returns:
//   - error: refund.ErrSaleNotFound if no sale has this id.
//   - error: refund.ErrAlreadyRefunded if the sale was refunded before; nothing is written.
func (s *Service) Full(ctx context.Context, saleID int64) error {
	const op = "service.refund.Full"

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Tx,
		after func(uow.AfterCommit),
	) error {
		sale, err := s.lockPaid(ctx, tx, saleID)
		if err != nil {
			return err
		}

		if err := tx.Sales().UpdateStatus(ctx, saleID, domain.SaleRefunded); err != nil {
			return err
		}

		payload, err := json.Marshal(map[string]any{
			"status": domain.SaleRefunded,
			"total":  sale.Total,
		})
		if err != nil {
			return fmt.Errorf("encode void payload: %w", err)
		}

		if err := tx.Sales().AppendEvent(ctx, domain.SaleEvent{
			SaleID:     saleID,
			Kind:       domain.EventSaleVoided,
			Amount:     sale.Total,
			Payload:    payload,
			OccurredAt: s.cfg.Now(),
		}); err != nil {
			return err
		}

		after(func(ctx context.Context) {
			s.notify.LedgerChanged(ctx, redisrepo.ChangeSaleRefunded, saleID)
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, domain.Classify(err))
	}

	return nil
}

// Partial removes the line at lineIndex (0-based, current order) and
// recomputes the total. The sale stays paid even when no lines remain.
//
// Returns:
//   - error: refund.ErrSaleNotFound if no sale has this id.
//   - error: refund.ErrLineOutOfRange if lineIndex is not a current line.
//   - error: refund.ErrAlreadyRefunded if the sale was fully refunded.
func (s *Service) Partial(ctx context.Context, saleID int64, lineIndex int) error {
	const op = "service.refund.Partial"

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Tx,
		after func(uow.AfterCommit),
	) error {
		sale, err := s.lockPaid(ctx, tx, saleID)
		if err != nil {
			return err
		}

		if lineIndex < 0 || lineIndex >= len(sale.LineItems) {
			return fmt.Errorf("%w: index %d, sale has %d lines",
				ErrLineOutOfRange, lineIndex, len(sale.LineItems))
		}

		removed, err := sale.RemoveLine(lineIndex)
		if err != nil {
			return err
		}

		if err := sale.Verify(); err != nil {
			return err
		}

		if err := tx.Sales().UpdateLines(ctx, saleID, sale.LineItems, sale.Total); err != nil {
			return err
		}

		payload, err := json.Marshal(map[string]any{
			"line_index": lineIndex,
			"line":       removed,
			"new_total":  sale.Total,
		})
		if err != nil {
			return fmt.Errorf("encode line removal payload: %w", err)
		}

		if err := tx.Sales().AppendEvent(ctx, domain.SaleEvent{
			SaleID:     saleID,
			Kind:       domain.EventLineRemoved,
			Amount:     removed.LineTotal(),
			Payload:    payload,
			OccurredAt: s.cfg.Now(),
		}); err != nil {
			return err
		}

		after(func(ctx context.Context) {
			s.notify.LedgerChanged(ctx, redisrepo.ChangeSaleRefunded, saleID)
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, domain.Classify(err))
	}

	return nil
}

func (s *Service) lockPaid(ctx context.Context, tx repository.Tx, saleID int64) (*domain.Sale, error) {
	sale, err := tx.Sales().GetForUpdate(ctx, saleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}

	if !sale.IsPaid() {
		return nil, ErrAlreadyRefunded
	}

	return sale, nil
}
