package vip

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

type Service struct {
	store  repository.Store
	notify *notify.Notifier
	uow    *uow.UoW
	cfg    Config
}

func New(store repository.Store, n *notify.Notifier, cfg Config) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		store:  store,
		notify: n,
		uow:    uow.NewUoW(store),
		cfg:    cfg,
	}
}

// List returns every VIP tab ordered by name.
func (s *Service) List(ctx context.Context) ([]domain.VipAccount, error) {
	const op = "service.vip.List"

	vips, err := s.store.Vips().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
	}

	return vips, nil
}

// Settle records that a VIP paid their tab and sets the balance to zero.
// The settlement is not a sale: the VIP sales were counted when finalized.
//
// Parameters:
//   - ctx: request-scoped context.
//   - name: VIP account name.
//   - method: how the tab was paid; pix, card or cash.
//
// Returns:
//   - domain.VipSettlement: the stored settlement with the amount that was owed.
//   - error: vip.ErrVipNotFound if there is no such account.
//   - error: vip.ErrNothingToSettle if the balance is already zero.
func (s *Service) Settle(
	ctx context.Context,
	name string,
	method domain.PaymentMethod,
) (domain.VipSettlement, error) {
	const op = "service.vip.Settle"

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.VipSettlement{}, fmt.Errorf("%s: %w", op,
			domain.Invalid("name", "must not be blank"))
	}

	switch method {
	case domain.PaymentPix, domain.PaymentCard, domain.PaymentCash:
	default:
		return domain.VipSettlement{}, fmt.Errorf("%s: %w", op,
			domain.Invalid("payment_method", fmt.Sprintf("cannot settle with %q", method)))
	}

	var settlement domain.VipSettlement

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Tx,
		after func(uow.AfterCommit),
	) error {
		acc, err := tx.Vips().GetForUpdate(ctx, name)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrVipNotFound
			}
			return err
		}

		if !acc.AccumulatedTotal.IsPositive() {
			return ErrNothingToSettle
		}

		settlement = domain.VipSettlement{
			VipName:   acc.Name,
			Amount:    acc.AccumulatedTotal,
			Method:    method,
			SettledAt: s.cfg.Now(),
		}

		id, err := tx.Vips().Settle(ctx, settlement)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrVipNotFound
			}
			return err
		}
		settlement.ID = id

		after(func(ctx context.Context) {
			s.notify.LedgerChanged(ctx, redisrepo.ChangeVipSettled, 0)
		})

		return nil
	})
	if err != nil {
		return domain.VipSettlement{}, fmt.Errorf("%s: %w", op, domain.Classify(err))
	}

	return settlement, nil
}
