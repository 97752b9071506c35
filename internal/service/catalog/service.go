package catalog

import (
	"context"
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
	ConfigTTL time.Duration
}

type Service struct {
	store  repository.Store
	cache  *redisrepo.Cache
	notify *notify.Notifier
	uow    *uow.UoW
	cfg    Config
}

func New(
	store repository.Store,
	cache *redisrepo.Cache,
	n *notify.Notifier,
	cfg Config,
) *Service {
	if cfg.ConfigTTL <= 0 {
		cfg.ConfigTTL = 5 * time.Minute
	}

	return &Service{
		store:  store,
		cache:  cache,
		notify: n,
		uow:    uow.NewUoW(store),
		cfg:    cfg,
	}
}

// Get returns the event configuration, served from the cache when possible.
func (s *Service) Get(ctx context.Context) (domain.EventConfig, error) {
	const op = "service.catalog.Get"

	cfg, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyEventConfig(),
		s.cfg.ConfigTTL,
		func(ctx context.Context) (domain.EventConfig, error) {
			return s.store.Config().Get(ctx)
		},
	)
	if err != nil {
		return domain.EventConfig{}, fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
	}

	return cfg, nil
}

// QuoteItem sets the quantity of one menu flavor in a quote request.
type QuoteItem struct {
	Flavor   string `json:"flavor"`
	Quantity int    `json:"quantity"`
}

// Quote prices a cart at the current menu without recording anything.
// Items are applied in order as till edits: a later item for the same flavor
// replaces the earlier quantity and a quantity of zero drops the line.
// The returned lines can be posted to /sales as they are.
func (s *Service) Quote(ctx context.Context, items []QuoteItem) (domain.Cart, error) {
	const op = "service.catalog.Quote"

	cfg, err := s.Get(ctx)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	var cart domain.Cart
	for i, it := range items {
		f, ok := cfg.Flavor(strings.TrimSpace(it.Flavor))
		if !ok {
			return domain.Cart{}, fmt.Errorf("%s: %w", op,
				domain.Invalid(fmt.Sprintf("items[%d].flavor", i), "not on the menu"))
		}
		if it.Quantity < 0 {
			return domain.Cart{}, fmt.Errorf("%s: %w", op,
				domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "must not be negative"))
		}

		if it.Quantity == 0 {
			cart.Remove(f.Name)
			continue
		}
		if cart.Quantity(f.Name) == 0 {
			cart.Add(f)
		}
		cart.SetQuantity(f.Name, it.Quantity)
	}

	if cart.Empty() {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, domain.Invalid("items", "cart is empty"))
	}

	return cart, nil
}

// Set replaces the whole configuration. Lists are not merged: a flavor left
// out of cfg is gone from the menu. Sales already recorded keep their prices.
//
// Returns:
//   - error: a domain.ValidationError for blank or duplicate flavor names and
//     negative prices or float.
func (s *Service) Set(ctx context.Context, cfg domain.EventConfig) error {
	const op = "service.catalog.Set"

	cfg = cfg.Normalized()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Tx,
		after func(uow.AfterCommit),
	) error {
		if err := tx.Config().Save(ctx, cfg); err != nil {
			return err
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateConfig(ctx)
			s.notify.ConfigChanged(ctx)
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, domain.Classify(err))
	}

	return nil
}

// Reset wipes every sale, audit event, VIP tab and settlement and restores
// the default configuration, all in one unit of work.
func (s *Service) Reset(ctx context.Context) error {
	const op = "service.catalog.Reset"

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Tx,
		after func(uow.AfterCommit),
	) error {
		if err := tx.Sales().DeleteAll(ctx); err != nil {
			return err
		}

		if err := tx.Vips().DeleteAll(ctx); err != nil {
			return err
		}

		if err := tx.Config().Save(ctx, domain.DefaultEventConfig()); err != nil {
			return err
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateConfig(ctx)
			s.notify.Reset(ctx)
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, domain.Classify(err))
	}

	return nil
}
