package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/kirinyoku/standpos/internal/domain"
	"github.com/kirinyoku/standpos/internal/repository"
)

type Config struct {
	// Location buckets sales by hour; nil means time.Local.
	Location *time.Location
}

type Service struct {
	store repository.Store
	cfg   Config
}

func New(store repository.Store, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &Service{store: store, cfg: cfg}
}

// Report recomputes the reconciliation from the stored sale log on every call.
// Sales, configuration and VIP tabs are read in one transaction so the
// figures agree with each other.
func (s *Service) Report(ctx context.Context) (domain.Report, error) {
	const op = "service.reconcile.Report"

	var (
		sales []domain.Sale
		cfg   domain.EventConfig
		vips  []domain.VipAccount
	)

	err := s.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error

		if sales, err = tx.Sales().List(ctx); err != nil {
			return err
		}

		if cfg, err = tx.Config().Get(ctx); err != nil {
			return err
		}

		vips, err = tx.Vips().List(ctx)
		return err
	})
	if err != nil {
		return domain.Report{}, fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
	}

	return Compute(sales, cfg, vips, s.cfg.Location), nil
}
