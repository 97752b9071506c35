package sales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kirinyoku/standpos/internal/domain"
	"github.com/kirinyoku/standpos/internal/repository"
	redisrepo "github.com/kirinyoku/standpos/internal/repository/redis"
	"github.com/kirinyoku/standpos/internal/service/notify"
	"github.com/kirinyoku/standpos/internal/uow"
	"github.com/shopspring/decimal"
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

// FinalizeInput is a cart ready to be paid. Lines carry the prices captured
// when each flavor was added; the catalog is not consulted again.
type FinalizeInput struct {
	Lines        []domain.CartLine
	Method       domain.PaymentMethod
	CashReceived *decimal.Decimal
	VipName      string
}

type Receipt struct {
	SaleID      int64           `json:"sale_id"`
	Total       decimal.Decimal `json:"total"`
	ChangeGiven decimal.Decimal `json:"change_given"`
}

// Finalize validates the cart and commits it as a paid sale.
//
// Parameters:
//   - ctx: request-scoped context.
//   - in: cart lines, payment method, cash received (cash only) and VIP name (vip only).
//
// Returns:
//   - Receipt: the assigned sale id, the total and the change to hand back.
//   - error: sales.ErrEmptyCart or another domain.ValidationError for a bad cart;
//     domain.ErrPersistence if the unit of work failed, in which case nothing was written.
func (s *Service) Finalize(ctx context.Context, in FinalizeInput) (Receipt, error) {
	const op = "service.sales.Finalize"

	if len(in.Lines) == 0 {
		return Receipt{}, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	if err := domain.ValidateLines(in.Lines); err != nil {
		return Receipt{}, fmt.Errorf("%s: %w", op, err)
	}

	if !in.Method.Valid() {
		return Receipt{}, fmt.Errorf("%s: %w", op,
			domain.Invalid("payment_method", fmt.Sprintf("unknown method %q", in.Method)))
	}

	vipName := ""
	if in.Method == domain.PaymentVIP {
		vipName = strings.TrimSpace(in.VipName)
		if vipName == "" {
			return Receipt{}, fmt.Errorf("%s: %w", op,
				domain.Invalid("vip_name", "required for vip payments"))
		}
	}

	// Prices are rounded to cents here; cash is checked against this total.
	sale := domain.NewSale(in.Lines, in.Method, decimal.Zero, vipName, s.cfg.Now())

	if in.Method == domain.PaymentCash && in.CashReceived != nil {
		received := domain.Money(*in.CashReceived)
		if received.LessThan(sale.Total) {
			return Receipt{}, fmt.Errorf("%s: %w", op, domain.Invalid(
				"cash_received",
				fmt.Sprintf("%s is less than total %s",
					received.StringFixed(domain.MoneyPlaces),
					sale.Total.StringFixed(domain.MoneyPlaces)),
			))
		}
		sale.ChangeGiven = domain.ChangeFor(received, sale.Total)
	}

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Tx,
		after func(uow.AfterCommit),
	) error {
		id, err := tx.Sales().Insert(ctx, sale)
		if err != nil {
			return err
		}
		sale.ID = id

		if sale.PaymentMethod == domain.PaymentVIP {
			if err := tx.Vips().Accrue(ctx, sale.VipName, sale.Total); err != nil {
				return err
			}
		}

		payload, err := json.Marshal(sale)
		if err != nil {
			return err
		}

		if err := tx.Sales().AppendEvent(ctx, domain.SaleEvent{
			SaleID:     id,
			Kind:       domain.EventSaleCreated,
			Amount:     sale.Total,
			Payload:    payload,
			OccurredAt: sale.CreatedAt,
		}); err != nil {
			return err
		}

		after(func(ctx context.Context) {
			s.notify.LedgerChanged(ctx, redisrepo.ChangeSaleFinalized, id)
		})

		return nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
	}

	return Receipt{
		SaleID:      sale.ID,
		Total:       sale.Total,
		ChangeGiven: sale.ChangeGiven,
	}, nil
}

// List returns sales newest first. A non-empty query keeps only sales whose
// id contains it, the way the till's search box matches ticket numbers.
func (s *Service) List(ctx context.Context, query string) ([]domain.Sale, error) {
	const op = "service.sales.List"

	all, err := s.store.Sales().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return all, nil
	}

	out := make([]domain.Sale, 0, len(all))
	for _, sale := range all {
		if strings.Contains(strconv.FormatInt(sale.ID, 10), query) {
			out = append(out, sale)
		}
	}

	return out, nil
}

// Get returns one sale or sales.ErrSaleNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Sale, error) {
	const op = "service.sales.Get"

	sale, err := s.store.Sales().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrSaleNotFound)
		}
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
	}

	return sale, nil
}

// Events returns the audit trail of a sale, oldest first.
func (s *Service) Events(ctx context.Context, id int64) ([]domain.SaleEvent, error) {
	const op = "service.sales.Events"

	if _, err := s.Get(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	events, err := s.store.Sales().ListEvents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
	}

	return events, nil
}
