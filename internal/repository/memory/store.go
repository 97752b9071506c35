// Package memory is an in-process implementation of repository.Store.
// Units of work run one at a time against a private copy of the state,
// which replaces the live state only when the unit succeeds.
package memory

import (
	"context"
	"sync"

	"github.com/kirinyoku/standpos/internal/domain"
	"github.com/kirinyoku/standpos/internal/repository"
	"github.com/shopspring/decimal"
)

type state struct {
	nextSaleID       int64
	nextEventID      int64
	nextSettlementID int64

	sales       map[int64]domain.Sale
	events      []domain.SaleEvent
	vips        map[string]decimal.Decimal
	settlements []domain.VipSettlement
	cfg         domain.EventConfig
}

func newState() *state {
	return &state{
		sales: map[int64]domain.Sale{},
		vips:  map[string]decimal.Decimal{},
		cfg:   domain.DefaultEventConfig(),
	}
}

func (s *state) clone() *state {
	cp := &state{
		nextSaleID:       s.nextSaleID,
		nextEventID:      s.nextEventID,
		nextSettlementID: s.nextSettlementID,
		sales:            make(map[int64]domain.Sale, len(s.sales)),
		events:           append([]domain.SaleEvent(nil), s.events...),
		vips:             make(map[string]decimal.Decimal, len(s.vips)),
		settlements:      append([]domain.VipSettlement(nil), s.settlements...),
		cfg:              copyConfig(s.cfg),
	}

	for id, sale := range s.sales {
		cp.sales[id] = copySale(sale)
	}
	for name, total := range s.vips {
		cp.vips[name] = total
	}

	return cp
}

type Store struct {
	mu     sync.Mutex
	st     *state
	faults map[string]error
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		st:     newState(),
		faults: map[string]error{},
	}
}

// Fail makes every later call of the named repository operation
// (for example "vips.Accrue") return err. A nil err clears the fault.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.st.clone()
	if err := fn(ctx, scope{store: s, st: work}); err != nil {
		return err
	}

	s.st = work
	return nil
}

func (s *Store) Sales() repository.Sales         { return &saleRepo{store: s} }
func (s *Store) Vips() repository.Vips           { return &vipRepo{store: s} }
func (s *Store) Config() repository.EventConfigs { return &configRepo{store: s} }

type scope struct {
	store *Store
	st    *state
}

func (t scope) Sales() repository.Sales         { return &saleRepo{store: t.store, st: t.st} }
func (t scope) Vips() repository.Vips           { return &vipRepo{store: t.store, st: t.st} }
func (t scope) Config() repository.EventConfigs { return &configRepo{store: t.store, st: t.st} }

// run executes fn against the transaction state when bound to one,
// otherwise against the live state under the store lock.
func (s *Store) run(ctx context.Context, bound *state, op string, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if bound != nil {
		if err := s.faults[op]; err != nil {
			return err
		}
		return fn(bound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.faults[op]; err != nil {
		return err
	}
	return fn(s.st)
}

func copySale(s domain.Sale) domain.Sale {
	s.LineItems = append([]domain.CartLine(nil), s.LineItems...)
	return s
}

func copyConfig(c domain.EventConfig) domain.EventConfig {
	c.FixedFlavors = append([]domain.Flavor{}, c.FixedFlavors...)
	c.SeasonalFlavors = append([]domain.Flavor{}, c.SeasonalFlavors...)
	return c
}
