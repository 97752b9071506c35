package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kirinyoku/standpos/internal/domain"
	"github.com/kirinyoku/standpos/internal/repository"
	"github.com/shopspring/decimal"
)

type saleRepo struct {
	store *Store
	st    *state
}

func (r *saleRepo) Insert(ctx context.Context, sale domain.Sale) (int64, error) {
	var id int64
	err := r.store.run(ctx, r.st, "sales.Insert", func(st *state) error {
		st.nextSaleID++
		id = st.nextSaleID
		sale.ID = id
		st.sales[id] = copySale(sale)
		return nil
	})
	return id, err
}

func (r *saleRepo) Get(ctx context.Context, id int64) (*domain.Sale, error) {
	var out domain.Sale
	err := r.store.run(ctx, r.st, "sales.Get", func(st *state) error {
		s, ok := st.sales[id]
		if !ok {
			return fmt.Errorf("memory.saleRepo.Get:%w", repository.ErrNotFound)
		}
		out = copySale(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate needs no row lock: units of work are already serialized.
func (r *saleRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Sale, error) {
	return r.Get(ctx, id)
}

func (r *saleRepo) List(ctx context.Context) ([]domain.Sale, error) {
	out := []domain.Sale{}
	err := r.store.run(ctx, r.st, "sales.List", func(st *state) error {
		for _, s := range st.sales {
			out = append(out, copySale(s))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out, nil
}

func (r *saleRepo) UpdateLines(
	ctx context.Context,
	id int64,
	lines []domain.CartLine,
	total decimal.Decimal,
) error {
	return r.store.run(ctx, r.st, "sales.UpdateLines", func(st *state) error {
		s, ok := st.sales[id]
		if !ok {
			return fmt.Errorf("memory.saleRepo.UpdateLines:%w", repository.ErrNotFound)
		}
		s.LineItems = append([]domain.CartLine{}, lines...)
		s.Total = total
		st.sales[id] = s
		return nil
	})
}

func (r *saleRepo) UpdateStatus(ctx context.Context, id int64, status domain.SaleStatus) error {
	return r.store.run(ctx, r.st, "sales.UpdateStatus", func(st *state) error {
		s, ok := st.sales[id]
		if !ok {
			return fmt.Errorf("memory.saleRepo.UpdateStatus:%w", repository.ErrNotFound)
		}
		s.Status = status
		st.sales[id] = s
		return nil
	})
}

func (r *saleRepo) AppendEvent(ctx context.Context, ev domain.SaleEvent) error {
	return r.store.run(ctx, r.st, "sales.AppendEvent", func(st *state) error {
		if _, ok := st.sales[ev.SaleID]; !ok {
			return fmt.Errorf("memory.saleRepo.AppendEvent:%w", repository.ErrNotFound)
		}
		st.nextEventID++
		ev.ID = st.nextEventID
		st.events = append(st.events, ev)
		return nil
	})
}

func (r *saleRepo) ListEvents(ctx context.Context, saleID int64) ([]domain.SaleEvent, error) {
	out := []domain.SaleEvent{}
	err := r.store.run(ctx, r.st, "sales.ListEvents", func(st *state) error {
		for _, ev := range st.events {
			if ev.SaleID == saleID {
				out = append(out, ev)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *saleRepo) DeleteAll(ctx context.Context) error {
	return r.store.run(ctx, r.st, "sales.DeleteAll", func(st *state) error {
		st.sales = map[int64]domain.Sale{}
		st.events = nil
		return nil
	})
}

type vipRepo struct {
	store *Store
	st    *state
}

func (r *vipRepo) Accrue(ctx context.Context, name string, amount decimal.Decimal) error {
	return r.store.run(ctx, r.st, "vips.Accrue", func(st *state) error {
		st.vips[name] = st.vips[name].Add(amount)
		return nil
	})
}

func (r *vipRepo) Get(ctx context.Context, name string) (*domain.VipAccount, error) {
	var out domain.VipAccount
	err := r.store.run(ctx, r.st, "vips.Get", func(st *state) error {
		total, ok := st.vips[name]
		if !ok {
			return fmt.Errorf("memory.vipRepo.Get:%w", repository.ErrNotFound)
		}
		out = domain.VipAccount{Name: name, AccumulatedTotal: total}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *vipRepo) GetForUpdate(ctx context.Context, name string) (*domain.VipAccount, error) {
	return r.Get(ctx, name)
}

func (r *vipRepo) List(ctx context.Context) ([]domain.VipAccount, error) {
	out := []domain.VipAccount{}
	err := r.store.run(ctx, r.st, "vips.List", func(st *state) error {
		for name, total := range st.vips {
			out = append(out, domain.VipAccount{Name: name, AccumulatedTotal: total})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].Name, out[j].Name) < 0
	})

	return out, nil
}

func (r *vipRepo) Settle(ctx context.Context, s domain.VipSettlement) (int64, error) {
	var id int64
	err := r.store.run(ctx, r.st, "vips.Settle", func(st *state) error {
		if _, ok := st.vips[s.VipName]; !ok {
			return fmt.Errorf("memory.vipRepo.Settle:%w", repository.ErrNotFound)
		}
		st.vips[s.VipName] = decimal.Zero
		st.nextSettlementID++
		id = st.nextSettlementID
		s.ID = id
		st.settlements = append(st.settlements, s)
		return nil
	})
	return id, err
}

func (r *vipRepo) DeleteAll(ctx context.Context) error {
	return r.store.run(ctx, r.st, "vips.DeleteAll", func(st *state) error {
		st.vips = map[string]decimal.Decimal{}
		st.settlements = nil
		return nil
	})
}

type configRepo struct {
	store *Store
	st    *state
}

func (r *configRepo) Get(ctx context.Context) (domain.EventConfig, error) {
	var out domain.EventConfig
	err := r.store.run(ctx, r.st, "config.Get", func(st *state) error {
		out = copyConfig(st.cfg)
		return nil
	})
	return out, err
}

func (r *configRepo) Save(ctx context.Context, cfg domain.EventConfig) error {
	return r.store.run(ctx, r.st, "config.Save", func(st *state) error {
		st.cfg = copyConfig(cfg)
		return nil
	})
}
