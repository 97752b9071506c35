package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirinyoku/standpos/internal/domain"
	"github.com/kirinyoku/standpos/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sale(at time.Time, method domain.PaymentMethod, status domain.SaleStatus, lines ...domain.CartLine) domain.Sale {
	s := domain.NewSale(lines, method, decimal.Zero, "", at)
	s.Status = status
	return s
}

func line(name string, price string, qty int) domain.CartLine {
	return domain.CartLine{FlavorName: name, UnitPrice: money(price), Quantity: qty}
}

func TestCompute(t *testing.T) {
	day1 := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	sales := []domain.Sale{
		sale(day1.Add(18*time.Hour+10*time.Minute), domain.PaymentCash, domain.SalePaid, line("Pilsen", "10", 2)),
		sale(day1.Add(18*time.Hour+50*time.Minute), domain.PaymentPix, domain.SalePaid,
			line("Pilsen", "10", 1), line("Manga", "10", 1)),
		sale(day1.Add(21*time.Hour), domain.PaymentCard, domain.SaleRefunded, line("IPA", "12", 5)),
		sale(day2.Add(18*time.Hour+5*time.Minute), domain.PaymentVIP, domain.SalePaid, line("Vinho", "15.50", 1)),
	}
	cfg := domain.EventConfig{StartingCashFloat: money("100")}
	vips := []domain.VipAccount{
		{Name: "Ana", AccumulatedTotal: money("15.50")},
		{Name: "Bia", AccumulatedTotal: money("4.50")},
	}

	r := Compute(sales, cfg, vips, time.UTC)

	assert.Equal(t, "55.50", r.TotalRevenue.StringFixed(2))
	assert.Equal(t, "155.50", r.CashDrawerTotal.StringFixed(2))
	assert.Equal(t, "100.00", r.StartingFloat.StringFixed(2))
	assert.Equal(t, map[string]int{"Pilsen": 3, "Manga": 1, "Vinho": 1}, r.UnitsByFlavor)
	assert.Equal(t, 3, r.SalesCount)
	assert.Equal(t, 1, r.RefundedCount)
	assert.Equal(t, "20.00", r.OutstandingVip.StringFixed(2))

	require.Len(t, r.RevenueByHour, 1, "both days collapse into hour 18")
	assert.Equal(t, 18, r.RevenueByHour[0].Hour)
	assert.Equal(t, "18h", r.RevenueByHour[0].Label)
	assert.Equal(t, "55.50", r.RevenueByHour[0].Revenue.StringFixed(2))

	assert.Equal(t, "20.00", r.RevenueByMethod[domain.PaymentCash].StringFixed(2))
	assert.Equal(t, "20.00", r.RevenueByMethod[domain.PaymentPix].StringFixed(2))
	assert.Equal(t, "15.50", r.RevenueByMethod[domain.PaymentVIP].StringFixed(2))
	_, hasCard := r.RevenueByMethod[domain.PaymentCard]
	assert.False(t, hasCard, "refunded sales do not count")
}

func TestCompute_HoursSortedInEventZone(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	base := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	sales := []domain.Sale{
		sale(base.Add(23*time.Hour), domain.PaymentPix, domain.SalePaid, line("IPA", "10", 1)),
		sale(base.Add(2*time.Hour), domain.PaymentPix, domain.SalePaid, line("IPA", "10", 2)),
		sale(base.Add(14*time.Hour), domain.PaymentPix, domain.SalePaid, line("IPA", "10", 3)),
	}

	r := Compute(sales, domain.EventConfig{}, nil, loc)

	labels := []string{}
	for _, h := range r.RevenueByHour {
		labels = append(labels, h.Label)
	}
	assert.Equal(t, []string{"11h", "20h", "23h"}, labels)
	assert.Equal(t, "30.00", r.RevenueByHour[0].Revenue.StringFixed(2))
	assert.Equal(t, "20.00", r.RevenueByHour[2].Revenue.StringFixed(2))
}

func TestCompute_Empty(t *testing.T) {
	r := Compute(nil, domain.EventConfig{StartingCashFloat: money("50")}, nil, nil)

	assert.True(t, r.TotalRevenue.IsZero())
	assert.Equal(t, "50.00", r.CashDrawerTotal.StringFixed(2))
	assert.NotNil(t, r.UnitsByFlavor)
	assert.NotNil(t, r.RevenueByHour)
	assert.Empty(t, r.RevenueByHour)
}

func TestCompute_RefundOrderDoesNotMatter(t *testing.T) {
	at := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	a := sale(at, domain.PaymentPix, domain.SalePaid, line("IPA", "10", 1))
	b := sale(at, domain.PaymentPix, domain.SaleRefunded, line("IPA", "10", 4))

	r1 := Compute([]domain.Sale{a, b}, domain.EventConfig{}, nil, time.UTC)
	r2 := Compute([]domain.Sale{b, a}, domain.EventConfig{}, nil, time.UTC)

	assert.True(t, r1.TotalRevenue.Equal(r2.TotalRevenue))
	assert.Equal(t, "10.00", r1.TotalRevenue.StringFixed(2))
}

func TestReport_ReadsStore(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.Config().Save(ctx, domain.EventConfig{StartingCashFloat: money("200")}))
	_, err := store.Sales().Insert(ctx, sale(time.Now(), domain.PaymentCash, domain.SalePaid, line("IPA", "10", 3)))
	require.NoError(t, err)

	svc := New(store, Config{Location: time.UTC})

	r, err := svc.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, "30.00", r.TotalRevenue.StringFixed(2))
	assert.Equal(t, "230.00", r.CashDrawerTotal.StringFixed(2))

	// fresh on every call
	_, err = store.Sales().Insert(ctx, sale(time.Now(), domain.PaymentCash, domain.SalePaid, line("IPA", "10", 1)))
	require.NoError(t, err)

	r, err = svc.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, "40.00", r.TotalRevenue.StringFixed(2))
}

func TestReport_StorageFailure(t *testing.T) {
	store := memory.New()
	store.Fail("sales.List", errors.New("timeout"))

	_, err := New(store, Config{}).Report(context.Background())
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
