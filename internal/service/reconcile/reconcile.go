package reconcile

import (
	"fmt"
	"sort"
	"time"

	"github.com/kirinyoku/standpos/internal/domain"
	"github.com/shopspring/decimal"
)

// Compute derives the end-of-event figures from the full sale log.
// Only paid sales count towards revenue and units. Hours are taken in loc
// and every day of the event collapses into the same 24 buckets.
func Compute(
	sales []domain.Sale,
	cfg domain.EventConfig,
	vips []domain.VipAccount,
	loc *time.Location,
) domain.Report {
	if loc == nil {
		loc = time.Local
	}

	report := domain.Report{
		TotalRevenue:    decimal.Zero,
		StartingFloat:   domain.Money(cfg.StartingCashFloat),
		UnitsByFlavor:   map[string]int{},
		RevenueByHour:   []domain.HourRevenue{},
		RevenueByMethod: map[domain.PaymentMethod]decimal.Decimal{},
		OutstandingVip:  decimal.Zero,
	}

	byHour := map[int]decimal.Decimal{}

	for _, s := range sales {
		if !s.IsPaid() {
			report.RefundedCount++
			continue
		}

		report.SalesCount++
		report.TotalRevenue = report.TotalRevenue.Add(s.Total)
		report.RevenueByMethod[s.PaymentMethod] = report.RevenueByMethod[s.PaymentMethod].Add(s.Total)

		for _, l := range s.LineItems {
			report.UnitsByFlavor[l.FlavorName] += l.Quantity
		}

		h := s.CreatedAt.In(loc).Hour()
		byHour[h] = byHour[h].Add(s.Total)
	}

	report.TotalRevenue = domain.Money(report.TotalRevenue)
	report.CashDrawerTotal = domain.Money(report.TotalRevenue.Add(report.StartingFloat))

	for m, v := range report.RevenueByMethod {
		report.RevenueByMethod[m] = domain.Money(v)
	}

	hours := make([]int, 0, len(byHour))
	for h := range byHour {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	for _, h := range hours {
		report.RevenueByHour = append(report.RevenueByHour, domain.HourRevenue{
			Hour:    h,
			Label:   HourLabel(h),
			Revenue: domain.Money(byHour[h]),
		})
	}

	for _, v := range vips {
		report.OutstandingVip = report.OutstandingVip.Add(v.AccumulatedTotal)
	}
	report.OutstandingVip = domain.Money(report.OutstandingVip)

	return report
}

// HourLabel renders an hour bucket, e.g. 14 -> "14h".
func HourLabel(h int) string {
	return fmt.Sprintf("%dh", h)
}
