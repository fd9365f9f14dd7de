package services

import (
	"sort"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// TopCustomersLimit is the size of the top customer ranking.
const TopCustomersLimit = 5

// OrderFact is the slice of a committed order the analytics need.
type OrderFact struct {
	AccountID     kernel.UUID
	Currency      kernel.Currency
	Total         decimal.Decimal
	Status        order.Status
	PaymentStatus order.PaymentStatus
	CreatedAt     time.Time
}

// CustomerContact is joined onto the top customer ranking.
type CustomerContact struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Report is the analytics result for a window.
type Report struct {
	From       time.Time        `json:"from"`
	To         time.Time        `json:"to"`
	Currencies []CurrencyReport `json:"currencies"`
}

// CurrencyReport holds the figures of one currency partition.
type CurrencyReport struct {
	Currency     kernel.Currency `json:"currency"`
	OrderCount   int             `json:"orderCount"`
	TotalValue   decimal.Decimal `json:"totalValue"`
	AverageValue decimal.Decimal `json:"averageValue"`
	StatusCounts map[string]int  `json:"statusCounts"`
	PaidTotal    decimal.Decimal `json:"paidTotal"`
	UnpaidTotal  decimal.Decimal `json:"unpaidTotal"`
	Trend        MonthlyTrend    `json:"trend"`
	TopCustomers []TopCustomer   `json:"topCustomers"`
}

// MonthlyTrend is chart ready: every slice is indexed by Labels.
type MonthlyTrend struct {
	Labels     []string          `json:"labels"`
	PaidTotals []decimal.Decimal `json:"paidTotals"`
	Returned   []int             `json:"returned"`
	Delivered  []int             `json:"delivered"`
	Cancelled  []int             `json:"cancelled"`
}

type TopCustomer struct {
	AccountID  kernel.UUID     `json:"accountId"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	OrderCount int             `json:"orderCount"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
}

// AnalyticsAggregator rolls order facts into a Report. It is pure: the same
// facts and window always produce the same report, and an empty input yields
// an empty report rather than an error.
type AnalyticsAggregator struct{}

func NewAnalyticsAggregator() AnalyticsAggregator {
	return AnalyticsAggregator{}
}

// Aggregate partitions facts by currency. Facts outside [from, to] are ignored.
func (AnalyticsAggregator) Aggregate(
	from, to time.Time,
	facts []OrderFact,
	contacts map[kernel.UUID]CustomerContact,
) Report {
	if from.IsZero() || from.After(to) {
		from = to
	}
	report := Report{From: from, To: to, Currencies: []CurrencyReport{}}
	labels := monthLabels(from, to)

	partitions := make(map[kernel.Currency][]OrderFact)
	for _, f := range facts {
		if f.CreatedAt.Before(from) || f.CreatedAt.After(to) {
			continue
		}
		partitions[f.Currency] = append(partitions[f.Currency], f)
	}

	currencies := make([]kernel.Currency, 0, len(partitions))
	for c := range partitions {
		currencies = append(currencies, c)
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })

	for _, c := range currencies {
		report.Currencies = append(report.Currencies, aggregateCurrency(c, partitions[c], labels, contacts))
	}
	return report
}

func aggregateCurrency(
	currency kernel.Currency,
	facts []OrderFact,
	labels []string,
	contacts map[kernel.UUID]CustomerContact,
) CurrencyReport {
	r := CurrencyReport{
		Currency:     currency,
		OrderCount:   len(facts),
		StatusCounts: make(map[string]int, len(order.AllStatuses())),
		Trend:        newTrend(labels),
	}
	for _, s := range order.AllStatuses() {
		r.StatusCounts[s.String()] = 0
	}

	month := make(map[string]int, len(labels))
	for i, l := range labels {
		month[l] = i
	}

	var totals, paid, unpaid []decimal.Decimal
	spend := make(map[kernel.UUID]*TopCustomer)
	for _, f := range facts {
		totals = append(totals, f.Total)
		r.StatusCounts[f.Status.String()]++

		switch f.PaymentStatus {
		case order.Paid:
			paid = append(paid, f.Total)
		case order.Unpaid:
			unpaid = append(unpaid, f.Total)
		}

		if idx, ok := month[f.CreatedAt.UTC().Format("2006-01")]; ok {
			if f.PaymentStatus == order.Paid {
				r.Trend.PaidTotals[idx] = kernel.RoundMoney(r.Trend.PaidTotals[idx].Add(f.Total))
			}
			switch f.Status {
			case order.Returned:
				r.Trend.Returned[idx]++
			case order.Delivered:
				r.Trend.Delivered[idx]++
			case order.Cancelled:
				r.Trend.Cancelled[idx]++
			}
		}

		if f.Status == order.Cancelled {
			continue
		}
		c, ok := spend[f.AccountID]
		if !ok {
			c = &TopCustomer{AccountID: f.AccountID, TotalSpent: decimal.Zero}
			spend[f.AccountID] = c
		}
		c.OrderCount++
		c.TotalSpent = kernel.RoundMoney(c.TotalSpent.Add(f.Total))
	}

	r.TotalValue = kernel.SumMoney(totals...)
	r.PaidTotal = kernel.SumMoney(paid...)
	r.UnpaidTotal = kernel.SumMoney(unpaid...)
	r.AverageValue = decimal.Zero
	if r.OrderCount > 0 {
		r.AverageValue = kernel.RoundMoney(r.TotalValue.Div(decimal.NewFromInt(int64(r.OrderCount))))
	}
	r.TopCustomers = topCustomers(spend, contacts)
	return r
}

func topCustomers(spend map[kernel.UUID]*TopCustomer, contacts map[kernel.UUID]CustomerContact) []TopCustomer {
	ranked := make([]TopCustomer, 0, len(spend))
	for id, c := range spend {
		if contact, ok := contacts[id]; ok {
			c.FirstName, c.LastName, c.Email, c.Phone = contact.FirstName, contact.LastName, contact.Email, contact.Phone
		}
		ranked = append(ranked, *c)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].TotalSpent.Equal(ranked[j].TotalSpent) {
			return ranked[i].TotalSpent.GreaterThan(ranked[j].TotalSpent)
		}
		return ranked[i].AccountID.String() < ranked[j].AccountID.String()
	})
	if len(ranked) > TopCustomersLimit {
		ranked = ranked[:TopCustomersLimit]
	}
	return ranked
}

func newTrend(labels []string) MonthlyTrend {
	t := MonthlyTrend{
		Labels:     labels,
		PaidTotals: make([]decimal.Decimal, len(labels)),
		Returned:   make([]int, len(labels)),
		Delivered:  make([]int, len(labels)),
		Cancelled:  make([]int, len(labels)),
	}
	for i := range t.PaidTotals {
		t.PaidTotals[i] = decimal.Zero
	}
	return t
}

// monthLabels lists YYYY-MM from the month of from to the month of to.
func monthLabels(from, to time.Time) []string {
	start := time.Date(from.UTC().Year(), from.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to.UTC().Year(), to.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)

	labels := make([]string, 0)
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		labels = append(labels, m.Format("2006-01"))
	}
	return labels
}
