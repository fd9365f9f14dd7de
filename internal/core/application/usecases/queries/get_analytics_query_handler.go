package queries

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/services"
	"orders/internal/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetAnalyticsQueryHandler reads committed orders and rolls them into a
// currency partitioned report. Reports are cached by filter.
type GetAnalyticsQueryHandler struct {
	db         *gorm.DB
	cache      ports.ReportCache
	aggregator services.AnalyticsAggregator
	logger     *zap.Logger
	now        func() time.Time
}

// NewGetAnalyticsQueryHandler accepts a nil cache.
func NewGetAnalyticsQueryHandler(db *gorm.DB, cache ports.ReportCache, logger *zap.Logger) GetAnalyticsQueryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return GetAnalyticsQueryHandler{
		db:         db,
		cache:      cache,
		aggregator: services.NewAnalyticsAggregator(),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (h GetAnalyticsQueryHandler) Handle(ctx context.Context, query GetAnalyticsQuery) (services.Report, error) {
	if err := query.Validate(); err != nil {
		return services.Report{}, err
	}

	if h.cache != nil {
		report, err := h.cache.Get(ctx, query.CacheKey())
		if err == nil {
			return report, nil
		}
		if !errors.Is(err, ports.ErrCacheMiss) {
			h.logger.Warn("analytics cache read failed", zap.String("key", query.CacheKey()), zap.Error(err))
		}
	}

	return h.Refresh(ctx, query)
}

// Refresh recomputes the report and overwrites the cached copy.
func (h GetAnalyticsQueryHandler) Refresh(ctx context.Context, query GetAnalyticsQuery) (services.Report, error) {
	if err := query.Validate(); err != nil {
		return services.Report{}, err
	}

	report, err := h.compute(ctx, query)
	if err != nil {
		return services.Report{}, err
	}

	if h.cache != nil {
		if err = h.cache.Set(ctx, query.CacheKey(), report); err != nil {
			h.logger.Warn("analytics cache write failed", zap.String("key", query.CacheKey()), zap.Error(err))
		}
	}
	return report, nil
}

func (h GetAnalyticsQueryHandler) compute(ctx context.Context, query GetAnalyticsQuery) (services.Report, error) {
	db := h.db.WithContext(ctx)

	where := []string{"deleted_at IS NULL"}
	var args []any
	if id := query.StorefrontID(); id != nil {
		where = append(where, "storefront_id = ?")
		args = append(args, id.Bytes())
	}

	to := h.now()
	if query.To() != nil {
		to = *query.To()
	}
	from := to
	if query.From() != nil {
		from = *query.From()
	} else {
		var earliest sql.NullTime
		err := db.Raw(`SELECT MIN(created_at) FROM orders WHERE `+strings.Join(where, " AND "), args...).
			Row().Scan(&earliest)
		if err != nil {
			return services.Report{}, err
		}
		if earliest.Valid {
			from = earliest.Time.UTC()
		}
	}

	where = append(where, "created_at BETWEEN ? AND ?")
	args = append(args, from, to)
	facts, err := h.loadFacts(db, strings.Join(where, " AND "), args)
	if err != nil {
		return services.Report{}, err
	}

	report := h.aggregator.Aggregate(from, to, facts, nil)
	if err = h.attachContacts(db, &report); err != nil {
		return services.Report{}, err
	}
	return report, nil
}

func (h GetAnalyticsQueryHandler) loadFacts(db *gorm.DB, filter string, args []any) ([]services.OrderFact, error) {
	rows, err := db.Raw(`
		SELECT
			account_id,
			currency,
			total,
			status,
			payment_status,
			created_at
		FROM orders
		WHERE `+filter, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	facts := make([]services.OrderFact, 0)
	for rows.Next() {
		var (
			accountID       uuid.UUID
			currency        string
			total           decimal.Decimal
			status, payment string
			createdAt       time.Time
		)
		if err = rows.Scan(&accountID, &currency, &total, &status, &payment, &createdAt); err != nil {
			return nil, err
		}

		fact := services.OrderFact{
			Currency:  kernel.Currency(currency),
			Total:     total,
			CreatedAt: createdAt.UTC(),
		}
		if fact.AccountID, err = kernel.UUIDFromBytes(accountID[:]); err != nil {
			return nil, err
		}
		if fact.Status, err = order.ParseStatus(status); err != nil {
			return nil, err
		}
		if fact.PaymentStatus, err = order.ParsePaymentStatus(payment); err != nil {
			return nil, err
		}
		facts = append(facts, fact)
	}
	return facts, rows.Err()
}

// attachContacts fills name, email and phone of the ranked customers only.
func (h GetAnalyticsQueryHandler) attachContacts(db *gorm.DB, report *services.Report) error {
	var ids []uuid.UUID
	for _, c := range report.Currencies {
		for _, top := range c.TopCustomers {
			ids = append(ids, top.AccountID.Bytes())
		}
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := db.Raw(`
		SELECT id, first_name, last_name, email, phone
		FROM accounts
		WHERE id IN ?
	`, ids).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	contacts := make(map[uuid.UUID]services.CustomerContact, len(ids))
	for rows.Next() {
		var (
			id      uuid.UUID
			contact services.CustomerContact
		)
		if err = rows.Scan(&id, &contact.FirstName, &contact.LastName, &contact.Email, &contact.Phone); err != nil {
			return err
		}
		contacts[id] = contact
	}
	if err = rows.Err(); err != nil {
		return err
	}

	for i := range report.Currencies {
		for j := range report.Currencies[i].TopCustomers {
			top := &report.Currencies[i].TopCustomers[j]
			if contact, ok := contacts[top.AccountID.Bytes()]; ok {
				top.FirstName, top.LastName, top.Email, top.Phone = contact.FirstName, contact.LastName, contact.Email, contact.Phone
			}
		}
	}
	return nil
}
