package queries

import (
	"context"
	"strings"

	"orders/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListOrdersQueryHandler struct {
	db *gorm.DB
}

func NewListOrdersQueryHandler(db *gorm.DB) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{db: db}
}

func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) (ListOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return ListOrdersQueryResponse{}, err
	}

	where := []string{"o.deleted_at IS NULL"}
	var args []any
	if !query.Actor().CanManageAnyOrder() {
		where = append(where, "o.account_id = ?")
		args = append(args, query.Actor().ID().Bytes())
	}
	filter := strings.Join(where, " AND ")

	resp := ListOrdersQueryResponse{
		Orders:   make([]OrderSummary, 0),
		Page:     query.Page(),
		PageSize: query.PageSize(),
	}

	db := h.db.WithContext(ctx)
	if err := db.Raw(`SELECT COUNT(*) FROM orders o WHERE `+filter, args...).Scan(&resp.Total).Error; err != nil {
		return ListOrdersQueryResponse{}, err
	}

	rows, err := db.Raw(`
		SELECT
			o.id,
			o.order_number,
			o.account_id,
			o.status,
			o.payment_status,
			o.currency,
			o.total,
			(SELECT COUNT(*) FROM order_items i WHERE i.order_id = o.id) AS item_count,
			o.created_at
		FROM orders o
		WHERE `+filter+`
		ORDER BY o.created_at DESC, o.id
		LIMIT ? OFFSET ?
	`, append(args, query.PageSize(), query.Offset())...).Rows()
	if err != nil {
		return ListOrdersQueryResponse{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			summary       OrderSummary
			id, accountID uuid.UUID
		)
		err = rows.Scan(
			&id,
			&summary.Number,
			&accountID,
			&summary.Status,
			&summary.PaymentStatus,
			&summary.Currency,
			&summary.Total,
			&summary.ItemCount,
			&summary.CreatedAt,
		)
		if err != nil {
			return ListOrdersQueryResponse{}, err
		}

		if summary.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return ListOrdersQueryResponse{}, err
		}
		if summary.AccountID, err = kernel.UUIDFromBytes(accountID[:]); err != nil {
			return ListOrdersQueryResponse{}, err
		}
		resp.Orders = append(resp.Orders, summary)
	}

	if err = rows.Err(); err != nil {
		return ListOrdersQueryResponse{}, err
	}
	return resp, nil
}
