package http

import (
	"time"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/application/usecases/queries"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/services"
)

// addressRequest is either {"id": "..."} or the inline address fields.
type addressRequest struct {
	ID *kernel.UUID `json:"id,omitempty"`
	kernel.AddressFields
}

func (r *addressRequest) toInput(param string) (commands.AddressInput, error) {
	if r == nil {
		return nil, nil
	}
	var fields *kernel.AddressFields
	if r.AddressFields != (kernel.AddressFields{}) {
		fields = &r.AddressFields
	}
	in, err := commands.NewAddressInput(param, r.ID, fields)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return commands.InlineAddress{}, nil
	}
	return in, nil
}

type lineRequest struct {
	ProductID kernel.UUID `json:"productId"`
	Quantity  int         `json:"quantity"`
}

func toLines(in []lineRequest) []services.OrderLine {
	if in == nil {
		return nil
	}
	lines := make([]services.OrderLine, 0, len(in))
	for _, l := range in {
		lines = append(lines, services.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return lines
}

type createOrderRequest struct {
	Email           string          `json:"email"`
	Currency        string          `json:"currency"`
	ShippingAddress *addressRequest `json:"shippingAddress"`
	BillingAddress  *addressRequest `json:"billingAddress"`
	Items           []lineRequest   `json:"items"`
	PaymentMethod   string          `json:"paymentMethod"`
	Metadata        map[string]any  `json:"metadata"`
	Notes           string          `json:"notes"`
	CouponCode      string          `json:"couponCode"`
}

type updateOrderRequest struct {
	ShippingAddress *addressRequest `json:"shippingAddress"`
	BillingAddress  *addressRequest `json:"billingAddress"`
	Items           *[]lineRequest  `json:"items"`
	Notes           *string         `json:"notes"`
	Metadata        map[string]any  `json:"metadata"`
	Status          string          `json:"status"`
	Note            string          `json:"note"`
}

type addItemsRequest struct {
	Items []lineRequest `json:"items"`
}

type removeItemsRequest struct {
	ItemIDs []kernel.UUID `json:"itemIds"`
}

type statusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type paymentStatusRequest struct {
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
	Note          string `json:"note"`
}

type addressResponse struct {
	kernel.AddressFields
}

type itemResponse struct {
	ID        kernel.UUID `json:"id"`
	ProductID kernel.UUID `json:"productId"`
	Name      string      `json:"name"`
	Sku       string      `json:"sku"`
	BasePrice string      `json:"basePrice"`
	UnitPrice string      `json:"unitPrice"`
	Quantity  int         `json:"quantity"`
	Discount  string      `json:"discount"`
	LineTotal string      `json:"lineTotal"`
}

type paymentResponse struct {
	ID             kernel.UUID `json:"id"`
	Amount         string      `json:"amount"`
	Currency       string      `json:"currency"`
	Method         string      `json:"method"`
	Status         string      `json:"status"`
	TransactionID  string      `json:"transactionId,omitempty"`
	RefundedAmount string      `json:"refundedAmount"`
}

type historyResponse struct {
	Status    string       `json:"status"`
	Note      string       `json:"note"`
	ActorID   *kernel.UUID `json:"actorId,omitempty"`
	ActorRole string       `json:"actorRole"`
	CreatedAt time.Time    `json:"createdAt"`
}

type orderResponse struct {
	ID                kernel.UUID       `json:"id"`
	OrderNumber       string            `json:"orderNumber"`
	AccountID         kernel.UUID       `json:"accountId"`
	StorefrontID      *kernel.UUID      `json:"storefrontId,omitempty"`
	ShippingAddressID *kernel.UUID      `json:"shippingAddressId,omitempty"`
	BillingAddressID  *kernel.UUID      `json:"billingAddressId,omitempty"`
	ShippingAddress   addressResponse   `json:"shippingAddress"`
	BillingAddress    addressResponse   `json:"billingAddress"`
	Currency          string            `json:"currency"`
	Subtotal          string            `json:"subtotal"`
	TaxRate           string            `json:"taxRate"`
	Tax               string            `json:"tax"`
	ShippingCost      string            `json:"shippingCost"`
	Discount          string            `json:"discount"`
	Total             string            `json:"total"`
	Status            string            `json:"status"`
	PaymentStatus     string            `json:"paymentStatus"`
	Items             []itemResponse    `json:"items"`
	Payments          []paymentResponse `json:"payments"`
	History           []historyResponse `json:"history"`
	Metadata          map[string]any    `json:"metadata,omitempty"`
	Notes             string            `json:"notes,omitempty"`
	CouponCode        string            `json:"couponCode,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:                o.ID(),
		OrderNumber:       o.Number().String(),
		AccountID:         o.AccountID(),
		StorefrontID:      o.StorefrontID(),
		ShippingAddressID: o.ShippingAddressID(),
		BillingAddressID:  o.BillingAddressID(),
		ShippingAddress:   addressResponse{o.ShippingAddress().Fields()},
		BillingAddress:    addressResponse{o.BillingAddress().Fields()},
		Currency:          o.Currency().String(),
		Subtotal:          o.Subtotal().StringFixed(2),
		TaxRate:           o.TaxRate().String(),
		Tax:               o.Tax().StringFixed(2),
		ShippingCost:      o.ShippingCost().StringFixed(2),
		Discount:          o.Discount().StringFixed(2),
		Total:             o.Total().StringFixed(2),
		Status:            o.Status().String(),
		PaymentStatus:     o.PaymentStatus().String(),
		Items:             toItemResponses(o.Items()),
		Payments:          make([]paymentResponse, 0, len(o.Payments())),
		History:           make([]historyResponse, 0, len(o.History())),
		Metadata:          o.Metadata(),
		Notes:             o.Notes(),
		CouponCode:        o.CouponCode(),
		CreatedAt:         o.CreatedAt(),
		UpdatedAt:         o.UpdatedAt(),
	}

	for _, p := range o.Payments() {
		resp.Payments = append(resp.Payments, paymentResponse{
			ID:             p.ID(),
			Amount:         p.Amount().StringFixed(2),
			Currency:       p.Currency().String(),
			Method:         string(p.Method()),
			Status:         p.Status().String(),
			TransactionID:  p.TransactionID(),
			RefundedAmount: p.RefundedAmount().StringFixed(2),
		})
	}
	for _, h := range o.History() {
		entry := historyResponse{
			Status:    h.Status().String(),
			Note:      h.Note(),
			ActorRole: string(h.ActorRole()),
			CreatedAt: h.CreatedAt(),
		}
		if id := h.ActorID(); !id.IsZero() {
			entry.ActorID = &id
		}
		resp.History = append(resp.History, entry)
	}
	return resp
}

func toItemResponses(items []*order.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, itemResponse{
			ID:        i.ID(),
			ProductID: i.ProductID(),
			Name:      i.Name(),
			Sku:       i.Sku(),
			BasePrice: i.BasePrice().StringFixed(2),
			UnitPrice: i.UnitPrice().StringFixed(2),
			Quantity:  i.Quantity(),
			Discount:  i.Discount().StringFixed(2),
			LineTotal: i.LineTotal().StringFixed(2),
		})
	}
	return out
}

type previewResponse struct {
	Currency        string          `json:"currency"`
	ShippingAddress addressResponse `json:"shippingAddress"`
	BillingAddress  addressResponse `json:"billingAddress"`
	Items           []itemResponse  `json:"items"`
	TaxRate         string          `json:"taxRate"`
	Subtotal        string          `json:"subtotal"`
	Discount        string          `json:"discount"`
	Tax             string          `json:"tax"`
	ShippingCost    string          `json:"shippingCost"`
	Total           string          `json:"total"`
}

func toPreviewResponse(p commands.OrderPreview) previewResponse {
	return previewResponse{
		Currency:        p.Currency.String(),
		ShippingAddress: addressResponse{p.ShippingAddress.Fields()},
		BillingAddress:  addressResponse{p.BillingAddress.Fields()},
		Items:           toItemResponses(p.Items),
		TaxRate:         p.TaxRate.String(),
		Subtotal:        p.Totals.Subtotal.StringFixed(2),
		Discount:        p.Totals.Discount.StringFixed(2),
		Tax:             p.Totals.Tax.StringFixed(2),
		ShippingCost:    p.Totals.ShippingCost.StringFixed(2),
		Total:           p.Totals.Total.StringFixed(2),
	}
}

type orderSummaryResponse struct {
	ID            kernel.UUID `json:"id"`
	OrderNumber   string      `json:"orderNumber"`
	AccountID     kernel.UUID `json:"accountId"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"paymentStatus"`
	Currency      string      `json:"currency"`
	Total         string      `json:"total"`
	ItemCount     int         `json:"itemCount"`
	CreatedAt     time.Time   `json:"createdAt"`
}

type orderListResponse struct {
	Orders   []orderSummaryResponse `json:"orders"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"pageSize"`
	Total    int64                  `json:"total"`
}

func toOrderListResponse(r queries.ListOrdersQueryResponse) orderListResponse {
	resp := orderListResponse{
		Orders:   make([]orderSummaryResponse, 0, len(r.Orders)),
		Page:     r.Page,
		PageSize: r.PageSize,
		Total:    r.Total,
	}
	for _, o := range r.Orders {
		resp.Orders = append(resp.Orders, orderSummaryResponse{
			ID:            o.ID,
			OrderNumber:   o.Number,
			AccountID:     o.AccountID,
			Status:        o.Status,
			PaymentStatus: o.PaymentStatus,
			Currency:      o.Currency,
			Total:         o.Total.StringFixed(2),
			ItemCount:     o.ItemCount,
			CreatedAt:     o.CreatedAt,
		})
	}
	return resp
}
