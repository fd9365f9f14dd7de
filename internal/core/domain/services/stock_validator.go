package services

import (
	"errors"
	"fmt"
	"sort"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/model/product"
	"orders/internal/pkg/errs"
)

// StockValidator checks a cart against the authoritative catalog records
// loaded in the same transaction as the later stock decrement.
type StockValidator struct{}

func NewStockValidator() StockValidator {
	return StockValidator{}
}

// MergeLines sums quantities of repeated products, keeping first-seen order.
func MergeLines(lines []OrderLine) ([]OrderLine, error) {
	if len(lines) == 0 {
		return nil, errs.NewValueIsRequiredError("items")
	}

	merged := make([]OrderLine, 0, len(lines))
	positions := make(map[kernel.UUID]int, len(lines))
	var problems []error
	for _, line := range lines {
		if err := line.ProductID.Validate(); err != nil {
			problems = append(problems, errs.NewValueIsRequiredErrorWithCause("items.productId", err))
			continue
		}
		if line.Quantity < 1 || line.Quantity > order.MaxItemQuantity {
			problems = append(problems, errs.NewValueIsOutOfRangeError(
				"items.quantity", line.Quantity, 1, order.MaxItemQuantity,
			))
			continue
		}
		if idx, ok := positions[line.ProductID]; ok {
			merged[idx].Quantity += line.Quantity
			continue
		}
		positions[line.ProductID] = len(merged)
		merged = append(merged, line)
	}

	if err := errors.Join(problems...); err != nil {
		return nil, err
	}
	return merged, nil
}

// ProductIDs returns the ids of lines.
func ProductIDs(lines []OrderLine) []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}

// Validate merges lines, checks that every product exists and is priced in
// currency, then classifies stock. All offending products are reported in a
// single StockViolationError sorted by product id.
func (StockValidator) Validate(
	lines []OrderLine,
	products []*product.Product,
	currency kernel.Currency,
) ([]OrderLine, error) {
	merged, err := MergeLines(lines)
	if err != nil {
		return nil, err
	}

	byID := indexProducts(products)
	if len(byID) != len(merged) {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"product invalid", fmt.Errorf("requested %d products, found %d", len(merged), len(byID)),
		)
	}

	var violations []errs.StockViolation
	for _, line := range merged {
		p, ok := byID[line.ProductID]
		if !ok {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"product invalid", fmt.Errorf("product %s does not exist", line.ProductID),
			)
		}
		if p.Pricing() == nil {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"product invalid", fmt.Errorf("product %s has no pricing in %s", p.ID(), currency),
			)
		}

		switch {
		case p.InStock() == 0:
			violations = append(violations, violation(p, line.Quantity, errs.OutOfStock))
		case p.InStock() < line.Quantity:
			violations = append(violations, violation(p, line.Quantity, errs.InsufficientStock))
		}
	}

	if len(violations) > 0 {
		sort.Slice(violations, func(i, j int) bool { return violations[i].ProductID < violations[j].ProductID })
		return nil, errs.NewStockViolationError(violations...)
	}
	return merged, nil
}

func violation(p *product.Product, requested int, kind errs.StockViolationKind) errs.StockViolation {
	return errs.StockViolation{
		ProductID: p.ID().String(),
		Name:      p.Name(),
		Requested: requested,
		Available: p.InStock(),
		Kind:      kind,
	}
}
