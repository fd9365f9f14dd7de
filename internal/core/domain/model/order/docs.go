// Package order provides the Order aggregate of the order engine.
//
// The package includes:
//   - Order: the aggregate root owning items, payments and the audit history
//   - Item: an immutable snapshot of a purchased line
//   - Payment: the settlement record of an order
//   - Status and PaymentStatus: closed enumerations with transition tables
//
// Key business rules:
//   - total == round(subtotal + tax + shippingCost - discount), always re-derived
//   - tax is computed with the rate persisted on the order at creation
//   - cancellation is legal only from pending or confirmed
//   - once paid and delivered, the only legal payment change is back to unpaid
//   - every state change appends exactly one history entry
package order
