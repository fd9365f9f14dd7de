// Package services provides the stateless domain services of the order engine.
//
// The package includes:
//   - CurrencyResolver: maps a shipping country to its settlement currency
//   - PricingEngine: derives final unit prices and discounts from catalog pricing
//   - StockValidator: checks a cart against stock and lists every violation
//   - AnalyticsAggregator: rolls committed orders into per currency reports
//
// Services hold no process wide state; every call receives its inputs
// explicitly, so a single instance is safe to share between goroutines.
package services
