// Package kernel provides the shared value objects of the order domain:
// identifiers, money rounding, address snapshots and the acting identity.
//
// Values in this package are immutable once constructed and safe for
// concurrent use.
package kernel
