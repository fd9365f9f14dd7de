// Package errs provides the error taxonomy of the order engine.
//
// Every error type follows the same shape:
//   - a sentinel error variable (e.g. ErrValueIsRequired) that errors.Is matches
//   - a struct carrying the details of the failure
//   - constructors with and without a cause
//   - Error() for the human readable message and Unwrap() returning the sentinel
//
// The sentinels group into stable kinds (see Kind and KindOf) that transports
// surface to callers: invalid_input, not_found, unauthorized, currency_mismatch,
// stock_violation, invalid_transition and conflict.
package errs
