package order

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"orders/internal/pkg/errs"
)

// ErrOrderNumberTaken is wrapped by repositories when the unique index on
// order numbers rejects an insert. Creation retries on it.
var ErrOrderNumberTaken = errors.New("order number already taken")

// Number is the human readable order identifier PREFIX-O-<n>.
type Number string

// FormatNumber builds the number for sequence value seq.
func FormatNumber(prefix string, seq int64) Number {
	return Number(fmt.Sprintf("%s-O-%d", strings.ToUpper(prefix), seq))
}

// ParseNumber validates s and returns it as a Number.
func ParseNumber(s string) (Number, error) {
	idx := strings.LastIndex(s, "-O-")
	if idx <= 0 {
		return "", errs.NewValueIsInvalidErrorWithCause("orderNumber", fmt.Errorf("%q is not PREFIX-O-<n>", s))
	}
	seq, err := strconv.ParseInt(s[idx+3:], 10, 64)
	if err != nil || seq < 1 {
		return "", errs.NewValueIsInvalidErrorWithCause("orderNumber", fmt.Errorf("%q has no sequence", s))
	}
	return Number(s), nil
}

// Sequence returns the numeric part.
func (n Number) Sequence() int64 {
	idx := strings.LastIndex(string(n), "-O-")
	if idx < 0 {
		return 0
	}
	seq, _ := strconv.ParseInt(string(n)[idx+3:], 10, 64)
	return seq
}

func (n Number) String() string {
	return string(n)
}
