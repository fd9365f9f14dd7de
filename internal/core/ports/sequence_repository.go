package ports

import "context"

// SequenceRepository hands out strictly increasing numbers per name. The
// counter row stays locked until the unit of work ends, which serialises
// concurrent allocations.
type SequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}
