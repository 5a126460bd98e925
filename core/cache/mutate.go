package cache

import "context"

// MutateOpts controls what happens around a mutation.
type MutateOpts struct {
	// Invalidates names the cache key marked stale after a successful
	// mutation. Empty means no invalidation.
	Invalidates Key
	OnSuccess   func()
	OnError     func(err error)
}

// Mutate runs fn and, on success, invalidates the configured key so the next
// Fetch re-reads it. On failure the cache is left untouched and the error is
// surfaced to the caller; there is no automatic retry.
func Mutate[T any](ctx context.Context, s *Store, fn func(context.Context) (T, error), opts MutateOpts) (T, error) {
	out, err := fn(ctx)
	if err != nil {
		if opts.OnError != nil {
			opts.OnError(err)
		}
		return out, err
	}
	if opts.Invalidates != "" {
		s.Invalidate(opts.Invalidates)
	}
	if opts.OnSuccess != nil {
		opts.OnSuccess()
	}
	return out, nil
}
