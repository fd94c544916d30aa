package budget

import (
	"context"

	"golang.org/x/sync/singleflight"
)

var windowGroup singleflight.Group

// coalesceWindow collapses concurrent recomputations of the same store
// window into a single loader call. Callers whose context dies while
// waiting get the context error; the in-flight computation finishes for
// the survivors.
func coalesceWindow(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error, bool) {
	resultChan := windowGroup.DoChan(key, func() (interface{}, error) {
		return fn(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}
