package resolver

import (
	"context"
	"encoding/json"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/resolvectx/resloc/pkg/ids"
)

// ResolveConcurrently resolves every id in ids concurrently via
// golang.org/x/sync/errgroup, a convenience helper layered over Resolve
// for hosts with many independent resources to resolve in one batch.
// Resolve's shared cache is mutex-guarded, so concurrent calls are safe;
// the first resolution failure cancels ctx and is returned, matching
// errgroup's fail-fast convention (unlike the aggregated-failure policy
// tree traversal prefers, which ResolveComposedResourceTree
// follows instead).
func (r *Resolver) ResolveConcurrently(ctx context.Context, resourceIds []ids.ResourceId) (map[ids.ResourceId]json.RawMessage, error) {
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	out := make(map[ids.ResourceId]json.RawMessage, len(resourceIds))

	for _, id := range resourceIds {
		id := id
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			v, err := r.Resolve(id)
			if err != nil {
				return err
			}
			mu.Lock()
			out[id] = v
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
