package resolver

import (
	"encoding/json"
	"fmt"

	"github.com/resolvectx/resloc/internal/errutil"
	"github.com/resolvectx/resloc/pkg/forest"
	"github.com/resolvectx/resloc/pkg/ids"
	"github.com/resolvectx/resloc/pkg/resources"
)

// ComposeOptions controls ResolveComposedResourceTree's tolerance for
// individual leaf failures.
type ComposeOptions struct {
	// TolerateLeafFailures, when true, omits a failing leaf from the
	// composed object, passing its error to OnLeafError if that is set,
	// instead of failing the whole walk. The resolver itself logs nothing.
	TolerateLeafFailures bool
	OnLeafError          func(id ids.ResourceId, err error)
}

// ResolveComposedResourceTree walks the subtree rooted at id (or the whole
// tree, if id is empty), contributing each leaf's resolved value and each
// branch as a nested JSON object keyed by child name.
func (r *Resolver) ResolveComposedResourceTree(id ids.ResourceId, opts ComposeOptions) (json.RawMessage, error) {
	var node *forest.Node[*resources.Resource]
	var err error
	if id == "" {
		node = r.snap.Tree.Root()
	} else {
		node, err = r.snap.Tree.GetById(id)
		if err != nil {
			return nil, err
		}
	}
	return r.composeNode(id, node, opts)
}

func (r *Resolver) composeNode(id ids.ResourceId, node *forest.Node[*resources.Resource], opts ComposeOptions) (json.RawMessage, error) {
	if node.Kind == forest.KindLeaf {
		out, err := r.resolveResource(id, node.Resource)
		if err != nil {
			if opts.TolerateLeafFailures {
				if opts.OnLeafError != nil {
					opts.OnLeafError(id, err)
				}
				return nil, nil
			}
			return nil, err
		}
		return out, nil
	}

	composed := map[string]json.RawMessage{}
	var agg errutil.Aggregator
	for _, child := range node.Children() {
		childId := child.Name
		var fullId ids.ResourceId
		if id == "" {
			fullId = ids.ResourceId(childId)
		} else {
			joined, err := ids.JoinResourceIds(append(id.Split(), childId)...)
			if err != nil {
				agg.Add(fmt.Errorf("%s: %w", childId, err))
				continue
			}
			fullId = joined
		}
		v, err := r.composeNode(fullId, child.Node, opts)
		if err != nil {
			agg.Add(err)
			continue
		}
		if v != nil {
			composed[string(childId)] = v
		}
	}
	if err := agg.Err(); err != nil {
		return nil, err
	}
	return json.Marshal(composed)
}
