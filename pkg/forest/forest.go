// Package forest implements the resource tree: a namespace of
// branches and leaves addressed by dotted resource ids, with a no-overlap
// invariant between leaves and branch prefixes.
package forest

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/resolvectx/resloc/pkg/ids"
)

// NodeKind distinguishes the two node shapes a Tree holds.
type NodeKind int

const (
	KindBranch NodeKind = iota
	KindLeaf
)

// Node is either a Branch (an interior namespace with children, in
// insertion order) or a Leaf (carrying a resource value of type T).
type Node[T any] struct {
	Kind     NodeKind
	Resource T // valid only when Kind == KindLeaf

	childNames []ids.ResourceName
	children   map[ids.ResourceName]*Node[T]
}

func newBranch[T any]() *Node[T] {
	return &Node[T]{Kind: KindBranch, children: map[ids.ResourceName]*Node[T]{}}
}

func newLeaf[T any](resource T) *Node[T] {
	return &Node[T]{Kind: KindLeaf, Resource: resource}
}

// Children returns the branch's children as (name, node) pairs in
// insertion order. Calling Children on a leaf returns nil.
func (n *Node[T]) Children() []NamedNode[T] {
	if n.Kind != KindBranch {
		return nil
	}
	out := make([]NamedNode[T], 0, len(n.childNames))
	for _, name := range n.childNames {
		out = append(out, NamedNode[T]{Name: name, Node: n.children[name]})
	}
	return out
}

// NamedNode pairs a child's name with its node, used by Children and by
// iteration helpers that need stable (name, node) ordering.
type NamedNode[T any] struct {
	Name ids.ResourceName
	Node *Node[T]
}

// Tree is the resource tree: a Root (itself a branch) addressed by
// ResourceId.
type Tree[T any] struct {
	root *Node[T]
}

// NewTree builds an empty Tree.
func NewTree[T any]() *Tree[T] {
	return &Tree[T]{root: newBranch[T]()}
}

// ErrNotFound, ErrNotALeaf, ErrNotABranch, ErrTreeShapeConflict are
// sentinel errors; callers use errors.Is against these.
var (
	ErrNotFound          = fmt.Errorf("not found")
	ErrNotALeaf          = fmt.Errorf("not a leaf")
	ErrNotABranch        = fmt.Errorf("not a branch")
	ErrTreeShapeConflict = fmt.Errorf("resource id declared as both leaf and branch prefix")
)

// Insert adds a leaf at id holding resource, creating intermediate
// branches as needed. It fails with ErrTreeShapeConflict if id (or any of
// its prefixes) is already a leaf, or if id is already occupied.
func (t *Tree[T]) Insert(id ids.ResourceId, resource T) error {
	segs := id.Split()
	cur := t.root
	for i, seg := range segs[:len(segs)-1] {
		next, ok := cur.children[seg]
		if !ok {
			next = newBranch[T]()
			cur.childNames = append(cur.childNames, seg)
			cur.children[seg] = next
		} else if next.Kind == KindLeaf {
			prefix := ids.ResourceId(joinSegs(segs[:i+1]))
			return fmt.Errorf("%s: %w (leaf at %s blocks branch)", id, ErrTreeShapeConflict, prefix)
		}
		cur = next
	}

	leafName := segs[len(segs)-1]
	if existing, ok := cur.children[leafName]; ok {
		if existing.Kind == KindBranch {
			return fmt.Errorf("%s: %w (branch already exists at this id)", id, ErrTreeShapeConflict)
		}
		return fmt.Errorf("%s: %w", id, ErrTreeShapeConflict)
	}
	cur.childNames = append(cur.childNames, leafName)
	cur.children[leafName] = newLeaf(resource)
	return nil
}

// Entry is one (id, resource) pair, the input shape to BuildTree.
type Entry[T any] struct {
	Id       ids.ResourceId
	Resource T
}

// BuildTree constructs a Tree from entries in order, aggregating every
// insertion failure (via go.uber.org/multierr) rather than stopping at the
// first one, so a caller sees every conflicting id in one pass.
func BuildTree[T any](entries []Entry[T]) (*Tree[T], error) {
	t := NewTree[T]()
	var errs error
	for _, e := range entries {
		if err := t.Insert(e.Id, e.Resource); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		return nil, errs
	}
	return t, nil
}

func joinSegs(segs []ids.ResourceName) string {
	out, _ := ids.JoinResourceIds(segs...)
	return string(out)
}

func (t *Tree[T]) lookup(id ids.ResourceId) (*Node[T], error) {
	segs := id.Split()
	cur := t.root
	for _, seg := range segs {
		next, ok := cur.children[seg]
		if !ok {
			return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		cur = next
	}
	return cur, nil
}

// GetById returns the node at id, or ErrNotFound.
func (t *Tree[T]) GetById(id ids.ResourceId) (*Node[T], error) {
	return t.lookup(id)
}

// GetResourceById returns the leaf at id, ErrNotALeaf if id names a
// branch, or ErrNotFound.
func (t *Tree[T]) GetResourceById(id ids.ResourceId) (T, error) {
	var zero T
	n, err := t.lookup(id)
	if err != nil {
		return zero, err
	}
	if n.Kind != KindLeaf {
		return zero, fmt.Errorf("%s: %w", id, ErrNotALeaf)
	}
	return n.Resource, nil
}

// GetBranchById returns the branch at id, ErrNotABranch if id names a
// leaf, or ErrNotFound.
func (t *Tree[T]) GetBranchById(id ids.ResourceId) (*Node[T], error) {
	n, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	if n.Kind != KindBranch {
		return nil, fmt.Errorf("%s: %w", id, ErrNotABranch)
	}
	return n, nil
}

// Root returns the tree's root branch.
func (t *Tree[T]) Root() *Node[T] { return t.root }

// ValidatingLookup accepts a raw string id, validates it via
// ids.ToResourceId, then delegates to GetById - the "validating façade"
// the shape callers need at the tree's public boundary.
func (t *Tree[T]) ValidatingLookup(raw string) (*Node[T], error) {
	id, err := ids.ToResourceId(raw)
	if err != nil {
		return nil, err
	}
	return t.GetById(id)
}
