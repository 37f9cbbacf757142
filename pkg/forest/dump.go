package forest

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// Dump renders the tree as an indented ASCII tree using
// github.com/xlab/treeprint, with render formatting a leaf's resource
// value for display (e.g. its JSON form).
func (t *Tree[T]) Dump(render func(T) string) string {
	root := treeprint.New()
	addChildren(root, t.root, render)
	return root.String()
}

func addChildren[T any](branch treeprint.Tree, n *Node[T], render func(T) string) {
	for _, child := range n.Children() {
		if child.Node.Kind == KindLeaf {
			branch.AddNode(fmt.Sprintf("%s = %s", child.Name, render(child.Node.Resource)))
			continue
		}
		sub := branch.AddBranch(string(child.Name))
		addChildren(sub, child.Node, render)
	}
}
