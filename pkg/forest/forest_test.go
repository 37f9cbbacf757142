package forest

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/resolvectx/resloc/pkg/ids"
)

func mustId(t *testing.T, s string) ids.ResourceId {
	t.Helper()
	id, err := ids.ToResourceId(s)
	if err != nil {
		t.Fatalf("ToResourceId(%q): %v", s, err)
	}
	return id
}

func TestInsertCreatesIntermediateBranches(t *testing.T) {
	g := NewWithT(t)

	tr := NewTree[string]()
	g.Expect(tr.Insert(mustId(t, "a.b.c"), "leaf")).To(Succeed())

	branch, err := tr.GetBranchById(mustId(t, "a.b"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(branch.Children()).To(HaveLen(1))

	val, err := tr.GetResourceById(mustId(t, "a.b.c"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(val).To(Equal("leaf"))
}

func TestInsertLeafThenBranchConflicts(t *testing.T) {
	g := NewWithT(t)

	tr := NewTree[string]()
	g.Expect(tr.Insert(mustId(t, "a"), "leaf")).To(Succeed())
	err := tr.Insert(mustId(t, "a.b"), "other")
	g.Expect(err).To(MatchError(ErrTreeShapeConflict))
}

func TestInsertBranchThenLeafConflicts(t *testing.T) {
	g := NewWithT(t)

	tr := NewTree[string]()
	g.Expect(tr.Insert(mustId(t, "a.b"), "leaf")).To(Succeed())
	err := tr.Insert(mustId(t, "a"), "other")
	g.Expect(err).To(MatchError(ErrTreeShapeConflict))
}

func TestInsertDuplicateLeafConflicts(t *testing.T) {
	g := NewWithT(t)

	tr := NewTree[string]()
	g.Expect(tr.Insert(mustId(t, "a.b"), "leaf")).To(Succeed())
	err := tr.Insert(mustId(t, "a.b"), "other")
	g.Expect(err).To(MatchError(ErrTreeShapeConflict))
}

func TestGetResourceByIdWrongKind(t *testing.T) {
	g := NewWithT(t)

	tr := NewTree[string]()
	g.Expect(tr.Insert(mustId(t, "a.b"), "leaf")).To(Succeed())

	_, err := tr.GetResourceById(mustId(t, "a"))
	g.Expect(err).To(MatchError(ErrNotALeaf))

	_, err = tr.GetBranchById(mustId(t, "a.b"))
	g.Expect(err).To(MatchError(ErrNotABranch))
}

func TestGetByIdNotFound(t *testing.T) {
	g := NewWithT(t)

	tr := NewTree[string]()
	_, err := tr.GetById(mustId(t, "missing"))
	g.Expect(err).To(MatchError(ErrNotFound))
}

func TestChildrenPreserveInsertionOrder(t *testing.T) {
	g := NewWithT(t)

	tr := NewTree[string]()
	g.Expect(tr.Insert(mustId(t, "a.z"), "1")).To(Succeed())
	g.Expect(tr.Insert(mustId(t, "a.y"), "2")).To(Succeed())
	g.Expect(tr.Insert(mustId(t, "a.x"), "3")).To(Succeed())

	branch, err := tr.GetBranchById(mustId(t, "a"))
	g.Expect(err).NotTo(HaveOccurred())
	names := make([]string, 0, 3)
	for _, c := range branch.Children() {
		names = append(names, string(c.Name))
	}
	g.Expect(names).To(Equal([]string{"z", "y", "x"}))
}

func TestBuildTreeAggregatesErrors(t *testing.T) {
	g := NewWithT(t)

	entries := []Entry[string]{
		{Id: mustId(t, "a"), Resource: "leaf"},
		{Id: mustId(t, "a.b"), Resource: "conflict"},
	}
	_, err := BuildTree(entries)
	g.Expect(err).To(HaveOccurred())
}

func TestValidatingLookupRejectsInvalidId(t *testing.T) {
	g := NewWithT(t)

	tr := NewTree[string]()
	_, err := tr.ValidatingLookup("not a valid id!!")
	g.Expect(err).To(HaveOccurred())
}

func TestDumpRendersLeavesAndBranches(t *testing.T) {
	g := NewWithT(t)

	tr := NewTree[string]()
	g.Expect(tr.Insert(mustId(t, "a.b"), "value")).To(Succeed())

	out := tr.Dump(func(s string) string { return s })
	g.Expect(out).To(ContainSubstring("a"))
	g.Expect(out).To(ContainSubstring("b = value"))
}
