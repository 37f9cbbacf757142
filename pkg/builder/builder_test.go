package builder

import (
	"encoding/json"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/resolvectx/resloc/pkg/conditions"
	"github.com/resolvectx/resloc/pkg/ids"
	"github.com/resolvectx/resloc/pkg/qualtypes"
	"github.com/resolvectx/resloc/pkg/resources"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	qt := qualtypes.NewRegistry()
	rt := resources.NewRegistry()
	_, err := rt.Add(resources.NewJSONResourceType("json", nil))
	if err != nil {
		t.Fatalf("resource type: %v", err)
	}
	return New(qt, rt)
}

func mustCondition(t *testing.T, name string, value string) *conditions.Condition {
	t.Helper()
	c, err := conditions.NewBinary(0, ids.QualifierName(name), conditions.OpMatches, value, ids.DefaultConditionPriority, nil, nil)
	if err != nil {
		t.Fatalf("NewBinary: %v", err)
	}
	return c
}

func TestAddConditionIsIdempotentByKey(t *testing.T) {
	g := NewWithT(t)
	b := newTestBuilder(t)

	c := mustCondition(t, "language", "fr")
	i1, err := b.AddCondition(c)
	g.Expect(err).NotTo(HaveOccurred())
	i2, err := b.AddCondition(mustCondition(t, "language", "fr"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(i1).To(Equal(i2))
}

func TestAddConditionSetCanonicalizes(t *testing.T) {
	g := NewWithT(t)
	b := newTestBuilder(t)

	i1, _ := b.AddCondition(mustCondition(t, "language", "fr"))
	i2, _ := b.AddCondition(mustCondition(t, "territory", "FR"))

	cs1, err := b.AddConditionSet([]ids.ConditionIndex{i1, i2})
	g.Expect(err).NotTo(HaveOccurred())
	cs2, err := b.AddConditionSet([]ids.ConditionIndex{i2, i1})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cs1).To(Equal(cs2))
}

func TestAddLooseCandidateAndSealBuildsResource(t *testing.T) {
	g := NewWithT(t)
	b := newTestBuilder(t)

	ci, _ := b.AddCondition(mustCondition(t, "language", "fr"))
	csi, _ := b.AddConditionSet([]ids.ConditionIndex{ci})

	resId := ids.ResourceId("app.welcome")
	err := b.AddLooseCandidate(resId, ids.ResourceName("welcome"), 0, csi, ids.DefaultConditionPriority, resources.Candidate{
		InstanceValue: json.RawMessage(`{"text":"bonjour"}`),
		MergeMethod:   resources.MergeReplace,
		Completeness:  resources.Full,
	})
	g.Expect(err).NotTo(HaveOccurred())

	snap, err := b.Seal()
	g.Expect(err).NotTo(HaveOccurred())

	r, err := snap.Tree.GetResourceById(resId)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(r.Candidates).To(HaveLen(1))
	g.Expect(r.Candidates[0].InstanceValue).To(MatchJSON(`{"text":"bonjour"}`))
}

func TestAddLooseCandidateConflictOnDifferingValue(t *testing.T) {
	g := NewWithT(t)
	b := newTestBuilder(t)

	ci, _ := b.AddCondition(mustCondition(t, "language", "fr"))
	csi, _ := b.AddConditionSet([]ids.ConditionIndex{ci})
	resId := ids.ResourceId("app.welcome")

	g.Expect(b.AddLooseCandidate(resId, ids.ResourceName("welcome"), 0, csi, ids.DefaultConditionPriority, resources.Candidate{
		InstanceValue: json.RawMessage(`"a"`),
		MergeMethod:   resources.MergeReplace,
		Completeness:  resources.Full,
	})).To(Succeed())

	err := b.AddLooseCandidate(resId, ids.ResourceName("welcome"), 0, csi, ids.DefaultConditionPriority, resources.Candidate{
		InstanceValue: json.RawMessage(`"b"`),
		MergeMethod:   resources.MergeReplace,
		Completeness:  resources.Full,
	})
	g.Expect(err).To(HaveOccurred())
}

func TestSealDetectsTreeShapeConflict(t *testing.T) {
	g := NewWithT(t)
	b := newTestBuilder(t)

	ci, _ := b.AddCondition(mustCondition(t, "language", "fr"))
	csi, _ := b.AddConditionSet([]ids.ConditionIndex{ci})

	cand := resources.Candidate{InstanceValue: json.RawMessage(`1`), MergeMethod: resources.MergeReplace, Completeness: resources.Full}
	g.Expect(b.AddLooseCandidate(ids.ResourceId("app"), ids.ResourceName("app"), 0, csi, ids.DefaultConditionPriority, cand)).To(Succeed())
	g.Expect(b.AddLooseCandidate(ids.ResourceId("app.child"), ids.ResourceName("child"), 0, csi, ids.DefaultConditionPriority, cand)).To(Succeed())

	_, err := b.Seal()
	g.Expect(err).To(HaveOccurred())
}

func TestCloneIsIndependent(t *testing.T) {
	g := NewWithT(t)
	b := newTestBuilder(t)

	ci, _ := b.AddCondition(mustCondition(t, "language", "fr"))
	_, err := b.AddConditionSet([]ids.ConditionIndex{ci})
	g.Expect(err).NotTo(HaveOccurred())

	clone, err := b.Clone(CloneOptions{})
	g.Expect(err).NotTo(HaveOccurred())

	_, err = clone.AddCondition(mustCondition(t, "territory", "US"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(len(b.conditions)).To(Equal(1))
	g.Expect(len(clone.conditions)).To(Equal(2))
}

func TestSealTwiceFails(t *testing.T) {
	g := NewWithT(t)
	b := newTestBuilder(t)

	_, err := b.Seal()
	g.Expect(err).NotTo(HaveOccurred())

	_, err = b.Seal()
	g.Expect(err).To(HaveOccurred())
}

func TestExportCandidatesFlattensSealedCandidate(t *testing.T) {
	g := NewWithT(t)
	b := newTestBuilder(t)

	ci, _ := b.AddCondition(mustCondition(t, "language", "fr"))
	csi, _ := b.AddConditionSet([]ids.ConditionIndex{ci})
	resId := ids.ResourceId("app.welcome")
	g.Expect(b.AddLooseCandidate(resId, ids.ResourceName("welcome"), 0, csi, ids.DefaultConditionPriority, resources.Candidate{
		InstanceValue: json.RawMessage(`{"text":"bonjour"}`),
		MergeMethod:   resources.MergeReplace,
		Completeness:  resources.Full,
	})).To(Succeed())

	snap, err := b.Seal()
	g.Expect(err).NotTo(HaveOccurred())

	exported := snap.ExportCandidates()
	g.Expect(exported).To(HaveLen(1))
	g.Expect(exported[0].ResourceId).To(Equal(resId))
	g.Expect(exported[0].InstanceValue).To(MatchJSON(`{"text":"bonjour"}`))
}
