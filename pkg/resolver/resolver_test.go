package resolver

import (
	"context"
	"encoding/json"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/resolvectx/resloc/internal/errutil"
	"github.com/resolvectx/resloc/pkg/builder"
	"github.com/resolvectx/resloc/pkg/conditions"
	"github.com/resolvectx/resloc/pkg/ids"
	"github.com/resolvectx/resloc/pkg/qualtypes"
	"github.com/resolvectx/resloc/pkg/resources"
)

type fixture struct {
	b         *builder.Builder
	langTypeI ids.QualifierTypeIndex
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	qt := qualtypes.NewRegistry()
	langTypeI, err := qt.AddQualifierType(qualtypes.NewLanguage(ids.QualifierTypeName("language")))
	if err != nil {
		t.Fatalf("AddQualifierType: %v", err)
	}
	_, err = qt.AddQualifier(ids.QualifierName("language"), langTypeI, ids.DefaultConditionPriority)
	if err != nil {
		t.Fatalf("AddQualifier: %v", err)
	}

	rt := resources.NewRegistry()
	_, err = rt.Add(resources.NewJSONResourceType("json", nil))
	if err != nil {
		t.Fatalf("resource type: %v", err)
	}

	return &fixture{b: builder.New(qt, rt), langTypeI: langTypeI}
}

func (f *fixture) condition(t *testing.T, lang string) ids.ConditionIndex {
	t.Helper()
	c, err := conditions.NewBinary(0, ids.QualifierName("language"), conditions.OpMatches, lang, ids.DefaultConditionPriority, nil, nil)
	if err != nil {
		t.Fatalf("NewBinary: %v", err)
	}
	idx, err := f.b.AddCondition(c)
	if err != nil {
		t.Fatalf("AddCondition: %v", err)
	}
	return idx
}

func (f *fixture) conditionSet(t *testing.T, conds ...ids.ConditionIndex) ids.ConditionSetIndex {
	t.Helper()
	idx, err := f.b.AddConditionSet(conds)
	if err != nil {
		t.Fatalf("AddConditionSet: %v", err)
	}
	return idx
}

func TestExactMatchWinsOverDefault(t *testing.T) {
	g := NewWithT(t)
	f := newFixture(t)

	en := f.conditionSet(t, f.condition(t, "en"))
	fr := f.conditionSet(t, f.condition(t, "fr"))

	resId := ids.ResourceId("greeting.hello")
	g.Expect(f.b.AddLooseCandidate(resId, ids.ResourceName("hello"), 0, en, ids.DefaultConditionPriority, resources.Candidate{
		InstanceValue: json.RawMessage(`{"msg":"Hello"}`), MergeMethod: resources.MergeReplace, Completeness: resources.Full,
	})).To(Succeed())
	g.Expect(f.b.AddLooseCandidate(resId, ids.ResourceName("hello"), 0, fr, ids.DefaultConditionPriority, resources.Candidate{
		InstanceValue: json.RawMessage(`{"msg":"Bonjour"}`), MergeMethod: resources.MergeReplace, Completeness: resources.Full,
	})).To(Succeed())

	snap, err := f.b.Seal()
	g.Expect(err).NotTo(HaveOccurred())

	res := New(snap)
	derived, err := res.WithContext(map[string]string{"language": "fr"})
	g.Expect(err).NotTo(HaveOccurred())

	out, err := derived.Resolve(resId)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(out).To(MatchJSON(`{"msg":"Bonjour"}`))
}

func TestPartialCandidateAugmentsFullCandidate(t *testing.T) {
	g := NewWithT(t)
	f := newFixture(t)

	none := f.conditionSet(t)
	fr := f.conditionSet(t, func() ids.ConditionIndex {
		c, err := conditions.NewBinary(0, ids.QualifierName("language"), conditions.OpMatches, "fr", 100, nil, nil)
		if err != nil {
			t.Fatalf("NewBinary: %v", err)
		}
		idx, err := f.b.AddCondition(c)
		if err != nil {
			t.Fatalf("AddCondition: %v", err)
		}
		return idx
	}())

	resId := ids.ResourceId("greeting.hello")
	g.Expect(f.b.AddLooseCandidate(resId, ids.ResourceName("hello"), 0, none, ids.ConditionPriority(10), resources.Candidate{
		InstanceValue: json.RawMessage(`{"msg":"Hello","casual":"Hi"}`), MergeMethod: resources.MergeReplace, Completeness: resources.Full,
	})).To(Succeed())
	g.Expect(f.b.AddLooseCandidate(resId, ids.ResourceName("hello"), 0, fr, ids.ConditionPriority(100), resources.Candidate{
		InstanceValue: json.RawMessage(`{"msg":"Bonjour"}`), MergeMethod: resources.MergeAugment, Completeness: resources.Partial,
	})).To(Succeed())

	snap, err := f.b.Seal()
	g.Expect(err).NotTo(HaveOccurred())

	res := New(snap)
	derived, err := res.WithContext(map[string]string{"language": "fr"})
	g.Expect(err).NotTo(HaveOccurred())

	out, err := derived.Resolve(resId)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(out).To(MatchJSON(`{"msg":"Bonjour","casual":"Hi"}`))
}

func TestResolveFailsWithNoFullCandidate(t *testing.T) {
	g := NewWithT(t)
	f := newFixture(t)

	fr := f.conditionSet(t, f.condition(t, "fr"))
	resId := ids.ResourceId("greeting.hello")
	g.Expect(f.b.AddLooseCandidate(resId, ids.ResourceName("hello"), 0, fr, ids.DefaultConditionPriority, resources.Candidate{
		InstanceValue: json.RawMessage(`{"msg":"Bonjour"}`), MergeMethod: resources.MergeAugment, Completeness: resources.Partial,
	})).To(Succeed())

	snap, err := f.b.Seal()
	g.Expect(err).NotTo(HaveOccurred())

	res := New(snap)
	derived, err := res.WithContext(map[string]string{"language": "fr"})
	g.Expect(err).NotTo(HaveOccurred())

	_, err = derived.Resolve(resId)
	g.Expect(err).To(MatchError(errutil.ErrNoFullCandidate))
}

func TestWithContextRejectsUnknownQualifier(t *testing.T) {
	g := NewWithT(t)
	f := newFixture(t)

	snap, err := f.b.Seal()
	g.Expect(err).NotTo(HaveOccurred())

	res := New(snap)
	_, err = res.WithContext(map[string]string{"bogus": "x"})
	g.Expect(err).To(HaveOccurred())
}

func TestResolveIsIdempotent(t *testing.T) {
	g := NewWithT(t)
	f := newFixture(t)

	en := f.conditionSet(t, f.condition(t, "en"))
	resId := ids.ResourceId("greeting.hello")
	g.Expect(f.b.AddLooseCandidate(resId, ids.ResourceName("hello"), 0, en, ids.DefaultConditionPriority, resources.Candidate{
		InstanceValue: json.RawMessage(`{"msg":"Hello"}`), MergeMethod: resources.MergeReplace, Completeness: resources.Full,
	})).To(Succeed())

	snap, err := f.b.Seal()
	g.Expect(err).NotTo(HaveOccurred())

	res, err := New(snap).WithContext(map[string]string{"language": "en"})
	g.Expect(err).NotTo(HaveOccurred())
	out1, err := res.Resolve(resId)
	g.Expect(err).NotTo(HaveOccurred())
	out2, err := res.Resolve(resId)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(out1).To(MatchJSON(string(out2)))
}

func TestResolveConcurrentlyResolvesAllIds(t *testing.T) {
	g := NewWithT(t)
	f := newFixture(t)

	en := f.conditionSet(t, f.condition(t, "en"))
	id1 := ids.ResourceId("greeting.hello")
	id2 := ids.ResourceId("greeting.bye")
	g.Expect(f.b.AddLooseCandidate(id1, ids.ResourceName("hello"), 0, en, ids.DefaultConditionPriority, resources.Candidate{
		InstanceValue: json.RawMessage(`{"msg":"Hello"}`), MergeMethod: resources.MergeReplace, Completeness: resources.Full,
	})).To(Succeed())
	g.Expect(f.b.AddLooseCandidate(id2, ids.ResourceName("bye"), 0, en, ids.DefaultConditionPriority, resources.Candidate{
		InstanceValue: json.RawMessage(`{"msg":"Bye"}`), MergeMethod: resources.MergeReplace, Completeness: resources.Full,
	})).To(Succeed())

	snap, err := f.b.Seal()
	g.Expect(err).NotTo(HaveOccurred())

	res, err := New(snap).WithContext(map[string]string{"language": "en"})
	g.Expect(err).NotTo(HaveOccurred())
	out, err := res.ResolveConcurrently(context.Background(), []ids.ResourceId{id1, id2})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(out).To(HaveLen(2))
	g.Expect(out[id1]).To(MatchJSON(`{"msg":"Hello"}`))
}

func TestResolveComposedResourceTree(t *testing.T) {
	g := NewWithT(t)
	f := newFixture(t)

	en := f.conditionSet(t, f.condition(t, "en"))
	id1 := ids.ResourceId("greeting.hello")
	g.Expect(f.b.AddLooseCandidate(id1, ids.ResourceName("hello"), 0, en, ids.DefaultConditionPriority, resources.Candidate{
		InstanceValue: json.RawMessage(`{"msg":"Hello"}`), MergeMethod: resources.MergeReplace, Completeness: resources.Full,
	})).To(Succeed())

	snap, err := f.b.Seal()
	g.Expect(err).NotTo(HaveOccurred())

	res, err := New(snap).WithContext(map[string]string{"language": "en"})
	g.Expect(err).NotTo(HaveOccurred())
	out, err := res.ResolveComposedResourceTree("", ComposeOptions{})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(out).To(MatchJSON(`{"greeting":{"hello":{"msg":"Hello"}}}`))
}
