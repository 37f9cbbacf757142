package resolver_test

import (
	"encoding/json"
	"testing/fstest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/resolvectx/resloc/internal/errutil"
	"github.com/resolvectx/resloc/pkg/builder"
	"github.com/resolvectx/resloc/pkg/conditions"
	"github.com/resolvectx/resloc/pkg/ids"
	"github.com/resolvectx/resloc/pkg/importer"
	"github.com/resolvectx/resloc/pkg/qualtypes"
	"github.com/resolvectx/resloc/pkg/resolver"
	"github.com/resolvectx/resloc/pkg/resources"
)

// newRegionalBuilder wires up the literal region hierarchy and language
// qualifier every scenario below shares: global -> na -> us -> us-ca.
func newRegionalBuilder() *builder.Builder {
	qt := qualtypes.NewRegistry()

	regionTypeI, err := qt.AddQualifierType(qualtypes.NewHierarchicalLiteral("region", map[string]string{
		"us-ca": "us",
		"us":    "na",
		"na":    "global",
	}))
	Expect(err).NotTo(HaveOccurred())
	_, err = qt.AddQualifier("region", regionTypeI, ids.DefaultConditionPriority)
	Expect(err).NotTo(HaveOccurred())

	langTypeI, err := qt.AddQualifierType(qualtypes.NewLanguage("language"))
	Expect(err).NotTo(HaveOccurred())
	_, err = qt.AddQualifier("language", langTypeI, ids.DefaultConditionPriority)
	Expect(err).NotTo(HaveOccurred())

	rt := resources.NewRegistry()
	_, err = rt.Add(resources.NewJSONResourceType("json", nil))
	Expect(err).NotTo(HaveOccurred())

	return builder.New(qt, rt)
}

func langCondition(b *builder.Builder, value string, priority ids.ConditionPriority) ids.ConditionIndex {
	c, err := conditions.NewBinary(0, "language", conditions.OpMatches, value, priority, nil, nil)
	Expect(err).NotTo(HaveOccurred())
	idx, err := b.AddCondition(c)
	Expect(err).NotTo(HaveOccurred())
	return idx
}

var _ = Describe("Resolving against a qualified context", func() {
	var b *builder.Builder

	BeforeEach(func() {
		b = newRegionalBuilder()
	})

	It("picks the exact-matching candidate over a non-matching one", func() {
		en := mustConditionSet(b, langCondition(b, "en", ids.DefaultConditionPriority))
		fr := mustConditionSet(b, langCondition(b, "fr", ids.DefaultConditionPriority))

		resId := ids.ResourceId("greeting.hello")
		Expect(b.AddLooseCandidate(resId, "hello", 0, en, ids.DefaultConditionPriority, resources.Candidate{
			InstanceValue: json.RawMessage(`{"msg":"Hello"}`), MergeMethod: resources.MergeReplace, Completeness: resources.Full,
		})).To(Succeed())
		Expect(b.AddLooseCandidate(resId, "hello", 0, fr, ids.DefaultConditionPriority, resources.Candidate{
			InstanceValue: json.RawMessage(`{"msg":"Bonjour"}`), MergeMethod: resources.MergeReplace, Completeness: resources.Full,
		})).To(Succeed())

		snap, err := b.Seal()
		Expect(err).NotTo(HaveOccurred())

		res, err := resolver.New(snap).WithContext(map[string]string{"language": "fr"})
		Expect(err).NotTo(HaveOccurred())
		out, err := res.Resolve(resId)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchJSON(`{"msg":"Bonjour"}`))
	})

	It("augments a lower-priority full candidate with a higher-priority partial one", func() {
		none := mustConditionSet(b)
		fr := mustConditionSet(b, langCondition(b, "fr", 100))

		resId := ids.ResourceId("greeting.hello")
		Expect(b.AddLooseCandidate(resId, "hello", 0, none, ids.ConditionPriority(10), resources.Candidate{
			InstanceValue: json.RawMessage(`{"msg":"Hello","casual":"Hi"}`), MergeMethod: resources.MergeReplace, Completeness: resources.Full,
		})).To(Succeed())
		Expect(b.AddLooseCandidate(resId, "hello", 0, fr, ids.ConditionPriority(100), resources.Candidate{
			InstanceValue: json.RawMessage(`{"msg":"Bonjour"}`), MergeMethod: resources.MergeAugment, Completeness: resources.Partial,
		})).To(Succeed())

		snap, err := b.Seal()
		Expect(err).NotTo(HaveOccurred())

		res, err := resolver.New(snap).WithContext(map[string]string{"language": "fr"})
		Expect(err).NotTo(HaveOccurred())
		out, err := res.Resolve(resId)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchJSON(`{"msg":"Bonjour","casual":"Hi"}`))
	})

	It("fails with NoFullCandidate when every candidate is partial", func() {
		fr := mustConditionSet(b, langCondition(b, "fr", ids.DefaultConditionPriority))

		resId := ids.ResourceId("greeting.hello")
		Expect(b.AddLooseCandidate(resId, "hello", 0, fr, ids.DefaultConditionPriority, resources.Candidate{
			InstanceValue: json.RawMessage(`{"msg":"Bonjour"}`), MergeMethod: resources.MergeAugment, Completeness: resources.Partial,
		})).To(Succeed())

		snap, err := b.Seal()
		Expect(err).NotTo(HaveOccurred())

		res, err := resolver.New(snap).WithContext(map[string]string{"language": "fr"})
		Expect(err).NotTo(HaveOccurred())
		_, err = res.Resolve(resId)
		Expect(err).To(MatchError(errutil.ErrNoFullCandidate))
	})

	It("resolves a region hierarchy value against an ancestor condition", func() {
		na := mustConditionSet(b, func() ids.ConditionIndex {
			c, err := conditions.NewBinary(0, "region", conditions.OpMatches, "na", ids.DefaultConditionPriority, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			idx, err := b.AddCondition(c)
			Expect(err).NotTo(HaveOccurred())
			return idx
		}())

		resId := ids.ResourceId("pricing.page")
		Expect(b.AddLooseCandidate(resId, "page", 0, na, ids.DefaultConditionPriority, resources.Candidate{
			InstanceValue: json.RawMessage(`{"currency":"USD"}`), MergeMethod: resources.MergeReplace, Completeness: resources.Full,
		})).To(Succeed())

		snap, err := b.Seal()
		Expect(err).NotTo(HaveOccurred())

		res, err := resolver.New(snap).WithContext(map[string]string{"region": "us-ca"})
		Expect(err).NotTo(HaveOccurred())
		out, err := res.Resolve(resId)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchJSON(`{"currency":"USD"}`))
	})
})

var _ = Describe("Building a resource tree", func() {
	It("rejects a resource id declared as both a leaf and a branch prefix", func() {
		b := newRegionalBuilder()
		none, err := b.AddConditionSet(nil)
		Expect(err).NotTo(HaveOccurred())
		decision, err := b.AddDecision([]ids.ConditionSetIndex{none})
		Expect(err).NotTo(HaveOccurred())

		Expect(b.AddResource(ids.ResourceId("app.ui"), "ui", 0, decision, []resources.Candidate{
			{InstanceValue: json.RawMessage(`{}`), MergeMethod: resources.MergeReplace, Completeness: resources.Full},
		})).To(Succeed())
		Expect(b.AddResource(ids.ResourceId("app.ui.home"), "home", 0, decision, []resources.Candidate{
			{InstanceValue: json.RawMessage(`{}`), MergeMethod: resources.MergeReplace, Completeness: resources.Full},
		})).To(Succeed())

		_, err = b.Seal()
		Expect(err).To(MatchError(errutil.ErrTreeShapeConflict))
	})
})

var _ = Describe("Interning a condition declared more than once", func() {
	It("returns the same index instead of allocating a duplicate", func() {
		b := newRegionalBuilder()
		i1 := langCondition(b, "fr", ids.DefaultConditionPriority)
		i2 := langCondition(b, "fr", ids.DefaultConditionPriority)
		Expect(i1).To(Equal(i2))
	})
})

var _ = Describe("Importing a filename-encoded condition", func() {
	It("resolves the variant under its encoded context and falls back otherwise", func() {
		b := newRegionalBuilder()
		memFS := fstest.MapFS{
			"welcome.json":             {Data: []byte(`{"msg":"Hello"}`)},
			"welcome.language=fr.json": {Data: []byte(`{"msg":"Bonjour"}`)},
		}

		mgr := importer.NewManager(&importer.FsItemImporter{FS: memFS}, &importer.JSONImporter{}, &importer.CollectionImporter{})
		root := importer.FsItemImportable{Item: importer.FileTreeItem{Path: ".", Name: ".", IsDir: true}}
		Expect(mgr.Import(root, b)).To(Succeed())

		snap, err := b.Seal()
		Expect(err).NotTo(HaveOccurred())

		base, err := resolver.New(snap).Resolve("welcome")
		Expect(err).NotTo(HaveOccurred())
		Expect(base).To(MatchJSON(`{"msg":"Hello"}`))

		fr, err := resolver.New(snap).WithContext(map[string]string{"language": "fr"})
		Expect(err).NotTo(HaveOccurred())
		out, err := fr.Resolve("welcome")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchJSON(`{"msg":"Bonjour"}`))
	})
})

func mustConditionSet(b *builder.Builder, conds ...ids.ConditionIndex) ids.ConditionSetIndex {
	idx, err := b.AddConditionSet(conds)
	Expect(err).NotTo(HaveOccurred())
	return idx
}
