package importer

import (
	"encoding/json"
	"fmt"

	"github.com/resolvectx/resloc/pkg/builder"
	"github.com/resolvectx/resloc/pkg/conditions"
	"github.com/resolvectx/resloc/pkg/ids"
	"github.com/resolvectx/resloc/pkg/resources"
)

// CollectionImporter consumes a parsed ResourceCollection or
// ResourceTreeDecl and registers its resources/candidates against a
// Builder, folding the importable's ImportContext (base id prefix plus
// inherited conditions) into every declaration it walks.
type CollectionImporter struct{}

func (i *CollectionImporter) Handles(k Kind) bool {
	return k == KindResourceCollection || k == KindResourceTree
}

func (i *CollectionImporter) Import(item Importable, b *builder.Builder) (Result, error) {
	switch it := item.(type) {
	case ResourceCollectionImportable:
		ctx := it.Ctx
		if len(it.Collection.Context) > 0 {
			extra, err := declsFromMap(it.Collection.Context)
			if err != nil {
				return Result{}, err
			}
			ctx = ctx.WithConditions(extra)
		}
		for _, r := range it.Collection.Resources {
			if err := i.importLooseResource(b, ctx, r); err != nil {
				return Result{}, fmt.Errorf("resource %s: %w", r.Id, err)
			}
		}
		for _, c := range it.Collection.Candidates {
			if err := i.importLooseCandidate(b, ctx, c); err != nil {
				return Result{}, fmt.Errorf("candidate %s: %w", c.Id, err)
			}
		}
		return Result{Detail: Consumed}, nil

	case ResourceTreeImportable:
		if err := i.walkTree(b, it.Ctx, it.Tree.Raw, nil); err != nil {
			return Result{}, err
		}
		return Result{Detail: Consumed}, nil

	default:
		return Result{}, fmt.Errorf("collectionimporter: unexpected importable type %T", item)
	}
}

func declsFromMap(m map[string]string) ([]ConditionDecl, error) {
	decls := make([]ConditionDecl, 0, len(m))
	for k, v := range m {
		qn, err := ids.ToQualifierName(k)
		if err != nil {
			return nil, err
		}
		decls = append(decls, ConditionDecl{QualifierName: qn, Value: v, Priority: ids.DefaultConditionPriority})
	}
	return decls, nil
}

func (i *CollectionImporter) importLooseResource(b *builder.Builder, ctx ImportContext, r LooseResourceJSON) error {
	declaredId, err := ids.ToResourceId(r.Id)
	if err != nil {
		return err
	}
	resourceId, err := ctx.ResolveId(declaredId)
	if err != nil {
		return err
	}
	name := resourceId.Basename()

	typeName, err := ids.ToResourceTypeName(r.ResourceTypeName)
	if err != nil {
		return err
	}
	typeIdx, _, err := b.ResTypes().ByName(typeName)
	if err != nil {
		return err
	}

	if len(r.Conditions) != len(r.InstanceValues) {
		return fmt.Errorf("%s: conditions and instanceValues must have the same length", r.Id)
	}

	for n := range r.Conditions {
		decls, err := declsFromMap(r.Conditions[n])
		if err != nil {
			return err
		}
		all := append(append([]ConditionDecl(nil), ctx.Conditions...), decls...)
		csIdx, priority, err := internConditionSet(b, all)
		if err != nil {
			return err
		}
		cand := resources.Candidate{
			ConditionSetIndex: csIdx,
			InstanceValue:     r.InstanceValues[n],
			MergeMethod:       resources.MergeReplace,
			Completeness:      resources.Full,
		}
		if err := b.AddLooseCandidate(resourceId, name, typeIdx, csIdx, priority, cand); err != nil {
			return err
		}
	}
	return nil
}

func (i *CollectionImporter) importLooseCandidate(b *builder.Builder, ctx ImportContext, c LooseCandidateJSON) error {
	declaredId, err := ids.ToResourceId(c.Id)
	if err != nil {
		return err
	}
	resourceId, err := ctx.ResolveId(declaredId)
	if err != nil {
		return err
	}
	name := resourceId.Basename()

	typeName := c.ResourceTypeName
	if typeName == "" {
		typeName = "json"
	}
	rtName, err := ids.ToResourceTypeName(typeName)
	if err != nil {
		return err
	}
	typeIdx, _, err := b.ResTypes().ByName(rtName)
	if err != nil {
		return err
	}

	decls, err := declsFromMap(c.Conditions)
	if err != nil {
		return err
	}
	all := append(append([]ConditionDecl(nil), ctx.Conditions...), decls...)
	csIdx, priority, err := internConditionSet(b, all)
	if err != nil {
		return err
	}

	method := resources.MergeMethod(c.MergeMethod)
	if method == "" {
		method = resources.MergeReplace
	}
	completeness := resources.Full
	if c.Partial {
		completeness = resources.Partial
	}
	if c.Priority != nil {
		priority = ids.ConditionPriority(*c.Priority)
	}

	cand := resources.Candidate{
		ConditionSetIndex: csIdx,
		InstanceValue:     c.JSON,
		MergeMethod:       method,
		Completeness:      completeness,
	}
	return b.AddLooseCandidate(resourceId, name, typeIdx, csIdx, priority, cand)
}

// walkTree recursively imports a nested resource-tree document: object
// keys not shaped like a treeLeaf are branches (segments appended to the
// path so far), treeLeaf-shaped values are candidates for the resource at
// that path.
func (i *CollectionImporter) walkTree(b *builder.Builder, ctx ImportContext, raw []byte, path []ids.ResourceName) error {
	if leaf, ok := isTreeLeaf(raw); ok {
		if len(path) == 0 {
			return fmt.Errorf("resource tree: leaf candidate at the root has no resource id")
		}
		resourceId, err := ids.JoinResourceIds(path...)
		if err != nil {
			return err
		}
		candJSON := LooseCandidateJSON{
			Id:         string(resourceId),
			Conditions: leaf.Conditions,
			JSON:       leaf.JSON,
			MergeMethod: leaf.MergeMethod,
			Partial:     leaf.Partial,
			Priority:    leaf.Priority,
		}
		return i.importLooseCandidate(b, ctx, candJSON)
	}

	var branch map[string]json.RawMessage
	if err := json.Unmarshal(raw, &branch); err != nil {
		return fmt.Errorf("resource tree: %w", err)
	}
	for key, childRaw := range branch {
		segName, err := ids.ToResourceName(key)
		if err != nil {
			return err
		}
		if err := i.walkTree(b, ctx, childRaw, append(append([]ids.ResourceName(nil), path...), segName)); err != nil {
			return err
		}
	}
	return nil
}

// internConditionSet interns every ConditionDecl's qualifier/condition,
// then the set they form, returning the set's index and the highest
// member priority (a decision's entries order by their
// highest-priority member).
func internConditionSet(b *builder.Builder, decls []ConditionDecl) (ids.ConditionSetIndex, ids.ConditionPriority, error) {
	if len(decls) == 0 {
		c, err := conditions.NewUnconditional(conditions.OpAlways)
		if err != nil {
			return 0, 0, err
		}
		cIdx, err := b.AddCondition(c)
		if err != nil {
			return 0, 0, err
		}
		csIdx, err := b.AddConditionSet([]ids.ConditionIndex{cIdx})
		return csIdx, ids.DefaultConditionPriority, err
	}

	indices := make([]ids.ConditionIndex, 0, len(decls))
	maxPriority := ids.ConditionPriority(0)
	for _, d := range decls {
		qualIdx, qual, err := b.QualTypes().QualifierByName(d.QualifierName)
		if err != nil {
			return 0, 0, err
		}
		qt, err := b.QualTypes().QualifierTypeByIndex(qual.TypeIndex)
		if err != nil {
			return 0, 0, err
		}
		priority := d.Priority
		if priority == 0 {
			priority = qual.DefaultPriority
		}
		if priority > maxPriority {
			maxPriority = priority
		}
		c, err := conditions.NewBinary(qualIdx, d.QualifierName, conditions.OpMatches, d.Value, priority, nil, qt.IsValidConditionValue)
		if err != nil {
			return 0, 0, err
		}
		cIdx, err := b.AddCondition(c)
		if err != nil {
			return 0, 0, err
		}
		indices = append(indices, cIdx)
	}
	csIdx, err := b.AddConditionSet(indices)
	return csIdx, maxPriority, err
}
