// Package qualtypes implements the qualifier and qualifier-type registry:
// typed qualifiers and the per-type value matching and validation
// arithmetic that conditions build on.
package qualtypes

import (
	"fmt"

	"github.com/resolvectx/resloc/pkg/ids"
)

// QualifierType is the contract every built-in and custom qualifier type
// implements. Match is total over pairs that individually validated via
// IsValidConditionValue/IsValidContextValue; it never fails.
type QualifierType interface {
	Name() ids.QualifierTypeName
	IsValidConditionValue(v string) bool
	IsValidContextValue(v string) bool
	Match(conditionValue, contextValue string) ids.QualifierMatchScore
}

// Qualifier binds a name to a qualifier-type index and a default
// condition priority used when a declaration omits one.
type Qualifier struct {
	Name            ids.QualifierName
	TypeIndex       ids.QualifierTypeIndex
	DefaultPriority ids.ConditionPriority
}

// Registry is a sealed-after-configuration lookup table of QualifierType
// implementations and the Qualifiers bound to them, indexed both by name
// and by dense index, building static lookup tables once at startup but
// scoped to a single registry instance rather than package globals, since
// a process may host more than one resolution engine.
type Registry struct {
	types     []QualifierType
	typeByNm  map[ids.QualifierTypeName]ids.QualifierTypeIndex
	quals     []Qualifier
	qualByNm  map[ids.QualifierName]ids.QualifierIndex
	sealed    bool
}

// NewRegistry creates an empty, mutable registry.
func NewRegistry() *Registry {
	return &Registry{
		typeByNm: map[ids.QualifierTypeName]ids.QualifierTypeIndex{},
		qualByNm: map[ids.QualifierName]ids.QualifierIndex{},
	}
}

// AddQualifierType registers qt, idempotent by name: re-registering the
// same name with an identically-behaving instance is a no-op that returns
// the existing index; anything else is a conflict.
func (r *Registry) AddQualifierType(qt QualifierType) (ids.QualifierTypeIndex, error) {
	if r.sealed {
		return 0, fmt.Errorf("%s: registry is sealed", qt.Name())
	}
	if idx, ok := r.typeByNm[qt.Name()]; ok {
		if fmt.Sprintf("%#v", r.types[idx]) != fmt.Sprintf("%#v", qt) {
			return 0, fmt.Errorf("%s: qualifier type already registered with a different configuration", qt.Name())
		}
		return idx, nil
	}
	idx := ids.QualifierTypeIndex(len(r.types))
	r.types = append(r.types, qt)
	r.typeByNm[qt.Name()] = idx
	return idx, nil
}

// AddQualifier binds name to the qualifier type at typeIdx, idempotent by
// name; a name collision with a differing type index is a conflict.
func (r *Registry) AddQualifier(name ids.QualifierName, typeIdx ids.QualifierTypeIndex, defaultPriority ids.ConditionPriority) (ids.QualifierIndex, error) {
	if r.sealed {
		return 0, fmt.Errorf("%s: registry is sealed", name)
	}
	if int(typeIdx) < 0 || int(typeIdx) >= len(r.types) {
		return 0, fmt.Errorf("%d: not a valid qualifier type index", typeIdx)
	}
	if idx, ok := r.qualByNm[name]; ok {
		existing := r.quals[idx]
		if existing.TypeIndex != typeIdx {
			return 0, fmt.Errorf("%s: qualifier already registered with a different type", name)
		}
		return idx, nil
	}
	idx := ids.QualifierIndex(len(r.quals))
	r.quals = append(r.quals, Qualifier{Name: name, TypeIndex: typeIdx, DefaultPriority: defaultPriority})
	r.qualByNm[name] = idx
	return idx, nil
}

// Seal freezes the registry; further Add* calls fail.
func (r *Registry) Seal() { r.sealed = true }

// QualifierTypeByIndex returns the QualifierType at idx.
func (r *Registry) QualifierTypeByIndex(idx ids.QualifierTypeIndex) (QualifierType, error) {
	if int(idx) < 0 || int(idx) >= len(r.types) {
		return nil, fmt.Errorf("%d: qualifier type index not found", idx)
	}
	return r.types[idx], nil
}

// QualifierTypeByName looks up a qualifier type by name.
func (r *Registry) QualifierTypeByName(name ids.QualifierTypeName) (ids.QualifierTypeIndex, QualifierType, error) {
	idx, ok := r.typeByNm[name]
	if !ok {
		return 0, nil, fmt.Errorf("%s: qualifier type not found", name)
	}
	return idx, r.types[idx], nil
}

// QualifierByIndex returns the Qualifier at idx.
func (r *Registry) QualifierByIndex(idx ids.QualifierIndex) (Qualifier, error) {
	if int(idx) < 0 || int(idx) >= len(r.quals) {
		return Qualifier{}, fmt.Errorf("%d: qualifier index not found", idx)
	}
	return r.quals[idx], nil
}

// QualifierByName looks up a qualifier by name.
func (r *Registry) QualifierByName(name ids.QualifierName) (ids.QualifierIndex, Qualifier, error) {
	idx, ok := r.qualByNm[name]
	if !ok {
		return 0, Qualifier{}, fmt.Errorf("%s: qualifier not found", name)
	}
	return idx, r.quals[idx], nil
}

// NumQualifiers returns the number of interned qualifiers.
func (r *Registry) NumQualifiers() int { return len(r.quals) }

// NumQualifierTypes returns the number of interned qualifier types.
func (r *Registry) NumQualifierTypes() int { return len(r.types) }
