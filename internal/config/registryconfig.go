// Package config loads the qualifier-type, qualifier, and resource-type
// registries a resolution engine is built from, from a declarative YAML
// document - the local-file analogue of the typed configuration objects
// Kubernetes custom resources declare.
package config

import (
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/resolvectx/resloc/pkg/ids"
	"github.com/resolvectx/resloc/pkg/qualtypes"
	"github.com/resolvectx/resloc/pkg/resources"
)

// QualifierTypeKind names one of the built-in qualifier type
// constructors.
type QualifierTypeKind string

const (
	KindLiteral               QualifierTypeKind = "literal"
	KindHierarchicalLiteral   QualifierTypeKind = "hierarchicalLiteral"
	KindLanguage              QualifierTypeKind = "language"
	KindTerritory             QualifierTypeKind = "territory"
	KindHierarchicalTerritory QualifierTypeKind = "hierarchicalTerritory"
)

// QualifierTypeSpec declares one qualifier type to register.
type QualifierTypeSpec struct {
	Name      string            `json:"name"`
	Kind      QualifierTypeKind `json:"kind"`
	Allowed   []string          `json:"allowed,omitempty"`
	Hierarchy map[string]string `json:"hierarchy,omitempty"`
}

// QualifierSpec binds a qualifier name to a registered type.
type QualifierSpec struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	DefaultPriority *int   `json:"defaultPriority,omitempty"`
}

// ResourceTypeSpec declares one resource type to register. Only the
// built-in json type is currently expressible from config; custom
// ResourceType implementations are wired in code via Registry.Add.
type ResourceTypeSpec struct {
	Name string `json:"name"`
}

// RegistrySpec is the top-level YAML document shape.
type RegistrySpec struct {
	QualifierTypes []QualifierTypeSpec `json:"qualifierTypes"`
	Qualifiers     []QualifierSpec     `json:"qualifiers"`
	ResourceTypes  []ResourceTypeSpec  `json:"resourceTypes"`
}

// ParseRegistrySpec parses a YAML (or JSON) document into a RegistrySpec.
func ParseRegistrySpec(raw []byte) (RegistrySpec, error) {
	var spec RegistrySpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return RegistrySpec{}, fmt.Errorf("parsing registry config: %w", err)
	}
	return spec, nil
}

// BuildRegistries constructs and seals-ready (but not yet sealed)
// qualifier-type and resource-type registries from spec. The registries
// are returned unsealed: pkg/builder.Builder.Seal takes care of sealing
// them once every resource has been registered.
func BuildRegistries(spec RegistrySpec) (*qualtypes.Registry, *resources.Registry, error) {
	qt := qualtypes.NewRegistry()
	typeIdxByName := map[string]ids.QualifierTypeIndex{}

	for _, ts := range spec.QualifierTypes {
		name, err := ids.ToQualifierTypeName(ts.Name)
		if err != nil {
			return nil, nil, err
		}
		qualType, err := buildQualifierType(name, ts)
		if err != nil {
			return nil, nil, fmt.Errorf("qualifier type %s: %w", ts.Name, err)
		}
		idx, err := qt.AddQualifierType(qualType)
		if err != nil {
			return nil, nil, err
		}
		typeIdxByName[ts.Name] = idx
	}

	for _, qs := range spec.Qualifiers {
		name, err := ids.ToQualifierName(qs.Name)
		if err != nil {
			return nil, nil, err
		}
		typeIdx, ok := typeIdxByName[qs.Type]
		if !ok {
			return nil, nil, fmt.Errorf("qualifier %s: undeclared qualifier type %s", qs.Name, qs.Type)
		}
		priority := ids.DefaultConditionPriority
		if qs.DefaultPriority != nil {
			priority = ids.ConditionPriority(*qs.DefaultPriority)
		}
		if _, err := qt.AddQualifier(name, typeIdx, priority); err != nil {
			return nil, nil, err
		}
	}

	rt := resources.NewRegistry()
	sawJSON := false
	for _, rs := range spec.ResourceTypes {
		name, err := ids.ToResourceTypeName(rs.Name)
		if err != nil {
			return nil, nil, err
		}
		if _, err := rt.Add(resources.NewJSONResourceType(name, nil)); err != nil {
			return nil, nil, err
		}
		if rs.Name == "json" {
			sawJSON = true
		}
	}
	if !sawJSON {
		// every resolution engine can store plain json candidates even if
		// the config declares none explicitly.
		if _, err := rt.Add(resources.NewJSONResourceType("json", nil)); err != nil {
			return nil, nil, err
		}
	}

	return qt, rt, nil
}

func buildQualifierType(name ids.QualifierTypeName, ts QualifierTypeSpec) (qualtypes.QualifierType, error) {
	switch ts.Kind {
	case KindLiteral:
		return qualtypes.NewLiteral(name, ts.Allowed...), nil
	case KindHierarchicalLiteral:
		return qualtypes.NewHierarchicalLiteral(name, ts.Hierarchy), nil
	case KindLanguage:
		return qualtypes.NewLanguage(name), nil
	case KindTerritory:
		return qualtypes.NewTerritory(name), nil
	case KindHierarchicalTerritory:
		return qualtypes.NewHierarchicalTerritory(name, ts.Hierarchy), nil
	default:
		return nil, fmt.Errorf("%s: unknown qualifier type kind", ts.Kind)
	}
}
