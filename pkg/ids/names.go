// Package ids implements the validated scalar domain: opaque wrappers
// around strings and non-negative integers that are guaranteed valid once
// constructed. Downstream code never re-validates a value it receives from
// this package.
package ids

import (
	"fmt"
	"regexp"
	"strings"
)

// nameRE is the grammar shared by qualifier, qualifier-type, resource, and
// resource-type names.
var nameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// QualifierName is a validated qualifier name, e.g. "language".
type QualifierName string

// QualifierTypeName is a validated qualifier-type name, e.g. "language".
type QualifierTypeName string

// ResourceName is a single, validated path segment of a ResourceId.
type ResourceName string

// ResourceTypeName is a validated resource-type name, e.g. "json".
type ResourceTypeName string

// IsValidName reports whether s satisfies the shared name grammar.
func IsValidName(s string) bool {
	return nameRE.MatchString(s)
}

func newName(kind, s string) (string, error) {
	if !IsValidName(s) {
		return "", fmt.Errorf("%s: not a valid %s", s, kind)
	}
	return s, nil
}

// ToQualifierName validates and converts s.
func ToQualifierName(s string) (QualifierName, error) {
	v, err := newName("qualifier name", s)
	return QualifierName(v), err
}

// ToQualifierTypeName validates and converts s.
func ToQualifierTypeName(s string) (QualifierTypeName, error) {
	v, err := newName("qualifier type name", s)
	return QualifierTypeName(v), err
}

// ToResourceName validates and converts s.
func ToResourceName(s string) (ResourceName, error) {
	v, err := newName("resource name", s)
	return ResourceName(v), err
}

// ToResourceTypeName validates and converts s.
func ToResourceTypeName(s string) (ResourceTypeName, error) {
	v, err := newName("resource type name", s)
	return ResourceTypeName(v), err
}

func (n QualifierName) String() string     { return string(n) }
func (n QualifierTypeName) String() string { return string(n) }
func (n ResourceName) String() string      { return string(n) }
func (n ResourceTypeName) String() string  { return string(n) }

// JoinResourceNames is the split/join primitive underlying ResourceId:
// it joins validated names with "." while dropping empty segments, so
// that join(..., "") == join(...).
func JoinResourceNames(names ...ResourceName) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		s := string(n)
		if s == "" {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ".")
}
