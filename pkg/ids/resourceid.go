package ids

import (
	"fmt"
	"strings"
)

// ResourceId is a dot-separated, validated sequence of ResourceName
// segments, e.g. "app.ui.welcome". The empty string is never a valid id.
type ResourceId string

// IsValidResourceId reports whether s is a non-empty, dot-separated
// sequence of valid ResourceName segments.
func IsValidResourceId(s string) bool {
	if s == "" {
		return false
	}
	for _, seg := range strings.Split(s, ".") {
		if !IsValidName(seg) {
			return false
		}
	}
	return true
}

// ToResourceId validates and converts s.
func ToResourceId(s string) (ResourceId, error) {
	if !IsValidResourceId(s) {
		return "", fmt.Errorf("%s: not a valid resource id", s)
	}
	return ResourceId(s), nil
}

// Split decomposes a ResourceId into its validated segments, in order.
func (id ResourceId) Split() []ResourceName {
	parts := strings.Split(string(id), ".")
	names := make([]ResourceName, len(parts))
	for i, p := range parts {
		names[i] = ResourceName(p)
	}
	return names
}

// JoinResourceIds builds a ResourceId from validated segments, dropping
// empty segments as JoinResourceNames does. It is the inverse of Split:
// ToResourceId(JoinResourceIds(id.Split()...)) == id for any valid id.
func JoinResourceIds(names ...ResourceName) (ResourceId, error) {
	return ToResourceId(JoinResourceNames(names...))
}

// Basename returns the last segment of id, i.e. the leaf's own name.
func (id ResourceId) Basename() ResourceName {
	segs := id.Split()
	return segs[len(segs)-1]
}

// Parent returns the id of id's parent, and ok=false if id has no parent
// (i.e. id is a single segment, the child of the root).
func (id ResourceId) Parent() (ResourceId, bool) {
	segs := id.Split()
	if len(segs) <= 1 {
		return "", false
	}
	parent, _ := JoinResourceIds(segs[:len(segs)-1]...)
	return parent, true
}

// String implements fmt.Stringer.
func (id ResourceId) String() string { return string(id) }
