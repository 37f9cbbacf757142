// Package foresttest is a small DSL for building pkg/forest trees in
// tests, named and shaped after the forest-construction test helper the
// teacher repo's own test suites reference but keep private to their
// package - here factored out so every package that tests against a tree
// shape can share it.
package foresttest

import (
	"strings"

	"github.com/resolvectx/resloc/pkg/forest"
	"github.com/resolvectx/resloc/pkg/ids"
)

// Spec is a one-line tree declaration: "a/b/c" creates branches a, a.b and
// a leaf at a.b.c holding value. Multiple Specs with a shared prefix share
// the same branch nodes.
type Spec struct {
	Path  string
	Value string
}

// Build constructs a *forest.Tree[string] from specs, for tests that only
// care about shape, not about real resource payloads. Path segments are
// "/"-separated for readability; they are joined with "." before handing
// to forest.
func Build(specs ...Spec) (*forest.Tree[string], error) {
	entries := make([]forest.Entry[string], 0, len(specs))
	for _, s := range specs {
		segs := strings.Split(s.Path, "/")
		id, err := ids.JoinResourceIds(toNames(segs)...)
		if err != nil {
			return nil, err
		}
		entries = append(entries, forest.Entry[string]{Id: id, Resource: s.Value})
	}
	return forest.BuildTree(entries)
}

func toNames(segs []string) []ids.ResourceName {
	out := make([]ids.ResourceName, len(segs))
	for i, s := range segs {
		out[i] = ids.ResourceName(s)
	}
	return out
}

// MustBuild is Build, panicking on error - for test setup where a build
// failure means the test itself is broken, not the code under test.
func MustBuild(specs ...Spec) *forest.Tree[string] {
	t, err := Build(specs...)
	if err != nil {
		panic(err)
	}
	return t
}
