// Package importer implements the pluggable work-stack import scheduler
// tagged importable variants flowing through a chain of
// importers that progressively resolve paths into filesystem items, JSON,
// and finally builder registrations.
package importer

import (
	"encoding/json"

	"github.com/resolvectx/resloc/pkg/ids"
)

// Kind is the tagged discriminator every Importable exposes.
type Kind string

const (
	KindPath               Kind = "path"
	KindFsItem             Kind = "fsItem"
	KindJSON               Kind = "json"
	KindResourceCollection Kind = "resourceCollection"
	KindResourceTree       Kind = "resourceTree"
)

// ConditionDecl is one qualifier=value pair as it appears in an
// ImportContext or a loose candidate declaration, before interning.
type ConditionDecl struct {
	QualifierName ids.QualifierName
	Value         string
	Priority      ids.ConditionPriority
}

// ImportContext folds into every resource an importable eventually
// produces: baseId prefixes the resource id, Conditions append to every
// condition set the importable's resources are built from.
type ImportContext struct {
	BaseId     *ids.ResourceId
	Conditions []ConditionDecl
}

// WithBaseId returns a copy of c with BaseId set to the join of c.BaseId
// (if any) and id.
func (c ImportContext) WithBaseId(id ids.ResourceName) (ImportContext, error) {
	nc := c
	if c.BaseId == nil {
		joined, err := ids.JoinResourceIds(id)
		if err != nil {
			return ImportContext{}, err
		}
		nc.BaseId = &joined
	} else {
		joined, err := ids.JoinResourceIds(append(c.BaseId.Split(), id)...)
		if err != nil {
			return ImportContext{}, err
		}
		nc.BaseId = &joined
	}
	return nc, nil
}

// WithConditions returns a copy of c with extra appended to its
// Conditions.
func (c ImportContext) WithConditions(extra []ConditionDecl) ImportContext {
	nc := c
	nc.Conditions = append(append([]ConditionDecl(nil), c.Conditions...), extra...)
	return nc
}

// ResolveId joins c.BaseId (if any) with a resource's own declared id
// fragment. If the declared id is already absolute (non-empty and
// BaseId is nil) it is used as-is.
func (c ImportContext) ResolveId(declared ids.ResourceId) (ids.ResourceId, error) {
	if c.BaseId == nil {
		return declared, nil
	}
	return ids.JoinResourceIds(append(c.BaseId.Split(), declared.Split()...)...)
}

// Importable is the tagged union flowing through the scheduler.
type Importable interface {
	Kind() Kind
	Context() ImportContext
}

// PathImportable names a filesystem path still to be resolved.
type PathImportable struct {
	Path string
	Ctx  ImportContext
}

func (i PathImportable) Kind() Kind            { return KindPath }
func (i PathImportable) Context() ImportContext { return i.Ctx }

// FileTreeItem is a resolved filesystem entry: a file or a directory,
// named relative to whatever root a PathImporter/FsItemImporter was
// configured with.
type FileTreeItem struct {
	Path  string
	Name  string
	IsDir bool
}

// FsItemImportable carries a resolved filesystem entry.
type FsItemImportable struct {
	Item FileTreeItem
	Ctx  ImportContext
}

func (i FsItemImportable) Kind() Kind            { return KindFsItem }
func (i FsItemImportable) Context() ImportContext { return i.Ctx }

// JSONImportable carries raw, not-yet-classified JSON.
type JSONImportable struct {
	JSON json.RawMessage
	Ctx  ImportContext
}

func (i JSONImportable) Kind() Kind            { return KindJSON }
func (i JSONImportable) Context() ImportContext { return i.Ctx }

// ResourceCollectionImportable carries a parsed resource collection
// document (`{ context?, resources: [...], candidates: [...] }`).
type ResourceCollectionImportable struct {
	Collection ResourceCollection
	Ctx        ImportContext
}

func (i ResourceCollectionImportable) Kind() Kind            { return KindResourceCollection }
func (i ResourceCollectionImportable) Context() ImportContext { return i.Ctx }

// ResourceTreeImportable carries a parsed nested resource-tree document.
type ResourceTreeImportable struct {
	Tree ResourceTreeDecl
	Ctx  ImportContext
}

func (i ResourceTreeImportable) Kind() Kind            { return KindResourceTree }
func (i ResourceTreeImportable) Context() ImportContext { return i.Ctx }
