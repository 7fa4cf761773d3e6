// Package catalog defines the static field descriptor tables that drive
// list-view filtering, searching, ordering, column selection and SQL
// generation for each queryable entity.
package catalog

import (
	"strings"

	"membership-api/internal/domain"
)

// FieldDescriptor describes one queryable field of an entity: the wire
// path clients reference it by, how it renders, and how it translates
// to SQL against the entity's select base.
type FieldDescriptor struct {
	// Path is the double-underscore wire name, e.g. "membership_status__name".
	Path string
	// Label overrides the humanised path in column headers and filter UIs.
	Label string
	Type  domain.FieldType
	// Usage restricts the contexts the field appears in. Zero means all.
	Usage domain.FieldUsage
	// Expr is the SQL expression selecting or comparing the field, using
	// the aliases established by the entity's select base.
	Expr string
	// Subquery, when set, wraps reference_many filters: it is a format
	// template receiving the rendered comparison against the joined key,
	// e.g. "p.id IN (SELECT sm.person_id FROM submemberships sm WHERE sm.subcommittee_id %s)".
	Subquery string
	// Ref names the referenced entity for reference fields, informational.
	Ref string
}

// DisplayLabel returns the explicit label or a humanised form of the
// path's last segment.
func (f FieldDescriptor) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	seg := f.Path
	if i := strings.LastIndex(seg, "__"); i >= 0 {
		seg = seg[i+2:]
	}
	seg = strings.ReplaceAll(seg, "_", " ")
	if seg == "" {
		return seg
	}
	return strings.ToUpper(seg[:1]) + seg[1:]
}

// Catalog is an ordered, path-indexed set of field descriptors for one
// entity.
type Catalog struct {
	modelName string
	fields    []FieldDescriptor
	byPath    map[string]int
}

// New builds a catalog from descriptors. Descriptors with an empty path
// are skipped. A zero Usage is widened to all contexts. Later duplicates
// of a path replace earlier ones.
func New(modelName string, descriptors ...FieldDescriptor) *Catalog {
	c := &Catalog{
		modelName: modelName,
		byPath:    make(map[string]int, len(descriptors)),
	}
	for _, d := range descriptors {
		if d.Path == "" {
			continue
		}
		if d.Usage == 0 {
			d.Usage = domain.UsageAll
		}
		if i, ok := c.byPath[d.Path]; ok {
			c.fields[i] = d
			continue
		}
		c.byPath[d.Path] = len(c.fields)
		c.fields = append(c.fields, d)
	}
	return c
}

// ModelName returns the entity name the catalog describes.
func (c *Catalog) ModelName() string {
	return c.modelName
}

// Field looks up a descriptor by its wire path.
func (c *Catalog) Field(path string) (FieldDescriptor, bool) {
	i, ok := c.byPath[path]
	if !ok {
		return FieldDescriptor{}, false
	}
	return c.fields[i], true
}

// Fields returns all descriptors carrying the wanted usage, in
// declaration order. A zero want returns everything.
func (c *Catalog) Fields(want domain.FieldUsage) []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(c.fields))
	for _, d := range c.fields {
		if want == 0 || d.Usage.Has(want) {
			out = append(out, d)
		}
	}
	return out
}

// Searchable returns the text fields participating in combined search.
func (c *Catalog) Searchable() []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(c.fields))
	for _, d := range c.fields {
		if d.Type == domain.FieldTypeText && d.Usage.Has(domain.UsageSearch) {
			out = append(out, d)
		}
	}
	return out
}

// SetLabel overrides the label of an existing field, ignoring unknown
// paths.
func (c *Catalog) SetLabel(path, label string) {
	if i, ok := c.byPath[path]; ok {
		c.fields[i].Label = label
	}
}
