package catalog

import (
	"testing"

	"membership-api/internal/domain"
)

func TestNewSkipsEmptyPathsAndDefaultsUsage(t *testing.T) {
	c := New("person",
		FieldDescriptor{Path: "", Type: domain.FieldTypeText, Expr: "p.ghost"},
		FieldDescriptor{Path: "name_last", Type: domain.FieldTypeText, Expr: "p.name_last"},
	)

	if _, ok := c.Field(""); ok {
		t.Fatalf("empty path should have been skipped")
	}

	f, ok := c.Field("name_last")
	if !ok {
		t.Fatalf("name_last not found")
	}
	if f.Usage != domain.UsageAll {
		t.Errorf("zero usage should widen to all contexts, got %v", f.Usage)
	}
}

func TestFieldsFiltersByUsage(t *testing.T) {
	c := Person()

	for _, f := range c.Fields(domain.UsageOrder) {
		if !f.Usage.Has(domain.UsageOrder) {
			t.Errorf("field %q returned without order usage", f.Path)
		}
		if f.Type == domain.FieldTypeReferenceMany {
			t.Errorf("reference_many field %q should never be orderable", f.Path)
		}
	}
}

func TestSearchableReturnsOnlyTextFields(t *testing.T) {
	for _, f := range Person().Searchable() {
		if f.Type != domain.FieldTypeText {
			t.Errorf("searchable returned non-text field %q (%s)", f.Path, f.Type)
		}
	}

	if got := len(Person().Searchable()); got != 6 {
		t.Errorf("person should expose 6 searchable name fields, got %d", got)
	}
}

func TestDisplayLabelHumanisesPath(t *testing.T) {
	cases := []struct {
		field FieldDescriptor
		want  string
	}{
		{FieldDescriptor{Path: "name_last"}, "Name last"},
		{FieldDescriptor{Path: "membership_status__is_member"}, "Is member"},
		{FieldDescriptor{Path: "when", Label: "Held on"}, "Held on"},
	}
	for _, tc := range cases {
		if got := tc.field.DisplayLabel(); got != tc.want {
			t.Errorf("DisplayLabel(%q) = %q, want %q", tc.field.Path, got, tc.want)
		}
	}
}

func TestDuplicatePathReplacesEarlierDescriptor(t *testing.T) {
	c := New("event",
		FieldDescriptor{Path: "name", Type: domain.FieldTypeText, Expr: "e.name"},
		FieldDescriptor{Path: "name", Type: domain.FieldTypeText, Expr: "e.display_name"},
	)

	f, _ := c.Field("name")
	if f.Expr != "e.display_name" {
		t.Errorf("later descriptor should replace earlier one, got expr %q", f.Expr)
	}
	if got := len(c.Fields(0)); got != 1 {
		t.Errorf("duplicate path should not grow the field list, got %d entries", got)
	}
}

func TestEntityCatalogsResolveTheirFilterPaths(t *testing.T) {
	cases := []struct {
		cat   *Catalog
		paths []string
	}{
		{Person(), []string{"membership_status__is_member", "subcommittees", "is_deleted", "list_membership__saved_list"}},
		{Event(), []string{"when", "participation__person"}},
		{SubCommittee(), []string{"rank", "submembership__person"}},
		{VotingAddress(), []string{"street_address", "locationprecinct"}},
		{SavedList(), []string{"when", "list_membership__person"}},
		{CommunicationEvent(), []string{"target", "volunteer", "details", "bulk_communication", "result", "when"}},
		{BulkCommunication(), []string{"name", "when"}},
	}
	for _, tc := range cases {
		for _, p := range tc.paths {
			f, ok := tc.cat.Field(p)
			if !ok {
				t.Errorf("%s: missing field %q", tc.cat.ModelName(), p)
				continue
			}
			if f.Type == domain.FieldTypeReferenceMany && f.Subquery == "" {
				t.Errorf("%s: reference_many field %q has no subquery", tc.cat.ModelName(), p)
			}
			if f.Type != domain.FieldTypeReferenceMany && f.Expr == "" {
				t.Errorf("%s: field %q has no expression", tc.cat.ModelName(), p)
			}
		}
	}
}
