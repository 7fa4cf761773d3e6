// Package query parses the flat list-view form vocabulary into a
// normalised query specification.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"membership-api/internal/catalog"
	"membership-api/internal/domain"
)

// Options bound the parser. Zero values fall back to the defaults used
// by every list view.
type Options struct {
	// MaxSearchKeys is the highest filter index (inclusive) scanned for
	// the filter__fieldname__<i> / filter__op__<i> / filter__value__<i>
	// triplets. Indices may be sparse.
	MaxSearchKeys int
	// DefaultPageSize applies when paginate_by is absent or malformed.
	DefaultPageSize int
}

const (
	defaultMaxSearchKeys = 5
	defaultPageSize      = 30
)

// Parse normalises the submitted form values into a query
// specification. Clauses naming a field the catalog does not know, or
// whose path is not filterable, are dropped rather than passed through.
// Order-by entries keep their submitted sequence; a leading "-" marks
// descending. Unknown order and column paths are dropped the same way.
func Parse(values url.Values, cat *catalog.Catalog, opts Options) domain.QuerySpec {
	maxKeys := opts.MaxSearchKeys
	if maxKeys <= 0 {
		maxKeys = defaultMaxSearchKeys
	}
	pageSize := opts.DefaultPageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var spec domain.QuerySpec

	for i := 0; i <= maxKeys; i++ {
		fieldName := strings.TrimSpace(values.Get(fmt.Sprintf("filter__fieldname__%d", i)))
		op := domain.FilterOp(strings.TrimSpace(values.Get(fmt.Sprintf("filter__op__%d", i))))
		if fieldName == "" || op == "" {
			continue
		}
		if !op.Valid() {
			continue
		}
		field, ok := cat.Field(fieldName)
		if !ok || !field.Usage.Has(domain.UsageFilter) {
			continue
		}

		raw := values[fmt.Sprintf("filter__value__%d", i)]
		clause := domain.FilterClause{FieldName: fieldName, Op: op}
		if op.MultiValue() {
			clause.Values = splitMulti(raw)
		} else if len(raw) > 0 {
			clause.Values = []string{raw[0]}
		}
		spec.Filters = append(spec.Filters, clause)
	}

	for _, entry := range values["order_by"] {
		entry = strings.TrimSpace(entry)
		path := strings.TrimPrefix(entry, "-")
		if path == "" {
			continue
		}
		field, ok := cat.Field(path)
		if !ok || !field.Usage.Has(domain.UsageOrder) {
			continue
		}
		spec.OrderBy = append(spec.OrderBy, entry)
	}

	spec.TextSearch = strings.TrimSpace(values.Get("combined_text_search"))

	spec.PageSize = pageSize
	if raw := values.Get("paginate_by"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			spec.PageSize = n
		}
	}

	// Column keys use the export vocabulary, which is wider than the
	// filter catalog; unknown keys are ignored at render time instead.
	for _, col := range values["show_columns"] {
		col = strings.TrimSpace(col)
		if col != "" {
			spec.ShowColumns = append(spec.ShowColumns, col)
		}
	}

	return spec
}

// splitMulti flattens repeated form values, splitting any
// comma-delimited entries so both submission styles work for in/range.
func splitMulti(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
