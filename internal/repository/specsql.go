package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"membership-api/internal/catalog"
	"membership-api/internal/domain"

	"github.com/google/uuid"
)

// SelectBase anchors spec translation to one entity's list query: the
// identifier expression used for the ordering tiebreak, plus any static
// conditions (and their args) the repository always applies.
type SelectBase struct {
	IDExpr string
	Where  []string
	Args   []any
}

// BuiltQuery is the SQL fragment set a query spec translates to.
// Placeholders continue from the select base's args.
type BuiltQuery struct {
	Where   string
	Args    []any
	OrderBy string
}

// BuildQuery translates a query spec into WHERE and ORDER BY fragments
// against the given select base. Clauses whose value cannot be coerced
// to the field's type are dropped, mirroring the parser's treatment of
// unknown paths. The returned ordering always ends with an identifier
// tiebreak so pagination is stable.
func BuildQuery(cat *catalog.Catalog, spec domain.QuerySpec, base SelectBase) BuiltQuery {
	b := BuiltQuery{Args: append([]any(nil), base.Args...)}
	conds := append([]string(nil), base.Where...)

	for _, clause := range spec.Filters {
		field, ok := cat.Field(clause.FieldName)
		if !ok || !field.Usage.Has(domain.UsageFilter) {
			continue
		}
		cond, ok := b.filterCondition(field, clause)
		if !ok {
			continue
		}
		conds = append(conds, cond)
	}

	if spec.TextSearch != "" {
		if cond, ok := b.searchCondition(cat, spec.TextSearch); ok {
			conds = append(conds, cond)
		}
	}

	if len(conds) > 0 {
		b.Where = strings.Join(conds, " AND ")
	}

	var order []string
	for _, entry := range spec.OrderBy {
		desc := strings.HasPrefix(entry, "-")
		path := strings.TrimPrefix(entry, "-")
		field, ok := cat.Field(path)
		if !ok || !field.Usage.Has(domain.UsageOrder) || field.Expr == "" {
			continue
		}
		dir := "ASC"
		if desc {
			dir = "DESC"
		}
		order = append(order, field.Expr+" "+dir)
	}
	order = append(order, base.IDExpr+" ASC")
	b.OrderBy = strings.Join(order, ", ")

	return b
}

// filterCondition renders one clause, coercing its values and wrapping
// reference_many comparisons in the field's subquery template.
func (b *BuiltQuery) filterCondition(field catalog.FieldDescriptor, clause domain.FilterClause) (string, bool) {
	expr := field.Expr
	if field.Type == domain.FieldTypeReferenceMany {
		if field.Subquery == "" {
			return "", false
		}
		// The subquery template receives the rendered comparison
		// against its joined key column.
		expr = ""
	} else if expr == "" {
		return "", false
	}

	var cmp string
	switch clause.Op {
	case domain.OpIsNull:
		want, ok := parseBool(clause.Value())
		if !ok {
			return "", false
		}
		if want {
			cmp = "IS NULL"
		} else {
			cmp = "IS NOT NULL"
		}

	case domain.OpIn:
		placeholders := make([]string, 0, len(clause.Values))
		for _, raw := range clause.Values {
			v, ok := coerce(field.Type, raw)
			if !ok {
				continue
			}
			placeholders = append(placeholders, b.placeholder(v))
		}
		if len(placeholders) == 0 {
			return "", false
		}
		cmp = fmt.Sprintf("IN (%s)", strings.Join(placeholders, ", "))

	case domain.OpRange:
		if len(clause.Values) != 2 {
			return "", false
		}
		lo, okLo := coerce(field.Type, clause.Values[0])
		hi, okHi := coerce(field.Type, clause.Values[1])
		if !okLo || !okHi {
			return "", false
		}
		cmp = fmt.Sprintf("BETWEEN %s AND %s", b.placeholder(lo), b.placeholder(hi))

	case domain.OpExact, domain.OpGT, domain.OpGTE, domain.OpLT, domain.OpLTE:
		v, ok := coerce(field.Type, clause.Value())
		if !ok {
			return "", false
		}
		cmp = fmt.Sprintf("%s %s", sqlOperator(clause.Op), b.placeholder(v))

	case domain.OpIExact:
		if field.Type != domain.FieldTypeText {
			return "", false
		}
		return fmt.Sprintf("LOWER(%s) = LOWER(%s)", expr, b.placeholder(clause.Value())), true

	case domain.OpContains:
		if field.Type != domain.FieldTypeText {
			return "", false
		}
		return fmt.Sprintf("%s LIKE '%%' || %s || '%%'", expr, b.placeholder(clause.Value())), true

	case domain.OpIContains:
		if field.Type != domain.FieldTypeText {
			return "", false
		}
		return fmt.Sprintf("%s ILIKE '%%' || %s || '%%'", expr, b.placeholder(clause.Value())), true

	default:
		return "", false
	}

	if field.Type == domain.FieldTypeReferenceMany {
		return fmt.Sprintf(field.Subquery, cmp), true
	}
	return expr + " " + cmp, true
}

// searchCondition ORs a case-insensitive containment test across every
// searchable text field, binding the needle once.
func (b *BuiltQuery) searchCondition(cat *catalog.Catalog, needle string) (string, bool) {
	fields := cat.Searchable()
	if len(fields) == 0 {
		return "", false
	}
	ph := b.placeholder(needle)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Expr == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s ILIKE '%%' || %s || '%%'", f.Expr, ph))
	}
	if len(parts) == 0 {
		return "", false
	}
	return "(" + strings.Join(parts, " OR ") + ")", true
}

// placeholder appends an arg and returns its positional placeholder.
func (b *BuiltQuery) placeholder(v any) string {
	b.Args = append(b.Args, v)
	return "$" + strconv.Itoa(len(b.Args))
}

func sqlOperator(op domain.FilterOp) string {
	switch op {
	case domain.OpGT:
		return ">"
	case domain.OpGTE:
		return ">="
	case domain.OpLT:
		return "<"
	case domain.OpLTE:
		return "<="
	default:
		return "="
	}
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

// coerce converts a submitted string value into the typed arg the
// field's column expects. ok is false when the value does not parse,
// which drops the clause.
func coerce(ft domain.FieldType, raw string) (any, bool) {
	raw = strings.TrimSpace(raw)
	switch ft {
	case domain.FieldTypeText:
		return raw, true
	case domain.FieldTypeBoolean:
		return parseBool(raw)
	case domain.FieldTypeNumber:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f, true
		}
		return nil, false
	case domain.FieldTypeDate:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, true
			}
		}
		return nil, false
	case domain.FieldTypeReference, domain.FieldTypeReferenceMany:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, false
		}
		return id, true
	}
	return nil, false
}

func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "t", "1", "on", "yes":
		return true, true
	case "false", "f", "0", "off", "no", "":
		return false, true
	}
	return false, false
}
