package domain

import (
	"encoding/json"
)

// FilterOp enumerates the comparison operators a filter clause may use.
type FilterOp string

const (
	OpExact     FilterOp = "exact"
	OpIExact    FilterOp = "iexact"
	OpContains  FilterOp = "contains"
	OpIContains FilterOp = "icontains"
	OpIn        FilterOp = "in"
	OpRange     FilterOp = "range"
	OpGT        FilterOp = "gt"
	OpGTE       FilterOp = "gte"
	OpLT        FilterOp = "lt"
	OpLTE       FilterOp = "lte"
	OpIsNull    FilterOp = "isnull"
)

// Valid reports whether op is a known operator.
func (op FilterOp) Valid() bool {
	switch op {
	case OpExact, OpIExact, OpContains, OpIContains, OpIn, OpRange,
		OpGT, OpGTE, OpLT, OpLTE, OpIsNull:
		return true
	}
	return false
}

// MultiValue reports whether the operator reads its value as a list.
func (op FilterOp) MultiValue() bool {
	return op == OpIn || op == OpRange
}

// FilterClause is one (field path, operator, value) predicate. Values
// holds a list for multi-value operators and a single element otherwise.
type FilterClause struct {
	FieldName string   `json:"fieldname"`
	Op        FilterOp `json:"op"`
	Values    []string `json:"values,omitempty"`
}

// Value returns the clause's scalar value, empty when none was given.
func (c FilterClause) Value() string {
	if len(c.Values) == 0 {
		return ""
	}
	return c.Values[0]
}

// QuerySpec is the normalised form of a list request's filter, order,
// search, pagination and column intent. It round-trips through JSON for
// saved-vista storage.
type QuerySpec struct {
	Filters     []FilterClause `json:"filters,omitempty"`
	OrderBy     []string       `json:"order_by,omitempty"`
	TextSearch  string         `json:"combined_text_search,omitempty"`
	PageSize    int            `json:"paginate_by,omitempty"`
	ShowColumns []string       `json:"show_columns,omitempty"`
}

// IsZero reports whether the spec carries no intent at all.
func (s QuerySpec) IsZero() bool {
	return len(s.Filters) == 0 && len(s.OrderBy) == 0 && s.TextSearch == "" &&
		s.PageSize == 0 && len(s.ShowColumns) == 0
}

// Clone returns a deep copy of the spec.
func (s QuerySpec) Clone() QuerySpec {
	clone := s
	if s.Filters != nil {
		clone.Filters = make([]FilterClause, len(s.Filters))
		for i, f := range s.Filters {
			clone.Filters[i] = f
			clone.Filters[i].Values = append([]string(nil), f.Values...)
		}
	}
	clone.OrderBy = append([]string(nil), s.OrderBy...)
	clone.ShowColumns = append([]string(nil), s.ShowColumns...)
	return clone
}

// MarshalSpec serialises the spec for saved-vista storage.
func (s QuerySpec) MarshalSpec() ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSpec restores a spec from its stored form.
func UnmarshalSpec(raw []byte) (QuerySpec, error) {
	var spec QuerySpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return QuerySpec{}, err
	}
	return spec, nil
}
