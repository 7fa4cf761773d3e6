package domain

// FieldType classifies the value domain of a catalog field.
type FieldType string

const (
	FieldTypeText          FieldType = "text"
	FieldTypeBoolean       FieldType = "boolean"
	FieldTypeDate          FieldType = "date"
	FieldTypeNumber        FieldType = "number"
	FieldTypeReference     FieldType = "reference"
	FieldTypeReferenceMany FieldType = "reference_many"
)

// FieldUsage is a bitmask of the list-view contexts a field participates in.
type FieldUsage uint8

const (
	UsageSearch FieldUsage = 1 << iota
	UsageFilter
	UsageColumn
	UsageOrder

	UsageAll = UsageSearch | UsageFilter | UsageColumn | UsageOrder
)

// Has reports whether u includes every bit of want.
func (u FieldUsage) Has(want FieldUsage) bool {
	return u&want == want
}
