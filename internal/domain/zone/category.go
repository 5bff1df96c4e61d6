// Package zone holds the semantic zone model: the closed category set,
// tagged map features, and the priority rules that resolve a set of
// features into exactly one category.
package zone

// Category is one semantic zone kind. Exactly one category applies to a
// cell at a time; a category is a classification result, not an
// intrinsic property of the cell.
type Category string

const (
	CategorySea           Category = "SEA"
	CategoryMainRoad      Category = "MAIN_ROAD"
	CategoryUrban         Category = "URBAN"
	CategoryInterurban    Category = "INTERURBAN"
	CategoryMilitary      Category = "MILITARY"
	CategoryHospital      Category = "HOSPITAL"
	CategoryCliff         Category = "CLIFF"
	CategoryCoast         Category = "COAST"
	CategoryNatureReserve Category = "NATURE_RESERVE"
	// CategoryRiver is part of the public category set but is never
	// produced by the current rule table.
	CategoryRiver      Category = "RIVER"
	CategoryPrison     Category = "PRISON"
	CategoryGovernment Category = "GOVERNMENT"
)

// HighPriority reports whether the category outranks coastal display
// widening. Widening never overrides these.
func (c Category) HighPriority() bool {
	switch c {
	case CategoryMilitary, CategoryPrison, CategoryGovernment,
		CategoryHospital, CategoryMainRoad, CategoryCliff:
		return true
	}
	return false
}

// Classification is the durable result of classifying one cell.
type Classification struct {
	Cell        string   `json:"cell"`
	Category    Category `json:"category"`
	Evidence    []string `json:"evidence"`
	RoadPresent bool     `json:"roadPresent,omitempty"`
	RoadClass   string   `json:"roadClass,omitempty"`
}
