package models

// ShortlistKind names a per-user property shortlist.
type ShortlistKind string

const (
	ShortlistComparison ShortlistKind = "comparison"
	ShortlistFavorites  ShortlistKind = "favorites"
)

// ComparisonCapacity is the maximum number of properties under comparison.
const ComparisonCapacity = 4

// AddResult is the outcome of adding a property to a shortlist.
type AddResult int

const (
	Added AddResult = iota
	AlreadyPresent
	AtCapacity
)

func (r AddResult) String() string {
	switch r {
	case Added:
		return "added"
	case AlreadyPresent:
		return "already_present"
	case AtCapacity:
		return "at_capacity"
	}
	return "unknown"
}

func (r AddResult) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
