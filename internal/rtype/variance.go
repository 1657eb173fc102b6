package rtype

import "birfacts/internal/region"

// Variance determines how a type constructor propagates a subset relation
// from an inner region position to the type's own region parameters.
type Variance uint8

const (
	// Covariant propagates lhs ⊆ rhs.
	Covariant Variance = iota
	// Contravariant propagates rhs ⊆ lhs.
	Contravariant
	// Invariant propagates both directions.
	Invariant
)

func (v Variance) String() string {
	switch v {
	case Covariant:
		return "+"
	case Contravariant:
		return "-"
	case Invariant:
		return "="
	default:
		return "?"
	}
}

// Pair applies v to the ordered pair (lhs, rhs), returning the outlives
// edges it implies. Each edge is a (sub, sup) pair meaning sub ⊆ sup.
func (v Variance) Pair(lhs, rhs region.Region) [][2]region.Region {
	switch v {
	case Covariant:
		return [][2]region.Region{{lhs, rhs}}
	case Contravariant:
		return [][2]region.Region{{rhs, lhs}}
	case Invariant:
		return [][2]region.Region{{lhs, rhs}, {rhs, lhs}}
	default:
		return nil
	}
}
