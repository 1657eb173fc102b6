package rtype

// Schema carries the outlives constraints declared on an ADT's, fn-def's or
// fn-ptr's own generic substitution: relations among its own lifetime
// parameters (RegionBounds) and relations between a type parameter and one
// of its own regions (TypeRegionBounds). Both are expressed as positions
// into the type's flattened region vector so the collector's constraint walk can bind
// them against a concrete instance's regions.
type Schema struct {
	RegionBounds     []RegionBound
	TypeRegionBounds []TypeRegionBound
}

// RegionBound is a region_region constraint: a variance-directed relation
// between two of this type's own region positions (e.g. struct Foo<'a,'b>
// with a declared 'a: 'b bound).
type RegionBound struct {
	Variance Variance
	Left     int // index into the type's own NumLifetimeParams prefix
	Right    int
}

// TypeRegionBound is a type_region constraint: a relation between one of
// this type's own regions and every region used by one of its generic
// arguments (e.g. struct Foo<T: 'a, 'a>). ArgIndex selects the element of
// Args; Region indexes the NumLifetimeParams prefix.
type TypeRegionBound struct {
	Variance Variance
	Region   int
	ArgIndex int
}
