// Package facts defines the relational output of fact collection: the
// exact tuple vectors a Polonius-style Datalog engine expects as input.
package facts

import (
	"birfacts/internal/place"
	"birfacts/internal/point"
	"birfacts/internal/region"
)

// Edge is one row of cfg_edge: control flow from one point to the next.
type Edge struct{ From, To point.Point }

// PlacePair is the shape shared by path_is_var and child_path.
type PlacePair struct{ A, B place.ID }

// PlaceAt is the shape shared by every path_*_at_base and var_*_at relation.
type PlaceAt struct {
	Place place.ID
	At    point.Point
}

// LoanAt is a loan_issued_at row.
type LoanAt struct {
	Origin region.Region
	Loan   region.LoanID
	At     point.Point
}

// LoanAtPoint is the shape shared by loan_killed_at and loan_invalidated_at.
type LoanAtPoint struct {
	Loan region.LoanID
	At   point.Point
}

// PlaceOrigin is the shape shared by use_of_var_derefs_origin and
// drop_of_var_derefs_origin.
type PlaceOrigin struct {
	Place  place.ID
	Origin region.Region
}

// Subset is a subset_base row: Sub ⊆ Sup, holding at At.
type Subset struct {
	Sub region.Region
	Sup region.Region
	At  point.Point
}

// RegionPair is the shape of known_placeholder_subset: Sub ⊆ Sup.
type RegionPair struct{ Sub, Sup region.Region }

// Facts is the complete set of relations produced by one collection pass.
// Every slice is append-only during collection; rows are written in the
// order the CFG walk visits them, which is the only ordering guarantee the
// engine downstream needs.
type Facts struct {
	CfgEdge []Edge

	PathIsVar []PlacePair
	ChildPath []PlacePair

	PathAccessedAtBase []PlaceAt
	PathMovedAtBase    []PlaceAt
	PathAssignedAtBase []PlaceAt

	VarUsedAt    []PlaceAt
	VarDefinedAt []PlaceAt
	VarDroppedAt []PlaceAt

	LoanIssuedAt      []LoanAt
	LoanKilledAt      []LoanAtPoint
	LoanInvalidatedAt []LoanAtPoint

	UseOfVarDerefsOrigin  []PlaceOrigin
	DropOfVarDerefsOrigin []PlaceOrigin

	SubsetBase []Subset

	UniversalRegion        []region.Region
	KnownPlaceholderSubset []RegionPair
}

// New returns an empty Facts ready to be filled by a single collection pass.
func New() *Facts {
	return &Facts{}
}

func (f *Facts) AddCfgEdge(from, to point.Point) {
	f.CfgEdge = append(f.CfgEdge, Edge{From: from, To: to})
}

func (f *Facts) AddPathIsVar(p place.ID) {
	f.PathIsVar = append(f.PathIsVar, PlacePair{A: p, B: p})
}

func (f *Facts) AddChildPath(child, parent place.ID) {
	f.ChildPath = append(f.ChildPath, PlacePair{A: child, B: parent})
}

func (f *Facts) AddPathAccessedAtBase(p place.ID, at point.Point) {
	f.PathAccessedAtBase = append(f.PathAccessedAtBase, PlaceAt{Place: p, At: at})
}

func (f *Facts) AddPathMovedAtBase(p place.ID, at point.Point) {
	f.PathMovedAtBase = append(f.PathMovedAtBase, PlaceAt{Place: p, At: at})
}

func (f *Facts) AddPathAssignedAtBase(p place.ID, at point.Point) {
	f.PathAssignedAtBase = append(f.PathAssignedAtBase, PlaceAt{Place: p, At: at})
}

func (f *Facts) AddVarUsedAt(p place.ID, at point.Point) {
	f.VarUsedAt = append(f.VarUsedAt, PlaceAt{Place: p, At: at})
}

func (f *Facts) AddVarDefinedAt(p place.ID, at point.Point) {
	f.VarDefinedAt = append(f.VarDefinedAt, PlaceAt{Place: p, At: at})
}

func (f *Facts) AddVarDroppedAt(p place.ID, at point.Point) {
	f.VarDroppedAt = append(f.VarDroppedAt, PlaceAt{Place: p, At: at})
}

func (f *Facts) AddLoanIssuedAt(origin region.Region, loan region.LoanID, at point.Point) {
	f.LoanIssuedAt = append(f.LoanIssuedAt, LoanAt{Origin: origin, Loan: loan, At: at})
}

func (f *Facts) AddLoanKilledAt(loan region.LoanID, at point.Point) {
	f.LoanKilledAt = append(f.LoanKilledAt, LoanAtPoint{Loan: loan, At: at})
}

func (f *Facts) AddLoanInvalidatedAt(loan region.LoanID, at point.Point) {
	f.LoanInvalidatedAt = append(f.LoanInvalidatedAt, LoanAtPoint{Loan: loan, At: at})
}

func (f *Facts) AddUseOfVarDerefsOrigin(p place.ID, origin region.Region) {
	f.UseOfVarDerefsOrigin = append(f.UseOfVarDerefsOrigin, PlaceOrigin{Place: p, Origin: origin})
}

func (f *Facts) AddDropOfVarDerefsOrigin(p place.ID, origin region.Region) {
	f.DropOfVarDerefsOrigin = append(f.DropOfVarDerefsOrigin, PlaceOrigin{Place: p, Origin: origin})
}

func (f *Facts) AddSubsetBase(sub, sup region.Region, at point.Point) {
	f.SubsetBase = append(f.SubsetBase, Subset{Sub: sub, Sup: sup, At: at})
}

func (f *Facts) AddUniversalRegion(r region.Region) {
	f.UniversalRegion = append(f.UniversalRegion, r)
}

func (f *Facts) AddKnownPlaceholderSubset(sub, sup region.Region) {
	f.KnownPlaceholderSubset = append(f.KnownPlaceholderSubset, RegionPair{Sub: sub, Sup: sup})
}
