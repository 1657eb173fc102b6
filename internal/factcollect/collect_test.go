package factcollect

import (
	"context"
	"testing"

	"birfacts/internal/bir"
	"birfacts/internal/diag"
	"birfacts/internal/facts"
	"birfacts/internal/fixture"
	"birfacts/internal/place"
	"birfacts/internal/point"
	"birfacts/internal/region"
	"birfacts/internal/rtype"
)

func collectFixture(t *testing.T, name string) (*facts.Facts, *diag.Bag) {
	t.Helper()
	fn, types, ok := fixture.Named(name)
	if !ok {
		t.Fatalf("no fixture named %q", name)
	}
	bag := diag.NewBag(16)
	reporter := diag.BagReporter{Bag: bag}
	f := New(fn, types, reporter, nil).Collect(context.Background())
	return f, bag
}

// TestCfgEdgesAreWellFormed checks CFG well-formedness: every Start->Mid
// edge stays within one statement, and every other edge lands on a Start
// point.
func TestCfgEdgesAreWellFormed(t *testing.T) {
	f, _ := collectFixture(t, "shared-borrow")
	if len(f.CfgEdge) == 0 {
		t.Fatal("expected at least one cfg_edge row")
	}
	for _, e := range f.CfgEdge {
		fb, fs, fp := point.Decode(e.From)
		tb, ts, tp := point.Decode(e.To)
		if fp == point.Start && tp == point.Mid {
			if fb != tb || fs != ts {
				t.Errorf("Start->Mid edge %v->%v crosses statements", e.From, e.To)
			}
			continue
		}
		if tp != point.Start {
			t.Errorf("edge %v->%v must land on a Start point", e.From, e.To)
		}
	}
}

// TestSharedBorrowIssuesLoan checks the borrow protocol: a shared borrow
// of a plain scalar issues exactly one loan under its declared origin, with
// no diagnostics.
func TestSharedBorrowIssuesLoan(t *testing.T) {
	f, bag := collectFixture(t, "shared-borrow")

	if len(f.LoanIssuedAt) != 1 {
		t.Fatalf("LoanIssuedAt = %v, want exactly one row", f.LoanIssuedAt)
	}
	if f.LoanIssuedAt[0].Origin != 1 {
		t.Errorf("loan origin = %d, want 1", f.LoanIssuedAt[0].Origin)
	}
	if bag.Len() != 0 {
		t.Errorf("shared-borrow fixture should raise no diagnostics, got %d", bag.Len())
	}
}

// TestBorrowOfRegionCarryingPlaceConstrainsLoanRegion exercises the
// borrow rule on a base place that itself carries a region: &p where p:
// Pair<'_> must constrain p's own region to outlive the produced
// reference's own lifetime (field-and-call's rp = &p step).
func TestBorrowOfRegionCarryingPlaceConstrainsLoanRegion(t *testing.T) {
	f, _ := collectFixture(t, "field-and-call")

	// p's own region is 1; rp's own lifetime (lhs.Regions[0]) is 2.
	found := false
	for _, s := range f.SubsetBase {
		if s.Sub == 1 && s.Sup == 2 {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected a subset_base row (1 ⊆ 2) from borrowing a region-carrying place")
	}
}

// TestMoveBehindRefRaisesDiagnostic checks the move diagnostic
// via the move-behind-ref fixture: moving *r (a shared reference)
// must raise SemaMoveBehindReference.
func TestMoveBehindRefRaisesDiagnostic(t *testing.T) {
	f, bag := collectFixture(t, "move-behind-ref")
	_ = f

	if bag.Len() != 1 {
		t.Fatalf("bag.Len() = %d, want 1", bag.Len())
	}
	got := bag.Items()[0]
	if got.Code != diag.SemaMoveBehindReference {
		t.Errorf("diagnostic code = %v, want SemaMoveBehindReference", got.Code)
	}
}

// TestPlaceTreeCompleteness checks that the place walk emits path_is_var
// rows for the fixture's root variables and a child_path row for its Field
// projection.
func TestPlaceTreeCompleteness(t *testing.T) {
	f, _ := collectFixture(t, "field-and-call")

	if len(f.PathIsVar) == 0 {
		t.Fatal("expected at least one path_is_var row")
	}
	if len(f.ChildPath) == 0 {
		t.Fatal("expected at least one child_path row for the Field projection in this fixture")
	}
}

// TestFieldAndCallExercisesVarianceAndAscription checks that the Field
// projection, the Call region binding, and the named user type ascription
// all produce subset_base rows.
func TestFieldAndCallExercisesVarianceAndAscription(t *testing.T) {
	f, bag := collectFixture(t, "field-and-call")

	if len(f.SubsetBase) == 0 {
		t.Fatal("expected subset_base rows from the field/call/ascription fixture")
	}

	// The named ascription resolves against universal region 10; some
	// subset_base row must reference it as one side of the edge.
	sawUniversal := false
	for _, s := range f.SubsetBase {
		if s.Sub == 10 || s.Sup == 10 {
			sawUniversal = true
			break
		}
	}
	if !sawUniversal {
		t.Error("expected a subset_base row touching the named universal region 10 from the user type ascription")
	}

	if len(f.UniversalRegion) != 1 || f.UniversalRegion[0] != 10 {
		t.Errorf("UniversalRegion = %v, want [10]", f.UniversalRegion)
	}
	if bag.Len() != 0 {
		t.Errorf("field-and-call fixture should raise no diagnostics, got %d", bag.Len())
	}
}

// TestDeterministicOutput checks that collecting the
// same fixture twice produces byte-for-byte identical relation slices in
// row order, since nothing in the collector depends on map iteration order.
func TestDeterministicOutput(t *testing.T) {
	for _, name := range fixture.Names() {
		f1, _ := collectFixture(t, name)
		f2, _ := collectFixture(t, name)
		if len(f1.CfgEdge) != len(f2.CfgEdge) || len(f1.SubsetBase) != len(f2.SubsetBase) {
			t.Fatalf("%s: two collection runs produced different relation sizes", name)
		}
		for i := range f1.CfgEdge {
			if f1.CfgEdge[i] != f2.CfgEdge[i] {
				t.Fatalf("%s: cfg_edge[%d] differs between runs", name, i)
			}
		}
		for i := range f1.SubsetBase {
			if f1.SubsetBase[i] != f2.SubsetBase[i] {
				t.Fatalf("%s: subset_base[%d] differs between runs", name, i)
			}
		}
	}
}

// TestStorageDeadEmitsBothWriteAndDropFacts documents the resolved Open
// Question (b): StorageDead is a write (path_assigned_at_base,
// var_defined_at) and additionally a drop (var_dropped_at,
// drop_of_var_derefs_origin).
func TestStorageDeadEmitsBothWriteAndDropFacts(t *testing.T) {
	f, _ := collectFixture(t, "shared-borrow")

	if len(f.VarDroppedAt) == 0 {
		t.Error("expected at least one var_dropped_at row from the fixture's StorageDead statement")
	}
	if len(f.VarDefinedAt) == 0 {
		t.Error("expected at least one var_defined_at row (StorageLive and the StorageDead-as-write both emit it)")
	}
}

// TestLoanKilledAndInvalidatedTrackOverwrites checks that overwriting a
// borrowed path kills (and, conservatively, invalidates) the loan issued
// against it.
func TestLoanKilledAndInvalidatedTrackOverwrites(t *testing.T) {
	fn, types, ok := fixture.Named("shared-borrow")
	if !ok {
		t.Fatal("missing shared-borrow fixture")
	}
	bag := diag.NewBag(16)
	f := New(fn, types, diag.BagReporter{Bag: bag}, nil).Collect(context.Background())

	// shared-borrow's StorageDead(x) overwrites x, the borrowed base of the
	// one loan issued in that fixture, and must kill it.
	if len(f.LoanKilledAt) == 0 {
		t.Error("expected StorageDead(x) to kill the loan borrowed from x")
	}
	if len(f.LoanInvalidatedAt) != len(f.LoanKilledAt) {
		t.Errorf("LoanInvalidatedAt has %d rows, LoanKilledAt has %d; expected them to match under the simplified model",
			len(f.LoanInvalidatedAt), len(f.LoanKilledAt))
	}
}

// TestCollectGuardedReportsNamedRegionAtCallSite checks that a named region
// in a call binding does not crash the driver: CollectGuarded converts the
// pass's internal panic into a SemaNotImplemented diagnostic and reports
// the function as skipped.
func TestCollectGuardedReportsNamedRegionAtCallSite(t *testing.T) {
	types := rtype.NewInterner()
	i32 := types.Register(rtype.Type{Kind: rtype.KindScalar, Name: "i32"})
	refI32 := types.Register(rtype.Type{
		Kind: rtype.KindReference, Name: "&i32",
		Elem:      i32,
		Variances: []rtype.Variance{rtype.Covariant},
	})
	fnTy := types.Register(rtype.Type{Kind: rtype.KindFnDef, Name: "f", Params: []rtype.TypeID{refI32}, Result: i32})

	sig := &rtype.Signature{
		Params:     []rtype.TypeID{refI32},
		ParamRefs:  [][]rtype.RegionRef{{{Kind: rtype.RegionNamedRef, Name: "'x"}}},
		Result:     i32,
		ResultRefs: nil,
		Arity:      1,
	}

	db := place.NewPlaceDB(5)
	ret := db.Add(place.Place{Kind: place.KindVariable, Type: i32, IsCopy: true, Name: "_0"})
	db.SetReturnPlace(ret)
	arg := db.Add(place.Place{Kind: place.KindVariable, Type: refI32, Regions: []region.Region{1}, IsCopy: true, Name: "_1"})
	callee := db.Add(place.Place{Kind: place.KindConstant, Type: fnTy, Name: "f"})

	fn := &bir.Function{
		Name:    "named_region",
		PlaceDB: db,
		Blocks: []bir.Block{{
			ID: 0,
			Statements: []bir.Statement{
				{Kind: bir.StmtAssignment, Place: ret, Rhs: bir.RhsExpr{
					Kind: bir.RhsCall, CallCallable: callee, CallArgs: []place.ID{arg}, CallSignature: sig,
				}},
				{Kind: bir.StmtReturn},
			},
		}},
	}

	bag := diag.NewBag(16)
	got, ok := New(fn, types, diag.BagReporter{Bag: bag}, nil).CollectGuarded(context.Background())
	if ok || got != nil {
		t.Fatalf("CollectGuarded = (%v, %v), want (nil, false) for a named call-site region", got, ok)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.SemaNotImplemented {
		t.Fatalf("expected a single SemaNotImplemented diagnostic, got %v", bag.Items())
	}
}

// TestHasClosure checks the driver's closure pre-check: a closure type
// anywhere in the place database, including nested inside a reference,
// marks the function as unsupported.
func TestHasClosure(t *testing.T) {
	types := rtype.NewInterner()
	i32 := types.Register(rtype.Type{Kind: rtype.KindScalar, Name: "i32"})
	clo := types.Register(rtype.Type{Kind: rtype.KindClosure, Name: "{closure}"})
	refClo := types.Register(rtype.Type{
		Kind: rtype.KindReference, Name: "&{closure}",
		Elem:      clo,
		Variances: []rtype.Variance{rtype.Covariant},
	})

	plain := place.NewPlaceDB(1)
	plain.Add(place.Place{Kind: place.KindVariable, Type: i32, IsCopy: true, Name: "_0"})
	if HasClosure(&bir.Function{Name: "plain", PlaceDB: plain}, types) {
		t.Error("HasClosure reported a closure in a closure-free function")
	}

	nested := place.NewPlaceDB(2)
	nested.Add(place.Place{Kind: place.KindVariable, Type: refClo, Regions: []region.Region{1}, Name: "_0"})
	if !HasClosure(&bir.Function{Name: "nested", PlaceDB: nested}, types) {
		t.Error("HasClosure missed a closure type behind a reference")
	}
}

// TestSingleCopyAssignment is the minimal one-block "_1 = _2" function over
// two copy scalars: an assign row and a define for the LHS, an access and a
// use for the RHS, and no moves or loans anywhere.
func TestSingleCopyAssignment(t *testing.T) {
	types := rtype.NewInterner()
	i32 := types.Register(rtype.Type{Kind: rtype.KindScalar, Name: "i32"})

	db := place.NewPlaceDB(1)
	ret := db.Add(place.Place{Kind: place.KindVariable, Type: i32, IsCopy: true, Name: "_0"})
	db.SetReturnPlace(ret)
	dst := db.Add(place.Place{Kind: place.KindVariable, Type: i32, IsCopy: true, Name: "_1"})
	src := db.Add(place.Place{Kind: place.KindVariable, Type: i32, IsCopy: true, Name: "_2"})

	fn := &bir.Function{
		Name:    "single_assign",
		PlaceDB: db,
		Blocks: []bir.Block{{
			ID: 0,
			Statements: []bir.Statement{
				{Kind: bir.StmtAssignment, Place: dst, Rhs: bir.RhsExpr{Kind: bir.RhsUse, UsePlace: src}},
			},
		}},
	}

	bag := diag.NewBag(16)
	f := New(fn, types, diag.BagReporter{Bag: bag}, nil).Collect(context.Background())

	mid := point.Encode(0, 0, point.Mid)
	if len(f.PathAssignedAtBase) != 1 || f.PathAssignedAtBase[0] != (facts.PlaceAt{Place: dst, At: mid}) {
		t.Errorf("PathAssignedAtBase = %v, want [{%d %d}]", f.PathAssignedAtBase, dst, mid)
	}
	if len(f.PathAccessedAtBase) != 1 || f.PathAccessedAtBase[0] != (facts.PlaceAt{Place: src, At: mid}) {
		t.Errorf("PathAccessedAtBase = %v, want [{%d %d}]", f.PathAccessedAtBase, src, mid)
	}
	if len(f.VarDefinedAt) != 1 || f.VarDefinedAt[0] != (facts.PlaceAt{Place: dst, At: mid}) {
		t.Errorf("VarDefinedAt = %v, want [{%d %d}]", f.VarDefinedAt, dst, mid)
	}
	if len(f.PathMovedAtBase) != 0 {
		t.Errorf("copy assignment must not emit move rows, got %v", f.PathMovedAtBase)
	}
	if len(f.LoanIssuedAt) != 0 {
		t.Errorf("copy assignment must not issue loans, got %v", f.LoanIssuedAt)
	}
	if bag.Len() != 0 {
		t.Errorf("copy assignment should raise no diagnostics, got %d", bag.Len())
	}
}

// TestSwitchFansOutToAllSuccessors checks the terminator rule: a Switch with
// two successors contributes its own Start->Mid edge plus one
// Start->succ.Start edge per successor.
func TestSwitchFansOutToAllSuccessors(t *testing.T) {
	types := rtype.NewInterner()
	boolTy := types.Register(rtype.Type{Kind: rtype.KindScalar, Name: "bool"})

	db := place.NewPlaceDB(1)
	ret := db.Add(place.Place{Kind: place.KindVariable, Type: boolTy, IsCopy: true, Name: "_0"})
	db.SetReturnPlace(ret)
	cond := db.Add(place.Place{Kind: place.KindVariable, Type: boolTy, IsCopy: true, Name: "_1"})

	fn := &bir.Function{
		Name:    "branch",
		PlaceDB: db,
		Blocks: []bir.Block{
			{ID: 0, Statements: []bir.Statement{{Kind: bir.StmtSwitch, Place: cond}}, Successors: []bir.BlockID{1, 2}},
			{ID: 1, Statements: []bir.Statement{{Kind: bir.StmtReturn}}},
			{ID: 2, Statements: []bir.Statement{{Kind: bir.StmtReturn}}},
		},
	}

	bag := diag.NewBag(16)
	f := New(fn, types, diag.BagReporter{Bag: bag}, nil).Collect(context.Background())

	start := point.Encode(0, 0, point.Start)
	wantEdges := []facts.Edge{
		{From: start, To: point.Encode(0, 0, point.Mid)},
		{From: start, To: point.Encode(1, 0, point.Start)},
		{From: start, To: point.Encode(2, 0, point.Start)},
	}
	for _, want := range wantEdges {
		n := 0
		for _, e := range f.CfgEdge {
			if e == want {
				n++
			}
		}
		if n != 1 {
			t.Errorf("edge %v->%v appears %d times, want exactly once", want.From, want.To, n)
		}
	}
}

// TestInvariantFieldEmitsBothDirectionsAtAllPoints checks the place walk's
// variance rule: an invariant field projection produces subset_base rows in
// both directions at every CFG point the statement walk visited.
func TestInvariantFieldEmitsBothDirectionsAtAllPoints(t *testing.T) {
	types := rtype.NewInterner()
	i32 := types.Register(rtype.Type{Kind: rtype.KindScalar, Name: "i32"})
	cell := types.Register(rtype.Type{
		Kind: rtype.KindADT, Name: "Cell",
		NumLifetimeParams: 1,
		Variances:         []rtype.Variance{rtype.Invariant},
		ADTFields: []rtype.FieldInfo{
			{Name: "r", Type: i32, RegionRefs: []int{0}},
		},
	})
	refI32 := types.Register(rtype.Type{
		Kind: rtype.KindReference, Name: "&i32",
		Elem:      i32,
		Variances: []rtype.Variance{rtype.Invariant},
	})

	db := place.NewPlaceDB(10)
	c := db.Add(place.Place{Kind: place.KindVariable, Type: cell, Regions: []region.Region{1}, Name: "_0"})
	db.SetReturnPlace(c)
	field := db.Add(place.Place{Kind: place.KindField, Type: refI32, Regions: []region.Region{2}, Parent: c, FieldIndex: 0, Name: "_0.r"})
	_ = field

	fn := &bir.Function{
		Name:    "invariant_field",
		PlaceDB: db,
		Blocks: []bir.Block{{
			ID: 0,
			Statements: []bir.Statement{
				{Kind: bir.StmtStorageLive, Place: c},
				{Kind: bir.StmtReturn},
			},
		}},
	}

	bag := diag.NewBag(16)
	f := New(fn, types, diag.BagReporter{Bag: bag}, nil).Collect(context.Background())

	// Two statements -> four points; each must carry both (2 ⊆ 1) and (1 ⊆ 2).
	points := []point.Point{
		point.Encode(0, 0, point.Start), point.Encode(0, 0, point.Mid),
		point.Encode(0, 1, point.Start), point.Encode(0, 1, point.Mid),
	}
	for _, at := range points {
		fwd, rev := 0, 0
		for _, s := range f.SubsetBase {
			if s.At != at {
				continue
			}
			if s.Sub == 2 && s.Sup == 1 {
				fwd++
			}
			if s.Sub == 1 && s.Sup == 2 {
				rev++
			}
		}
		if fwd != 1 || rev != 1 {
			t.Errorf("at point %d: (2⊆1) appears %d times and (1⊆2) %d times, want exactly one each", at, fwd, rev)
		}
	}
}
