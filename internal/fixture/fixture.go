// Package fixture builds small, hand-written bir.Function values for the
// CLI and tests to run the collector against, standing in for the MIR a
// real front end would hand the collector.
package fixture

import (
	"birfacts/internal/bir"
	"birfacts/internal/place"
	"birfacts/internal/region"
	"birfacts/internal/rtype"
	"birfacts/internal/source"
)

// Named returns the built-in fixture registered under name, or false if
// none matches.
func Named(name string) (*bir.Function, *rtype.Interner, bool) {
	switch name {
	case "shared-borrow":
		return sharedBorrow()
	case "move-behind-ref":
		return moveBehindRef()
	case "field-and-call":
		return fieldAndCall()
	default:
		return nil, nil, false
	}
}

// Names lists every built-in fixture, in a stable order.
func Names() []string {
	return []string{"shared-borrow", "move-behind-ref", "field-and-call"}
}

// sharedBorrow models:
//
//	fn demo() -> i32 {
//	    let x = 10;
//	    let r = &x;
//	    let y = *r;
//	    return y;
//	}
//
// exercising loan_issued_at, use_of_var_derefs_origin and a
// borrow/read/drop sequence whose writes to x (its initializer and its
// StorageDead) produce loan_killed_at rows for the one loan.
func sharedBorrow() (*bir.Function, *rtype.Interner, bool) {
	types := rtype.NewInterner()
	i32 := types.Register(rtype.Type{Kind: rtype.KindScalar, Name: "i32"})
	refI32 := types.Register(rtype.Type{
		Kind: rtype.KindReference, Name: "&i32",
		Elem:      i32,
		Variances: []rtype.Variance{rtype.Covariant},
	})

	db := place.NewPlaceDB(2) // region 0 is 'static; region 1 is r's own lifetime and the borrow's origin.
	ret := db.Add(place.Place{Kind: place.KindVariable, Type: i32, IsCopy: true, Name: "_0"})
	db.SetReturnPlace(ret)
	x := db.Add(place.Place{Kind: place.KindVariable, Type: i32, IsCopy: true, Name: "_1"})
	r := db.Add(place.Place{Kind: place.KindVariable, Type: refI32, Regions: []region.Region{1}, IsCopy: true, Name: "_2"})
	derefR := db.Add(place.Place{Kind: place.KindDeref, Type: i32, IsCopy: true, Parent: r, Name: "*_2"})
	y := db.Add(place.Place{Kind: place.KindVariable, Type: i32, IsCopy: true, Name: "_3"})

	blk := bir.Block{
		ID: 0,
		Statements: []bir.Statement{
			{Kind: bir.StmtStorageLive, Place: x},
			{Kind: bir.StmtAssignment, Place: x, Rhs: bir.RhsExpr{Kind: bir.RhsInitializer}},
			{Kind: bir.StmtAssignment, Place: r, Rhs: bir.RhsExpr{
				Kind: bir.RhsBorrow, BorrowBase: x, BorrowOrigin: 1, BorrowLoan: 0,
			}},
			{Kind: bir.StmtAssignment, Place: y, Rhs: bir.RhsExpr{Kind: bir.RhsUse, UsePlace: derefR}},
			{Kind: bir.StmtAssignment, Place: ret, Rhs: bir.RhsExpr{Kind: bir.RhsUse, UsePlace: y}},
			{Kind: bir.StmtStorageDead, Place: x},
			{Kind: bir.StmtReturn, Place: ret},
		},
	}

	fn := &bir.Function{
		Name:    "demo",
		Span:    source.Span{},
		PlaceDB: db,
		Blocks:  []bir.Block{blk},
	}
	return fn, types, true
}

// fieldAndCall models:
//
//	struct Pair { a: i32, b: &i32 }
//	fn get_b(p: &Pair) -> &i32;
//
//	fn demo<'a>() -> &'a i32 {
//	    let x = 10;
//	    let p = Pair { a: x, b: &x };
//	    let rp = &p;
//	    let pb = p.b;
//	    let q: &'a i32 = get_b(rp);
//	    return q;
//	}
//
// exercising the Field projection's variance-aware region mapping, a call's
// region binding, and a named user type ascription, none of which the other
// two fixtures reach. p's initializer is lowered to a read of x only: the
// &x stored in field b is not modelled as a separate borrow, so the
// fixture issues a single loan (for rp = &p).
func fieldAndCall() (*bir.Function, *rtype.Interner, bool) {
	types := rtype.NewInterner()
	i32 := types.Register(rtype.Type{Kind: rtype.KindScalar, Name: "i32"})
	refI32 := types.Register(rtype.Type{
		Kind: rtype.KindReference, Name: "&i32",
		Elem:      i32,
		Variances: []rtype.Variance{rtype.Covariant},
	})
	// 'a is resolved (by whatever ran before this collector) to universal
	// region 10; the ascription below names it directly.
	types.Type(refI32).UserRegions = []rtype.RegionRef{{Kind: rtype.RegionNamedRef, UserRegion: 10}}

	pair := types.Register(rtype.Type{
		Kind: rtype.KindADT, Name: "Pair",
		NumLifetimeParams: 1,
		Variances:         []rtype.Variance{rtype.Covariant},
		ADTFields: []rtype.FieldInfo{
			{Name: "a", Type: i32},
			{Name: "b", Type: refI32, RegionRefs: []int{0}},
		},
	})
	refPair := types.Register(rtype.Type{
		Kind: rtype.KindReference, Name: "&Pair",
		Elem:      pair,
		Variances: []rtype.Variance{rtype.Covariant, rtype.Covariant},
	})
	fnGetB := types.Register(rtype.Type{Kind: rtype.KindFnDef, Name: "get_b", Params: []rtype.TypeID{refPair}, Result: refI32})

	getBSig := &rtype.Signature{
		Params: []rtype.TypeID{refPair},
		ParamRefs: [][]rtype.RegionRef{{
			{Kind: rtype.RegionEarlyBound, Index: 0},
			{Kind: rtype.RegionEarlyBound, Index: 1},
		}},
		Result:     refI32,
		ResultRefs: []rtype.RegionRef{{Kind: rtype.RegionEarlyBound, Index: 1}},
		Arity:      2,
	}

	// Region layout: 0 'static, 1 Pair's own lifetime param, 2 rp's own
	// lifetime, 3 pb's, 4 pbCopy's, 5 q's, 6 the return place's, 10 the
	// universal 'a. The minter seed (20) stays clear of all of them.
	db := place.NewPlaceDB(20)
	ret := db.Add(place.Place{Kind: place.KindVariable, Type: refI32, Regions: []region.Region{6}, IsCopy: true, Name: "_0"})
	db.SetReturnPlace(ret)
	x := db.Add(place.Place{Kind: place.KindVariable, Type: i32, IsCopy: true, Name: "_1"})
	p := db.Add(place.Place{Kind: place.KindVariable, Type: pair, Regions: []region.Region{1}, Name: "_2"})
	rp := db.Add(place.Place{Kind: place.KindVariable, Type: refPair, Regions: []region.Region{2, 1}, IsCopy: true, Name: "_3"})
	pb := db.Add(place.Place{Kind: place.KindField, Type: refI32, Regions: []region.Region{3}, IsCopy: true, Parent: p, FieldIndex: 1, Name: "_2.b"})
	pbCopy := db.Add(place.Place{Kind: place.KindVariable, Type: refI32, Regions: []region.Region{4}, IsCopy: true, Name: "_4"})
	q := db.Add(place.Place{Kind: place.KindVariable, Type: refI32, Regions: []region.Region{5}, IsCopy: true, Name: "_5"})
	callee := db.Add(place.Place{Kind: place.KindConstant, Type: fnGetB, Name: "get_b"})

	blk := bir.Block{
		ID: 0,
		Statements: []bir.Statement{
			{Kind: bir.StmtStorageLive, Place: x},
			{Kind: bir.StmtAssignment, Place: x, Rhs: bir.RhsExpr{Kind: bir.RhsInitializer}},
			{Kind: bir.StmtAssignment, Place: p, Rhs: bir.RhsExpr{Kind: bir.RhsInitializer, Values: []place.ID{x}}},
			{Kind: bir.StmtAssignment, Place: rp, Rhs: bir.RhsExpr{
				Kind: bir.RhsBorrow, BorrowBase: p, BorrowOrigin: 2, BorrowLoan: 0,
			}},
			{Kind: bir.StmtAssignment, Place: pbCopy, Rhs: bir.RhsExpr{Kind: bir.RhsUse, UsePlace: pb}},
			{Kind: bir.StmtAssignment, Place: q, Rhs: bir.RhsExpr{
				Kind: bir.RhsCall, CallCallable: callee, CallArgs: []place.ID{rp}, CallSignature: getBSig,
			}},
			{Kind: bir.StmtUserTypeAscription, Place: q, AscribedType: refI32},
			{Kind: bir.StmtStorageDead, Place: x},
			{Kind: bir.StmtAssignment, Place: ret, Rhs: bir.RhsExpr{Kind: bir.RhsUse, UsePlace: q}},
			{Kind: bir.StmtReturn},
		},
	}

	fn := &bir.Function{
		Name:       "demo",
		Span:       source.Span{},
		PlaceDB:    db,
		Blocks:     []bir.Block{blk},
		Universals: region.Universals{Regions: []region.Region{10}},
	}
	return fn, types, true
}

// moveBehindRef models:
//
//	fn demo(r: &String) -> String {
//	    let y = *r;
//	    return y;
//	}
//
// a move of a non-Copy value out of a dereferenced shared reference, which
// issueRead rejects with SemaMoveBehindReference.
func moveBehindRef() (*bir.Function, *rtype.Interner, bool) {
	types := rtype.NewInterner()
	str := types.Register(rtype.Type{Kind: rtype.KindStr, Name: "String"})
	refStr := types.Register(rtype.Type{
		Kind: rtype.KindReference, Name: "&String",
		Elem:      str,
		Variances: []rtype.Variance{rtype.Covariant},
	})

	db := place.NewPlaceDB(2)
	ret := db.Add(place.Place{Kind: place.KindVariable, Type: str, Name: "_0"})
	db.SetReturnPlace(ret)
	r := db.Add(place.Place{Kind: place.KindVariable, Type: refStr, Regions: []region.Region{1}, IsCopy: true, Name: "_1"})
	derefR := db.Add(place.Place{Kind: place.KindDeref, Type: str, Parent: r, Name: "*_1"})
	y := db.Add(place.Place{Kind: place.KindVariable, Type: str, Name: "_2"})

	blk := bir.Block{
		ID: 0,
		Statements: []bir.Statement{
			{Kind: bir.StmtAssignment, Place: y, Rhs: bir.RhsExpr{Kind: bir.RhsUse, UsePlace: derefR}},
			{Kind: bir.StmtAssignment, Place: ret, Rhs: bir.RhsExpr{Kind: bir.RhsUse, UsePlace: y}},
			{Kind: bir.StmtReturn, Place: ret},
		},
	}

	fn := &bir.Function{
		Name:    "demo",
		Span:    source.Span{},
		PlaceDB: db,
		Blocks:  []bir.Block{blk},
	}
	return fn, types, true
}
