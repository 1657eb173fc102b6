package factcollect

import (
	"fmt"

	"birfacts/internal/bir"
	"birfacts/internal/diag"
	"birfacts/internal/place"
	"birfacts/internal/point"
	"birfacts/internal/region"
	"birfacts/internal/rtype"
	"birfacts/internal/source"
)

// visitStatement dispatches on the statement's kind, one arm per shape.
// Every emitted fact lands at mid: a statement's effect is only visible
// once its Start→Mid edge has been crossed.
func (c *Collector) visitStatement(stmt bir.Statement, mid point.Point) {
	switch stmt.Kind {
	case bir.StmtAssignment:
		c.visitAssignment(stmt, mid)
	case bir.StmtSwitch:
		c.issueRead(stmt.Place, mid, stmt.Span, false)
	case bir.StmtGoto:
		c.issueRead(stmt.Place, mid, stmt.Span, false)
	case bir.StmtReturn:
		// Return carries no place of its own; it reports a use of the
		// function's one reserved return place.
		c.facts.AddVarUsedAt(c.fn.PlaceDB.ReturnPlace(), mid)
	case bir.StmtStorageLive:
		c.facts.AddVarDefinedAt(stmt.Place, mid)
	case bir.StmtStorageDead:
		// Treated as a write. The write-facts alone would discard
		// the variable's drop: supplemented with var_dropped_at and
		// drop_of_var_derefs_origin for each of its regions, so a consumer
		// gets both the write view and the drop-glue view of storage ending.
		c.issueWrite(stmt.Place, mid, stmt.Span)
		c.facts.AddVarDroppedAt(stmt.Place, mid)
		for _, r := range c.fn.PlaceDB.At(stmt.Place).Regions {
			c.facts.AddDropOfVarDerefsOrigin(stmt.Place, r)
		}
	case bir.StmtUserTypeAscription:
		c.visitUserTypeAscription(stmt, mid)
	}
}

// visitAssignment evaluates the right-hand side, applies any region
// constraints the assignment induces, and records the write to the
// left-hand side, all at mid.
func (c *Collector) visitAssignment(stmt bir.Statement, mid point.Point) {
	rhs := stmt.Rhs
	switch rhs.Kind {
	case bir.RhsInitializer:
		c.sanitizeConstraintsAtInit(stmt.Place, mid)
		for _, v := range rhs.Values {
			c.issueRead(v, mid, stmt.Span, false)
		}
	case bir.RhsUnary:
		c.issueRead(rhs.Operand0, mid, stmt.Span, false)
	case bir.RhsBinary:
		c.issueRead(rhs.Operand0, mid, stmt.Span, false)
		c.issueRead(rhs.Operand1, mid, stmt.Span, false)
	case bir.RhsUse:
		isMove := !c.fn.PlaceDB.At(rhs.UsePlace).IsCopy
		c.issueRead(rhs.UsePlace, mid, stmt.Span, isMove)
		lhs := c.fn.PlaceDB.At(stmt.Place)
		src := c.fn.PlaceDB.At(rhs.UsePlace)
		c.sanitizeConstraints(lhs.Type, lhs.Regions, src.Regions, mid)
	case bir.RhsBorrow:
		c.visitBorrow(stmt, mid)
	case bir.RhsCall:
		c.visitCall(stmt, mid)
		c.issueWrite(stmt.Place, mid, stmt.Span)
		return
	}
	c.issueWrite(stmt.Place, mid, stmt.Span)
}

// visitBorrow issues the loan and links the borrowed path's own regions
// to the produced reference's own lifetime (lhs.regions[0]): every region
// the borrowed path carries must outlive that lifetime. The loan itself is recorded under the Borrow expression's own declared
// origin, which need not be the same region in the general case.
func (c *Collector) visitBorrow(stmt bir.Statement, mid point.Point) {
	rhs := stmt.Rhs
	c.facts.AddLoanIssuedAt(rhs.BorrowOrigin, rhs.BorrowLoan, mid)
	c.loans = append(c.loans, loanRecord{base: rhs.BorrowBase, loan: rhs.BorrowLoan})
	c.issueRead(rhs.BorrowBase, mid, stmt.Span, false)

	lhs := c.fn.PlaceDB.At(stmt.Place)
	if len(lhs.Regions) == 0 {
		return
	}
	loanRegion := lhs.Regions[0]
	base := c.fn.PlaceDB.At(rhs.BorrowBase)
	for _, br := range base.Regions {
		c.facts.AddSubsetBase(br, loanRegion, mid)
	}
}

// visitCall mints the call site's fresh region vector, binds it against
// each argument and the result, and propagates variance-directed subset
// constraints through the call boundary.
func (c *Collector) visitCall(stmt bir.Statement, mid point.Point) {
	rhs := stmt.Rhs
	sig := rhs.CallSignature
	if sig == nil {
		return
	}
	c.issueRead(rhs.CallCallable, mid, stmt.Span, false)

	callRegions := c.minter.FreshVector(sig.Arity)

	for i, arg := range rhs.CallArgs {
		isMove := !c.fn.PlaceDB.At(arg).IsCopy
		c.issueRead(arg, mid, stmt.Span, isMove)
		if i >= len(sig.ParamRefs) || i >= len(sig.Params) {
			continue
		}
		bound := rtype.BindRegions(sig.ParamRefs[i], callRegions, c.minter)
		argPlace := c.fn.PlaceDB.At(arg)
		c.sanitizeConstraints(sig.Params[i], bound.Slice(), argPlace.Regions, mid)
	}

	boundResult := rtype.BindRegions(sig.ResultRefs, callRegions, c.minter)
	lhs := c.fn.PlaceDB.At(stmt.Place)
	c.sanitizeConstraints(sig.Result, lhs.Regions, boundResult.Slice(), mid)
}

// visitUserTypeAscription handles an explicit type ascription: a named user
// region induces a variance-directed subset constraint against the ascribed
// place's own region at the same position; an anonymous one is ignored;
// anything else reaching here is an internal error, since the type checker
// that produced the ascription is expected to have already resolved it to
// one of those two forms.
func (c *Collector) visitUserTypeAscription(stmt bir.Statement, mid point.Point) {
	refs := c.types.TypeRegions(stmt.AscribedType)
	if len(refs) == 0 {
		return
	}
	placeRegions := c.fn.PlaceDB.At(stmt.Place).Regions
	variances := c.types.TypeVariances(stmt.AscribedType)

	n := len(refs)
	if n > len(placeRegions) {
		n = len(placeRegions)
	}
	for i := 0; i < n; i++ {
		ref := refs[i]
		switch ref.Kind {
		case rtype.RegionNamedRef:
			v := rtype.Invariant
			if i < len(variances) {
				v = variances[i]
			}
			for _, edge := range v.Pair(placeRegions[i], ref.UserRegion) {
				c.facts.AddSubsetBase(edge[0], edge[1], mid)
			}
		case rtype.RegionAnonymousRef:
			// No constraint: an anonymous user region is unconstrained by
			// definition.
		default:
			panic(fmt.Sprintf("internal error: unexpected region ref kind %d in user type ascription", ref.Kind))
		}
	}
}

// sanitizeConstraints applies ty's per-position variance to each paired
// region in (from, to). Every region position shorter than either side is
// skipped rather than treated as an error, since Tuple and zero-arity
// leaves never populate this path. An inference, placeholder or parameter
// type reaching this walk is a hard error: nothing this late in the
// pipeline may still be unresolved.
func (c *Collector) sanitizeConstraints(ty rtype.TypeID, from, to []region.Region, at point.Point) {
	c.rejectUnsupported(ty)
	variances := c.types.TypeVariances(ty)
	n := len(variances)
	if n > len(from) {
		n = len(from)
	}
	if n > len(to) {
		n = len(to)
	}
	for i := 0; i < n; i++ {
		for _, edge := range variances[i].Pair(from[i], to[i]) {
			c.facts.AddSubsetBase(edge[0], edge[1], at)
		}
	}
}

// sanitizeConstraintsAtInit stamps an initializer's left-hand place with its
// own type's declared outlives bounds (RegionBound, TypeRegionBound) and,
// for a reference type specifically, forces every region threaded through
// the referent to outlive the reference's own lifetime (position 0).
func (c *Collector) sanitizeConstraintsAtInit(pl place.ID, at point.Point) {
	p := c.fn.PlaceDB.At(pl)
	c.rejectUnsupported(p.Type)
	t := c.types.Type(p.Type)
	regions := p.Regions

	if t.Schema != nil {
		for _, rb := range t.Schema.RegionBounds {
			if rb.Left >= len(regions) || rb.Right >= len(regions) {
				continue
			}
			for _, edge := range rb.Variance.Pair(regions[rb.Left], regions[rb.Right]) {
				c.facts.AddSubsetBase(edge[0], edge[1], at)
			}
		}
		for _, trb := range t.Schema.TypeRegionBounds {
			if trb.Region >= len(regions) || trb.ArgIndex >= len(t.Args) {
				continue
			}
			start, length := c.types.ArgRegionRange(p.Type, trb.ArgIndex)
			for i := start; i < start+length && i < len(regions); i++ {
				for _, edge := range trb.Variance.Pair(regions[trb.Region], regions[i]) {
					c.facts.AddSubsetBase(edge[0], edge[1], at)
				}
			}
		}
	}

	if t.Kind == rtype.KindReference && len(regions) > 0 {
		for _, r := range regions[1:] {
			c.facts.AddSubsetBase(r, regions[0], at)
		}
	}
}

func (c *Collector) rejectUnsupported(ty rtype.TypeID) {
	if c.types.Unsupported(ty) {
		panic(fmt.Sprintf("unimplemented: unresolved type %q in constraint walk", c.types.Type(ty).Name))
	}
}

// issueRead records a read of pl: a constant contributes nothing; otherwise
// it records the base access and the owning variable's use. When isMove is
// set the path is additionally recorded as moved-from, and moving through a
// deref is rejected: the collector has no way to leave a hole behind a
// reference.
func (c *Collector) issueRead(pl place.ID, at point.Point, span source.Span, isMove bool) {
	if pl == place.InvalidID {
		return
	}
	db := c.fn.PlaceDB
	if db.At(pl).Kind == place.KindConstant {
		return
	}

	c.facts.AddPathAccessedAtBase(pl, at)
	root := db.Root(pl)
	c.facts.AddVarUsedAt(root, at)

	if isMove {
		c.facts.AddPathMovedAtBase(pl, at)
		sawDeref := false
		db.ForEachPathSegment(pl, func(seg place.ID) {
			if db.At(seg).Kind == place.KindDeref {
				sawDeref = true
			}
		})
		if sawDeref {
			diag.ReportError(c.reporter, diag.SemaMoveBehindReference, span,
				"cannot move out of a path behind a reference").Emit()
		}
	}
}

// issueWrite records a write to pl: writing to the wildcard place is a
// no-op; otherwise it records the assigned-to path, the owning variable's
// use, and — if pl is itself a root variable — its (re)definition. A write
// that crosses a deref of an immutable reference is rejected.
func (c *Collector) issueWrite(pl place.ID, at point.Point, span source.Span) {
	if pl == place.InvalidID {
		return
	}
	db := c.fn.PlaceDB
	c.facts.AddPathAssignedAtBase(pl, at)
	root := db.Root(pl)
	c.facts.AddVarUsedAt(root, at)
	if db.IsRootVar(pl) {
		c.facts.AddVarDefinedAt(pl, at)
	}

	db.ForEachPathSegment(pl, func(seg place.ID) {
		p := db.At(seg)
		if p.Kind != place.KindDeref {
			return
		}
		parent := db.At(p.Parent)
		pt := c.types.Type(parent.Type)
		if pt.Kind == rtype.KindReference && !pt.Mutable {
			diag.ReportError(c.reporter, diag.SemaMutateImmutableReferent, span,
				"cannot mutate content behind an immutable reference").Emit()
		}
	})
}
