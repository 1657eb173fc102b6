// Package factcollect walks a typed CFG and emits the relational facts a
// Polonius-style Datalog engine consumes: control flow edges, the place
// tree, accesses, loans and outlives constraints, one function at a time.
package factcollect

import (
	"context"
	"fmt"

	"birfacts/internal/bir"
	"birfacts/internal/diag"
	"birfacts/internal/facts"
	"birfacts/internal/place"
	"birfacts/internal/point"
	"birfacts/internal/region"
	"birfacts/internal/rtype"
	"birfacts/internal/trace"
)

// Collector runs the collection phases over one function: seed universals,
// walk statements, walk the place tree, then resolve loan kills.
type Collector struct {
	fn       *bir.Function
	types    *rtype.Interner
	reporter diag.Reporter
	tracer   trace.Tracer

	facts  *facts.Facts
	minter *region.Minter

	// points accumulates every Start/Mid point generated during the
	// statement walk, in visitation order, for the place walk's
	// emitAtAllPoints step.
	points []point.Point

	// loans records each borrow issued during the statement walk so a
	// second pass can find every write or move that overwrites the
	// borrowed path and so kills (and, conservatively, invalidates) the
	// loan. That pass does not compare points: a write before the borrow
	// is counted too.
	loans []loanRecord
}

type loanRecord struct {
	base place.ID
	loan region.LoanID
}

// New builds a collector for fn. types resolves the TypeIDs places carry;
// reporter receives the two source diagnostics issueRead/issueWrite can
// raise; tracer, if nil, is treated as trace.Nop.
func New(fn *bir.Function, types *rtype.Interner, reporter diag.Reporter, tracer trace.Tracer) *Collector {
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Collector{
		fn:       fn,
		types:    types,
		reporter: reporter,
		tracer:   tracer,
		facts:    facts.New(),
		minter:   region.NewMinter(fn.PeekNextFreeRegion()),
	}
}

// Collect runs the full pass and returns the accumulated facts. It never
// returns an error: malformed input this collector treats as fatal
// (unsupported type kinds, named regions at a call site) surfaces as a
// panic, matching the "unimplemented" behavior those paths are documented
// to have.
func (c *Collector) Collect(ctx context.Context) *facts.Facts {
	sp := trace.Begin(c.tracer, trace.ScopePass, "factcollect", trace.CurrentSpan(ctx).SpanID)
	defer sp.End("")

	c.collectUniversals()
	c.collectStatementFacts()
	c.collectPlaceFacts()
	c.collectLoanKills()

	return c.facts
}

// CollectGuarded runs Collect, converting the pass's internal
// "unimplemented" panics (named region at a call site, infer/placeholder/
// param type reaching the constraint walk) into a SemaNotImplemented
// diagnostic so the driver can skip the function and keep going.
func (c *Collector) CollectGuarded(ctx context.Context) (f *facts.Facts, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			diag.ReportError(c.reporter, diag.SemaNotImplemented, c.fn.Span, fmt.Sprint(r)).Emit()
			f, ok = nil, false
		}
	}()
	return c.Collect(ctx), true
}

// HasClosure reports whether fn mentions a closure type anywhere in its
// place database. Closures are unsupported at this stage; the driver skips
// such functions instead of collecting a partial fact set.
func HasClosure(fn *bir.Function, types *rtype.Interner) bool {
	var visit func(id rtype.TypeID, depth int) bool
	visit = func(id rtype.TypeID, depth int) bool {
		if id == rtype.InvalidType || depth > 64 {
			return false
		}
		t := types.Type(id)
		if t.Kind == rtype.KindClosure {
			return true
		}
		if t.Elem != rtype.InvalidType && visit(t.Elem, depth+1) {
			return true
		}
		for _, f := range t.Fields {
			if visit(f, depth+1) {
				return true
			}
		}
		for _, a := range t.Args {
			if visit(a, depth+1) {
				return true
			}
		}
		for _, p := range t.Params {
			if visit(p, depth+1) {
				return true
			}
		}
		return t.Result != rtype.InvalidType && visit(t.Result, depth+1)
	}
	for _, id := range fn.PlaceDB.All() {
		if visit(fn.PlaceDB.At(id).Type, 0) {
			return true
		}
	}
	return false
}

// collectLoanKills is a second pass over the assignments recorded by
// issueWrite and the moves recorded by issueRead: any of them that
// overwrites a borrowed path kills that loan. Distinguishing a kill from a true invalidation (a conflicting
// access while the loan may still be read) needs alias analysis this
// collector does not perform, so both relations are populated from the same
// set of overwriting points.
func (c *Collector) collectLoanKills() {
	db := c.fn.PlaceDB
	for _, lr := range c.loans {
		for _, w := range c.facts.PathAssignedAtBase {
			if db.IsPrefixOf(w.Place, lr.base) {
				c.facts.AddLoanKilledAt(lr.loan, w.At)
				c.facts.AddLoanInvalidatedAt(lr.loan, w.At)
			}
		}
		for _, w := range c.facts.PathMovedAtBase {
			if db.IsPrefixOf(w.Place, lr.base) {
				c.facts.AddLoanKilledAt(lr.loan, w.At)
				c.facts.AddLoanInvalidatedAt(lr.loan, w.At)
			}
		}
	}
}

// collectUniversals seeds universal_region and known_placeholder_subset
// from the function's declared lifetime parameters and bounds.
func (c *Collector) collectUniversals() {
	for _, r := range c.fn.Universals.Regions {
		c.facts.AddUniversalRegion(r)
	}
	for _, b := range c.fn.Universals.Bounds {
		c.facts.AddKnownPlaceholderSubset(b.Sub, b.Sup)
	}
}

// pointOf packs the (block, stmt) coordinate of a statement within its
// block into a CFG point.
func pointOf(block bir.BlockID, stmt int, pos point.Position) point.Point {
	return point.Encode(uint32(block), uint32(stmt), pos)
}

// collectStatementFacts walks every block's statements in index order:
// every statement contributes exactly one Start→Mid edge; every non-first
// statement in a block contributes one prev.Mid→cur.Start edge; a block's
// last statement additionally contributes cur.Start→succ.Start for every
// successor. The statement's own effect is then
// dispatched at its Mid point.
func (c *Collector) collectStatementFacts() {
	for _, blk := range c.fn.Blocks {
		for i, stmt := range blk.Statements {
			start := pointOf(blk.ID, i, point.Start)
			mid := pointOf(blk.ID, i, point.Mid)
			c.points = append(c.points, start, mid)

			c.facts.AddCfgEdge(start, mid)

			if i+1 < len(blk.Statements) {
				c.facts.AddCfgEdge(mid, pointOf(blk.ID, i+1, point.Start))
			} else {
				for _, succ := range blk.Successors {
					c.facts.AddCfgEdge(start, pointOf(succ, 0, point.Start))
				}
			}

			c.visitStatement(stmt, mid)
		}
	}
}

// collectPlaceFacts walks every place in the database once and emits its
// static shape plus the outlives constraints a projection's region mapping
// implies, held at every CFG point since a place's shape does not vary
// over the function's body.
func (c *Collector) collectPlaceFacts() {
	db := c.fn.PlaceDB
	for _, id := range db.All() {
		p := db.At(id)
		switch p.Kind {
		case place.KindVariable, place.KindTemporary:
			c.facts.AddPathIsVar(id)
			for _, r := range p.Regions {
				c.facts.AddUseOfVarDerefsOrigin(id, r)
			}
		case place.KindField:
			c.facts.AddChildPath(id, p.Parent)
			parent := db.At(p.Parent)
			parentType := c.types.Type(parent.Type)
			if parentType.Kind == rtype.KindTuple {
				continue
			}
			bound := c.types.FieldRegions(parent.Type, p.FieldIndex, parent.Regions)
			c.emitAtAllPoints(p.Type, p.Regions, bound)
		case place.KindIndex:
			c.facts.AddChildPath(id, p.Parent)
			parent := db.At(p.Parent)
			c.emitAtAllPoints(p.Type, p.Regions, parent.Regions)
		case place.KindDeref:
			c.facts.AddChildPath(id, p.Parent)
			parent := db.At(p.Parent)
			dropped := region.NewFreeRegions(parent.Regions).Drop1().Slice()
			c.emitAtAllPoints(p.Type, p.Regions, dropped)
		case place.KindConstant, place.KindInvalid:
			// Neither contributes a place-tree fact.
		}
	}
}

// emitAtAllPoints applies ty's per-position variance to the paired regions
// (a, b), repeating the resulting subset_base rows at every point the
// function's CFG walk visited: a projection's shape holds everywhere.
func (c *Collector) emitAtAllPoints(ty rtype.TypeID, a, b []region.Region) {
	variances := c.types.TypeVariances(ty)
	n := len(variances)
	if n > len(a) {
		n = len(a)
	}
	if n > len(b) {
		n = len(b)
	}
	if n == 0 {
		return
	}
	for _, at := range c.points {
		for i := 0; i < n; i++ {
			for _, edge := range variances[i].Pair(a[i], b[i]) {
				c.facts.AddSubsetBase(edge[0], edge[1], at)
			}
		}
	}
}
