package place

import (
	"testing"

	"birfacts/internal/rtype"
)

// buildChain builds x (Variable) <- *x (Deref) <- (*x).f (Field), returning
// all three IDs in that order.
func buildChain(db *PlaceDB) (x, derefX, field ID) {
	x = db.Add(Place{Kind: KindVariable})
	derefX = db.Add(Place{Kind: KindDeref, Parent: x})
	field = db.Add(Place{Kind: KindField, Parent: derefX, FieldIndex: 0})
	return x, derefX, field
}

func TestRootAndIsRootVar(t *testing.T) {
	db := NewPlaceDB(0)
	x, _, field := buildChain(db)

	if got := db.Root(field); got != x {
		t.Errorf("Root(field) = %d, want %d", got, x)
	}
	if !db.IsRootVar(x) {
		t.Error("x should be a root var")
	}
	if db.IsRootVar(field) {
		t.Error("field projection should not be a root var")
	}
	if db.IsRootVar(InvalidID) {
		t.Error("the invalid place should not be a root var")
	}
}

func TestForEachPathSegmentOrderAndDerefDetection(t *testing.T) {
	db := NewPlaceDB(0)
	x, derefX, field := buildChain(db)

	var visited []ID
	sawDeref := false
	db.ForEachPathSegment(field, func(id ID) {
		visited = append(visited, id)
		if db.At(id).Kind == KindDeref {
			sawDeref = true
		}
	})

	want := []ID{field, derefX, x}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("visited[%d] = %d, want %d", i, visited[i], want[i])
		}
	}
	if !sawDeref {
		t.Error("expected to observe a Deref segment along the path")
	}
}

func TestIsPrefixOf(t *testing.T) {
	db := NewPlaceDB(0)
	x, derefX, field := buildChain(db)
	y := db.Add(Place{Kind: KindVariable})

	if !db.IsPrefixOf(x, field) {
		t.Error("x should be a prefix of (*x).f")
	}
	if !db.IsPrefixOf(derefX, field) {
		t.Error("*x should be a prefix of (*x).f")
	}
	if !db.IsPrefixOf(field, field) {
		t.Error("a place should be a prefix of itself")
	}
	if db.IsPrefixOf(y, field) {
		t.Error("an unrelated variable should not be a prefix")
	}
	if db.IsPrefixOf(field, x) {
		t.Error("a child should not be a prefix of its own parent")
	}
}

func TestAllIncludesInvalidSentinel(t *testing.T) {
	db := NewPlaceDB(0)
	db.Add(Place{Kind: KindVariable})
	db.Add(Place{Kind: KindVariable})

	ids := db.All()
	if len(ids) != 3 {
		t.Fatalf("All() returned %d ids, want 3 (invalid + 2 added)", len(ids))
	}
	if ids[0] != InvalidID {
		t.Errorf("All()[0] = %d, want InvalidID", ids[0])
	}
}

func TestReturnPlace(t *testing.T) {
	db := NewPlaceDB(0)
	ret := db.Add(Place{Kind: KindVariable, Type: rtype.InvalidType})
	db.SetReturnPlace(ret)
	if db.ReturnPlace() != ret {
		t.Errorf("ReturnPlace() = %d, want %d", db.ReturnPlace(), ret)
	}
}
