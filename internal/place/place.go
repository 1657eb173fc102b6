// Package place models the place tree a BIR function is built over: the
// addressable locations (variables, temporaries, and their field/index/deref
// projections) that statements read from and write to.
package place

import (
	"birfacts/internal/region"
	"birfacts/internal/rtype"
)

// ID identifies a place within a PlaceDB. ID 0 is the reserved Invalid place.
type ID uint32

// InvalidID is the reserved sentinel, the "_" wildcard place.
const InvalidID ID = 0

// Kind discriminates the shape of a place.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVariable
	KindTemporary
	KindConstant
	KindField
	KindIndex
	KindDeref
)

// Place is one node of the place tree.
type Place struct {
	Kind Kind
	Type rtype.TypeID

	// Regions holds one concrete region per region position in Type, in
	// the same left-to-right order the type's structure exposes them.
	Regions []region.Region

	IsCopy   bool
	IsLvalue bool
	IsRvalue bool

	// Parent is valid for Field, Index and Deref projections.
	Parent ID
	// FieldIndex is the struct field position, valid for Kind == KindField.
	FieldIndex int

	Name string // debug label, e.g. "_1" or a source identifier
}

// PlaceDB is the ordered, append-only place tree the collector reads. Index
// 0 is reserved Invalid; index 1 is reserved for the function's return
// place by convention of the caller that builds it.
type PlaceDB struct {
	places         []Place
	nextFreeRegion region.Region
	returnPlace    ID
}

// NewPlaceDB builds an empty database with the Invalid place seated at
// index 0 and seeds the fresh-region counter from nextFreeRegion.
func NewPlaceDB(nextFreeRegion region.Region) *PlaceDB {
	db := &PlaceDB{nextFreeRegion: nextFreeRegion}
	db.places = append(db.places, Place{Kind: KindInvalid})
	return db
}

// Add appends a place and returns its ID.
func (db *PlaceDB) Add(p Place) ID {
	db.places = append(db.places, p)
	return ID(len(db.places) - 1)
}

// SetReturnPlace records which place ID is the function's return value.
func (db *PlaceDB) SetReturnPlace(id ID) { db.returnPlace = id }

// ReturnPlace returns the function's reserved return place.
func (db *PlaceDB) ReturnPlace() ID { return db.returnPlace }

// Len reports how many places (including the Invalid sentinel) exist.
func (db *PlaceDB) Len() int { return len(db.places) }

// NextFreeRegion is the seed a region.Minter should start from.
func (db *PlaceDB) NextFreeRegion() region.Region { return db.nextFreeRegion }

// At returns the place for id. Index 0 is always Invalid.
func (db *PlaceDB) At(id ID) *Place {
	return &db.places[id]
}

// Get is an alias of At kept for indexing-style call sites.
func (db *PlaceDB) Get(id ID) Place { return db.places[id] }

// Root resolves id to its owning root variable or temporary, walking
// through Field/Index/Deref parents.
func (db *PlaceDB) Root(id ID) ID {
	for {
		p := db.At(id)
		switch p.Kind {
		case KindField, KindIndex, KindDeref:
			id = p.Parent
		default:
			return id
		}
	}
}

// IsRootVar reports whether id is a Variable or Temporary (path_is_var).
func (db *PlaceDB) IsRootVar(id ID) bool {
	switch db.At(id).Kind {
	case KindVariable, KindTemporary:
		return true
	default:
		return false
	}
}

// ForEachPathSegment walks id and every ancestor up to (and including) the
// root, innermost first, calling fn on each. Used to detect a Deref
// anywhere along a projection path.
func (db *PlaceDB) ForEachPathSegment(id ID, fn func(ID)) {
	for {
		fn(id)
		p := db.At(id)
		switch p.Kind {
		case KindField, KindIndex, KindDeref:
			id = p.Parent
		default:
			return
		}
	}
}

// ForEachPathFromRoot walks from id's root down to id inclusive, outermost
// first: the reverse order of ForEachPathSegment.
func (db *PlaceDB) ForEachPathFromRoot(id ID, fn func(ID)) {
	var chain []ID
	for cur := id; ; {
		chain = append(chain, cur)
		p := db.At(cur)
		switch p.Kind {
		case KindField, KindIndex, KindDeref:
			cur = p.Parent
		default:
			goto walk
		}
	}
walk:
	for i := len(chain) - 1; i >= 0; i-- {
		fn(chain[i])
	}
}

// IsPrefixOf reports whether ancestor is id itself or one of its Field,
// Index or Deref ancestors — i.e. whether a write to ancestor necessarily
// overwrites whatever id denotes.
func (db *PlaceDB) IsPrefixOf(ancestor, id ID) bool {
	for cur := id; ; {
		if cur == ancestor {
			return true
		}
		p := db.At(cur)
		switch p.Kind {
		case KindField, KindIndex, KindDeref:
			cur = p.Parent
		default:
			return false
		}
	}
}

// All returns every place ID in index order, including the Invalid sentinel.
func (db *PlaceDB) All() []ID {
	ids := make([]ID, len(db.places))
	for i := range db.places {
		ids[i] = ID(i)
	}
	return ids
}
