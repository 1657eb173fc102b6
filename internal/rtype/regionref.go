package rtype

import (
	"fmt"

	"birfacts/internal/region"
)

// RegionRefKind classifies how an unbound region position in a callable
// signature or user type ascription resolves to a concrete region.
type RegionRefKind uint8

const (
	// RegionEarlyBound resolves by indexing into the caller-supplied free
	// region vector (a function's own lifetime parameters, or the regions
	// minted for a call site).
	RegionEarlyBound RegionRefKind = iota
	// RegionStaticRef always resolves to 'static.
	RegionStaticRef
	// RegionAnonymousRef mints a fresh region.
	RegionAnonymousRef
	// RegionNamedRef is a named lifetime appearing in a binding position
	// this stage does not support (e.g. explicit turbofish lifetimes).
	RegionNamedRef
)

// RegionRef describes one unbound region position, as found in a callable's
// parameter/return types or in a user type ascription.
type RegionRef struct {
	Kind  RegionRefKind
	Index int    // RegionEarlyBound: position in the parent free-region vector
	Name  string // RegionNamedRef: the source-level lifetime name, for diagnostics

	// UserRegion is the region a RegionNamedRef resolves to when it appears
	// in a user type ascription, where the named lifetime has already been
	// bound to a concrete universal region. It plays no role in call-site
	// binding, where a named ref is unsupported and BindRegions panics.
	UserRegion region.Region
}

// BindRegions resolves each RegionRef in regions against parent, minting
// fresh regions for anonymous positions via m. Named regions are not
// supported at this stage and cause a panic carrying a stable
// "unimplemented" message.
func BindRegions(regions []RegionRef, parent region.FreeRegions, m *region.Minter) region.FreeRegions {
	out := make([]region.Region, len(regions))
	for i, r := range regions {
		switch r.Kind {
		case RegionEarlyBound:
			out[i] = parent.At(r.Index)
		case RegionStaticRef:
			out[i] = region.Static
		case RegionAnonymousRef:
			out[i] = m.Fresh()
		case RegionNamedRef:
			panic(fmt.Sprintf("unimplemented: named region %q in call binding", r.Name))
		default:
			panic(fmt.Sprintf("unimplemented: unknown region ref kind %d", r.Kind))
		}
	}
	return region.NewFreeRegions(out)
}

// Signature is a callable's type-level shape: each parameter and the
// return type paired with the RegionRefs describing how their own region
// positions are bound relative to a call site.
type Signature struct {
	Params     []TypeID
	ParamRefs  [][]RegionRef
	Result     TypeID
	ResultRefs []RegionRef
	Arity      int // number of fresh regions a call site must mint (call_regions)
}
