package bir

import (
	"birfacts/internal/place"
	"birfacts/internal/region"
	"birfacts/internal/rtype"
	"birfacts/internal/source"
)

// StmtKind discriminates a statement's shape, mirroring the tagged
// terminator/instruction style used throughout this codebase rather than
// interface-based double dispatch.
type StmtKind uint8

const (
	StmtAssignment StmtKind = iota
	StmtSwitch
	StmtGoto
	StmtReturn
	StmtStorageLive
	StmtStorageDead
	StmtUserTypeAscription
)

func (k StmtKind) String() string {
	switch k {
	case StmtAssignment:
		return "assign"
	case StmtSwitch:
		return "switch"
	case StmtGoto:
		return "goto"
	case StmtReturn:
		return "return"
	case StmtStorageLive:
		return "storage_live"
	case StmtStorageDead:
		return "storage_dead"
	case StmtUserTypeAscription:
		return "user_type_ascription"
	default:
		return "?"
	}
}

// Statement is one node of a basic block. Place and Rhs/AscribedType are
// populated according to Kind; see the per-kind comments on RhsExpr.
type Statement struct {
	Kind StmtKind
	Span source.Span

	// Place is the statement's operand: the assignment LHS, the switched or
	// jumped-on place, or the StorageLive/StorageDead/ascription target.
	Place place.ID

	// Rhs is populated for StmtAssignment only.
	Rhs RhsExpr

	// AscribedType is populated for StmtUserTypeAscription only.
	AscribedType rtype.TypeID
}

// RhsKind discriminates the right-hand side of an assignment.
type RhsKind uint8

const (
	RhsInitializer RhsKind = iota
	RhsUnary
	RhsBinary
	RhsBorrow
	// RhsUse is a bare copy/move of another place ("_2 = _1;").
	RhsUse
	RhsCall
)

// RhsExpr is the right-hand side of a StmtAssignment.
type RhsExpr struct {
	Kind RhsKind

	// RhsInitializer
	Values []place.ID

	// RhsUnary: Operand0. RhsBinary: Operand0, Operand1.
	Operand0 place.ID
	Operand1 place.ID

	// RhsBorrow
	BorrowOrigin region.Region
	BorrowLoan   region.LoanID
	BorrowBase   place.ID

	// RhsUse
	UsePlace place.ID

	// RhsCall
	CallCallable  place.ID
	CallArgs      []place.ID
	CallSignature *rtype.Signature
}
