package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Драйверные: проблемы вокруг запуска коллектора, не внутри него.
	DrvInfo               Code = 1000
	DrvClosureUnsupported Code = 1001

	// Семантические: то, что сам проход по функции может сообщить.
	SemaInfo                    Code = 3000
	SemaNotImplemented          Code = 3001
	SemaMoveBehindReference     Code = 3002
	SemaMutateImmutableReferent Code = 3003
)

var ( // todo расширить описания и использовать как notes
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		DrvInfo:                     "Driver information",
		DrvClosureUnsupported:       "Closures are not supported; function skipped",
		SemaInfo:                    "Semantic information",
		SemaNotImplemented:          "Construct not implemented at this stage",
		SemaMoveBehindReference:     "cannot move from behind a reference",
		SemaMutateImmutableReferent: "mutating content behind an immutable reference",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("DRV%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
