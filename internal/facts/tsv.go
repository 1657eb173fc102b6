package facts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// relationFile pairs a relation's on-disk name with a function that renders
// its rows, one line per row, columns tab-separated in the tuple order
// declared alongside the matching Facts field. Columns are the raw integer
// encodings (point.Point, place.ID, region.Region, region.LoanID), not their
// debug String() forms, since a Datalog engine reads these as plain facts.
type relationFile struct {
	name string
	rows func(f *Facts) []string
}

var relationFiles = []relationFile{
	{"cfg_edge", func(f *Facts) []string {
		out := make([]string, len(f.CfgEdge))
		for i, r := range f.CfgEdge {
			out[i] = fmt.Sprintf("%d\t%d", r.From, r.To)
		}
		return out
	}},
	{"path_is_var", func(f *Facts) []string {
		out := make([]string, len(f.PathIsVar))
		for i, r := range f.PathIsVar {
			out[i] = fmt.Sprintf("%d\t%d", r.A, r.B)
		}
		return out
	}},
	{"child_path", func(f *Facts) []string {
		out := make([]string, len(f.ChildPath))
		for i, r := range f.ChildPath {
			out[i] = fmt.Sprintf("%d\t%d", r.A, r.B)
		}
		return out
	}},
	{"path_accessed_at_base", func(f *Facts) []string { return placeAtRows(f.PathAccessedAtBase) }},
	{"path_moved_at_base", func(f *Facts) []string { return placeAtRows(f.PathMovedAtBase) }},
	{"path_assigned_at_base", func(f *Facts) []string { return placeAtRows(f.PathAssignedAtBase) }},
	{"var_used_at", func(f *Facts) []string { return placeAtRows(f.VarUsedAt) }},
	{"var_defined_at", func(f *Facts) []string { return placeAtRows(f.VarDefinedAt) }},
	{"var_dropped_at", func(f *Facts) []string { return placeAtRows(f.VarDroppedAt) }},
	{"loan_issued_at", func(f *Facts) []string {
		out := make([]string, len(f.LoanIssuedAt))
		for i, r := range f.LoanIssuedAt {
			out[i] = fmt.Sprintf("%d\t%d\t%d", r.Origin, r.Loan, r.At)
		}
		return out
	}},
	{"loan_killed_at", func(f *Facts) []string { return loanAtPointRows(f.LoanKilledAt) }},
	{"loan_invalidated_at", func(f *Facts) []string { return loanAtPointRows(f.LoanInvalidatedAt) }},
	{"use_of_var_derefs_origin", func(f *Facts) []string { return placeOriginRows(f.UseOfVarDerefsOrigin) }},
	{"drop_of_var_derefs_origin", func(f *Facts) []string { return placeOriginRows(f.DropOfVarDerefsOrigin) }},
	{"subset_base", func(f *Facts) []string {
		out := make([]string, len(f.SubsetBase))
		for i, r := range f.SubsetBase {
			out[i] = fmt.Sprintf("%d\t%d\t%d", r.Sub, r.Sup, r.At)
		}
		return out
	}},
	{"universal_region", func(f *Facts) []string {
		out := make([]string, len(f.UniversalRegion))
		for i, r := range f.UniversalRegion {
			out[i] = fmt.Sprintf("%d", r)
		}
		return out
	}},
	{"known_placeholder_subset", func(f *Facts) []string {
		out := make([]string, len(f.KnownPlaceholderSubset))
		for i, r := range f.KnownPlaceholderSubset {
			out[i] = fmt.Sprintf("%d\t%d", r.Sub, r.Sup)
		}
		return out
	}},
}

func placeAtRows(rows []PlaceAt) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = fmt.Sprintf("%d\t%d", r.Place, r.At)
	}
	return out
}

func loanAtPointRows(rows []LoanAtPoint) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = fmt.Sprintf("%d\t%d", r.Loan, r.At)
	}
	return out
}

func placeOriginRows(rows []PlaceOrigin) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = fmt.Sprintf("%d\t%d", r.Place, r.Origin)
	}
	return out
}

// WriteDir serializes every relation into dir, one file per relation named
// after it, in the fixed tab-separated layout: one row per line, columns in
// the tuple order declared on the corresponding Facts field.
func (f *Facts) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, rel := range relationFiles {
		rows := rel.rows(f)
		var b strings.Builder
		for _, r := range rows {
			b.WriteString(r)
			b.WriteByte('\n')
		}
		path := filepath.Join(dir, rel.name+".facts")
		if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", rel.name, err)
		}
	}
	return nil
}
