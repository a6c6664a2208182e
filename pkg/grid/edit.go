package grid

import "fmt"

// EditSession scopes a batch of column renames on a grid. Renames are staged
// and applied by Commit as a unit: if any staged rename cannot be applied the
// grid is restored to its pre-session state and Commit reports the failure.
// The grid is never observable in a half-renamed state.
type EditSession struct {
	grid     *Grid
	renames  [][2]string
	prevCols []string
	done     bool
}

// StartEditing opens an edit session on the grid.
func (g *Grid) StartEditing() *EditSession {
	return &EditSession{grid: g, prevCols: g.Columns()}
}

// RenameColumn stages a rename from old to new. Staging never fails;
// validation happens at Commit so the whole batch succeeds or fails together.
func (s *EditSession) RenameColumn(old, new string) {
	if old == new {
		return
	}
	s.renames = append(s.renames, [2]string{old, new})
}

// Commit applies all staged renames. On any conflict the session rolls the
// grid back and returns the first error encountered.
func (s *EditSession) Commit() error {
	if s.done {
		return fmt.Errorf("grid: edit session already closed")
	}
	s.done = true
	applied := make(map[string][]float64, len(s.grid.values))
	for name, vals := range s.grid.values {
		applied[name] = vals
	}
	cols := append([]string(nil), s.grid.cols...)
	for _, rn := range s.renames {
		old, new := rn[0], rn[1]
		vals, ok := applied[old]
		if !ok {
			s.Rollback()
			return fmt.Errorf("grid: rename %q: no such column", old)
		}
		if _, exists := applied[new]; exists {
			s.Rollback()
			return fmt.Errorf("grid: rename %q to %q: target exists", old, new)
		}
		delete(applied, old)
		applied[new] = vals
		for i, c := range cols {
			if c == old {
				cols[i] = new
				break
			}
		}
	}
	s.grid.values = applied
	s.grid.cols = cols
	return nil
}

// Rollback discards staged renames, leaving the grid untouched.
func (s *EditSession) Rollback() {
	s.renames = nil
	s.done = true
}
