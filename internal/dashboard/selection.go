package dashboard

import (
	"fmt"

	"iris-app/internal/dataset"
)

// MaxSelected is the number of columns a scatter plot needs.
const MaxSelected = 2

// Selection is the bounded multi-select of the visualization view. It is
// owned by one request or session and is not safe for concurrent use.
type Selection struct {
	allowed  []string
	selected []string
}

// NewSelection starts with the first two allowed columns selected.
func NewSelection(allowed []string) *Selection {
	s := &Selection{allowed: append([]string(nil), allowed...)}
	for i := 0; i < len(allowed) && i < MaxSelected; i++ {
		s.selected = append(s.selected, allowed[i])
	}
	return s
}

// Columns returns the selected columns in selection order.
func (s *Selection) Columns() []string {
	return append([]string(nil), s.selected...)
}

// Len returns how many columns are selected.
func (s *Selection) Len() int {
	return len(s.selected)
}

// Add selects col. Selecting an already selected column is a no-op.
func (s *Selection) Add(col string) error {
	if err := s.check(col); err != nil {
		return err
	}
	if s.has(col) {
		return nil
	}
	if len(s.selected) >= MaxSelected {
		return fmt.Errorf("%w: cannot add %q", ErrSelectionFull, col)
	}
	s.selected = append(s.selected, col)
	return nil
}

// Remove deselects col and reports whether it was selected.
func (s *Selection) Remove(col string) bool {
	for i, c := range s.selected {
		if c == col {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			return true
		}
	}
	return false
}

// Set replaces the selection. Duplicates collapse; more than two distinct
// columns is an error and leaves the selection unchanged.
func (s *Selection) Set(cols []string) error {
	next := make([]string, 0, MaxSelected)
	for _, col := range cols {
		if err := s.check(col); err != nil {
			return err
		}
		if contains(next, col) {
			continue
		}
		if len(next) >= MaxSelected {
			return fmt.Errorf("%w: got %d columns", ErrSelectionFull, len(cols))
		}
		next = append(next, col)
	}
	s.selected = next
	return nil
}

func (s *Selection) check(col string) error {
	if !contains(s.allowed, col) {
		return fmt.Errorf("%w: %q", dataset.ErrUnknownColumn, col)
	}
	return nil
}

func (s *Selection) has(col string) bool {
	return contains(s.selected, col)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
