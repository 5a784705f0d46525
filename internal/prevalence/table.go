package prevalence

import "sort"

// #region table
// Table maps sample ids to prevalence vectors that all share one class count.
// It is keyed, not positional: insertion order has no effect on anything it returns.
type Table struct {
	classes int
	rows    map[int]Vector
}

// NewTable creates an empty table for vectors of the given class count. With
// classes == 0 the count is fixed by the first Add.
func NewTable(classes int) *Table {
	return &Table{classes: classes, rows: make(map[int]Vector)}
}

// Add stores a copy of vec under id.
func (t *Table) Add(id int, vec Vector) error {
	if _, ok := t.rows[id]; ok {
		return &DuplicateIDError{ID: id}
	}
	if t.classes == 0 {
		if len(vec) == 0 {
			return &DimensionMismatchError{ID: id, Expected: 1, Actual: 0}
		}
		t.classes = len(vec)
	}
	if len(vec) != t.classes {
		return &DimensionMismatchError{ID: id, Expected: t.classes, Actual: len(vec)}
	}
	t.rows[id] = vec.Clone()
	return nil
}

// #endregion table

// #region accessors
// Len returns the number of samples in the table.
func (t *Table) Len() int { return len(t.rows) }

// Classes returns the class count shared by every vector (0 for an empty NewTable(0)).
func (t *Table) Classes() int { return t.classes }

// Get returns the vector stored for id. The returned slice must not be modified.
func (t *Table) Get(id int) (Vector, bool) {
	v, ok := t.rows[id]
	return v, ok
}

// Has reports whether id is present.
func (t *Table) Has(id int) bool {
	_, ok := t.rows[id]
	return ok
}

// IDs returns every sample id in ascending order.
func (t *Table) IDs() []int {
	ids := make([]int, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Rows returns copies of every row in ascending id order.
func (t *Table) Rows() []Row {
	ids := t.IDs()
	out := make([]Row, len(ids))
	for i, id := range ids {
		out[i] = Row{ID: id, Vector: t.rows[id].Clone()}
	}
	return out
}

// #endregion accessors
