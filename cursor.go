package archon

// Cursor iterates the rows of every table matching a Query. A cursor is a
// snapshot of which tables matched at the time it was created; it does not
// re-evaluate matching tables added afterward, and a row slice it hands out
// is invalidated the same way any other borrowed view is — by a structural
// mutation on that table.
type Cursor struct {
	world   *World
	tables  []*rowTable
	tableAt int
	rowAt   int
}

// Query returns a cursor over every table currently matching target under
// matchAll (see NewQuery). Call
// BeginProgress before iterating if the caller also intends to Add/Remove/
// Commit/Delete entities while walking — iterating and staged mutation are
// meant to run interleaved inside one progress cycle.
func (w *World) Query(target FamilyId, matchAll bool) *Cursor {
	return w.QueryWith(w.NewQuery(target, matchAll))
}

// QueryWith returns a cursor over every table currently matching q.
func (w *World) QueryWith(q Query) *Cursor {
	c := &Cursor{world: w, rowAt: -1}
	for _, t := range w.tables {
		if q.matches(w, t) {
			c.tables = append(c.tables, t)
		}
	}
	return c
}

// Next advances the cursor to the next matching row, returning false once
// every matched table is exhausted.
func (c *Cursor) Next() bool {
	c.rowAt++
	for c.tableAt < len(c.tables) {
		if c.rowAt < c.tables[c.tableAt].count() {
			return true
		}
		c.tableAt++
		c.rowAt = 0
	}
	return false
}

// Entity returns the handle owning the cursor's current row.
func (c *Cursor) Entity() Handle {
	return c.tables[c.tableAt].rowEntity(c.rowAt)
}

// Row returns the entire backing row as a borrowed view, header included.
func (c *Cursor) Row() []byte {
	return c.tables[c.tableAt].rowBytes(c.rowAt)
}

// Component returns a borrowed view of component c within the cursor's
// current row, or (nil, false) if the current table does not carry it.
func (c *Cursor) Component(comp Handle) ([]byte, bool) {
	return c.tables[c.tableAt].get(c.rowAt, comp)
}

// Count returns the total number of rows across every table this cursor
// matched, without consuming the cursor.
func (c *Cursor) Count() int {
	total := 0
	for _, t := range c.tables {
		total += t.count()
	}
	return total
}
