package storage

// Cursor names a position within the tree's ordered key space: a page
// number, a cell index within that leaf, and a flag for "one past the
// last cell of the last leaf". Callers outside this package read rows
// through a Cursor; inside the package, split and dump code also read and
// write cells directly through the node codec.
type Cursor struct {
	table      *Table
	pageNum    uint32
	cellNum    uint32
	endOfTable bool
}

// Start returns a cursor at the first cell of the tree's leftmost leaf.
func (t *Table) Start() (*Cursor, error) {
	return t.Find(0)
}

// Find descends from the root to the leaf that must contain key if
// present, then binary-searches that leaf. The returned cursor points at
// the matching cell if key is present, otherwise at the first cell with a
// greater key (which may be one past the leaf's last cell).
func (t *Table) Find(key uint32) (*Cursor, error) {
	leafPageNum, err := t.findLeaf(t.rootPageNum, key)
	if err != nil {
		return nil, err
	}
	leaf, err := t.pager.Get(leafPageNum)
	if err != nil {
		return nil, err
	}

	numCells := leafNumCells(leaf)
	minIdx, maxIdx := uint32(0), numCells
	for minIdx != maxIdx {
		mid := (minIdx + maxIdx) / 2
		switch k := leafCellKey(leaf, mid); {
		case k == key:
			minIdx = mid
			maxIdx = mid
		case key < k:
			maxIdx = mid
		default:
			minIdx = mid + 1
		}
	}

	return &Cursor{
		table:      t,
		pageNum:    leafPageNum,
		cellNum:    minIdx,
		endOfTable: numCells == 0,
	}, nil
}

// findLeaf descends from pageNum to the leaf that must contain key,
// following the internal-node descent rule from §4.4: at an internal node,
// follow the child whose separator is the smallest key >= key, or the
// right-child if none qualifies.
func (t *Table) findLeaf(pageNum uint32, key uint32) (uint32, error) {
	page, err := t.pager.Get(pageNum)
	if err != nil {
		return 0, err
	}
	if getNodeType(page) == NodeTypeLeaf {
		return pageNum, nil
	}

	numKeys := internalNumKeys(page)
	minIdx, maxIdx := uint32(0), numKeys
	for minIdx != maxIdx {
		mid := (minIdx + maxIdx) / 2
		if internalKey(page, mid) >= key {
			maxIdx = mid
		} else {
			minIdx = mid + 1
		}
	}
	childPageNum, err := internalChild(page, minIdx)
	if err != nil {
		return 0, err
	}
	return t.findLeaf(childPageNum, key)
}

// Value returns the serialized row slice at the cursor's current cell. The
// slice aliases the page buffer.
func (c *Cursor) Value() ([]byte, error) {
	page, err := c.table.pager.Get(c.pageNum)
	if err != nil {
		return nil, err
	}
	return leafCellValue(page, c.cellNum), nil
}

// EndOfTable reports whether the cursor has advanced past the last row.
func (c *Cursor) EndOfTable() bool {
	return c.endOfTable
}

// Advance moves the cursor to the next cell in key order, following the
// leaf's next-leaf pointer when the current leaf is exhausted (the
// sibling-traversal extension from SPEC_FULL, §9).
func (c *Cursor) Advance() error {
	page, err := c.table.pager.Get(c.pageNum)
	if err != nil {
		return err
	}
	c.cellNum++
	if c.cellNum < leafNumCells(page) {
		return nil
	}

	next := leafNextLeaf(page)
	if next == 0 {
		c.endOfTable = true
		return nil
	}
	c.pageNum = next
	c.cellNum = 0
	nextPage, err := c.table.pager.Get(next)
	if err != nil {
		return err
	}
	c.endOfTable = leafNumCells(nextPage) == 0
	return nil
}
