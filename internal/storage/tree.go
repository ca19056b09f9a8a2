package storage

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// Insert adds row under key row.ID, splitting and promoting nodes as
// needed (§4.5). It reports ErrDuplicateKey if the key is already present;
// no engine state is mutated in that case.
func (t *Table) Insert(row Row) error {
	cursor, err := t.Find(row.ID)
	if err != nil {
		return err
	}

	leaf, err := t.pager.Get(cursor.pageNum)
	if err != nil {
		return err
	}
	if cursor.cellNum < leafNumCells(leaf) && leafCellKey(leaf, cursor.cellNum) == row.ID {
		return ErrDuplicateKey
	}

	return t.leafInsert(cursor, row.ID, row)
}

func (t *Table) leafInsert(cursor *Cursor, key uint32, row Row) error {
	leaf, err := t.pager.Get(cursor.pageNum)
	if err != nil {
		return err
	}

	numCells := leafNumCells(leaf)
	if numCells >= LeafMaxCells {
		return t.splitLeafAndInsert(cursor, key, row)
	}

	for i := numCells; i > cursor.cellNum; i-- {
		copyLeafCell(leaf, i, leaf, i-1)
	}
	setLeafCellKey(leaf, cursor.cellNum, key)
	if err := SerializeRow(row, leafCellValue(leaf, cursor.cellNum)); err != nil {
		return err
	}
	setLeafNumCells(leaf, numCells+1)
	return nil
}

func copyLeafCell(dst []byte, dstIdx uint32, src []byte, srcIdx uint32) {
	dstOff := leafCellOffset(dstIdx)
	srcOff := leafCellOffset(srcIdx)
	copy(dst[dstOff:dstOff+leafCellSize], src[srcOff:srcOff+leafCellSize])
}

// splitLeafAndInsert splits a full leaf into itself ("left") and a freshly
// allocated sibling ("right"), distributing the MAX_CELLS+1 cells (the
// existing ones plus the one being inserted) 7/7, then links the new
// sibling into the next-leaf chain and propagates a separator key into the
// parent (or promotes a new root, if the split leaf was the root).
func (t *Table) splitLeafAndInsert(cursor *Cursor, key uint32, row Row) error {
	oldPage, err := t.pager.Get(cursor.pageNum)
	if err != nil {
		return err
	}
	wasRoot := isRoot(oldPage)
	oldParent := parentPage(oldPage)
	oldMax := leafMaxKey(oldPage)

	newPageNum := t.pager.NumPages()
	newPage, err := t.pager.Get(newPageNum)
	if err != nil {
		return err
	}
	initLeafNode(newPage)
	setLeafNextLeaf(newPage, leafNextLeaf(oldPage))
	setLeafNextLeaf(oldPage, newPageNum)
	setParentPage(newPage, oldParent)

	for i := int(LeafMaxCells); i >= 0; i-- {
		dest := oldPage
		if uint32(i) >= LeafLeftSplitCount {
			dest = newPage
		}
		destIdx := uint32(i) % LeafLeftSplitCount

		switch {
		case uint32(i) == cursor.cellNum:
			setLeafCellKey(dest, destIdx, key)
			if err := SerializeRow(row, leafCellValue(dest, destIdx)); err != nil {
				return err
			}
		case uint32(i) > cursor.cellNum:
			copyLeafCell(dest, destIdx, oldPage, uint32(i)-1)
		default:
			copyLeafCell(dest, destIdx, oldPage, uint32(i))
		}
	}
	setLeafNumCells(oldPage, LeafLeftSplitCount)
	setLeafNumCells(newPage, LeafRightSplitCount)

	t.log.WithFields(logrus.Fields{"old_page": cursor.pageNum, "new_page": newPageNum}).
		Debug("leaf split")

	if wasRoot {
		return t.createNewRoot(newPageNum)
	}

	// The old leaf now holds only the lower half, so its separator in the
	// parent drops to its new max before the new sibling is slotted in.
	parent, err := t.pager.Get(oldParent)
	if err != nil {
		return err
	}
	updateInternalKeyByValue(parent, oldMax, leafMaxKey(oldPage))
	return t.internalInsert(oldParent, newPageNum)
}

// nodeMaxKey returns the largest key stored anywhere under pageNum: its own
// last cell if it is a leaf, or the recursive max of its rightmost child if
// it is internal (§4.2's max_key, generalized to internal nodes).
func (t *Table) nodeMaxKey(pageNum uint32) (uint32, error) {
	page, err := t.pager.Get(pageNum)
	if err != nil {
		return 0, err
	}
	if getNodeType(page) == NodeTypeLeaf {
		return leafMaxKey(page), nil
	}
	return t.nodeMaxKey(internalRightChild(page))
}

func internalFindChildIndex(page []byte, key uint32) uint32 {
	numKeys := internalNumKeys(page)
	lo, hi := uint32(0), numKeys
	for lo != hi {
		mid := (lo + hi) / 2
		if internalKey(page, mid) >= key {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// internalInsert adds childPageNum (separated by its own max key) as a
// child of the internal node at parentPageNum, splitting that node if it
// is already full.
func (t *Table) internalInsert(parentPageNum uint32, childPageNum uint32) error {
	childMaxKey, err := t.nodeMaxKey(childPageNum)
	if err != nil {
		return err
	}

	parent, err := t.pager.Get(parentPageNum)
	if err != nil {
		return err
	}

	if internalNumKeys(parent) >= InternalMaxCells {
		if err := t.internalSplitAndInsert(parentPageNum, childPageNum, childMaxKey); err != nil {
			return err
		}
	} else {
		rightChildPageNum := internalRightChild(parent)
		rightMaxKey, err := t.nodeMaxKey(rightChildPageNum)
		if err != nil {
			return err
		}

		if childMaxKey > rightMaxKey {
			insertInternalCell(parent, internalNumKeys(parent), rightChildPageNum, rightMaxKey)
			setInternalRightChild(parent, childPageNum)
		} else {
			idx := internalFindChildIndex(parent, childMaxKey)
			insertInternalCell(parent, idx, childPageNum, childMaxKey)
		}
	}

	child, err := t.pager.Get(childPageNum)
	if err != nil {
		return err
	}
	setParentPage(child, parentPageNum)
	return nil
}

type internalEntry struct {
	child uint32
	key   uint32
}

// internalSplitAndInsert splits a full internal node into itself ("left",
// keeping parentPageNum) and a freshly allocated sibling ("right"),
// promoting the median separator key to the grandparent (or to a new root,
// if the split node was the root). Grounded on the standard B+tree
// internal-split algorithm (tinySQL's internalNodeSplitAndInsert,
// vqlite's InteriorNode.Insert recursive propagation).
func (t *Table) internalSplitAndInsert(parentPageNum uint32, childPageNum uint32, childMaxKey uint32) error {
	parent, err := t.pager.Get(parentPageNum)
	if err != nil {
		return err
	}
	numKeys := internalNumKeys(parent)

	combined := make([]internalEntry, 0, numKeys+2)
	for i := uint32(0); i < numKeys; i++ {
		child, err := internalChild(parent, i)
		if err != nil {
			return err
		}
		combined = append(combined, internalEntry{child: child, key: internalKey(parent, i)})
	}
	oldRight := internalRightChild(parent)
	oldRightMax, err := t.nodeMaxKey(oldRight)
	if err != nil {
		return err
	}
	combined = append(combined, internalEntry{child: oldRight, key: oldRightMax})

	insertAt := sort.Search(len(combined), func(i int) bool { return combined[i].key >= childMaxKey })
	combined = append(combined, internalEntry{})
	copy(combined[insertAt+1:], combined[insertAt:len(combined)-1])
	combined[insertAt] = internalEntry{child: childPageNum, key: childMaxKey}

	oldSubtreeMax := combined[len(combined)-1].key
	newRightChild := combined[len(combined)-1].child
	cells := combined[:len(combined)-1] // InternalMaxCells+1 entries

	mid := len(cells) / 2
	leftCells, promoted, rightCells := cells[:mid], cells[mid], cells[mid+1:]

	wasRoot := isRoot(parent)
	grandparent := parentPage(parent)

	newPageNum := t.pager.NumPages()
	newNode, err := t.pager.Get(newPageNum)
	if err != nil {
		return err
	}
	initInternalNode(newNode)
	setInternalNumKeys(newNode, uint32(len(rightCells)))
	for i, e := range rightCells {
		if err := setInternalChild(newNode, uint32(i), e.child); err != nil {
			return err
		}
		setInternalKey(newNode, uint32(i), e.key)
	}
	setInternalRightChild(newNode, newRightChild)
	if err := t.reparentChildren(newPageNum, rightCells, newRightChild); err != nil {
		return err
	}

	setInternalNumKeys(parent, uint32(len(leftCells)))
	for i, e := range leftCells {
		if err := setInternalChild(parent, uint32(i), e.child); err != nil {
			return err
		}
		setInternalKey(parent, uint32(i), e.key)
	}
	setInternalRightChild(parent, promoted.child)
	if err := t.reparentChildren(parentPageNum, leftCells, promoted.child); err != nil {
		return err
	}

	t.log.WithFields(logrus.Fields{"old_page": parentPageNum, "new_page": newPageNum, "promoted_key": promoted.key}).
		Debug("internal node split")

	if wasRoot {
		return t.createNewRoot(newPageNum)
	}

	setParentPage(newNode, grandparent)
	grandparentPage, err := t.pager.Get(grandparent)
	if err != nil {
		return err
	}
	updateInternalKeyByValue(grandparentPage, oldSubtreeMax, promoted.key)
	return t.internalInsert(grandparent, newPageNum)
}

// reparentChildren stamps parentPageNum into the parent-pointer field of
// every child named by cells plus rightChild.
func (t *Table) reparentChildren(parentPageNum uint32, cells []internalEntry, rightChild uint32) error {
	for _, e := range cells {
		child, err := t.pager.Get(e.child)
		if err != nil {
			return err
		}
		setParentPage(child, parentPageNum)
	}
	rc, err := t.pager.Get(rightChild)
	if err != nil {
		return err
	}
	setParentPage(rc, parentPageNum)
	return nil
}

// updateInternalKeyByValue rewrites the separator key equal to oldKey to
// newKey, if one exists. It is a no-op when the subtree whose max changed
// was reached via the implicit right-child pointer (which carries no
// stored key to update).
func updateInternalKeyByValue(page []byte, oldKey, newKey uint32) {
	idx := internalFindChildIndex(page, oldKey)
	if idx < internalNumKeys(page) && internalKey(page, idx) == oldKey {
		setInternalKey(page, idx, newKey)
	}
}

// createNewRoot grows the tree by one level while keeping page 0 as the
// root (§4.5, §3 invariant 7): it copies the current root's (already
// split-trimmed) content into a freshly allocated left child, then
// reinitializes page 0 as a new internal node with one key separating the
// new left child from rightChildPageNum.
func (t *Table) createNewRoot(rightChildPageNum uint32) error {
	rootPage, err := t.pager.Get(t.rootPageNum)
	if err != nil {
		return err
	}

	leftPageNum := t.pager.NumPages()
	leftPage, err := t.pager.Get(leftPageNum)
	if err != nil {
		return err
	}
	copy(leftPage, rootPage)
	setRoot(leftPage, false)
	setParentPage(leftPage, t.rootPageNum)

	if getNodeType(leftPage) == NodeTypeInternal {
		numKeys := internalNumKeys(leftPage)
		for i := uint32(0); i < numKeys; i++ {
			child, err := internalChild(leftPage, i)
			if err != nil {
				return err
			}
			childPage, err := t.pager.Get(child)
			if err != nil {
				return err
			}
			setParentPage(childPage, leftPageNum)
		}
		rightOfLeft, err := t.pager.Get(internalRightChild(leftPage))
		if err != nil {
			return err
		}
		setParentPage(rightOfLeft, leftPageNum)
	}

	rightPage, err := t.pager.Get(rightChildPageNum)
	if err != nil {
		return err
	}
	setParentPage(rightPage, t.rootPageNum)

	leftMax, err := t.nodeMaxKey(leftPageNum)
	if err != nil {
		return err
	}

	initInternalNode(rootPage)
	setRoot(rootPage, true)
	insertInternalCell(rootPage, 0, leftPageNum, leftMax)
	setInternalRightChild(rootPage, rightChildPageNum)

	t.log.WithFields(logrus.Fields{"left_page": leftPageNum, "right_page": rightChildPageNum, "separator": leftMax}).
		Info("root promoted to internal node")
	return nil
}
