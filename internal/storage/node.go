package storage

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// NodeType distinguishes leaf pages (which hold rows) from internal pages
// (which route lookups to children). The numeric values match the on-disk
// byte so initLeafNode/initInternalNode and the readers agree on encoding.
type NodeType uint8

const (
	NodeTypeInternal NodeType = 0
	NodeTypeLeaf     NodeType = 1
)

// invalidPage marks "no pointer here yet" in a freshly initialized internal
// node's right-child slot, distinguishing it from page 0 (which is always a
// valid page, the root). Grounded on tinySQL's INVALID_PAGE_NUM sentinel.
const invalidPage uint32 = 0xFFFFFFFF

// Common node header layout (6 bytes), present on every page:
//
//	byte 0    : node type
//	byte 1    : is-root flag
//	bytes 2-5 : parent page number
const (
	nodeTypeOffset      = 0
	isRootOffset        = 1
	parentPointerOffset = 2
	commonHeaderSize    = 6
)

// Leaf node layout. The header extends the common header with a cell count
// and a next-leaf pointer (the sibling-traversal extension from SPEC_FULL,
// §9): a correct multi-leaf scan needs this field, which the distilled
// source never had.
const (
	leafNumCellsOffset = commonHeaderSize
	leafNextLeafOffset = leafNumCellsOffset + 4
	leafHeaderSize     = leafNextLeafOffset + 4 // 14

	leafKeySize   = 4
	leafValueSize = RowSize
	leafCellSize  = leafKeySize + leafValueSize

	leafSpaceForCells = PageSize - leafHeaderSize
	// LeafMaxCells is the most cells a leaf can hold before it must split.
	LeafMaxCells = leafSpaceForCells / leafCellSize

	// LeafRightSplitCount and LeafLeftSplitCount divide MAX_CELLS+1 cells
	// between the two leaves produced by a split (§4.5).
	LeafRightSplitCount = (LeafMaxCells + 1) / 2
	LeafLeftSplitCount  = (LeafMaxCells + 1) - LeafRightSplitCount
)

// Internal node layout: header extends the common header with a key count
// and the rightmost ("+1") child pointer; the body holds K (child, key)
// pairs.
const (
	internalNumKeysOffset    = commonHeaderSize
	internalRightChildOffset = internalNumKeysOffset + 4
	internalHeaderSize       = internalRightChildOffset + 4 // 14

	internalChildSize = 4
	internalKeySize   = 4
	internalCellSize  = internalChildSize + internalKeySize

	internalSpaceForCells = PageSize - internalHeaderSize
	// InternalMaxCells is the most separator keys an internal node can hold
	// before it must split.
	InternalMaxCells = internalSpaceForCells / internalCellSize
)

func getNodeType(page []byte) NodeType { return NodeType(page[nodeTypeOffset]) }

func setNodeType(page []byte, t NodeType) { page[nodeTypeOffset] = byte(t) }

func isRoot(page []byte) bool { return page[isRootOffset] != 0 }

func setRoot(page []byte, root bool) {
	if root {
		page[isRootOffset] = 1
	} else {
		page[isRootOffset] = 0
	}
}

func parentPage(page []byte) uint32 {
	return binary.LittleEndian.Uint32(page[parentPointerOffset : parentPointerOffset+4])
}

func setParentPage(page []byte, pageNum uint32) {
	binary.LittleEndian.PutUint32(page[parentPointerOffset:parentPointerOffset+4], pageNum)
}

// --- Leaf accessors -------------------------------------------------------

func initLeafNode(page []byte) {
	setNodeType(page, NodeTypeLeaf)
	setRoot(page, false)
	setLeafNumCells(page, 0)
	setLeafNextLeaf(page, 0)
}

func leafNumCells(page []byte) uint32 {
	return binary.LittleEndian.Uint32(page[leafNumCellsOffset : leafNumCellsOffset+4])
}

func setLeafNumCells(page []byte, n uint32) {
	binary.LittleEndian.PutUint32(page[leafNumCellsOffset:leafNumCellsOffset+4], n)
}

// leafNextLeaf returns the page number of this leaf's right sibling, or 0
// if this is the rightmost leaf (page 0 can never be a non-root leaf, so 0
// is an unambiguous "none" sentinel here).
func leafNextLeaf(page []byte) uint32 {
	return binary.LittleEndian.Uint32(page[leafNextLeafOffset : leafNextLeafOffset+4])
}

func setLeafNextLeaf(page []byte, pageNum uint32) {
	binary.LittleEndian.PutUint32(page[leafNextLeafOffset:leafNextLeafOffset+4], pageNum)
}

func leafCellOffset(cellNum uint32) int {
	return leafHeaderSize + int(cellNum)*leafCellSize
}

func leafCellKey(page []byte, cellNum uint32) uint32 {
	off := leafCellOffset(cellNum)
	return binary.LittleEndian.Uint32(page[off : off+leafKeySize])
}

func setLeafCellKey(page []byte, cellNum uint32, key uint32) {
	off := leafCellOffset(cellNum)
	binary.LittleEndian.PutUint32(page[off:off+leafKeySize], key)
}

// leafCellValue returns the RowSize-byte slice holding the serialized row
// for cellNum. The slice aliases the page buffer: writes through it are
// visible to later readers of the same page.
func leafCellValue(page []byte, cellNum uint32) []byte {
	off := leafCellOffset(cellNum) + leafKeySize
	return page[off : off+leafValueSize]
}

// leafMaxKey returns the key of the last cell in a non-empty leaf.
func leafMaxKey(page []byte) uint32 {
	return leafCellKey(page, leafNumCells(page)-1)
}

// --- Internal accessors ----------------------------------------------------

func initInternalNode(page []byte) {
	setNodeType(page, NodeTypeInternal)
	setRoot(page, false)
	setInternalNumKeys(page, 0)
	setInternalRightChild(page, invalidPage)
}

func internalNumKeys(page []byte) uint32 {
	return binary.LittleEndian.Uint32(page[internalNumKeysOffset : internalNumKeysOffset+4])
}

func setInternalNumKeys(page []byte, n uint32) {
	binary.LittleEndian.PutUint32(page[internalNumKeysOffset:internalNumKeysOffset+4], n)
}

func internalRightChild(page []byte) uint32 {
	return binary.LittleEndian.Uint32(page[internalRightChildOffset : internalRightChildOffset+4])
}

func setInternalRightChild(page []byte, pageNum uint32) {
	binary.LittleEndian.PutUint32(page[internalRightChildOffset:internalRightChildOffset+4], pageNum)
}

func internalCellOffset(cellNum uint32) int {
	return internalHeaderSize + int(cellNum)*internalCellSize
}

// internalChild resolves child index childNum, where childNum == numKeys
// means "the right-child" (the "+1" pointer of §3).
func internalChild(page []byte, childNum uint32) (uint32, error) {
	numKeys := internalNumKeys(page)
	if childNum > numKeys {
		return 0, errors.Errorf("internal child index %d out of range (num_keys=%d)", childNum, numKeys)
	}
	if childNum == numKeys {
		return internalRightChild(page), nil
	}
	off := internalCellOffset(childNum)
	return binary.LittleEndian.Uint32(page[off : off+internalChildSize]), nil
}

func setInternalChild(page []byte, childNum uint32, pageNum uint32) error {
	numKeys := internalNumKeys(page)
	if childNum == numKeys {
		setInternalRightChild(page, pageNum)
		return nil
	}
	if childNum > numKeys {
		return errors.Errorf("internal child index %d out of range (num_keys=%d)", childNum, numKeys)
	}
	off := internalCellOffset(childNum)
	binary.LittleEndian.PutUint32(page[off:off+internalChildSize], pageNum)
	return nil
}

func internalKey(page []byte, keyNum uint32) uint32 {
	off := internalCellOffset(keyNum) + internalChildSize
	return binary.LittleEndian.Uint32(page[off : off+internalKeySize])
}

func setInternalKey(page []byte, keyNum uint32, key uint32) {
	off := internalCellOffset(keyNum) + internalChildSize
	binary.LittleEndian.PutUint32(page[off:off+internalKeySize], key)
}

// insertInternalCell shifts cells at index >= at one slot right, to make
// room for a fresh (child, key) pair.
func insertInternalCell(page []byte, at uint32, child uint32, key uint32) {
	numKeys := internalNumKeys(page)
	for i := numKeys; i > at; i-- {
		src := internalCellOffset(i - 1)
		dst := internalCellOffset(i)
		copy(page[dst:dst+internalCellSize], page[src:src+internalCellSize])
	}
	off := internalCellOffset(at)
	binary.LittleEndian.PutUint32(page[off:off+internalChildSize], child)
	binary.LittleEndian.PutUint32(page[off+internalChildSize:off+internalCellSize], key)
	setInternalNumKeys(page, numKeys+1)
}
