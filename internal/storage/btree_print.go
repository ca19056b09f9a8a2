package storage

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// RenderBTree renders the whole tree as an indented preorder dump, the
// engine side of the REPL's .btree meta-command (§6).
func (t *Table) RenderBTree() (string, error) {
	return t.renderNode(0, t.rootPageNum)
}

// renderNode renders the subtree rooted at pageNum, following the
// interleaved child/separator-key preorder format used by chkda-tinySQL's
// and l4zy9uy-vqlite's btree dumps. An internal node's children are
// independent subtrees, so they are rendered concurrently with errgroup;
// the parent still waits for every child before returning, so the REPL
// only ever sees one complete .btree dump per input line.
func (t *Table) renderNode(depth int, pageNum uint32) (string, error) {
	page, err := t.pager.Get(pageNum)
	if err != nil {
		return "", err
	}
	indent := strings.Repeat("  ", depth)

	if getNodeType(page) == NodeTypeLeaf {
		n := leafNumCells(page)
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s- leaf (size %d)\n", indent, n)
		for i := uint32(0); i < n; i++ {
			fmt.Fprintf(&sb, "%s  - %d\n", indent, leafCellKey(page, i))
		}
		return sb.String(), nil
	}

	numKeys := internalNumKeys(page)
	childPages := make([]uint32, numKeys+1)
	for i := uint32(0); i <= numKeys; i++ {
		child, err := internalChild(page, i)
		if err != nil {
			return "", err
		}
		childPages[i] = child
	}

	rendered := make([]string, len(childPages))
	g, _ := errgroup.WithContext(context.Background())
	for i, childPage := range childPages {
		i, childPage := i, childPage
		g.Go(func() error {
			s, err := t.renderNode(depth+1, childPage)
			if err != nil {
				return err
			}
			rendered[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s- internal (size %d)\n", indent, numKeys)
	for i := uint32(0); i < numKeys; i++ {
		sb.WriteString(rendered[i])
		fmt.Fprintf(&sb, "%s- key %d\n", indent, internalKey(page, i))
	}
	sb.WriteString(rendered[numKeys])
	return sb.String(), nil
}
