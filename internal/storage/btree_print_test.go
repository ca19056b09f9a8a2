package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderBTreeLeafRoot(t *testing.T) {
	table := newTestTable(t)
	for _, id := range []uint32{1, 2, 3} {
		require.NoError(t, table.Insert(Row{ID: id, Username: "u", Email: "e"}))
	}

	dump, err := table.RenderBTree()
	require.NoError(t, err)
	require.Contains(t, dump, "leaf (size 3)")
	require.Contains(t, dump, "- 1")
	require.Contains(t, dump, "- 2")
	require.Contains(t, dump, "- 3")
}

func TestRenderBTreeAfterSplitShowsInternalNode(t *testing.T) {
	table := newTestTable(t)
	for i := uint32(0); i < LeafMaxCells+1; i++ {
		require.NoError(t, table.Insert(Row{ID: i, Username: "u", Email: "e"}))
	}

	dump, err := table.RenderBTree()
	require.NoError(t, err)
	require.Contains(t, dump, "internal (size 1)")
	require.Equal(t, 2, strings.Count(dump, "leaf (size"))

	// The separator line after the left child must read "- key <N>", per
	// spec.md §6 (bare leaf key lines stay as "- <N>", with no "key" word).
	require.Contains(t, dump, "- key 6")
	require.NotContains(t, dump, "- key 0", "leaf cell lines must not carry the 'key' word")
}
