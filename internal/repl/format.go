package repl

import (
	"fmt"
	"io"

	"github.com/0gajun/db-tutorial/internal/storage"
)

// printRow writes a row in the tutorial's "(id, username, email)" format.
func printRow(w io.Writer, row storage.Row) {
	fmt.Fprintf(w, "(%d, %s, %s)\n", row.ID, row.Username, row.Email)
}

func printConstants(w io.Writer) {
	c := storage.GetConstants()
	fmt.Fprintln(w, "Constants:")
	fmt.Fprintf(w, "ROW_SIZE: %d\n", c.RowSize)
	fmt.Fprintf(w, "COMMON_NODE_HEADER_SIZE: %d\n", c.CommonNodeHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_HEADER_SIZE: %d\n", c.LeafNodeHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_CELL_SIZE: %d\n", c.LeafNodeCellSize)
	fmt.Fprintf(w, "LEAF_NODE_SPACE_FOR_CELLS: %d\n", c.LeafNodeSpaceForCells)
	fmt.Fprintf(w, "LEAF_NODE_MAX_CELLS: %d\n", c.LeafNodeMaxCells)
	fmt.Fprintf(w, "INTERNAL_NODE_HEADER_SIZE: %d\n", c.InternalNodeHeaderSize)
	fmt.Fprintf(w, "INTERNAL_NODE_CELL_SIZE: %d\n", c.InternalNodeCellSize)
	fmt.Fprintf(w, "INTERNAL_NODE_MAX_CELLS: %d\n", c.InternalNodeMaxCells)
}
