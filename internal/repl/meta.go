package repl

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/0gajun/db-tutorial/internal/storage"
)

// ErrUnrecognizedCommand is reported for any ".foo" input meta.go doesn't
// recognize.
var ErrUnrecognizedCommand = errors.New("unrecognized command")

// MetaCommandResult tells the REPL loop whether to keep reading input.
type MetaCommandResult int

const (
	MetaCommandSuccess MetaCommandResult = iota
	MetaCommandExit
)

// IsMetaCommand reports whether input is a "." command rather than a
// statement.
func IsMetaCommand(input string) bool {
	return strings.HasPrefix(input, ".")
}

// ExecuteMetaCommand runs a "." command, writing any output to w. Grounded
// on chkda-tinySQL's and vqlite's doMetaCommand (the teacher has no
// .btree dump at all, only a root-only print_leaf_node).
func ExecuteMetaCommand(w io.Writer, input string, table *storage.Table) (MetaCommandResult, error) {
	switch input {
	case ".exit":
		return MetaCommandExit, nil
	case ".constants":
		printConstants(w)
		return MetaCommandSuccess, nil
	case ".btree":
		dump, err := table.RenderBTree()
		if err != nil {
			return MetaCommandSuccess, err
		}
		io.WriteString(w, "Tree:\n")
		io.WriteString(w, dump)
		return MetaCommandSuccess, nil
	default:
		return MetaCommandSuccess, ErrUnrecognizedCommand
	}
}
