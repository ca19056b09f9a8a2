package repl

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/0gajun/db-tutorial/internal/storage"
)

// Input errors: the caller's line was rejected before touching the table.
// None of these wrap a lower cause, so errors.Is comparisons against them
// are exact.
var (
	ErrUnrecognizedStatement = errors.New("unrecognized statement")
	ErrSyntaxError           = errors.New("syntax error")
	ErrNegativeID            = errors.New("id must be positive")
	ErrStringTooLong         = errors.New("string too long")
)

// StatementType names the one of two statements a line can hold (§6).
type StatementType int

const (
	StatementInsert StatementType = iota
	StatementSelect
)

// Statement is a parsed, not-yet-executed line of input.
type Statement struct {
	Type        StatementType
	RowToInsert storage.Row
}

// PrepareStatement parses input into a Statement, or reports why it
// couldn't. Errors are always one of the package's sentinel Err values, so
// callers can match them with errors.Is and format a message that echoes
// the original input (following original_source/db.c's message text).
func PrepareStatement(input string) (*Statement, error) {
	switch {
	case input == "select" || strings.HasPrefix(input, "select "):
		return &Statement{Type: StatementSelect}, nil
	case input == "insert" || strings.HasPrefix(input, "insert "):
		return prepareInsert(input)
	default:
		return nil, ErrUnrecognizedStatement
	}
}

// prepareInsert checks that all three fields are present before parsing the
// id (SPEC_FULL's fix for the teacher's crash on a short "insert" line: the
// presence check must come before strconv.Atoi, not after).
func prepareInsert(input string) (*Statement, error) {
	fields := strings.Fields(input)
	if len(fields) < 4 {
		return nil, ErrSyntaxError
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 {
		return nil, ErrNegativeID
	}

	username, email := fields[2], fields[3]
	if len(username) > storage.MaxUsernameLen || len(email) > storage.MaxEmailLen {
		return nil, ErrStringTooLong
	}

	return &Statement{
		Type: StatementInsert,
		RowToInsert: storage.Row{
			ID:       uint32(id),
			Username: username,
			Email:    email,
		},
	}, nil
}
