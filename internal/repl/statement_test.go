package repl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0gajun/db-tutorial/internal/storage"
)

func TestPrepareStatementInsert(t *testing.T) {
	stmt, err := PrepareStatement("insert 1 alice alice@example.com")
	require.NoError(t, err)
	require.Equal(t, StatementInsert, stmt.Type)
	assert.Equal(t, storage.Row{ID: 1, Username: "alice", Email: "alice@example.com"}, stmt.RowToInsert)
}

func TestPrepareStatementSelect(t *testing.T) {
	stmt, err := PrepareStatement("select")
	require.NoError(t, err)
	assert.Equal(t, StatementSelect, stmt.Type)
}

func TestPrepareStatementUnrecognized(t *testing.T) {
	_, err := PrepareStatement("delete 1")
	assert.ErrorIs(t, err, ErrUnrecognizedStatement)
}

func TestPrepareStatementInsertMissingTokensIsSyntaxError(t *testing.T) {
	_, err := PrepareStatement("insert 1 alice")
	assert.ErrorIs(t, err, ErrSyntaxError)
}

func TestPrepareStatementInsertNonNumericIDIsNegativeID(t *testing.T) {
	// spec.md §6: a non-numeric id is reported the same way as a negative
	// one ("ID must be positive."), not as a syntax error.
	_, err := PrepareStatement("insert foo alice alice@example.com")
	assert.ErrorIs(t, err, ErrNegativeID)
}

func TestPrepareStatementInsertNegativeID(t *testing.T) {
	_, err := PrepareStatement("insert -1 alice alice@example.com")
	assert.ErrorIs(t, err, ErrNegativeID)
}

func TestPrepareStatementInsertStringTooLong(t *testing.T) {
	long := make([]byte, storage.MaxUsernameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := PrepareStatement("insert 1 " + string(long) + " alice@example.com")
	assert.ErrorIs(t, err, ErrStringTooLong)
}
