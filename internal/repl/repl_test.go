package repl

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/0gajun/db-tutorial/internal/storage"
)

func TestExecuteStatementInsertAndSelect(t *testing.T) {
	table := newTestTable(t)
	var buf bytes.Buffer

	insert, err := PrepareStatement("insert 1 alice alice@example.com")
	require.NoError(t, err)
	require.NoError(t, ExecuteStatement(&buf, insert, table))
	require.Empty(t, buf.String(), "insert writes nothing to the output stream")

	sel, err := PrepareStatement("select")
	require.NoError(t, err)
	require.NoError(t, ExecuteStatement(&buf, sel, table))
	require.Equal(t, "(1, alice, alice@example.com)\n", buf.String())
}

func TestExecuteStatementDuplicateKeyIsReported(t *testing.T) {
	table := newTestTable(t)
	var buf bytes.Buffer

	insert, err := PrepareStatement("insert 1 alice alice@example.com")
	require.NoError(t, err)
	require.NoError(t, ExecuteStatement(&buf, insert, table))

	dup, err := PrepareStatement("insert 1 bob bob@example.com")
	require.NoError(t, err)
	err = ExecuteStatement(&buf, dup, table)
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestExecuteStatementSelectOrdersMultipleRows(t *testing.T) {
	table := newTestTable(t)
	var buf bytes.Buffer

	for _, id := range []string{"3", "1", "2"} {
		stmt, err := PrepareStatement("insert " + id + " u u@example.com")
		require.NoError(t, err)
		require.NoError(t, ExecuteStatement(&buf, stmt, table))
	}
	buf.Reset()

	sel, err := PrepareStatement("select")
	require.NoError(t, err)
	require.NoError(t, ExecuteStatement(&buf, sel, table))
	require.Equal(t, "(1, u, u@example.com)\n(2, u, u@example.com)\n(3, u, u@example.com)\n", buf.String())
}

// The following assert on the exact printed text from original_source/db.c,
// not just the error sentinel types, per spec.md §6/§7.

func TestReportPrepareErrorMessages(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "syntax error echoes input",
			input: "insert 1 alice",
			want:  "Syntax error. Could not parse statement 'insert 1 alice'.\n",
		},
		{
			name:  "negative id",
			input: "insert -1 alice alice@example.com",
			want:  "ID must be positive.\n",
		},
		{
			name:  "non-numeric id is reported the same as negative",
			input: "insert foo alice alice@example.com",
			want:  "ID must be positive.\n",
		},
		{
			name:  "unrecognized statement echoes input",
			input: "delete 1",
			want:  "Unrecognized statement: 'delete 1'.\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := PrepareStatement(tc.input)
			require.Error(t, err)

			var buf bytes.Buffer
			reportPrepareError(&buf, tc.input, err)
			require.Equal(t, tc.want, buf.String())
		})
	}
}

func TestReportUnrecognizedCommandMessage(t *testing.T) {
	var buf bytes.Buffer
	reportUnrecognizedCommand(&buf, ".frobnicate")
	require.Equal(t, "Unrecognized command: '.frobnicate'.\n", buf.String())
}

func TestDuplicateKeyMessageMatchesRunStatement(t *testing.T) {
	table := newTestTable(t)
	var buf bytes.Buffer

	insert, err := PrepareStatement("insert 1 alice alice@example.com")
	require.NoError(t, err)
	require.NoError(t, ExecuteStatement(&buf, insert, table))
	buf.Reset()

	r := &REPL{table: table, out: &buf, log: testEntry()}
	require.NoError(t, r.runStatement("insert 1 bob bob@example.com"))
	require.Equal(t, "Error: Duplicate key.\n", buf.String())
}
