package storage

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	table, err := Open(path, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { table.Close() })
	return table
}

func scanAll(t *testing.T, table *Table) []Row {
	t.Helper()
	cursor, err := table.Start()
	require.NoError(t, err)

	var rows []Row
	for !cursor.EndOfTable() {
		raw, err := cursor.Value()
		require.NoError(t, err)
		row, err := DeserializeRow(raw)
		require.NoError(t, err)
		rows = append(rows, row)
		require.NoError(t, cursor.Advance())
	}
	return rows
}

func TestInsertAndFindWithinASingleLeaf(t *testing.T) {
	table := newTestTable(t)

	for _, id := range []uint32{5, 1, 3, 2, 4} {
		row := Row{ID: id, Username: fmt.Sprintf("user%d", id), Email: fmt.Sprintf("u%d@example.com", id)}
		require.NoError(t, table.Insert(row))
	}

	rows := scanAll(t, table)
	require.Len(t, rows, 5)
	for i, row := range rows {
		require.Equal(t, uint32(i+1), row.ID, "full scan must be key-ordered regardless of insert order")
	}
}

func TestInsertDuplicateKeyIsRejected(t *testing.T) {
	table := newTestTable(t)

	row := Row{ID: 1, Username: "alice", Email: "alice@example.com"}
	require.NoError(t, table.Insert(row))

	err := table.Insert(Row{ID: 1, Username: "bob", Email: "bob@example.com"})
	require.ErrorIs(t, err, ErrDuplicateKey)

	rows := scanAll(t, table)
	require.Len(t, rows, 1, "a rejected duplicate insert must not change the table")
}

// TestLeafSplitPromotesNewRoot inserts exactly LeafMaxCells+1 rows, forcing
// the root leaf to split and the root to be promoted to an internal node
// with a single separator key (§8 scenario 6).
func TestLeafSplitPromotesNewRoot(t *testing.T) {
	table := newTestTable(t)

	for i := uint32(0); i < LeafMaxCells+1; i++ {
		row := Row{ID: i, Username: fmt.Sprintf("user%d", i), Email: fmt.Sprintf("u%d@example.com", i)}
		require.NoError(t, table.Insert(row))
	}

	rootPage, err := table.pager.Get(0)
	require.NoError(t, err)
	require.True(t, isRoot(rootPage))
	require.Equal(t, NodeTypeInternal, getNodeType(rootPage))
	require.Equal(t, uint32(1), internalNumKeys(rootPage))

	rows := scanAll(t, table)
	require.Len(t, rows, int(LeafMaxCells+1))
	for i, row := range rows {
		require.Equal(t, uint32(i), row.ID)
	}
}

// TestManyInsertsSurviveAcrossSplits inserts enough rows, in random order,
// to force repeated leaf splits of non-root leaves under the internal root
// (while staying within the MaxPages cache cap), then verifies every row is
// present and the full scan is sorted.
func TestManyInsertsSurviveAcrossSplits(t *testing.T) {
	table := newTestTable(t)

	const n = 600
	ids := rand.New(rand.NewSource(1)).Perm(n)
	for _, id := range ids {
		row := Row{
			ID:       uint32(id),
			Username: gofakeit.Username(),
			Email:    gofakeit.Email(),
		}
		require.NoError(t, table.Insert(row))
	}

	rows := scanAll(t, table)
	require.Len(t, rows, n)
	for i, row := range rows {
		require.Equal(t, uint32(i), row.ID)
	}
}

func TestFindLocatesInsertedKeysAfterSplits(t *testing.T) {
	table := newTestTable(t)

	const n = 500
	for i := uint32(0); i < n; i++ {
		require.NoError(t, table.Insert(Row{ID: i, Username: "u", Email: "u@example.com"}))
	}

	for _, key := range []uint32{0, 1, n / 2, n - 1} {
		cursor, err := table.Find(key)
		require.NoError(t, err)
		raw, err := cursor.Value()
		require.NoError(t, err)
		row, err := DeserializeRow(raw)
		require.NoError(t, err)
		require.Equal(t, key, row.ID)
	}
}

func TestReopenAfterInsertsPersistsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")

	table, err := Open(path, testLogger())
	require.NoError(t, err)
	for i := uint32(0); i < 100; i++ {
		require.NoError(t, table.Insert(Row{ID: i, Username: "u", Email: "u@example.com"}))
	}
	require.NoError(t, table.Close())

	reopened, err := Open(path, testLogger())
	require.NoError(t, err)
	defer reopened.Close()

	rows := scanAll(t, reopened)
	require.Len(t, rows, 100)
	for i, row := range rows {
		require.Equal(t, uint32(i), row.ID)
	}
}
