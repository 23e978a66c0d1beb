package xlsxtemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnNameRoundTrip(t *testing.T) {
	for i := 1; i <= 16384; i++ {
		name, err := ColumnName(i)
		require.NoError(t, err)
		idx, err := ColumnIndex(name)
		require.NoError(t, err)
		require.Equal(t, i, idx, name)
	}
}

func TestColumnNames(t *testing.T) {
	cases := map[int]string{1: "A", 26: "Z", 27: "AA", 28: "AB", 52: "AZ", 703: "AAA", 16384: "XFD"}
	for idx, want := range cases {
		got, err := ColumnName(idx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	idx, err := ColumnIndex("AA1")
	require.NoError(t, err)
	assert.Equal(t, 27, idx)

	_, err = ColumnName(0)
	assert.ErrorIs(t, err, ErrCellReference)
	_, err = ColumnIndex("12")
	assert.ErrorIs(t, err, ErrCellReference)
}

func TestCellName(t *testing.T) {
	ref, err := CellName(2, 7)
	require.NoError(t, err)
	assert.Equal(t, "B7", ref)

	col, row, err := splitCellName("AC12")
	require.NoError(t, err)
	assert.Equal(t, 29, col)
	assert.Equal(t, 12, row)

	_, _, err = splitCellName("12")
	assert.ErrorIs(t, err, ErrCellReference)
}
