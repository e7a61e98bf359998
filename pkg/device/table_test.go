package device

import (
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_AddAndFindByID(t *testing.T) {
	var table Table
	table.EnsureSpace(8)

	single, err := table.Add("AAA", "")
	require.NoError(t, err)
	left, err := table.Add("BBB", "00")
	require.NoError(t, err)
	right, err := table.Add("BBB", "01")
	require.NoError(t, err)

	assert.Equal(t, single, table.FindByID("AAA", ""))
	assert.Equal(t, left, table.FindByID("BBB", "00"))
	assert.Equal(t, right, table.FindByID("BBB", "01"))
	assert.Equal(t, -1, table.FindByID("CCC", ""))
}

func TestTable_FindByID_ChildSensitive(t *testing.T) {
	var table Table
	table.EnsureSpace(8)

	_, err := table.Add("AAA", "")
	require.NoError(t, err)
	_, err = table.Add("BBB", "00")
	require.NoError(t, err)

	// A single-outlet record does not match a child lookup, and a
	// child record does not match a childless lookup.
	assert.Equal(t, -1, table.FindByID("AAA", "00"))
	assert.Equal(t, -1, table.FindByID("BBB", ""))
}

func TestTable_FindByID_CaseInsensitive(t *testing.T) {
	var table Table
	table.EnsureSpace(8)

	i, err := table.Add("AbCd", "0A")
	require.NoError(t, err)

	assert.Equal(t, i, table.FindByID("abcd", "0a"))
	assert.Equal(t, i, table.FindByID("ABCD", "0A"))
}

func TestTable_FindByAddress(t *testing.T) {
	var table Table
	table.EnsureSpace(8)

	first, err := table.Add("AAA", "")
	require.NoError(t, err)
	second, err := table.Add("BBB", "00")
	require.NoError(t, err)
	third, err := table.Add("BBB", "01")
	require.NoError(t, err)

	table.At(second).Addr = &net.UDPAddr{IP: net.IPv4(192, 168, 1, 11), Port: 9999}
	table.At(third).Addr = &net.UDPAddr{IP: net.IPv4(192, 168, 1, 11), Port: 9999}

	// First match wins; records never seen don't match anything.
	assert.Equal(t, second, table.FindByAddress(net.IPv4(192, 168, 1, 11)))
	assert.Equal(t, -1, table.FindByAddress(net.IPv4(192, 168, 1, 10)))
	_ = first
}

func TestTable_AddRespectsSpace(t *testing.T) {
	var table Table
	table.EnsureSpace(2)

	_, err := table.Add("AAA", "")
	require.NoError(t, err)
	_, err = table.Add("BBB", "")
	require.NoError(t, err)

	_, err = table.Add("CCC", "")
	assert.ErrorIs(t, err, ErrTableFull)
	assert.Equal(t, 2, table.Len())

	// Raising the cap lets discovery continue.
	table.EnsureSpace(3)
	_, err = table.Add("CCC", "")
	assert.NoError(t, err)
}

func TestTable_IndicesStableAcrossGrowth(t *testing.T) {
	var table Table
	table.EnsureSpace(100)

	for n := 0; n < 100; n++ {
		i, err := table.Add(fmt.Sprintf("DEV%03d", n), "")
		require.NoError(t, err)
		require.Equal(t, n, i)
		table.At(i).Name = fmt.Sprintf("point-%d", n)
	}

	for n := 0; n < 100; n++ {
		assert.Equal(t, fmt.Sprintf("point-%d", n), table.At(n).Name)
	}
}
