package huffman

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleFreqs() []Frequency {
	// {"11"->0, "10"->1, "01"->2, "001"->3, "000"->4}
	return []Frequency{
		{Value: 0b11, Length: 2, Symbol: 0},
		{Value: 0b10, Length: 2, Symbol: 1},
		{Value: 0b01, Length: 2, Symbol: 2},
		{Value: 0b001, Length: 3, Symbol: 3},
		{Value: 0b000, Length: 3, Symbol: 4},
	}
}

func TestCompileValidTree(t *testing.T) {
	rt, wt, err := Compile(sampleFreqs(), BigEndian)
	require.NoError(t, err)
	require.NotNil(t, rt)
	require.NotNil(t, wt)

	length, value, err := wt.Lookup(3)
	require.NoError(t, err)
	require.Equal(t, uint8(3), length)
	require.Equal(t, uint64(0b001), value)
}

func TestCompileLittleEndianReversesWriteCodes(t *testing.T) {
	_, wt, err := Compile(sampleFreqs(), LittleEndian)
	require.NoError(t, err)

	// "001" emitted LSB-first must leave the decoder's path order 0,0,1
	// intact, so the stored codeword is the reversal "100".
	length, value, err := wt.Lookup(3)
	require.NoError(t, err)
	require.Equal(t, uint8(3), length)
	require.Equal(t, uint64(0b100), value)
}

func TestCompileUnknownSymbol(t *testing.T) {
	_, wt, err := Compile(sampleFreqs(), BigEndian)
	require.NoError(t, err)
	_, _, err = wt.Lookup(99)
	require.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestCompileDuplicateLeaf(t *testing.T) {
	freqs := []Frequency{
		{Value: 0b1, Length: 1, Symbol: 0},
		{Value: 0b1, Length: 1, Symbol: 1},
	}
	_, _, err := Compile(freqs, BigEndian)
	require.ErrorIs(t, err, ErrDuplicateLeaf)
}

func TestCompileMissingLeaf(t *testing.T) {
	// "0" and "10" given, "11" never assigned a symbol: incomplete.
	freqs := []Frequency{
		{Value: 0b0, Length: 1, Symbol: 0},
		{Value: 0b10, Length: 2, Symbol: 1},
	}
	_, _, err := Compile(freqs, BigEndian)
	require.ErrorIs(t, err, ErrMissingLeaf)
}

func TestCompileOrphanedLeaf(t *testing.T) {
	// "0" is a leaf, "01" tries to extend past it.
	freqs := []Frequency{
		{Value: 0b0, Length: 1, Symbol: 0},
		{Value: 0b01, Length: 2, Symbol: 1},
	}
	_, _, err := Compile(freqs, BigEndian)
	require.ErrorIs(t, err, ErrOrphanedLeaf)
}

func TestCompileEmptyTree(t *testing.T) {
	_, _, err := Compile(nil, BigEndian)
	require.ErrorIs(t, err, ErrEmptyTree)
}

func TestCompileTrivialOneSymbolTree(t *testing.T) {
	freqs := []Frequency{{Value: 0, Length: 0, Symbol: 42}}
	rt, wt, err := Compile(freqs, BigEndian)
	require.NoError(t, err)
	length, _, err := wt.Lookup(42)
	require.NoError(t, err)
	require.Equal(t, uint8(0), length)

	entry := rt.Nodes[0][3][0x77]
	require.False(t, entry.Continue)
	require.Equal(t, 42, entry.Symbol)
	require.Equal(t, uint8(3), entry.NewConsumed) // consumes zero bits
}
