package bitio_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thebagchi/bitio"
)

func TestFormatRoundTripThroughPublicAPI(t *testing.T) {
	const format = "2u 3u 5u 3u 19u"

	rec := bitio.NewRecorder(bitio.BigEndian)
	err := bitio.Build(rec.Writer, format,
		uint32(2), uint32(6), uint32(7), uint32(5), uint32(342977))
	require.NoError(t, err)
	require.NoError(t, rec.ByteAlign())
	require.Equal(t, []byte{0xB1, 0xED, 0x3B, 0xC1}, rec.Data())

	var a, b, c, d, e uint32
	r := bitio.NewSliceReader(rec.Data(), bitio.BigEndian)
	require.NoError(t, bitio.Parse(r, format, &a, &b, &c, &d, &e))
	require.Equal(t, []uint32{2, 6, 7, 5, 342977}, []uint32{a, b, c, d, e})
}

func TestFormatSizeThroughPublicAPI(t *testing.T) {
	bits, err := bitio.FormatSize("2u 3u 5u 3u 19u")
	require.NoError(t, err)
	require.Equal(t, uint64(32), bits)
}

func TestHuffmanErrorsSurfaceThroughRoot(t *testing.T) {
	_, _, err := bitio.CompileHuffman(nil, bitio.BigEndian)
	require.ErrorIs(t, err, bitio.ErrEmptyTree)

	_, wt, err := bitio.CompileHuffman([]bitio.HuffmanFrequency{
		{Value: 0b0, Length: 1, Symbol: 0},
		{Value: 0b1, Length: 1, Symbol: 1},
	}, bitio.BigEndian)
	require.NoError(t, err)

	rec := bitio.NewRecorder(bitio.BigEndian)
	err = bitio.WriteHuffmanCode(rec.Writer, wt, 7)
	require.ErrorIs(t, err, bitio.ErrUnknownSymbol)
}

func TestAccumulatorMatchesRecorderBitCount(t *testing.T) {
	acc := bitio.NewAccumulator(bitio.LittleEndian)
	rec := bitio.NewRecorder(bitio.LittleEndian)
	for _, n := range []uint{1, 7, 13, 32} {
		require.NoError(t, acc.Write64(n, 1))
		require.NoError(t, rec.Write64(n, 1))
	}
	require.Equal(t, rec.BitsWritten(), acc.BitsWritten())
}
