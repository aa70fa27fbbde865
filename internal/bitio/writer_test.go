package bitio

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteUnaryRoundTrip(t *testing.T) {
	for _, stop := range []uint8{0, 1} {
		// 40 crosses the 30-bit run chunking in WriteUnary.
		for _, v := range []uint64{0, 1, 5, 29, 30, 40} {
			rec := NewRecorder(BigEndian)
			require.NoError(t, rec.WriteUnary(stop, v))
			require.NoError(t, rec.ByteAlign())

			r := NewSliceReader(rec.Data(), BigEndian)
			got, err := r.ReadUnary(stop)
			require.NoError(t, err)
			require.Equalf(t, v, got, "stop=%d value=%d", stop, v)
		}
	}
}

func TestWriteUnaryBitPattern(t *testing.T) {
	rec := NewRecorder(BigEndian)
	require.NoError(t, rec.WriteUnary(0, 1)) // one 1-bit, then the 0 stop
	require.NoError(t, rec.ByteAlign())
	require.Equal(t, []byte{0b10000000}, rec.Data())
}

func TestWriteUnaryRejectsBadStopBit(t *testing.T) {
	rec := NewRecorder(BigEndian)
	require.ErrorIs(t, rec.WriteUnary(2, 1), ErrContractViolation)
}

func TestWrite64RoundTripFullWidth(t *testing.T) {
	for _, e := range []Endianness{BigEndian, LittleEndian} {
		for _, v := range []uint64{0, 1, 0xDEADBEEFCAFEF00D, ^uint64(0)} {
			rec := NewRecorder(e)
			require.NoError(t, rec.Write64(64, v))

			r := NewSliceReader(rec.Data(), e)
			got, err := r.Read64(64)
			require.NoError(t, err)
			require.Equal(t, v, got)
		}
	}
}

func TestWriteSigned64RoundTrip(t *testing.T) {
	for _, e := range []Endianness{BigEndian, LittleEndian} {
		for _, v := range []int64{-1 << 36, -1, 0, 1<<36 - 1} {
			rec := NewRecorder(e)
			require.NoError(t, rec.WriteSigned64(37, v))
			require.NoError(t, rec.ByteAlign())

			r := NewSliceReader(rec.Data(), e)
			got, err := r.ReadSigned64(37)
			require.NoError(t, err)
			require.Equal(t, v, got)
		}
	}
}

func TestBigIntRoundTrip(t *testing.T) {
	wide := new(big.Int).Lsh(big.NewInt(1), 74) // needs 75 bits
	wide.Sub(wide, big.NewInt(12345))
	for _, e := range []Endianness{BigEndian, LittleEndian} {
		rec := NewRecorder(e)
		require.NoError(t, rec.WriteBigInt(75, wide))
		require.NoError(t, rec.ByteAlign())

		r := NewSliceReader(rec.Data(), e)
		got, err := r.ReadBigInt(75)
		require.NoError(t, err)
		require.Equalf(t, 0, got.Cmp(wide), "endian=%v got=%s", e, got)
	}
}

func TestSignedBigIntRoundTrip(t *testing.T) {
	neg := new(big.Int).Lsh(big.NewInt(-3), 70)
	for _, e := range []Endianness{BigEndian, LittleEndian} {
		rec := NewRecorder(e)
		require.NoError(t, rec.WriteSignedBigInt(80, neg))
		require.NoError(t, rec.ByteAlign())

		r := NewSliceReader(rec.Data(), e)
		got, err := r.ReadSignedBigInt(80)
		require.NoError(t, err)
		require.Equalf(t, 0, got.Cmp(neg), "endian=%v got=%s", e, got)
	}
}

func TestBigIntMatchesFixedWidthLayout(t *testing.T) {
	// A bigint write of a value that fits in 19 bits must produce the
	// same bytes the fixed-width path produces.
	for _, e := range []Endianness{BigEndian, LittleEndian} {
		fixed := NewRecorder(e)
		require.NoError(t, fixed.Write64(19, 0x53BC1&0x7FFFF))
		require.NoError(t, fixed.ByteAlign())

		wide := NewRecorder(e)
		require.NoError(t, wide.WriteBigInt(19, big.NewInt(0x53BC1&0x7FFFF)))
		require.NoError(t, wide.ByteAlign())

		require.Equal(t, fixed.Data(), wide.Data())
	}
}

func TestWriteBytesUnalignedFallsBackToBitPath(t *testing.T) {
	rec := NewRecorder(BigEndian)
	require.NoError(t, rec.Write(3, 0b101))
	require.NoError(t, rec.WriteBytes([]byte{0xAB, 0xCD}))
	require.NoError(t, rec.ByteAlign())

	r := NewSliceReader(rec.Data(), BigEndian)
	require.NoError(t, r.Skip(3))
	data, err := r.ReadBytes(2)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAB, 0xCD}, data)
}

func TestWriterPositionOpsRequireAlignment(t *testing.T) {
	rec := NewRecorder(BigEndian)
	require.NoError(t, rec.Write(3, 1))
	_, err := rec.GetPos()
	require.ErrorIs(t, err, ErrNotByteAligned)
	require.ErrorIs(t, rec.Seek(0, SeekSet), ErrNotByteAligned)
}

func TestWriterCallbacksFirePerFlushedByte(t *testing.T) {
	rec := NewRecorder(BigEndian)
	count := 0
	rec.AddCallback(func(b byte, _ any) { count++ }, nil)
	require.NoError(t, rec.Write(4, 0xF))
	require.Equal(t, 0, count) // partial byte not yet flushed
	require.NoError(t, rec.Write(4, 0xF))
	require.Equal(t, 1, count)
	require.NoError(t, rec.WriteBytes([]byte{1, 2, 3}))
	require.Equal(t, 4, count)
}

func TestWriterCloseIsIdempotentAndAbortsFurtherWrites(t *testing.T) {
	rec := NewRecorder(BigEndian)
	require.NoError(t, rec.Write(8, 0x42))
	require.NoError(t, rec.Close())
	require.NoError(t, rec.Close())
	require.ErrorIs(t, rec.Write(1, 0), ErrClosed)
}

func TestWriterCloseFlushesPartialByte(t *testing.T) {
	rec := NewRecorder(BigEndian)
	require.NoError(t, rec.Write(3, 0b111))
	require.NoError(t, rec.Close())
	require.Equal(t, []byte{0b11100000}, rec.Data())
}
