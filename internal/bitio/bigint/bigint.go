// Package bigint provides the arbitrary-precision accumulator the
// reader/writer façade uses for integer fields wider than 64 bits
// (the format mini-language's K and L codes).
//
// Built on math/big. Bit accumulation mirrors the shift-or pattern
// Reader.Read uses for the uint64 case, generalized to an unbounded
// width.
package bigint

import "math/big"

// Accumulator builds an unsigned value bit chunk by bit chunk,
// mirroring how Reader.Read accumulates into a uint64 one table lookup
// at a time: AppendBits for MSB-first (big-endian) streams, InsertBits
// for LSB-first (little-endian) streams. The two modes must not be
// mixed on one accumulator.
type Accumulator struct {
	v      *big.Int
	offset uint // running low-end bit offset, InsertBits only
}

func NewAccumulator() *Accumulator {
	return &Accumulator{v: new(big.Int)}
}

// AppendBits folds `size` newly produced bits (value right-justified,
// most significant of this chunk first) onto the end of the
// accumulated value.
func (a *Accumulator) AppendBits(size uint8, value uint64) {
	if size == 0 {
		return
	}
	a.v.Lsh(a.v, uint(size))
	a.v.Or(a.v, new(big.Int).SetUint64(value))
}

// InsertBits folds `size` newly produced bits onto the value at the
// running low-end offset: the LSB-first accumulation little-endian
// reads use, the same way Reader.Read tracks a bit offset for its
// uint64 case.
func (a *Accumulator) InsertBits(size uint8, value uint64) {
	if size == 0 {
		return
	}
	chunk := new(big.Int).SetUint64(value)
	chunk.Lsh(chunk, a.offset)
	a.v.Or(a.v, chunk)
	a.offset += uint(size)
}

// Unsigned returns the accumulated value.
func (a *Accumulator) Unsigned() *big.Int {
	return new(big.Int).Set(a.v)
}

// Signed reinterprets an n-bit unsigned value as a two's-complement
// signed integer: signed = unsigned - (1<<n) when the sign bit
// (bit n-1) is set.
func Signed(unsigned *big.Int, n uint) *big.Int {
	half := new(big.Int).Lsh(big.NewInt(1), n-1)
	if unsigned.Cmp(half) < 0 {
		return new(big.Int).Set(unsigned)
	}
	full := new(big.Int).Lsh(big.NewInt(1), n)
	return new(big.Int).Sub(unsigned, full)
}

// ToUnsigned converts a signed value of bit-width n to its n-bit
// unsigned magnitude encoding (the inverse of Signed), for writing.
func ToUnsigned(signed *big.Int, n uint) *big.Int {
	if signed.Sign() >= 0 {
		return new(big.Int).Set(signed)
	}
	full := new(big.Int).Lsh(big.NewInt(1), n)
	return new(big.Int).Add(full, signed)
}

// Chunk is one ≤8-bit piece of a split value, sized for the bit-level
// write path's one-table-lookup-at-a-time dispatch.
type Chunk struct {
	Size  uint8
	Value uint64
}

// Chunks splits an n-bit unsigned value into Chunks, most significant
// chunk first: the emission order a big-endian write uses.
func Chunks(v *big.Int, n uint) []Chunk {
	out := make([]Chunk, 0, (n+7)/8)
	remaining := n
	for remaining > 0 {
		take := uint(8)
		if remaining < 8 {
			take = remaining
		}
		shift := remaining - take
		out = append(out, Chunk{Size: uint8(take), Value: extract(v, shift, take)})
		remaining -= take
	}
	return out
}

// ChunksLE splits an n-bit unsigned value into Chunks, least
// significant chunk first: the emission order a little-endian write
// uses, so the value's low bits land in the stream's first byte.
func ChunksLE(v *big.Int, n uint) []Chunk {
	out := make([]Chunk, 0, (n+7)/8)
	var offset uint
	for offset < n {
		take := uint(8)
		if n-offset < 8 {
			take = n - offset
		}
		out = append(out, Chunk{Size: uint8(take), Value: extract(v, offset, take)})
		offset += take
	}
	return out
}

func extract(v *big.Int, shift, take uint) uint64 {
	chunk := new(big.Int).Rsh(v, shift)
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), take), big.NewInt(1))
	return chunk.And(chunk, mask).Uint64()
}
