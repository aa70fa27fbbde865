package bitio

// accumulatorBackend is a writer sink that only counts bits; every
// operation is O(1) and no bytes are ever retained.
type accumulatorBackend struct {
	bits uint64
}

func (b *accumulatorBackend) putByte(byte) error {
	b.bits += 8
	return nil
}

func (b *accumulatorBackend) writeBytes(data []byte) error {
	b.bits += uint64(len(data)) * 8
	return nil
}

func (b *accumulatorBackend) getPos() (Pos, error) {
	return Pos{offset: int64(b.bits)}, nil
}

func (b *accumulatorBackend) setPos(p Pos) error {
	if p.offset < 0 || uint64(p.offset) > b.bits {
		return ErrContractViolation
	}
	b.bits = uint64(p.offset)
	return nil
}

func (b *accumulatorBackend) seek(int64, Whence) error { return ErrContractViolation }
func (b *accumulatorBackend) seekable() bool           { return false }
func (b *accumulatorBackend) flush() error             { return nil }
func (b *accumulatorBackend) close() error             { return nil }

// Accumulator is a Writer whose sink is solely a running bit count;
// endianness toggles are honored but produce identical counts.
type Accumulator struct {
	*Writer
	ab *accumulatorBackend
}

// NewAccumulator creates a zeroed bit counter.
func NewAccumulator(endian Endianness) *Accumulator {
	ab := &accumulatorBackend{}
	w := &Writer{endian: endian, backend: ab, log: newLogger("writer")}
	return &Accumulator{Writer: w, ab: ab}
}

// BitsWritten returns the cumulative number of bits written, including
// any buffered partial byte.
func (a *Accumulator) BitsWritten() uint64 {
	return a.ab.bits + uint64(a.Writer.bitsBuffered)
}

// BytesWritten returns the cumulative number of whole bytes counted.
func (a *Accumulator) BytesWritten() uint64 {
	return a.ab.bits / 8
}

// Reset zeroes the counter.
func (a *Accumulator) Reset() {
	a.ab.bits = 0
	a.Writer.bitsBuffered = 0
	a.Writer.byteVal = 0
}
