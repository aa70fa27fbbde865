package bitio

import (
	"math/big"
	"os"

	"github.com/thebagchi/bitio/internal/bitio/bigint"
)

// Writer produces bits into a backend in a chosen bit order. See the
// package doc for the overall model.
type Writer struct {
	endian   Endianness
	backend  writeBackend
	closed   bool
	Debug    bool
	log      *logger
	callback callbackStack

	bitsBuffered uint8 // 0..7
	byteVal      uint8
}

// NewFileWriter wraps an *os.File as a byte sink.
func NewFileWriter(f *os.File, endian Endianness) *Writer {
	return &Writer{endian: endian, backend: newFileBackend(f), log: newLogger("writer")}
}

// NewExternalWriter wraps user-supplied I/O callbacks.
func NewExternalWriter(cb ExternalCallbacks, endian Endianness) *Writer {
	return &Writer{endian: endian, backend: newExternalBackend(cb), log: newLogger("writer")}
}

func (w *Writer) traceEnabled() *logger {
	if w.Debug {
		w.log.enabled = true
		return w.log
	}
	return nil
}

// SetEndianness switches bit order. Byte-aligns as a side effect.
func (w *Writer) SetEndianness(e Endianness) {
	w.ByteAlign()
	w.endian = e
}

// ByteAligned reports whether the partial-byte buffer is empty.
func (w *Writer) ByteAligned() bool { return w.bitsBuffered == 0 }

// ByteAlign pads the current partial byte with zero bits and flushes
// it to the backend.
func (w *Writer) ByteAlign() error {
	if w.bitsBuffered == 0 {
		return nil
	}
	return w.writeRaw(uint(8-w.bitsBuffered), 0)
}

// writeRaw is the shared engine behind Write/Write64/WriteBigInt: it
// splits value into chunks of at most 8 bits, flushing a whole byte to
// the backend each time the partial buffer fills.
func (w *Writer) writeRaw(n uint, value uint64) error {
	if w.closed {
		return ErrClosed
	}
	remaining := n
	for remaining > 0 {
		available := 8 - w.bitsBuffered
		take := remaining
		if take > uint(available) {
			take = uint(available)
		}
		var chunk uint8
		if w.endian == BigEndian {
			shift := remaining - take
			chunk = uint8((value >> shift) & ((1 << take) - 1))
			w.byteVal |= chunk << (uint(available) - take)
		} else {
			chunk = uint8(value & ((1 << take) - 1))
			value >>= take
			w.byteVal |= chunk << w.bitsBuffered
		}
		w.bitsBuffered += uint8(take)
		remaining -= take
		if w.bitsBuffered == 8 {
			if err := w.backend.putByte(w.byteVal); err != nil {
				return err
			}
			w.callback.call(w.byteVal)
			w.byteVal = 0
			w.bitsBuffered = 0
		}
	}
	return nil
}

// Write writes an n-bit (1 <= n <= 32) unsigned integer.
func (w *Writer) Write(n uint, value uint32) error {
	if n < 1 || n > 32 {
		return ErrContractViolation
	}
	w.traceEnabled().trace("write", "bits", n, "value", value)
	return w.writeRaw(n, uint64(value)&maskN(n))
}

// WriteSigned writes an n-bit (1 <= n <= 32) two's-complement signed
// integer.
func (w *Writer) WriteSigned(n uint, value int32) error {
	if n < 1 || n > 32 {
		return ErrContractViolation
	}
	return w.writeRaw(n, uint64(uint32(value))&maskN(n))
}

// Write64 writes an n-bit (1 <= n <= 64) unsigned integer.
func (w *Writer) Write64(n uint, value uint64) error {
	if n < 1 || n > 64 {
		return ErrContractViolation
	}
	return w.writeRaw(n, value&maskN(n))
}

// WriteSigned64 writes an n-bit (1 <= n <= 64) signed integer.
func (w *Writer) WriteSigned64(n uint, value int64) error {
	if n < 1 || n > 64 {
		return ErrContractViolation
	}
	return w.writeRaw(n, uint64(value)&maskN(n))
}

func maskN(n uint) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << n) - 1
}

// WriteBigInt writes an n-bit unsigned integer of unbounded width.
// Chunk order follows the bit order: most significant chunk first for
// big-endian, least significant first for little-endian, so each ≤8-bit
// piece lands in the stream where the fixed-width path would put it.
func (w *Writer) WriteBigInt(n uint, value *big.Int) error {
	chunks := bigint.Chunks(value, n)
	if w.endian == LittleEndian {
		chunks = bigint.ChunksLE(value, n)
	}
	for _, c := range chunks {
		if err := w.writeRaw(uint(c.Size), c.Value); err != nil {
			return err
		}
	}
	return nil
}

// WriteSignedBigInt writes an n-bit two's-complement signed integer
// of unbounded width.
func (w *Writer) WriteSignedBigInt(n uint, value *big.Int) error {
	return w.WriteBigInt(n, bigint.ToUnsigned(value, n))
}

// WriteUnary emits a unary code: value copies of the non-stop bit
// followed by one stop bit. Long runs go out in 30-bit chunks so the
// run length is not bounded by the fixed-width path's accumulator.
func (w *Writer) WriteUnary(stop uint8, value uint64) error {
	if stop > 1 {
		return ErrContractViolation
	}
	nonStop := uint64(0)
	if stop == 0 {
		nonStop = 1
	}
	pattern := uint64(0)
	if nonStop == 1 {
		pattern = (uint64(1) << 30) - 1
	}
	for value >= 30 {
		if err := w.writeRaw(30, pattern); err != nil {
			return err
		}
		value -= 30
	}
	for i := uint64(0); i < value; i++ {
		if err := w.writeRaw(1, nonStop); err != nil {
			return err
		}
	}
	return w.writeRaw(1, uint64(stop))
}

// WriteBytes writes n bytes, bulk-writing through the backend when
// byte-aligned and falling back to bit-at-a-time writes otherwise.
func (w *Writer) WriteBytes(data []byte) error {
	if w.closed {
		return ErrClosed
	}
	if w.bitsBuffered == 0 {
		if err := w.backend.writeBytes(data); err != nil {
			return err
		}
		for _, b := range data {
			w.callback.call(b)
		}
		return nil
	}
	for _, b := range data {
		if err := w.writeRaw(8, uint64(b)); err != nil {
			return err
		}
	}
	return nil
}

// GetPos returns the current position. Only legal while byte-aligned.
func (w *Writer) GetPos() (Pos, error) {
	if w.closed {
		return Pos{}, ErrClosed
	}
	if w.bitsBuffered != 0 {
		return Pos{}, ErrNotByteAligned
	}
	return w.backend.getPos()
}

// SetPos restores a previously captured position. Only legal while
// byte-aligned.
func (w *Writer) SetPos(p Pos) error {
	if w.closed {
		return ErrClosed
	}
	if w.bitsBuffered != 0 {
		return ErrNotByteAligned
	}
	return w.backend.setPos(p)
}

// Seek repositions the backend. Only legal while byte-aligned.
func (w *Writer) Seek(offset int64, whence Whence) error {
	if w.closed {
		return ErrClosed
	}
	if w.bitsBuffered != 0 {
		return ErrNotByteAligned
	}
	if !w.backend.seekable() {
		return ErrContractViolation
	}
	return w.backend.seek(offset, whence)
}

// Flush pushes any backend-level buffering (not the partial-byte
// accumulator — use ByteAlign for that) out to the sink.
func (w *Writer) Flush() error {
	if w.closed {
		return ErrClosed
	}
	return w.backend.flush()
}

// AddCallback registers a permanent per-byte observer.
func (w *Writer) AddCallback(fn Callback, data any) { w.callback.add(fn, data) }

// PushCallback registers a temporarily scoped observer; pair with
// PopCallback.
func (w *Writer) PushCallback(fn Callback, data any) { w.callback.push(fn, data) }

// PopCallback removes the most recently pushed observer. Popping an
// empty stack warns and succeeds.
func (w *Writer) PopCallback() { w.callback.pop(w.log) }

// CloseInternal pads and flushes any partial byte, releases the
// backend, and leaves the wrapper's primitives aborting from here on.
// Idempotent.
func (w *Writer) CloseInternal() error {
	if w.closed {
		return nil
	}
	_ = w.ByteAlign()
	_ = w.backend.flush()
	w.closed = true
	return w.backend.close()
}

// Close is CloseInternal for a Writer — see Reader.Close.
func (w *Writer) Close() error {
	return w.CloseInternal()
}
