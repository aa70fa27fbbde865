package bitio

import (
	"math/big"
	"os"

	"github.com/thebagchi/bitio/internal/bitio/bigint"
	"github.com/thebagchi/bitio/internal/bitio/tables"
)

const substreamChunk = 1 << 20 // caps peak memory while copying a substream

// Reader consumes bits from a backend in a chosen bit order. See the
// package doc for the overall model.
type Reader struct {
	endian   Endianness
	backend  readBackend
	closed   bool
	Debug    bool
	log      *logger
	callback callbackStack

	loaded      bool
	byteVal     uint8
	consumed    uint8 // 0..8; 8 means the buffered byte is fully spent
	unreadReady bool  // true only immediately after a read consumed >=1 bit
}

// NewFileReader wraps an *os.File as a seekable byte source.
func NewFileReader(f *os.File, endian Endianness) *Reader {
	return &Reader{endian: endian, backend: newFileBackend(f), log: newLogger("reader")}
}

// NewSliceReader wraps a fixed, immutable byte slice.
func NewSliceReader(data []byte, endian Endianness) *Reader {
	return &Reader{endian: endian, backend: newSliceBackend(data), log: newLogger("reader")}
}

// NewQueueReader wraps a growable FIFO queue.
func NewQueueReader(q *Queue, endian Endianness) *Reader {
	return &Reader{endian: endian, backend: newQueueBackend(q), log: newLogger("reader")}
}

// NewExternalReader wraps user-supplied I/O callbacks.
func NewExternalReader(cb ExternalCallbacks, endian Endianness) *Reader {
	return &Reader{endian: endian, backend: newExternalBackend(cb), log: newLogger("reader")}
}

func (r *Reader) traceEnabled() *logger {
	if r.Debug {
		r.log.enabled = true
		return r.log
	}
	return nil
}

// SetEndianness switches bit order. Byte-aligns as a side effect: a
// buffered partial byte has no meaning under the other order.
func (r *Reader) SetEndianness(e Endianness) {
	r.ByteAlign()
	r.endian = e
}

// ByteAligned reports whether no partial byte is currently buffered.
func (r *Reader) ByteAligned() bool {
	return !r.loaded
}

// ByteAlign discards any buffered partial byte.
func (r *Reader) ByteAlign() {
	r.loaded = false
	r.consumed = 0
	r.unreadReady = false
}

func (r *Reader) ensureLoaded() error {
	if r.loaded {
		return nil
	}
	if r.closed {
		return ErrClosed
	}
	b, err := r.backend.getByte()
	if err != nil {
		return err
	}
	r.byteVal = b
	r.consumed = 0
	r.loaded = true
	r.callback.call(b)
	return nil
}

// readRaw is the shared engine behind Read/Read64/ReadBigInt: it
// dispatches each ≤8-bit chunk through the precomputed jump tables in
// internal/bitio/tables, accumulating into a uint64.
func (r *Reader) readRaw(n uint) (uint64, error) {
	if r.closed {
		return 0, ErrClosed
	}
	var acc uint64
	var bitOffset uint
	remaining := n
	for remaining > 0 {
		if err := r.ensureLoaded(); err != nil {
			return 0, err
		}
		take := remaining
		if take > 8 {
			take = 8
		}
		var size uint8
		var value uint8
		if r.endian == BigEndian {
			e := tables.ReadBitsBE[r.consumed][r.byteVal][take-1]
			size, value = e.Size, e.Value
			acc = (acc << size) | uint64(value)
		} else {
			e := tables.ReadBitsLE[r.consumed][r.byteVal][take-1]
			size, value = e.Size, e.Value
			acc |= uint64(value) << bitOffset
			bitOffset += uint(size)
		}
		r.consumed += size
		if r.consumed == 8 {
			r.loaded = false
		}
		remaining -= uint(size)
	}
	r.unreadReady = r.loaded && r.consumed > 0
	return acc, nil
}

// Read reads an n-bit (1 <= n <= 32) unsigned integer.
func (r *Reader) Read(n uint) (uint32, error) {
	if n < 1 || n > 32 {
		return 0, ErrContractViolation
	}
	v, err := r.readRaw(n)
	if err != nil {
		return 0, err
	}
	r.traceEnabled().trace("read", "bits", n, "value", v)
	return uint32(v), nil
}

// ReadSigned reads an n-bit (1 <= n <= 32) two's-complement signed
// integer: one sign bit plus an (n-1)-bit magnitude, sign bit first
// for big-endian and last for little-endian.
func (r *Reader) ReadSigned(n uint) (int32, error) {
	v, err := r.Read(n)
	if err != nil {
		return 0, err
	}
	return int32(signExtend(uint64(v), n)), nil
}

// Read64 reads an n-bit (1 <= n <= 64) unsigned integer.
func (r *Reader) Read64(n uint) (uint64, error) {
	if n < 1 || n > 64 {
		return 0, ErrContractViolation
	}
	return r.readRaw(n)
}

// ReadSigned64 reads an n-bit (1 <= n <= 64) signed integer.
func (r *Reader) ReadSigned64(n uint) (int64, error) {
	v, err := r.Read64(n)
	if err != nil {
		return 0, err
	}
	return signExtend(v, n), nil
}

// signExtend reinterprets an n-bit unsigned value as two's complement:
// signed = unsigned - (1<<n) when unsigned's top bit (bit n-1) is set.
func signExtend(unsigned uint64, n uint) int64 {
	if n == 64 {
		return int64(unsigned)
	}
	half := uint64(1) << (n - 1)
	if unsigned >= half {
		return int64(unsigned) - int64(uint64(1)<<n)
	}
	return int64(unsigned)
}

// ReadBigInt reads an n-bit unsigned integer of unbounded width.
func (r *Reader) ReadBigInt(n uint) (*big.Int, error) {
	acc := bigint.NewAccumulator()
	remaining := n
	for remaining > 0 {
		take := remaining
		if take > 8 {
			take = 8
		}
		v, err := r.readRaw(take)
		if err != nil {
			return nil, err
		}
		if r.endian == BigEndian {
			acc.AppendBits(uint8(take), v)
		} else {
			acc.InsertBits(uint8(take), v)
		}
		remaining -= take
	}
	return acc.Unsigned(), nil
}

// ReadSignedBigInt reads an n-bit two's-complement signed integer of
// unbounded width.
func (r *Reader) ReadSignedBigInt(n uint) (*big.Int, error) {
	u, err := r.ReadBigInt(n)
	if err != nil {
		return nil, err
	}
	return bigint.Signed(u, n), nil
}

// Skip discards n bits without building a value. Byte-wise skips of a
// byte-aligned run go through the backend's bulk path in 4096-byte
// chunks, so arbitrarily large skips never fill an accumulator.
func (r *Reader) Skip(n uint) error {
	if r.closed {
		return ErrClosed
	}
	if !r.loaded && n%8 == 0 {
		return r.skipBytesBulk(n / 8)
	}
	_, err := r.readRaw(n)
	return err
}

func (r *Reader) skipBytesBulk(nBytes uint) error {
	scratch := make([]byte, 4096)
	for nBytes > 0 {
		chunk := nBytes
		if chunk > uint(len(scratch)) {
			chunk = uint(len(scratch))
		}
		got, err := r.backend.readBytes(scratch[:chunk])
		for i := 0; i < got; i++ {
			r.callback.call(scratch[i])
		}
		if err != nil {
			return err
		}
		nBytes -= uint(got)
	}
	return nil
}

// SkipBytes byte-aligns and discards n whole bytes.
func (r *Reader) SkipBytes(n uint) error {
	if r.closed {
		return ErrClosed
	}
	r.ByteAlign()
	return r.skipBytesBulk(n)
}

// Unread pushes a single bit back. Valid only immediately after a read
// that consumed at least one bit from the currently buffered byte; a
// second consecutive Unread with no intervening read is a contract
// violation.
func (r *Reader) Unread(bit uint8) error {
	if r.closed {
		return ErrClosed
	}
	if bit > 1 {
		return ErrContractViolation
	}
	if !r.unreadReady || !r.loaded || r.consumed == 0 {
		return ErrContractViolation
	}
	r.consumed--
	pos := 7 - r.consumed
	if r.endian == LittleEndian {
		pos = r.consumed
	}
	r.byteVal = r.byteVal&^(1<<pos) | bit<<pos
	r.unreadReady = false
	return nil
}

// ReadUnary decodes a unary code: a run of (1-stop) bits terminated by
// one stop bit, returning the run length.
func (r *Reader) ReadUnary(stop uint8) (uint64, error) {
	if stop > 1 {
		return 0, ErrContractViolation
	}
	if r.closed {
		return 0, ErrClosed
	}
	var total uint64
	for {
		if err := r.ensureLoaded(); err != nil {
			return 0, err
		}
		var entry tables.UnaryEntry
		if r.endian == BigEndian {
			entry = tables.ReadUnaryBE[r.consumed][r.byteVal][stop]
		} else {
			entry = tables.ReadUnaryLE[r.consumed][r.byteVal][stop]
		}
		total += uint64(entry.Increment)
		r.consumed = entry.NewConsumed
		if r.consumed == 8 {
			r.loaded = false
		}
		if !entry.Continue {
			break
		}
	}
	r.unreadReady = r.loaded && r.consumed > 0
	return total, nil
}

// SkipUnary discards a unary code without building its value.
func (r *Reader) SkipUnary(stop uint8) error {
	_, err := r.ReadUnary(stop)
	return err
}

// ReadBytes reads n full bytes, using the backend's bulk path when
// byte-aligned and falling back to bit-at-a-time reads otherwise.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if n < 0 {
		return nil, ErrContractViolation
	}
	out := make([]byte, n)
	if !r.loaded {
		got, err := r.backend.readBytes(out)
		for i := 0; i < got; i++ {
			r.callback.call(out[i])
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	for i := range out {
		v, err := r.readRaw(8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}
	return out, nil
}

// GetPos captures the current position, including any buffered
// partial byte, so SetPos can resume mid-byte.
func (r *Reader) GetPos() (Pos, error) {
	if r.closed {
		return Pos{}, ErrClosed
	}
	p, err := r.backend.getPos()
	if err != nil {
		return Pos{}, err
	}
	p.hasReaderState = true
	p.readerLoaded = r.loaded
	p.readerByte = r.byteVal
	p.readerConsumed = r.consumed
	return p, nil
}

// SetPos restores a previously captured position on this same reader.
func (r *Reader) SetPos(p Pos) error {
	if r.closed {
		return ErrClosed
	}
	if err := r.backend.setPos(p); err != nil {
		return err
	}
	if p.hasReaderState {
		r.loaded = p.readerLoaded
		r.byteVal = p.readerByte
		r.consumed = p.readerConsumed
	} else {
		r.ByteAlign()
	}
	r.unreadReady = false
	return nil
}

// Seek repositions the backend. SeekSet and SeekEnd clear the state
// register; SeekCur with offset 0 is a no-op.
func (r *Reader) Seek(offset int64, whence Whence) error {
	if r.closed {
		return ErrClosed
	}
	if !r.backend.seekable() {
		return ErrContractViolation
	}
	if whence == SeekCur && offset == 0 {
		return nil
	}
	if err := r.backend.seek(offset, whence); err != nil {
		return err
	}
	r.ByteAlign()
	return nil
}

// Size returns the number of bytes remaining, or 0 when unknown
// (e.g. a File backend).
func (r *Reader) Size() (uint64, error) {
	if r.closed {
		return 0, ErrClosed
	}
	return r.backend.size()
}

// AddCallback registers a permanent per-byte observer.
func (r *Reader) AddCallback(fn Callback, data any) { r.callback.add(fn, data) }

// PushCallback registers a temporarily scoped observer; pair with
// PopCallback.
func (r *Reader) PushCallback(fn Callback, data any) { r.callback.push(fn, data) }

// PopCallback removes the most recently pushed observer. Popping an
// empty stack warns and succeeds.
func (r *Reader) PopCallback() { r.callback.pop(r.log) }

// CallCallbacks invokes every registered observer with b, without
// consuming any stream bytes. Used to replay a byte synthesized
// outside the normal read path.
func (r *Reader) CallCallbacks(b byte) { r.callback.call(b) }

// Substream copies n bytes out of the reader into a fresh
// slice-backed reader, in ≤1 MiB chunks.
func (r *Reader) Substream(n int) (*Reader, error) {
	buf := make([]byte, 0, n)
	remaining := n
	for remaining > 0 {
		chunk := remaining
		if chunk > substreamChunk {
			chunk = substreamChunk
		}
		data, err := r.ReadBytes(chunk)
		if err != nil {
			// partial substream never escaped this function; nothing to close.
			return nil, err
		}
		buf = append(buf, data...)
		remaining -= chunk
	}
	return NewSliceReader(buf, r.endian), nil
}

// Enqueue copies n bytes out of the reader into the tail of q.
func (r *Reader) Enqueue(n int, q *Queue) error {
	remaining := n
	for remaining > 0 {
		chunk := remaining
		if chunk > substreamChunk {
			chunk = substreamChunk
		}
		data, err := r.ReadBytes(chunk)
		if err != nil {
			return err
		}
		q.Push(data)
		remaining -= chunk
	}
	return nil
}

// CloseInternal releases the underlying backend but keeps the wrapper
// valid: subsequent primitive calls return ErrClosed instead of
// panicking, and repeated closes are no-ops.
func (r *Reader) CloseInternal() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if qb, ok := r.backend.(*queueBackend); ok && qb.q.pins > 0 {
		r.log.warn("close: position handles still pinning the queue", "pins", qb.q.pins)
	}
	err := r.backend.close()
	r.ByteAlign()
	return err
}

// Close is CloseInternal for a Reader: once the backend is released
// there is no separate wrapper resource to free (the GC reclaims the
// struct), so both collapse into one idempotent call.
func (r *Reader) Close() error {
	return r.CloseInternal()
}
