package bitio

// externalReadAheadSize keeps getByte from round-tripping through the
// user callback for every single byte.
const externalReadAheadSize = 4096

// ExternalCallbacks is the vtable a host supplies to back a Reader or
// Writer with arbitrary I/O: a network socket, an in-process pipe, a
// compression stream, anything not already covered by File/ByteSlice/
// Queue.
type ExternalCallbacks struct {
	// Read fills buf and returns the number of bytes read. A short
	// read with a nil error is treated as end of stream once buf
	// cannot be filled further.
	Read func(buf []byte) (int, error)
	// Write is nil for a read-only external source.
	Write func(data []byte) (int, error)
	// GetPos and SetPos implement position tracking; both may be nil
	// if the external source is not seekable.
	GetPos func() (any, error)
	SetPos func(token any) error
	// Seek repositions relative to whence; may be nil.
	Seek func(offset int64, whence Whence) error
	// Close releases the external resource.
	Close func() error
}

type externalBackend struct {
	cb        ExternalCallbacks
	readAhead []byte
	raPos     int
}

func newExternalBackend(cb ExternalCallbacks) *externalBackend {
	return &externalBackend{cb: cb}
}

func (b *externalBackend) refill() error {
	buf := make([]byte, externalReadAheadSize)
	n, err := b.cb.Read(buf)
	if n == 0 {
		if err != nil {
			return errJoinIO(err)
		}
		return ErrEndOfStream
	}
	b.readAhead = buf[:n]
	b.raPos = 0
	return nil
}

func (b *externalBackend) getByte() (byte, error) {
	if b.raPos >= len(b.readAhead) {
		if err := b.refill(); err != nil {
			return 0, err
		}
	}
	v := b.readAhead[b.raPos]
	b.raPos++
	return v, nil
}

func (b *externalBackend) readBytes(buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		if b.raPos >= len(b.readAhead) {
			if err := b.refill(); err != nil {
				return total, err
			}
		}
		n := copy(buf[total:], b.readAhead[b.raPos:])
		b.raPos += n
		total += n
	}
	return total, nil
}

func (b *externalBackend) putByte(v byte) error {
	return b.writeBytes([]byte{v})
}

func (b *externalBackend) writeBytes(data []byte) error {
	if b.cb.Write == nil {
		return ErrContractViolation
	}
	n, err := b.cb.Write(data)
	if err != nil {
		return errJoinIO(err)
	}
	if n != len(data) {
		return ErrIO
	}
	return nil
}

func (b *externalBackend) getPos() (Pos, error) {
	if b.cb.GetPos == nil {
		return Pos{}, ErrContractViolation
	}
	tok, err := b.cb.GetPos()
	if err != nil {
		return Pos{}, errJoinIO(err)
	}
	snapshot := append([]byte(nil), b.readAhead[b.raPos:]...)
	return Pos{external: tok, readAhead: snapshot}, nil
}

func (b *externalBackend) setPos(p Pos) error {
	if b.cb.SetPos == nil {
		return ErrContractViolation
	}
	if err := b.cb.SetPos(p.external); err != nil {
		return errJoinIO(err)
	}
	b.readAhead = p.readAhead
	b.raPos = 0
	return nil
}

func (b *externalBackend) seek(offset int64, whence Whence) error {
	if b.cb.Seek == nil {
		return ErrContractViolation
	}
	if err := b.cb.Seek(offset, whence); err != nil {
		return errJoinIO(err)
	}
	b.readAhead = nil
	b.raPos = 0
	return nil
}

func (b *externalBackend) seekable() bool {
	return b.cb.Seek != nil
}

func (b *externalBackend) size() (uint64, error) { return 0, nil }

func (b *externalBackend) flush() error { return nil }

func (b *externalBackend) close() error {
	if b.cb.Close == nil {
		return nil
	}
	return b.cb.Close()
}

func errJoinIO(err error) error {
	if err == nil {
		return ErrIO
	}
	return joinErrs(ErrIO, err)
}
