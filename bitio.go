// Package bitio is the public entry point for the bitstream engine:
// a thin re-export of the constructors and types hosts need, keeping
// the implementation packages under internal/.
package bitio

import (
	"os"

	"github.com/thebagchi/bitio/internal/bitio"
	"github.com/thebagchi/bitio/internal/bitio/format"
	"github.com/thebagchi/bitio/internal/bitio/huffman"
)

// Bit order.
const (
	BigEndian    = bitio.BigEndian
	LittleEndian = bitio.LittleEndian
)

// Seek origins.
const (
	SeekSet = bitio.SeekSet
	SeekCur = bitio.SeekCur
	SeekEnd = bitio.SeekEnd
)

type (
	Endianness        = bitio.Endianness
	Whence            = bitio.Whence
	Reader            = bitio.Reader
	Writer            = bitio.Writer
	Recorder          = bitio.Recorder
	Accumulator       = bitio.Accumulator
	Queue             = bitio.Queue
	Pos               = bitio.Pos
	Callback          = bitio.Callback
	ExternalCallbacks = bitio.ExternalCallbacks

	HuffmanFrequency  = huffman.Frequency
	HuffmanReadTable  = huffman.ReadTable
	HuffmanWriteTable = huffman.WriteTable
)

// Sentinel error kinds.
var (
	ErrEndOfStream       = bitio.ErrEndOfStream
	ErrIO                = bitio.ErrIO
	ErrNotByteAligned    = bitio.ErrNotByteAligned
	ErrContractViolation = bitio.ErrContractViolation
	ErrClosed            = bitio.ErrClosed
	ErrStalePosition     = bitio.ErrStalePosition

	ErrDuplicateLeaf = bitio.ErrDuplicateLeaf
	ErrMissingLeaf   = bitio.ErrMissingLeaf
	ErrOrphanedLeaf  = bitio.ErrOrphanedLeaf
	ErrEmptyTree     = bitio.ErrEmptyTree
	ErrUnknownSymbol = bitio.ErrUnknownSymbol

	ErrUnknownFormatCode = bitio.ErrUnknownFormatCode
)

func NewFileReader(f *os.File, endian Endianness) *Reader     { return bitio.NewFileReader(f, endian) }
func NewSliceReader(data []byte, endian Endianness) *Reader   { return bitio.NewSliceReader(data, endian) }
func NewQueueReader(q *Queue, endian Endianness) *Reader      { return bitio.NewQueueReader(q, endian) }
func NewExternalReader(cb ExternalCallbacks, endian Endianness) *Reader {
	return bitio.NewExternalReader(cb, endian)
}

func NewFileWriter(f *os.File, endian Endianness) *Writer { return bitio.NewFileWriter(f, endian) }
func NewExternalWriter(cb ExternalCallbacks, endian Endianness) *Writer {
	return bitio.NewExternalWriter(cb, endian)
}

func NewRecorder(endian Endianness) *Recorder       { return bitio.NewRecorder(endian) }
func NewAccumulator(endian Endianness) *Accumulator { return bitio.NewAccumulator(endian) }
func NewQueue() *Queue                              { return bitio.NewQueue() }

func CompileHuffman(freqs []HuffmanFrequency, endian Endianness) (*HuffmanReadTable, *HuffmanWriteTable, error) {
	he := huffman.BigEndian
	if endian == LittleEndian {
		he = huffman.LittleEndian
	}
	return huffman.Compile(freqs, he)
}

// Parse and Build drive the format mini-language.
func Parse(r *Reader, fmtStr string, out ...any) error { return format.Parse(r, fmtStr, out...) }
func Build(w *Writer, fmtStr string, in ...any) error  { return format.Build(w, fmtStr, in...) }
func FormatSize(fmtStr string) (uint64, error)         { return format.Size(fmtStr) }
func ParseStrict(r *Reader, fmtStr string, out ...any) error {
	return format.ParseStrict(r, fmtStr, out...)
}
func BuildStrict(w *Writer, fmtStr string, in ...any) error {
	return format.BuildStrict(w, fmtStr, in...)
}

// ReadHuffmanCode / WriteHuffmanCode thin forwards, kept at root so a
// host never needs to import internal/bitio/huffman directly.
func ReadHuffmanCode(r *Reader, table *HuffmanReadTable) (int, error) {
	return r.ReadHuffmanCode(table)
}

func WriteHuffmanCode(w *Writer, table *HuffmanWriteTable, symbol int) error {
	return w.WriteHuffmanCode(table, symbol)
}
