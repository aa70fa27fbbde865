package bitio

import "github.com/thebagchi/bitio/internal/bitio/huffman"

// ReadHuffmanCode decodes one symbol against table, dispatching
// through the compiled per-node jump tables up to 8 bits at a time.
func (r *Reader) ReadHuffmanCode(table *huffman.ReadTable) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	if sym, ok := table.Trivial(); ok {
		return sym, nil
	}
	node := 0
	for {
		if err := r.ensureLoaded(); err != nil {
			return 0, err
		}
		entry := table.Nodes[node][r.consumed][r.byteVal]
		r.consumed = entry.NewConsumed
		if r.consumed == 8 {
			r.loaded = false
		}
		if !entry.Continue {
			r.unreadReady = r.loaded && r.consumed > 0
			return entry.Symbol, nil
		}
		node = entry.NextNode
	}
}

// WriteHuffmanCode encodes symbol against table by looking up its
// codeword and pushing it through the normal fixed-width write path.
// A symbol missing from table fails with an error that matches both
// ErrUnknownSymbol and ErrContractViolation.
func (w *Writer) WriteHuffmanCode(table *huffman.WriteTable, symbol int) error {
	length, value, err := table.Lookup(symbol)
	if err != nil {
		return joinErrs(ErrContractViolation, err)
	}
	if length == 0 {
		return nil
	}
	return w.writeRaw(uint(length), value)
}
