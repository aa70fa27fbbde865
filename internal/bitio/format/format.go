// Package format implements the bitio format mini-language: a
// whitespace-tolerant sequence of `[N*] [M] CODE` tokens driving
// declarative parse/build of packed structures.
package format

import (
	"errors"
	"math/big"
	"regexp"
	"strconv"

	"github.com/thebagchi/bitio/internal/bitio"
)

var (
	ErrTooFewArgs      = errors.New("format: too few arguments for format string")
	ErrArgTypeMismatch = errors.New("format: argument type does not match format code")
)

var tokenRe = regexp.MustCompile(`^\s*(?:([0-9]+)\*)?\s*([0-9]*)\s*([usUSKLpPba])`)

type token struct {
	repeat int
	size   uint
	code   byte
}

// tokenize scans format into tokens, stopping silently at the first
// position that does not match a valid token — either the format is
// exhausted or an unknown code was reached. Callers that want unknown
// codes surfaced use the Strict variants.
func tokenize(format string) ([]token, int) {
	pos := 0
	var toks []token
	for pos < len(format) {
		loc := tokenRe.FindStringSubmatchIndex(format[pos:])
		if loc == nil {
			break
		}
		repeat := 1
		if loc[2] != -1 {
			repeat, _ = strconv.Atoi(format[pos+loc[2] : pos+loc[3]])
		}
		var size uint
		if loc[4] != -1 && loc[5] > loc[4] {
			v, _ := strconv.Atoi(format[pos+loc[4] : pos+loc[5]])
			size = uint(v)
		}
		code := format[pos+loc[6]]
		toks = append(toks, token{repeat: repeat, size: size, code: code})
		pos += loc[1]
	}
	return toks, pos
}

// Parse runs format against r, writing decoded fields into out in
// order. out must supply one pointer per consuming code (u -> *uint32,
// s -> *int32, U -> *uint64, S -> *int64, K/L -> *big.Int, b -> *[]byte).
func Parse(r *bitio.Reader, format string, out ...any) error {
	toks, _ := tokenize(format)
	oi := 0
	next := func() (any, error) {
		if oi >= len(out) {
			return nil, ErrTooFewArgs
		}
		v := out[oi]
		oi++
		return v, nil
	}
	for _, t := range toks {
		for i := 0; i < t.repeat; i++ {
			switch t.code {
			case 'u':
				v, err := r.Read(t.size)
				if err != nil {
					return err
				}
				p, err := next()
				if err != nil {
					return err
				}
				dst, ok := p.(*uint32)
				if !ok {
					return ErrArgTypeMismatch
				}
				*dst = v
			case 's':
				v, err := r.ReadSigned(t.size)
				if err != nil {
					return err
				}
				p, err := next()
				if err != nil {
					return err
				}
				dst, ok := p.(*int32)
				if !ok {
					return ErrArgTypeMismatch
				}
				*dst = v
			case 'U':
				v, err := r.Read64(t.size)
				if err != nil {
					return err
				}
				p, err := next()
				if err != nil {
					return err
				}
				dst, ok := p.(*uint64)
				if !ok {
					return ErrArgTypeMismatch
				}
				*dst = v
			case 'S':
				v, err := r.ReadSigned64(t.size)
				if err != nil {
					return err
				}
				p, err := next()
				if err != nil {
					return err
				}
				dst, ok := p.(*int64)
				if !ok {
					return ErrArgTypeMismatch
				}
				*dst = v
			case 'K':
				v, err := r.ReadBigInt(t.size)
				if err != nil {
					return err
				}
				p, err := next()
				if err != nil {
					return err
				}
				dst, ok := p.(*big.Int)
				if !ok {
					return ErrArgTypeMismatch
				}
				dst.Set(v)
			case 'L':
				v, err := r.ReadSignedBigInt(t.size)
				if err != nil {
					return err
				}
				p, err := next()
				if err != nil {
					return err
				}
				dst, ok := p.(*big.Int)
				if !ok {
					return ErrArgTypeMismatch
				}
				dst.Set(v)
			case 'p':
				if err := r.Skip(t.size); err != nil {
					return err
				}
			case 'P':
				if err := r.SkipBytes(t.size); err != nil {
					return err
				}
			case 'b':
				data, err := r.ReadBytes(int(t.size))
				if err != nil {
					return err
				}
				p, err := next()
				if err != nil {
					return err
				}
				dst, ok := p.(*[]byte)
				if !ok {
					return ErrArgTypeMismatch
				}
				*dst = data
			case 'a':
				r.ByteAlign()
			}
		}
	}
	return nil
}

// Build runs format against w, writing in as the field values in
// order (matching the same per-code types Parse expects pointers to,
// passed here by value: uint32, int32, uint64, int64, *big.Int, []byte).
func Build(w *bitio.Writer, format string, in ...any) error {
	toks, _ := tokenize(format)
	ii := 0
	next := func() (any, error) {
		if ii >= len(in) {
			return nil, ErrTooFewArgs
		}
		v := in[ii]
		ii++
		return v, nil
	}
	for _, t := range toks {
		for i := 0; i < t.repeat; i++ {
			switch t.code {
			case 'u':
				v, err := next()
				if err != nil {
					return err
				}
				val, ok := v.(uint32)
				if !ok {
					return ErrArgTypeMismatch
				}
				if err := w.Write(t.size, val); err != nil {
					return err
				}
			case 's':
				v, err := next()
				if err != nil {
					return err
				}
				val, ok := v.(int32)
				if !ok {
					return ErrArgTypeMismatch
				}
				if err := w.WriteSigned(t.size, val); err != nil {
					return err
				}
			case 'U':
				v, err := next()
				if err != nil {
					return err
				}
				val, ok := v.(uint64)
				if !ok {
					return ErrArgTypeMismatch
				}
				if err := w.Write64(t.size, val); err != nil {
					return err
				}
			case 'S':
				v, err := next()
				if err != nil {
					return err
				}
				val, ok := v.(int64)
				if !ok {
					return ErrArgTypeMismatch
				}
				if err := w.WriteSigned64(t.size, val); err != nil {
					return err
				}
			case 'K':
				v, err := next()
				if err != nil {
					return err
				}
				val, ok := v.(*big.Int)
				if !ok {
					return ErrArgTypeMismatch
				}
				if err := w.WriteBigInt(t.size, val); err != nil {
					return err
				}
			case 'L':
				v, err := next()
				if err != nil {
					return err
				}
				val, ok := v.(*big.Int)
				if !ok {
					return ErrArgTypeMismatch
				}
				if err := w.WriteSignedBigInt(t.size, val); err != nil {
					return err
				}
			case 'p':
				if err := writeZeroBits(w, t.size); err != nil {
					return err
				}
			case 'P':
				if err := w.WriteBytes(make([]byte, t.size)); err != nil {
					return err
				}
			case 'b':
				v, err := next()
				if err != nil {
					return err
				}
				val, ok := v.([]byte)
				if !ok {
					return ErrArgTypeMismatch
				}
				if err := w.WriteBytes(val); err != nil {
					return err
				}
			case 'a':
				if err := w.ByteAlign(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// writeZeroBits pads n zero bits, in ≤64-bit chunks since a p token's
// size argument is not bounded by the fixed-width limits.
func writeZeroBits(w *bitio.Writer, n uint) error {
	for n > 0 {
		take := n
		if take > 64 {
			take = 64
		}
		if err := w.Write64(take, 0); err != nil {
			return err
		}
		n -= take
	}
	return nil
}

// Size returns the total bit width format would consume/produce. An
// 'a' token rounds the running count up to a byte boundary; an
// unknown trailing code is treated as end-of-input.
func Size(format string) (uint64, error) {
	toks, _ := tokenize(format)
	var total uint64
	for _, t := range toks {
		for i := 0; i < t.repeat; i++ {
			switch t.code {
			case 'u', 's', 'U', 'S', 'K', 'L', 'p':
				total += uint64(t.size)
			case 'P', 'b':
				total += uint64(t.size) * 8
			case 'a':
				if rem := total % 8; rem != 0 {
					total += 8 - rem
				}
			}
		}
	}
	return total, nil
}

// ParseStrict is Parse but returns ErrUnknownFormatCode instead of
// silently stopping when format contains a code outside "usUSKLpPba"
// — an opt-in variant for hosts that control their own format strings
// and want typos caught early.
func ParseStrict(r *bitio.Reader, format string, out ...any) error {
	if _, consumed := tokenize(format); consumed < len(trimTrailingWhitespace(format)) {
		return bitio.ErrUnknownFormatCode
	}
	return Parse(r, format, out...)
}

// BuildStrict is Build with the same strict unknown-code behavior as
// ParseStrict.
func BuildStrict(w *bitio.Writer, format string, in ...any) error {
	if _, consumed := tokenize(format); consumed < len(trimTrailingWhitespace(format)) {
		return bitio.ErrUnknownFormatCode
	}
	return Build(w, format, in...)
}

func trimTrailingWhitespace(s string) string {
	end := len(s)
	for end > 0 && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}
	return s[:end]
}
