/*
NAME
  huffman.go

DESCRIPTION
  huffman.go provides canonical Huffman code generation and symbol
  decoding for the tables defined in DHT segments.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package jpeg

import (
	"github.com/pkg/errors"

	"github.com/ausocean/img/codec/jpeg/bits"
)

// generateCodes assigns canonical codes to the table's symbols: within a
// code length symbols get consecutive values, and moving to the next
// length appends a zero bit to the running counter.
func (t *huffmanTable) generateCodes() {
	var code uint32
	for i := 0; i < 16; i++ {
		for j := t.offsets[i]; j < t.offsets[i+1]; j++ {
			t.codes[j] = code
			code++
		}
		code <<= 1
	}
}

// nextSymbol reads bits from r until they form a code of t, returning the
// corresponding symbol. Because the codes are canonical the first match at
// the smallest sufficient length is unique. A code that fails to resolve
// within 16 bits means the stream is malformed.
func nextSymbol(r *bits.Reader, t *huffmanTable) (byte, error) {
	var code uint32
	for i := 0; i < 16; i++ {
		bit := r.ReadBit()
		if bit == bits.Exhausted {
			return 0, errors.Wrap(ErrEntropy, "bit stream exhausted mid-code")
		}
		code = code<<1 | uint32(bit)
		for j := t.offsets[i]; j < t.offsets[i+1]; j++ {
			if code == t.codes[j] {
				return t.symbols[j], nil
			}
		}
	}
	return 0, errors.Wrap(ErrEntropy, "no matching Huffman code in 16 bits")
}
