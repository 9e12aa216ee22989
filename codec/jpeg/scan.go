/*
NAME
  scan.go

DESCRIPTION
  scan.go provides the entropy decoder that converts the scan payload into
  coefficient blocks, and the dequantiser applied to those blocks.

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

// decodeScan decodes the entropy-coded payload into an MCU array of
// mcuWidthReal by mcuHeightReal entries. Macro-blocks are visited in
// raster order; within one, each component contributes its vSampling by
// hSampling grid of blocks, with chroma occupying the top-left MCU.
func decodeScan(h *header) ([]mcu, error) {
	mcus := make([]mcu, h.mcuWidthReal*h.mcuHeightReal)

	for i := 0; i < 4; i++ {
		if h.dcTables[i].set {
			h.dcTables[i].generateCodes()
		}
		if h.acTables[i].set {
			h.acTables[i].generateCodes()
		}
	}

	br := bits.NewReader(h.scanData)
	var previousDCs [3]int32

	// The restart interval counts MCUs as defined by the standard, where
	// an interleaved MCU covers a whole macro-block of blocks.
	restartInterval := h.restartInterval * h.hSampling * h.vSampling

	for y := 0; y < h.mcuHeightReal; y += h.vSampling {
		for x := 0; x < h.mcuWidthReal; x += h.hSampling {
			if restartInterval != 0 && (y*h.mcuWidthReal+x)%restartInterval == 0 {
				previousDCs[0] = 0
				previousDCs[1] = 0
				previousDCs[2] = 0
				br.Align()
			}

			for i := 0; i < h.numComponents; i++ {
				component := &h.components[i]
				for v := 0; v < component.vSampling; v++ {
					for hb := 0; hb < component.hSampling; hb++ {
						err := decodeBlock(br,
							&mcus[(y+v)*h.mcuWidthReal+(x+hb)].c[i],
							&previousDCs[i],
							&h.dcTables[component.dcTableID],
							&h.acTables[component.acTableID])
						if err != nil {
							return nil, err
						}
					}
				}
			}
		}
	}

	return mcus, nil
}

// decodeBlock fills one 8x8 coefficient block: a differentially coded DC
// coefficient followed by run-length coded AC coefficients in zig-zag
// order.
func decodeBlock(br *bits.Reader, blk *block, previousDC *int32, dcTable, acTable *huffmanTable) error {
	length, err := nextSymbol(br, dcTable)
	if err != nil {
		return errors.Wrap(err, "could not read DC symbol")
	}
	if length > 11 {
		return errors.Wrap(ErrEntropy, "DC coefficient length greater than 11")
	}

	coeff := br.ReadBits(int(length))
	if coeff == bits.Exhausted {
		return errors.Wrap(ErrEntropy, "bit stream exhausted reading DC coefficient")
	}
	if length != 0 && coeff < 1<<(length-1) {
		coeff -= (1 << length) - 1
	}
	blk[0] = int32(coeff) + *previousDC
	*previousDC = blk[0]

	i := 1
	for i < 64 {
		symbol, err := nextSymbol(br, acTable)
		if err != nil {
			return errors.Wrap(err, "could not read AC symbol")
		}

		// Symbol 0x00 ends the block, zero filling the remainder.
		if symbol == 0x00 {
			for ; i < 64; i++ {
				blk[zigZag[i]] = 0
			}
			return nil
		}

		numZeroes := int(symbol >> 4)
		coeffLength := int(symbol & 0x0f)

		// Symbol 0xf0 skips a run of 16 zeroes with no coefficient.
		if symbol == 0xf0 {
			numZeroes = 16
		}
		if i+numZeroes >= 64 {
			return errors.Wrap(ErrEntropy, "zero run-length exceeded block")
		}
		for j := 0; j < numZeroes; j++ {
			blk[zigZag[i]] = 0
			i++
		}

		if symbol == 0xf0 {
			continue
		}

		if coeffLength > 10 {
			return errors.Wrap(ErrEntropy, "AC coefficient length greater than 10")
		}

		coeff := br.ReadBits(coeffLength)
		if coeff == bits.Exhausted {
			return errors.Wrap(ErrEntropy, "bit stream exhausted reading AC coefficient")
		}
		if coeffLength != 0 && coeff < 1<<(coeffLength-1) {
			coeff -= (1 << coeffLength) - 1
		}
		blk[zigZag[i]] = int32(coeff)
		i++
	}

	return nil
}

// dequantize scales every decoded coefficient by the matching entry of its
// component's quantization table, in place.
func dequantize(h *header, mcus []mcu) {
	for y := 0; y < h.mcuHeightReal; y += h.vSampling {
		for x := 0; x < h.mcuWidthReal; x += h.hSampling {
			for i := 0; i < h.numComponents; i++ {
				component := &h.components[i]
				for v := 0; v < component.vSampling; v++ {
					for hb := 0; hb < component.hSampling; hb++ {
						dequantizeBlock(&h.qTables[component.qTableID],
							&mcus[(y+v)*h.mcuWidthReal+(x+hb)].c[i])
					}
				}
			}
		}
	}
}

func dequantizeBlock(t *quantizationTable, blk *block) {
	for i := 0; i < 64; i++ {
		blk[i] *= int32(t.table[i])
	}
}
