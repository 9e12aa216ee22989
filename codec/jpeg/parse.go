/*
NAME
  parse.go

DESCRIPTION
  parse.go provides the marker-driven parser that walks the segments of a
  baseline JPEG stream, populating a header record and extracting the
  entropy-coded scan payload.

AUTHOR
  Trek Hopton <trek@ausocean.org>

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
)

// segmentReader provides byte and 16-bit big-endian reads over the raw
// stream, reporting truncation as ErrMalformed.
type segmentReader struct {
	data []byte
	pos  int
}

func (s *segmentReader) readByte() (byte, error) {
	if s.pos >= len(s.data) {
		return 0, errors.Wrap(ErrMalformed, "file ended prematurely")
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

func (s *segmentReader) readUint16() (int, error) {
	hi, err := s.readByte()
	if err != nil {
		return 0, err
	}
	lo, err := s.readByte()
	if err != nil {
		return 0, err
	}
	return int(hi)<<8 | int(lo), nil
}

// parse walks the marker segments of data, returning the populated header
// once the scan payload has been extracted and validated.
func parse(data []byte) (*header, error) {
	s := &segmentReader{data: data}
	h := &header{endOfSelection: 63}

	last, err := s.readByte()
	if err != nil {
		return nil, err
	}
	current, err := s.readByte()
	if err != nil {
		return nil, err
	}
	if last != 0xff || current != soi {
		return nil, errors.Wrap(ErrMalformed, "file does not start with SOI marker")
	}

	for {
		last, err = s.readByte()
		if err != nil {
			return nil, err
		}
		current, err = s.readByte()
		if err != nil {
			return nil, err
		}

		// Any number of 0xff fill bytes may precede a marker.
		for last == 0xff && current == 0xff {
			current, err = s.readByte()
			if err != nil {
				return nil, err
			}
		}

		if last != 0xff {
			return nil, errors.Wrap(ErrMalformed, "expected a marker")
		}

		switch {
		case current == sof0:
			h.frameType = sof0
			err = readStartOfFrame(s, h)
		case current == dqt:
			err = readQuantizationTables(s, h)
		case current == dht:
			err = readHuffmanTables(s, h)
		case current == sos:
			err = readStartOfScan(s, h)
			if err != nil {
				return nil, err
			}
			return finishScan(s, h)
		case current == dri:
			err = readRestartInterval(s, h)
		case current >= app0 && current <= app15:
			err = skipSegment(s, "APPN")
		case current == com:
			err = skipSegment(s, "COM")
		case (current >= jpg0 && current <= jpg13) || current == dnl || current == dhp || current == exp:
			err = skipSegment(s, "skippable")
		case current == tem:
			// TEM has no payload.
		case current == soi:
			return nil, errors.Wrap(ErrMalformed, "embedded JPEGs not supported")
		case current == eoi:
			return nil, errors.Wrap(ErrMalformed, "EOI detected before SOS")
		case current == dac:
			return nil, errors.Wrap(ErrUnsupported, "arithmetic coding mode not supported")
		case current >= sof0 && current <= sof15:
			return nil, errors.Wrapf(ErrUnsupported, "SOF marker not supported: 0x%02x", current)
		case current >= rst0 && current <= rst7:
			return nil, errors.Wrap(ErrMalformed, "RSTN detected before SOS")
		default:
			return nil, errors.Wrapf(ErrMalformed, "unknown marker: 0x%02x", current)
		}
		if err != nil {
			return nil, err
		}
	}
}

// readStartOfFrame reads an SOF0 segment, recording image dimensions,
// per-component sampling factors and quantization table IDs, and deriving
// the MCU grid dimensions.
func readStartOfFrame(s *segmentReader, h *header) error {
	logDebug("reading start of frame")
	if h.numComponents != 0 {
		return errors.Wrap(ErrMalformed, "multiple SOFs detected")
	}

	length, err := s.readUint16()
	if err != nil {
		return err
	}

	precision, err := s.readByte()
	if err != nil {
		return err
	}
	if precision != 8 {
		return errors.Wrapf(ErrUnsupported, "invalid precision: %d", precision)
	}

	h.height, err = s.readUint16()
	if err != nil {
		return err
	}
	h.width, err = s.readUint16()
	if err != nil {
		return err
	}
	if h.height == 0 || h.width == 0 {
		return errors.Wrap(ErrMalformed, "invalid dimensions")
	}

	n, err := s.readByte()
	if err != nil {
		return err
	}
	if n == 4 {
		return errors.Wrap(ErrUnsupported, "CMYK color mode not supported")
	}
	if n == 0 {
		return errors.Wrap(ErrMalformed, "number of color components must not be zero")
	}
	h.numComponents = int(n)

	for i := 0; i < h.numComponents; i++ {
		id, err := s.readByte()
		if err != nil {
			return err
		}

		// Component IDs are usually 1, 2, 3 but rarely can be seen as 0, 1, 2;
		// force them into 1, 2, 3 for consistency.
		if id == 0 && i == 0 {
			h.zeroBased = true
		}
		if h.zeroBased {
			id++
		}

		if id == 4 || id == 5 {
			return errors.Wrap(ErrUnsupported, "YIQ color mode not supported")
		}
		if id == 0 || id > 3 {
			return errors.Wrapf(ErrMalformed, "invalid component ID: %d", id)
		}

		component := &h.components[id-1]
		if component.used {
			return errors.Wrap(ErrMalformed, "duplicate color component ID")
		}
		component.used = true

		sampling, err := s.readByte()
		if err != nil {
			return err
		}
		component.hSampling = int(sampling >> 4)
		component.vSampling = int(sampling & 0x0f)
		if id == 1 {
			if (component.hSampling != 1 && component.hSampling != 2) ||
				(component.vSampling != 1 && component.vSampling != 2) {
				return errors.Wrap(ErrUnsupported, "luma sampling factors not supported")
			}
		} else if component.hSampling != 1 || component.vSampling != 1 {
			return errors.Wrap(ErrUnsupported, "chroma sampling factors not supported")
		}

		qt, err := s.readByte()
		if err != nil {
			return err
		}
		if qt > 3 {
			return errors.Wrap(ErrMalformed, "invalid quantization table ID in frame components")
		}
		component.qTableID = int(qt)
	}

	h.hSampling = h.components[0].hSampling
	h.vSampling = h.components[0].vSampling
	if h.numComponents == 1 && (h.hSampling != 1 || h.vSampling != 1) {
		return errors.Wrap(ErrUnsupported, "sampling factors not supported for grayscale")
	}

	h.mcuWidth = (h.width + 7) / 8
	h.mcuHeight = (h.height + 7) / 8
	h.mcuWidthReal = h.mcuWidth
	h.mcuHeightReal = h.mcuHeight
	if h.hSampling == 2 && h.mcuWidth%2 == 1 {
		h.mcuWidthReal++
	}
	if h.vSampling == 2 && h.mcuHeight%2 == 1 {
		h.mcuHeightReal++
	}

	if length-8-3*h.numComponents != 0 {
		return errors.Wrap(ErrMalformed, "invalid SOF")
	}

	logDebug("start of frame read", "width", h.width, "height", h.height,
		"components", h.numComponents, "hSampling", h.hSampling, "vSampling", h.vSampling)
	return nil
}

// readQuantizationTables reads a DQT segment, which may define several
// tables. Table entries arrive in zig-zag order and are stored in natural
// raster order.
func readQuantizationTables(s *segmentReader, h *header) error {
	logDebug("reading quantization tables")
	length, err := s.readUint16()
	if err != nil {
		return err
	}
	length -= 2

	for length > 0 {
		info, err := s.readByte()
		if err != nil {
			return err
		}
		length--

		id := info & 0x0f
		if id > 3 {
			return errors.Wrapf(ErrMalformed, "invalid quantization table ID: %d", id)
		}
		table := &h.qTables[id]
		table.set = true

		if info>>4 != 0 {
			for i := 0; i < 64; i++ {
				v, err := s.readUint16()
				if err != nil {
					return err
				}
				table.table[zigZag[i]] = uint32(v)
			}
			length -= 128
		} else {
			for i := 0; i < 64; i++ {
				v, err := s.readByte()
				if err != nil {
					return err
				}
				table.table[zigZag[i]] = uint32(v)
			}
			length -= 64
		}
		logDebug("quantization table read", "id", id)
	}

	if length != 0 {
		return errors.Wrap(ErrMalformed, "DQT invalid")
	}
	return nil
}

// readHuffmanTables reads a DHT segment, which may define several tables.
// Each table arrives as 16 code-length counts followed by its symbols;
// counts become the offsets prefix sum.
func readHuffmanTables(s *segmentReader, h *header) error {
	logDebug("reading Huffman tables")
	length, err := s.readUint16()
	if err != nil {
		return err
	}
	length -= 2

	for length > 0 {
		info, err := s.readByte()
		if err != nil {
			return err
		}
		id := info & 0x0f
		acTable := info>>4 != 0

		if id > 3 {
			return errors.Wrapf(ErrMalformed, "invalid Huffman table ID: %d", id)
		}

		table := &h.dcTables[id]
		if acTable {
			table = &h.acTables[id]
		}
		table.set = true

		table.offsets[0] = 0
		allSymbols := 0
		for i := 1; i <= 16; i++ {
			count, err := s.readByte()
			if err != nil {
				return err
			}
			allSymbols += int(count)
			table.offsets[i] = allSymbols
		}
		if allSymbols > maxSymbols {
			return errors.Wrap(ErrMalformed, "too many symbols in Huffman table")
		}

		for i := 0; i < allSymbols; i++ {
			table.symbols[i], err = s.readByte()
			if err != nil {
				return err
			}
		}

		length -= 17 + allSymbols
		logDebug("Huffman table read", "id", id, "ac", acTable, "symbols", allSymbols)
	}

	if length != 0 {
		return errors.Wrap(ErrMalformed, "DHT invalid")
	}
	return nil
}

// readStartOfScan reads the SOS segment, binding Huffman tables to each
// scan component and checking the spectral selection fields required of a
// baseline scan.
func readStartOfScan(s *segmentReader, h *header) error {
	logDebug("reading start of scan")
	if h.numComponents == 0 {
		return errors.Wrap(ErrMalformed, "SOS detected before SOF")
	}

	length, err := s.readUint16()
	if err != nil {
		return err
	}

	for i := 0; i < h.numComponents; i++ {
		h.components[i].used = false
	}

	n, err := s.readByte()
	if err != nil {
		return err
	}
	for i := 0; i < int(n); i++ {
		id, err := s.readByte()
		if err != nil {
			return err
		}
		if h.zeroBased {
			id++
		}
		if id == 0 || int(id) > h.numComponents {
			return errors.Wrapf(ErrMalformed, "invalid color component ID: %d", id)
		}

		component := &h.components[id-1]
		if component.used {
			return errors.Wrapf(ErrMalformed, "duplicate color component ID: %d", id)
		}
		component.used = true

		tables, err := s.readByte()
		if err != nil {
			return err
		}
		component.dcTableID = int(tables >> 4)
		component.acTableID = int(tables & 0x0f)
		if component.dcTableID > 3 {
			return errors.Wrapf(ErrMalformed, "invalid Huffman DC table ID: %d", component.dcTableID)
		}
		if component.acTableID > 3 {
			return errors.Wrapf(ErrMalformed, "invalid Huffman AC table ID: %d", component.acTableID)
		}
	}

	h.startOfSelection, err = s.readByte()
	if err != nil {
		return err
	}
	h.endOfSelection, err = s.readByte()
	if err != nil {
		return err
	}
	approximation, err := s.readByte()
	if err != nil {
		return err
	}
	h.successiveApproximationHi = approximation >> 4
	h.successiveApproximationLo = approximation & 0x0f

	// Baseline scans use neither spectral selection nor successive
	// approximation.
	if h.startOfSelection != 0 || h.endOfSelection != 63 {
		return errors.Wrap(ErrUnsupported, "invalid spectral selection")
	}
	if h.successiveApproximationHi != 0 || h.successiveApproximationLo != 0 {
		return errors.Wrap(ErrUnsupported, "invalid successive approximation")
	}

	if length-6-2*int(n) != 0 {
		return errors.Wrap(ErrMalformed, "invalid SOS")
	}
	return nil
}

// readRestartInterval reads a DRI segment.
func readRestartInterval(s *segmentReader, h *header) error {
	logDebug("reading restart interval")
	length, err := s.readUint16()
	if err != nil {
		return err
	}
	h.restartInterval, err = s.readUint16()
	if err != nil {
		return err
	}
	if length-4 != 0 {
		return errors.Wrap(ErrMalformed, "invalid DRI")
	}
	logDebug("restart interval read", "interval", h.restartInterval)
	return nil
}

// skipSegment discards a segment whose content does not affect decoding.
func skipSegment(s *segmentReader, kind string) error {
	logDebug("skipping segment", "kind", kind)
	length, err := s.readUint16()
	if err != nil {
		return err
	}
	for i := 0; i < length-2; i++ {
		_, err := s.readByte()
		if err != nil {
			return err
		}
	}
	return nil
}

// finishScan extracts the entropy-coded payload following the scan header,
// removing byte stuffing and restart markers, then runs the post-scan
// header validation.
func finishScan(s *segmentReader, h *header) (*header, error) {
	current, err := s.readByte()
	if err != nil {
		return nil, err
	}
	for {
		last := current
		current, err = s.readByte()
		if err != nil {
			return nil, err
		}

		if last != 0xff {
			h.scanData = append(h.scanData, last)
			continue
		}

		switch {
		case current == eoi:
			return h, validateHeader(h)
		case current == 0x00:
			// 0xff00 encodes a literal 0xff in the scan data.
			h.scanData = append(h.scanData, last)
			current, err = s.readByte()
			if err != nil {
				return nil, err
			}
		case current >= rst0 && current <= rst7:
			// Restart markers carry no data; the scan decoder recovers them
			// positionally from the restart interval.
			current, err = s.readByte()
			if err != nil {
				return nil, err
			}
		case current == 0xff:
			// Fill byte before a marker.
		default:
			return nil, errors.Wrapf(ErrMalformed, "invalid marker during compressed data scan: 0x%02x", current)
		}
	}
}

// validateHeader checks that the parsed header describes a decodable image:
// one or three components, each referencing tables that were defined.
func validateHeader(h *header) error {
	if h.numComponents != 1 && h.numComponents != 3 {
		return errors.Wrapf(ErrUnsupported, "%d color components given (1 or 3 required)", h.numComponents)
	}

	for i := 0; i < h.numComponents; i++ {
		if !h.qTables[h.components[i].qTableID].set {
			return errors.Wrap(ErrMalformed, "color component using uninitialized quantization table")
		}
		if !h.dcTables[h.components[i].dcTableID].set {
			return errors.Wrap(ErrMalformed, "color component using uninitialized Huffman DC table")
		}
		if !h.acTables[h.components[i].acTableID].set {
			return errors.Wrap(ErrMalformed, "color component using uninitialized Huffman AC table")
		}
	}

	logDebug("scan data extracted", "bytes", len(h.scanData))
	return nil
}
