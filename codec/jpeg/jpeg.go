/*
NAME
  jpeg.go

DESCRIPTION
  jpeg.go defines the markers, tables and in-memory structures shared by
  the stages of the baseline JPEG decoder.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package jpeg implements a decoder for baseline JPEG images, i.e. 8-bit,
// Huffman-coded, non-differential, non-progressive DCT frames, producing a
// packed 8-bit RGB raster.
package jpeg

import (
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

// Log is used for decoder diagnostics. If nil, diagnostics are discarded.
var Log logging.Logger

// Errors classifying decode failures. Every error returned by Decode, other
// than a failure to read the source, wraps one of these and can be tested
// for with errors.Is. A read failure wraps the error of the io.Reader.
var (
	// ErrMalformed indicates a structural violation of the JPEG stream.
	ErrMalformed = errors.New("malformed JPEG stream")

	// ErrUnsupported indicates a well-formed stream using a feature outside
	// baseline JPEG.
	ErrUnsupported = errors.New("unsupported JPEG feature")

	// ErrEntropy indicates a violation inside the entropy-coded scan data.
	ErrEntropy = errors.New("invalid entropy-coded data")
)

// Start of frame markers, non-differential, Huffman coding.
const (
	sof0 = 0xc0 // Baseline DCT.
	sof1 = 0xc1 // Extended sequential DCT.
	sof2 = 0xc2 // Progressive DCT.
	sof3 = 0xc3 // Lossless (sequential).
)

// Start of frame markers, differential, Huffman coding.
const (
	sof5 = 0xc5 // Differential sequential DCT.
	sof6 = 0xc6 // Differential progressive DCT.
	sof7 = 0xc7 // Differential lossless (sequential).
)

// Start of frame markers, arithmetic coding.
const (
	sof9  = 0xc9 // Extended sequential DCT.
	sof10 = 0xca // Progressive DCT.
	sof11 = 0xcb // Lossless (sequential).
	sof13 = 0xcd // Differential sequential DCT.
	sof14 = 0xce // Differential progressive DCT.
	sof15 = 0xcf // Differential lossless (sequential).
)

// Other markers.
const (
	tem   = 0x01 // Temporary private use, no payload.
	dht   = 0xc4 // Define Huffman table(s).
	jpg   = 0xc8 // Reserved for JPEG extensions.
	dac   = 0xcc // Define arithmetic coding conditioning(s).
	rst0  = 0xd0 // Restart markers rst0 through rst7.
	rst7  = 0xd7
	soi   = 0xd8 // Start of image.
	eoi   = 0xd9 // End of image.
	sos   = 0xda // Start of scan.
	dqt   = 0xdb // Define quantization table(s).
	dnl   = 0xdc // Define number of lines.
	dri   = 0xdd // Define restart interval.
	dhp   = 0xde // Define hierarchical progression.
	exp   = 0xdf // Expand reference component(s).
	app0  = 0xe0 // Application segments app0 through app15.
	app15 = 0xef
	jpg0  = 0xf0 // Reserved jpg0 through jpg13.
	jpg13 = 0xfd
	com   = 0xfe // Comment.
)

// maxSymbols is the greatest number of symbols a Huffman table may carry,
// set by the 162 run/size codes of an AC table.
const maxSymbols = 162

// zigZag maps an index in zig-zag scan order to the corresponding index in
// natural raster order within an 8x8 block.
var zigZag = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// quantizationTable holds one dequantisation table in natural raster order.
type quantizationTable struct {
	table [64]uint32
	set   bool
}

// huffmanTable holds the symbols of one Huffman table grouped by code
// length, along with the canonical codes derived for them. The symbols of
// code length i+1 occupy symbols[offsets[i]:offsets[i+1]].
type huffmanTable struct {
	offsets [17]int
	symbols [maxSymbols]byte
	codes   [maxSymbols]uint32
	set     bool
}

// colorComponent holds the per-component parameters collected from the
// frame and scan headers. The used flag marks components declared by the
// current header section and is cleared again by the scan parser.
type colorComponent struct {
	hSampling int
	vSampling int
	qTableID  int
	dcTableID int
	acTableID int
	used      bool
}

// header aggregates everything parsed from the stream up to and including
// the scan header, plus the extracted entropy-coded payload.
type header struct {
	frameType byte
	width     int
	height    int

	numComponents int
	// zeroBased records that the first component ID seen was 0, in which
	// case all component IDs are shifted up by one for internal use.
	zeroBased  bool
	components [3]colorComponent

	qTables  [4]quantizationTable
	dcTables [4]huffmanTable
	acTables [4]huffmanTable

	restartInterval int

	startOfSelection          byte
	endOfSelection            byte
	successiveApproximationHi byte
	successiveApproximationLo byte

	// Luma sampling factors, from the first component.
	hSampling int
	vSampling int

	// MCU grid dimensions, and the grid padded up to a multiple of the
	// luma sampling factors.
	mcuWidth      int
	mcuHeight     int
	mcuWidthReal  int
	mcuHeightReal int

	// The entropy-coded scan payload with byte stuffing removed.
	scanData []byte
}

// block is one 8x8 plane of coefficients or samples in raster order.
type block [64]int32

// mcu holds the three component planes of one minimum coded unit. Each
// plane carries Y, Cb or Cr values through entropy decoding and the IDCT,
// and is reused for R, G and B after colour conversion. The colour
// converter's traversal order depends on this reuse; see color.go.
type mcu struct {
	c [3]block
}

func (m *mcu) y() *block  { return &m.c[0] }
func (m *mcu) cb() *block { return &m.c[1] }
func (m *mcu) cr() *block { return &m.c[2] }

func (m *mcu) r() *block { return &m.c[0] }
func (m *mcu) g() *block { return &m.c[1] }
func (m *mcu) b() *block { return &m.c[2] }

// Image is a decoded raster. Pix holds packed RGB triples, row-major from
// the top-left pixel.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

func logDebug(msg string, args ...interface{}) {
	if Log != nil {
		Log.Debug(msg, args...)
	}
}
