/*
NAME
  bmp.go

DESCRIPTION
  bmp.go contains functions for serialising an RGB raster as a 24-bit
  Windows BMP with the 12-byte BITMAPCOREHEADER DIB header.

AUTHOR
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package bmp provides encoding of packed RGB rasters to the 24-bit
// BITMAPCOREHEADER BMP format.
package bmp

import (
	"encoding/binary"
	"fmt"
	"io"
)

// headerSize is the 14-byte file header plus the 12-byte core DIB header.
const headerSize = 14 + 12

// maxDim bounds width and height, which the core header stores as 16-bit.
const maxDim = 1<<16 - 1

var (
	errInvalidBounds = fmt.Errorf("invalid image bounds")
	errShortRaster   = fmt.Errorf("raster smaller than image bounds")
)

// Encode writes pix, a packed top-down RGB raster of the given bounds, to
// w as a 24-bit BMP. Rows are written bottom to top as BGR triples, each
// row zero padded to a multiple of 4 bytes.
func Encode(w io.Writer, pix []byte, width, height int) error {
	if width <= 0 || height <= 0 || width > maxDim || height > maxDim {
		return errInvalidBounds
	}
	if len(pix) < width*height*3 {
		return errShortRaster
	}

	padding := width % 4
	size := headerSize + height*width*3 + height*padding

	header := make([]byte, headerSize)
	header[0] = 'B'
	header[1] = 'M'
	binary.LittleEndian.PutUint32(header[2:6], uint32(size))
	// Bytes 6:10 are reserved and left zero.
	binary.LittleEndian.PutUint32(header[10:14], headerSize) // Offset to pixel data.
	binary.LittleEndian.PutUint32(header[14:18], 12)         // Core DIB header size.
	binary.LittleEndian.PutUint16(header[18:20], uint16(width))
	binary.LittleEndian.PutUint16(header[20:22], uint16(height))
	binary.LittleEndian.PutUint16(header[22:24], 1)  // Planes.
	binary.LittleEndian.PutUint16(header[24:26], 24) // Bits per pixel.

	_, err := w.Write(header)
	if err != nil {
		return err
	}

	row := make([]byte, width*3+padding)
	for y := height - 1; y >= 0; y-- {
		for x := 0; x < width; x++ {
			off := (y*width + x) * 3
			row[x*3] = pix[off+2]
			row[x*3+1] = pix[off+1]
			row[x*3+2] = pix[off]
		}
		_, err = w.Write(row)
		if err != nil {
			return err
		}
	}
	return nil
}
