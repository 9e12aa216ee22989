/*
NAME
  decode.go

DESCRIPTION
  decode.go provides the decode pipeline driver, composing the parser,
  entropy decoder, dequantiser, inverse DCT and colour converter into
  Decode.

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
	"io"

	"github.com/pkg/errors"
)

// Decode reads a baseline JPEG image from r and decodes it into an RGB
// raster. Grayscale images are decoded with the luma sample replicated
// across the three channels.
func Decode(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not read source")
	}

	h, err := parse(data)
	if err != nil {
		return nil, err
	}

	mcus, err := decodeScan(h)
	if err != nil {
		return nil, err
	}

	dequantize(h, mcus)
	inverseDCT(h, mcus)
	if h.numComponents == 3 {
		yCbCrToRGB(h, mcus)
	}

	return rasterize(h, mcus), nil
}

// rasterize gathers the pixels within the image bounds into a packed RGB
// raster; samples decoded in padding blocks beyond the bounds are
// discarded. Grayscale samples receive the level shift and clamp that the
// colour converter applies for colour images.
func rasterize(h *header, mcus []mcu) *Image {
	pix := make([]byte, h.width*h.height*3)
	for y := 0; y < h.height; y++ {
		for x := 0; x < h.width; x++ {
			m := &mcus[(y/8)*h.mcuWidthReal+x/8]
			pixel := (y%8)*8 + x%8

			var r, g, b int32
			if h.numComponents == 1 {
				luma := clamp(m.y()[pixel] + 128)
				r, g, b = luma, luma, luma
			} else {
				r, g, b = m.r()[pixel], m.g()[pixel], m.b()[pixel]
			}

			off := (y*h.width + x) * 3
			pix[off] = byte(r)
			pix[off+1] = byte(g)
			pix[off+2] = byte(b)
		}
	}
	return &Image{Width: h.width, Height: h.height, Pix: pix}
}
