/*
NAME
  color.go

DESCRIPTION
  color.go provides the conversion of decoded YCbCr samples to clamped
  8-bit RGB, upsampling the chroma planes according to the luma sampling
  factors.

AUTHOR
  Russell Stanley <russell@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package jpeg

// yCbCrToRGB converts every pixel of the MCU array to RGB. The chroma
// planes of a macro-block live in its top-left MCU, so the luma blocks are
// visited in descending (v,h) order: the shared chroma must be read before
// the conversion reuses that MCU's planes for RGB output.
func yCbCrToRGB(h *header, mcus []mcu) {
	for y := 0; y < h.mcuHeightReal; y += h.vSampling {
		for x := 0; x < h.mcuWidthReal; x += h.hSampling {
			cbcr := &mcus[y*h.mcuWidthReal+x]
			for v := h.vSampling - 1; v >= 0; v-- {
				for hb := h.hSampling - 1; hb >= 0; hb-- {
					convertBlock(h, &mcus[(y+v)*h.mcuWidthReal+(x+hb)], cbcr, v, hb)
				}
			}
		}
	}
}

// convertBlock converts the luma block at position (v,hb) of a macro-block,
// expanding the shared 8x8 chroma block over the luma grid by
// nearest-neighbour upsampling.
func convertBlock(h *header, m, cbcr *mcu, v, hb int) {
	for y := 7; y >= 0; y-- {
		for x := 7; x >= 0; x-- {
			pixel := y*8 + x
			cbcrRow := y/h.vSampling + 4*v
			cbcrColumn := x/h.hSampling + 4*hb
			cbcrPixel := cbcrRow*8 + cbcrColumn

			luma := m.y()[pixel]
			cb := cbcr.cb()[cbcrPixel]
			cr := cbcr.cr()[cbcrPixel]

			r := clamp(int32(float32(luma) + 1.402*float32(cr) + 128))
			g := clamp(int32(float32(luma) - 0.344*float32(cb) - 0.714*float32(cr) + 128))
			b := clamp(int32(float32(luma) + 1.772*float32(cb) + 128))

			m.r()[pixel] = r
			m.g()[pixel] = g
			m.b()[pixel] = b
		}
	}
}

// clamp limits v to the 8-bit sample range.
func clamp(v int32) int32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
