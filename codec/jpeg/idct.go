/*
NAME
  idct.go

DESCRIPTION
  idct.go provides the inverse discrete cosine transform applied to each
  8x8 coefficient block, using the AAN factorisation with five
  multiplications per 1-D pass.

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

import "math"

// AAN multipliers, derived from 2cos(2πk/16).
var (
	m0 = float32(2 * math.Cos(1.0/16.0*2*math.Pi))
	m1 = float32(2 * math.Cos(2.0/16.0*2*math.Pi))
	m3 = float32(2 * math.Cos(2.0/16.0*2*math.Pi))
	m5 = float32(2 * math.Cos(3.0/16.0*2*math.Pi))
	m2 = m0 - m5
	m4 = m0 + m5
)

// Output scale factors cos(kπ/16)/2, with the DC factor folded down by √8.
// No further normalisation is applied after the two passes.
var (
	s0 = float32(math.Cos(0.0/16.0*math.Pi) / math.Sqrt(8))
	s1 = float32(math.Cos(1.0/16.0*math.Pi) / 2)
	s2 = float32(math.Cos(2.0/16.0*math.Pi) / 2)
	s3 = float32(math.Cos(3.0/16.0*math.Pi) / 2)
	s4 = float32(math.Cos(4.0/16.0*math.Pi) / 2)
	s5 = float32(math.Cos(5.0/16.0*math.Pi) / 2)
	s6 = float32(math.Cos(6.0/16.0*math.Pi) / 2)
	s7 = float32(math.Cos(7.0/16.0*math.Pi) / 2)
)

// inverseDCT transforms every decoded block of the MCU array from the
// frequency domain to the spatial domain, in place.
func inverseDCT(h *header, mcus []mcu) {
	for y := 0; y < h.mcuHeightReal; y += h.vSampling {
		for x := 0; x < h.mcuWidthReal; x += h.hSampling {
			for i := 0; i < h.numComponents; i++ {
				component := &h.components[i]
				for v := 0; v < component.vSampling; v++ {
					for hb := 0; hb < component.hSampling; hb++ {
						inverseDCTBlock(&mcus[(y+v)*h.mcuWidthReal+(x+hb)].c[i])
					}
				}
			}
		}
	}
}

// inverseDCTBlock applies the 1-D AAN IDCT to the columns and then the
// rows of one block. Samples are truncated to integer after each pass.
func inverseDCTBlock(blk *block) {
	for i := 0; i < 8; i++ {
		g0 := float32(blk[0*8+i]) * s0
		g1 := float32(blk[4*8+i]) * s4
		g2 := float32(blk[2*8+i]) * s2
		g3 := float32(blk[6*8+i]) * s6
		g4 := float32(blk[5*8+i]) * s5
		g5 := float32(blk[1*8+i]) * s1
		g6 := float32(blk[7*8+i]) * s7
		g7 := float32(blk[3*8+i]) * s3

		f0 := g0
		f1 := g1
		f2 := g2
		f3 := g3
		f4 := g4 - g7
		f5 := g5 + g6
		f6 := g5 - g6
		f7 := g4 + g7

		e0 := f0
		e1 := f1
		e2 := f2 - f3
		e3 := f2 + f3
		e4 := f4
		e5 := f5 - f7
		e6 := f6
		e7 := f5 + f7
		e8 := f4 + f6

		d0 := e0
		d1 := e1
		d2 := e2 * m1
		d3 := e3
		d4 := e4 * m2
		d5 := e5 * m3
		d6 := e6 * m4
		d7 := e7
		d8 := e8 * m5

		c0 := d0 + d1
		c1 := d0 - d1
		c2 := d2 - d3
		c3 := d3
		c4 := d4 + d8
		c5 := d5 + d7
		c6 := d6 - d8
		c7 := d7
		c8 := c5 - c6

		b0 := c0 + c3
		b1 := c1 + c2
		b2 := c1 - c2
		b3 := c0 - c3
		b4 := c4 - c8
		b5 := c8
		b6 := c6 - c7
		b7 := c7

		blk[0*8+i] = int32(b0 + b7)
		blk[1*8+i] = int32(b1 + b6)
		blk[2*8+i] = int32(b2 + b5)
		blk[3*8+i] = int32(b3 + b4)
		blk[4*8+i] = int32(b3 - b4)
		blk[5*8+i] = int32(b2 - b5)
		blk[6*8+i] = int32(b1 - b6)
		blk[7*8+i] = int32(b0 - b7)
	}

	for i := 0; i < 8; i++ {
		g0 := float32(blk[i*8+0]) * s0
		g1 := float32(blk[i*8+4]) * s4
		g2 := float32(blk[i*8+2]) * s2
		g3 := float32(blk[i*8+6]) * s6
		g4 := float32(blk[i*8+5]) * s5
		g5 := float32(blk[i*8+1]) * s1
		g6 := float32(blk[i*8+7]) * s7
		g7 := float32(blk[i*8+3]) * s3

		f0 := g0
		f1 := g1
		f2 := g2
		f3 := g3
		f4 := g4 - g7
		f5 := g5 + g6
		f6 := g5 - g6
		f7 := g4 + g7

		e0 := f0
		e1 := f1
		e2 := f2 - f3
		e3 := f2 + f3
		e4 := f4
		e5 := f5 - f7
		e6 := f6
		e7 := f5 + f7
		e8 := f4 + f6

		d0 := e0
		d1 := e1
		d2 := e2 * m1
		d3 := e3
		d4 := e4 * m2
		d5 := e5 * m3
		d6 := e6 * m4
		d7 := e7
		d8 := e8 * m5

		c0 := d0 + d1
		c1 := d0 - d1
		c2 := d2 - d3
		c3 := d3
		c4 := d4 + d8
		c5 := d5 + d7
		c6 := d6 - d8
		c7 := d7
		c8 := c5 - c6

		b0 := c0 + c3
		b1 := c1 + c2
		b2 := c1 - c2
		b3 := c0 - c3
		b4 := c4 - c8
		b5 := c8
		b6 := c6 - c7
		b7 := c7

		blk[i*8+0] = int32(b0 + b7)
		blk[i*8+1] = int32(b1 + b6)
		blk[i*8+2] = int32(b2 + b5)
		blk[i*8+3] = int32(b3 + b4)
		blk[i*8+4] = int32(b3 - b4)
		blk[i*8+5] = int32(b2 - b5)
		blk[i*8+6] = int32(b1 - b6)
		blk[i*8+7] = int32(b0 - b7)
	}
}
