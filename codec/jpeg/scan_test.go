/*
NAME
  scan_test.go

DESCRIPTION
  scan_test.go provides testing for the entropy decoder in scan.go.

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
	"testing"

	"github.com/pkg/errors"

	"github.com/ausocean/img/codec/jpeg/bits"
)

// grayScanHeader builds a header describing a two MCU wide, one MCU high
// grayscale scan. The DC table holds the single symbol 0x03 with code 0,
// and the AC table the end-of-block symbol 0x00 with code 0.
func grayScanHeader(scanData []byte, restart int) *header {
	h := &header{
		numComponents:   1,
		hSampling:       1,
		vSampling:       1,
		mcuWidth:        2,
		mcuHeight:       1,
		mcuWidthReal:    2,
		mcuHeightReal:   1,
		restartInterval: restart,
		scanData:        scanData,
	}
	h.components[0] = colorComponent{hSampling: 1, vSampling: 1, used: true}
	h.dcTables[0] = makeTable([]int{1}, []byte{0x03})
	h.acTables[0] = makeTable([]int{1}, []byte{0x00})
	return h
}

func TestDecodeBlockDC(t *testing.T) {
	dcTable := makeTable([]int{1}, []byte{0x03})
	acTable := makeTable([]int{1}, []byte{0x00})

	tests := []struct {
		name string
		data []byte
		want int32
	}{
		// Code 0, three magnitude bits, end-of-block code 0.
		{name: "positive", data: []byte{0x40}, want: 4}, // 0 100 0
		{name: "negative", data: []byte{0x30}, want: -4}, // 0 011 0 -> 3 - 7
		{name: "upper", data: []byte{0x70}, want: 7},     // 0 111 0
	}

	for _, test := range tests {
		var blk block
		var previousDC int32
		err := decodeBlock(bits.NewReader(test.data), &blk, &previousDC, &dcTable, &acTable)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", test.name, err)
		}
		if blk[0] != test.want {
			t.Errorf("unexpected DC for %q: got:%d want:%d", test.name, blk[0], test.want)
		}
		if previousDC != test.want {
			t.Errorf("unexpected predictor for %q: got:%d want:%d", test.name, previousDC, test.want)
		}
		for i := 1; i < 64; i++ {
			if blk[i] != 0 {
				t.Errorf("unexpected AC coefficient for %q at %d: got:%d want:0", test.name, i, blk[i])
			}
		}
	}
}

func TestDecodeBlockAC(t *testing.T) {
	dcTable := makeTable([]int{1}, []byte{0x00})
	// Codes: 0 -> symbol 0x01 (run 0, size 1), 10 -> end of block.
	acTable := makeTable([]int{1, 1}, []byte{0x01, 0x00})

	tests := []struct {
		name string
		data []byte
		want int32
	}{
		{name: "positive", data: []byte{0x30}, want: 1},  // 0 0 1 10
		{name: "negative", data: []byte{0x10}, want: -1}, // 0 0 0 10
	}

	for _, test := range tests {
		var blk block
		var previousDC int32
		err := decodeBlock(bits.NewReader(test.data), &blk, &previousDC, &dcTable, &acTable)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", test.name, err)
		}
		if blk[1] != test.want {
			t.Errorf("unexpected coefficient for %q: got:%d want:%d", test.name, blk[1], test.want)
		}
	}
}

func TestDecodeBlockZeroRun(t *testing.T) {
	dcTable := makeTable([]int{1}, []byte{0x00})
	// Codes: 0 -> 0xf0 (run of 16 zeroes), 10 -> end of block, 11 -> symbol
	// 0x01 (run 0, size 1).
	acTable := makeTable([]int{1, 2}, []byte{0xf0, 0x00, 0x01})

	// DC 0, a 16 zero run, coefficient 1, end of block: 0 0 11 1 10.
	var blk block
	var previousDC int32
	err := decodeBlock(bits.NewReader([]byte{0x3c}), &blk, &previousDC, &dcTable, &acTable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The coefficient lands at zig-zag index 17, raster index 19.
	for i := 0; i < 64; i++ {
		want := int32(0)
		if i == 19 {
			want = 1
		}
		if blk[i] != want {
			t.Errorf("unexpected coefficient at raster index %d: got:%d want:%d", i, blk[i], want)
		}
	}
}

func TestDecodeBlockRunOverflow(t *testing.T) {
	dcTable := makeTable([]int{1}, []byte{0x00})
	acTable := makeTable([]int{1}, []byte{0xf0})

	// Four consecutive 16 zero runs overflow the block at index 49.
	var blk block
	var previousDC int32
	err := decodeBlock(bits.NewReader([]byte{0x00}), &blk, &previousDC, &dcTable, &acTable)
	if !errors.Is(err, ErrEntropy) {
		t.Errorf("unexpected error: got:%v want:%v", err, ErrEntropy)
	}
}

func TestDecodeBlockDCTooLong(t *testing.T) {
	dcTable := makeTable([]int{1}, []byte{0x0c})
	acTable := makeTable([]int{1}, []byte{0x00})

	var blk block
	var previousDC int32
	err := decodeBlock(bits.NewReader([]byte{0x00}), &blk, &previousDC, &dcTable, &acTable)
	if !errors.Is(err, ErrEntropy) {
		t.Errorf("unexpected error: got:%v want:%v", err, ErrEntropy)
	}
}

func TestDecodeBlockACSizeTooBig(t *testing.T) {
	dcTable := makeTable([]int{1}, []byte{0x00})
	acTable := makeTable([]int{1}, []byte{0x0b})

	var blk block
	var previousDC int32
	err := decodeBlock(bits.NewReader([]byte{0x00}), &blk, &previousDC, &dcTable, &acTable)
	if !errors.Is(err, ErrEntropy) {
		t.Errorf("unexpected error: got:%v want:%v", err, ErrEntropy)
	}
}

func TestDecodeBlockExhausted(t *testing.T) {
	dcTable := makeTable([]int{1}, []byte{0x00})
	acTable := makeTable([]int{1}, []byte{0x00})

	var blk block
	var previousDC int32
	err := decodeBlock(bits.NewReader(nil), &blk, &previousDC, &dcTable, &acTable)
	if !errors.Is(err, ErrEntropy) {
		t.Errorf("unexpected error: got:%v want:%v", err, ErrEntropy)
	}
}

func TestDecodeScanDCPrediction(t *testing.T) {
	// Two MCUs each coding a DC difference of 4: the second block's DC is
	// the running sum.
	h := grayScanHeader([]byte{0x42, 0x00}, 0) // 0 100 0, 0 100 0
	mcus, err := decodeScan(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mcus[0].y()[0]; got != 4 {
		t.Errorf("unexpected first DC: got:%d want:4", got)
	}
	if got := mcus[1].y()[0]; got != 8 {
		t.Errorf("unexpected second DC: got:%d want:8", got)
	}
}

func TestDecodeScanRestart(t *testing.T) {
	// With a restart interval of one MCU the predictor resets and the
	// reader realigns before the second MCU, so both blocks decode the
	// absolute value 4 from byte-aligned data.
	h := grayScanHeader([]byte{0x40, 0x40}, 1)
	mcus, err := decodeScan(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mcus[0].y()[0]; got != 4 {
		t.Errorf("unexpected first DC: got:%d want:4", got)
	}
	if got := mcus[1].y()[0]; got != 4 {
		t.Errorf("unexpected second DC: got:%d want:4", got)
	}
}

func TestDecodeScanSubsampled(t *testing.T) {
	// One 4:2:0 macro-block: four luma blocks in scan order then the
	// shared chroma blocks, which land in the top-left MCU.
	h := &header{
		numComponents: 3,
		hSampling:     2,
		vSampling:     2,
		mcuWidth:      2,
		mcuHeight:     2,
		mcuWidthReal:  2,
		mcuHeightReal: 2,
	}
	h.components[0] = colorComponent{hSampling: 2, vSampling: 2, used: true}
	h.components[1] = colorComponent{hSampling: 1, vSampling: 1, used: true}
	h.components[2] = colorComponent{hSampling: 1, vSampling: 1, used: true}
	h.dcTables[0] = makeTable([]int{1}, []byte{0x03})
	h.acTables[0] = makeTable([]int{1}, []byte{0x00})

	// DC differences 4, 5, 6, 7 for luma, then 4 for Cb and 5 for Cr.
	h.scanData = []byte{0x42, 0x98, 0xe4, 0x28}

	mcus, err := decodeScan(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantY := []int32{4, 9, 15, 22} // Running DC sums in (v,h) scan order.
	for i, slot := range []int{0, 1, 2, 3} {
		if got := mcus[slot].y()[0]; got != wantY[i] {
			t.Errorf("unexpected luma DC in MCU %d: got:%d want:%d", slot, got, wantY[i])
		}
	}
	if got := mcus[0].cb()[0]; got != 4 {
		t.Errorf("unexpected Cb DC: got:%d want:4", got)
	}
	if got := mcus[0].cr()[0]; got != 5 {
		t.Errorf("unexpected Cr DC: got:%d want:5", got)
	}
	for _, slot := range []int{1, 2, 3} {
		if got := mcus[slot].cb()[0]; got != 0 {
			t.Errorf("unexpected Cb DC in MCU %d: got:%d want:0", slot, got)
		}
	}
}

func TestDequantizeBlock(t *testing.T) {
	var q quantizationTable
	for i := range q.table {
		q.table[i] = uint32(i + 1)
	}
	var blk block
	for i := range blk {
		blk[i] = 2
	}
	dequantizeBlock(&q, &blk)
	for i := range blk {
		if blk[i] != int32(2*(i+1)) {
			t.Errorf("unexpected coefficient at %d: got:%d want:%d", i, blk[i], 2*(i+1))
		}
	}
}
