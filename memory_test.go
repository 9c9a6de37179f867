package evm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestMemorySet32AndGetCopy(t *testing.T) {
	var m Memory
	val := uint256.NewInt(0xdeadbeef)
	m.Set32(0, val)

	got := m.GetCopy(0, 32)
	var back uint256.Int
	back.SetBytes(got)
	assert.True(t, val.Eq(&back))
}

func TestMemoryGetCopyZeroPadsPastEnd(t *testing.T) {
	var m Memory
	m.Set(0, 4, []byte{1, 2, 3, 4})

	got := m.GetCopy(0, 8)
	assert.Equal(t, []byte{1, 2, 3, 4, 0, 0, 0, 0}, got)
}

// A single byte touched anywhere advances MSIZE to the next 32-byte
// boundary, regardless of how much was actually accessed.
func TestMemoryHighWaterMarkFormula(t *testing.T) {
	var m Memory
	m.SetByte(0, 0xff)
	assert.Equal(t, uint64(32), m.Size())

	m.SetByte(33, 0xff)
	assert.Equal(t, uint64(64), m.Size())
}

func TestMemoryHighWaterMarkExactBoundary(t *testing.T) {
	var m Memory
	m.SetByte(31, 1)
	assert.Equal(t, uint64(32), m.Size())

	m.SetByte(32, 1)
	assert.Equal(t, uint64(64), m.Size())
}

// GetCopy (MLOAD/SHA3's read path) always advances the high-water mark as
// if a full 32-byte word were read starting at offset, ignoring size —
// preserved from the original memory's read_u8s/read_u256 quirk.
func TestMemoryGetCopyFixedWindowQuirk(t *testing.T) {
	var m Memory
	m.GetCopy(40, 4)
	assert.Equal(t, uint64(96), m.Size())
}

// Set (CALLDATACOPY/CODECOPY's write path) advances the high-water mark to
// the actual last byte written (offset+size-1), not a fixed 32-byte window
// from offset — the same offset and size as the GetCopy case above lands
// on a smaller mark here, since Set never looks past what it wrote.
func TestMemorySetTouchesActualRange(t *testing.T) {
	var m Memory
	m.Set(40, 4, []byte{1, 2, 3, 4})
	assert.Equal(t, uint64(64), m.Size())
}

// Even a zero-size read touches the fixed 32-byte window at offset, the
// same as original_source's read_u8s: GetCopy(40, 0) still advances MSIZE
// as if 32 bytes starting at 40 had been read.
func TestMemoryGetCopyZeroSizeStillTouchesWindow(t *testing.T) {
	var m Memory
	got := m.GetCopy(40, 0)
	assert.Nil(t, got)
	assert.Equal(t, uint64(96), m.Size())
}

func TestMemoryResizeNeverShrinks(t *testing.T) {
	var m Memory
	m.Resize(64)
	m.Resize(10)
	assert.Equal(t, uint64(64), m.Len())
}
