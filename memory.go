package evm

import (
	"github.com/holiman/uint256"
	"github.com/tinyvm-labs/evmscratch/util"
)

// Memory is the teacher's byte-buffer Memory, extended with the spec's
// 32-byte high-water-mark tracker. The backing store grows lazily to cover
// whatever offset is touched (conceptually infinite, zero-initialised) —
// unlike original_source's fixed 1000-byte Rust buffer, which the spec
// explicitly treats as legacy and not worth reproducing.
type Memory struct {
	store []byte
	size  uint64
}

// touchEnd advances the high-water mark to cover the 32-byte-aligned block
// containing byte endOffset.
func (m *Memory) touchEnd(endOffset uint64) {
	w := endOffset + 32 - (endOffset % 32)
	m.size = util.Max(m.size, w)
}

// touchFixedWindow is the quirk preserved from the byte-per-byte memory
// this was ported from: a read always advances the high-water mark to
// cover a fixed 32-byte window starting at offset, regardless of how many
// bytes the read actually asked for.
func (m *Memory) touchFixedWindow(offset uint64) {
	m.touchEnd(offset + 31)
}

// Set sets offset:offset+size to value. The high-water mark advances to
// the last byte actually written (offset+size-1), matching a byte-at-a-time
// write loop rather than a fixed window.
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size > 0 {
		if offset+size > uint64(len(m.store)) {
			m.Resize(offset + size)
		}
		copy(m.store[offset:offset+size], value)
		m.touchEnd(offset + size - 1)
	}
}

// Set32 sets the 32 bytes starting at offset to val, big-endian.
func (m *Memory) Set32(offset uint64, val *uint256.Int) {
	if offset+32 > uint64(len(m.store)) {
		m.Resize(offset + 32)
	}
	copy(m.store[offset:offset+32], make([]byte, 32))
	val.WriteToSlice(m.store[offset:])
	m.touchEnd(offset + 31)
}

// SetByte sets a single byte at offset, using the original memory's
// per-byte high-water-mark formula directly on offset (not offset+31 —
// that adjustment only applies to the 32-byte-window read path).
func (m *Memory) SetByte(offset uint64, b byte) {
	if offset+1 > uint64(len(m.store)) {
		m.Resize(offset + 1)
	}
	m.store[offset] = b
	m.touchEnd(offset)
}

// Resize grows the backing store to size, zero-filling the new tail. It
// never shrinks.
func (m *Memory) Resize(size uint64) {
	if m.Len() < size {
		m.store = append(m.store, make([]byte, size-m.Len())...)
	}
}

// GetCopy returns offset:offset+size as a new slice, zero-padding any
// portion past the current backing length, and advances the high-water
// mark as a read — even for size==0, matching the original read_u8s, which
// always touches the fixed window at offset regardless of how many bytes
// were asked for.
func (m *Memory) GetCopy(offset, size uint64) []byte {
	m.touchFixedWindow(offset)
	if size == 0 {
		return nil
	}
	if offset+size > uint64(len(m.store)) {
		m.Resize(offset + size)
	}
	cpy := make([]byte, size)
	copy(cpy, m.store[offset:offset+size])
	return cpy
}

// GetPtr returns a slice view of offset:offset+size, growing the backing
// store if needed. Callers must not retain it across further mutation.
func (m *Memory) GetPtr(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	if offset+size > uint64(len(m.store)) {
		m.Resize(offset + size)
	}
	return m.store[offset : offset+size]
}

// Len returns the length of the backing slice (not the reported MSIZE;
// use Size for that).
func (m *Memory) Len() uint64 {
	return uint64(len(m.store))
}

// Size returns the high-water-mark value MSIZE reports.
func (m *Memory) Size() uint64 {
	return m.size
}

// Data returns the backing slice.
func (m *Memory) Data() []byte {
	return m.store
}
