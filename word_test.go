package evm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestParseHexWordPrefixTolerance(t *testing.T) {
	a, err := parseHexWord("0x2a")
	assert.NoError(t, err)
	b, err := parseHexWord("2a")
	assert.NoError(t, err)
	assert.True(t, a.Eq(&b))
	assert.Equal(t, uint64(42), a.Uint64())
}

func TestParseHexWordEmpty(t *testing.T) {
	w, err := parseHexWord("")
	assert.NoError(t, err)
	assert.True(t, w.IsZero())
}

func TestParseHexWordOddLength(t *testing.T) {
	w, err := parseHexWord("0x1")
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), w.Uint64())
}

func TestDecStringRendersBase10(t *testing.T) {
	w := *uint256.NewInt(91343852333181432)
	assert.Equal(t, "91343852333181432", decString(&w))
}

func TestHexDecodeLenientOddLength(t *testing.T) {
	bs, err := hexDecodeLenient("0xfff")
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x0f, 0xff}, bs)
}

func TestHexDecodeLenientEmpty(t *testing.T) {
	bs, err := hexDecodeLenient("")
	assert.NoError(t, err)
	assert.Equal(t, []byte{}, bs)
}

func TestParseDecUint(t *testing.T) {
	assert.Equal(t, uint64(2), parseDecUint("2"))
	assert.Equal(t, uint64(0), parseDecUint("not a number"))
}
