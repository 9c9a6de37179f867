package evm

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// Word is the 256-bit unsigned integer the stack, memory and storage all
// traffic in. It's the teacher's own bignum type, never a hand-rolled one.
type Word = uint256.Int

// stripHexPrefix tolerates an optional "0x"/"0X" prefix on a hex field.
// The original fixtures are inconsistent about the prefix across tx/block
// fields and state values, so every hex-parsing entry point goes through
// this first.
func stripHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// parseHexWord parses a big-endian hex string (optional 0x prefix, odd
// length and leading zero digits tolerated) into a Word. An empty string
// parses to zero.
func parseHexWord(s string) (Word, error) {
	s = strings.TrimLeft(stripHexPrefix(s), "0")
	if s == "" {
		return Word{}, nil
	}
	w, err := uint256.FromHex("0x" + s)
	if err != nil {
		return Word{}, err
	}
	return *w, nil
}

// mustParseHexWord is used for fields that, when present, are always
// well-formed fixture input; absence is handled by the caller, not here.
func mustParseHexWord(s string) Word {
	w, err := parseHexWord(s)
	if err != nil {
		return Word{}
	}
	return w
}

// decString renders a Word the way the fixtures key storage/balances: base
// 10, no leading zeros, mirroring Rust's primitive_types::U256 Display.
func decString(w *Word) string {
	return w.ToBig().String()
}

// hexDecodeLenient decodes a hex string field (optional 0x prefix, odd
// length tolerated via a leading zero) into raw bytes. An empty string
// decodes to an empty, non-nil slice.
func hexDecodeLenient(s string) ([]byte, error) {
	s = stripHexPrefix(s)
	if s == "" {
		return []byte{}, nil
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}

// parseDecUint parses a plain base-10 size field (as EXTCODESIZE's
// state-map entries use) into a uint64, defaulting to zero on any
// malformed input rather than erroring the whole frame.
func parseDecUint(s string) uint64 {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
