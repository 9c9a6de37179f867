package util

import (
	"fmt"
	"io/ioutil"

	"golang.org/x/crypto/sha3"
)

type comparable interface {
	int | int8 | int16 | int32 | int64 |
		uint | uint8 | uint16 | uint32 | uint64 |
		float32 | float64
}

func Max[T comparable](x, y T) T {
	if x > y {
		return x
	}
	return y
}

func Min[T comparable](x, y T) T {
	if x < y {
		return x
	}
	return y
}

func CloneSlice[T any](s []T) []T {
	return append(s[:0:0], s...)
}

func HexEnc(data []byte) string {
	return fmt.Sprintf("%x", data)
}

func FileWrite(fn string, data []byte) error {
	return ioutil.WriteFile(fn, data, 0666)
}
func FileWriteStr(fn string, data string) error {
	return FileWrite(fn, []byte(data))
}

func Sha3(bs []byte) []byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write(bs)
	return hash.Sum(nil)
}
