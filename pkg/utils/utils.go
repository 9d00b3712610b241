package utils

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ByteOrder is the byte order of every multi-byte field EMELF stores.
var ByteOrder binary.ByteOrder = binary.BigEndian

func Read[T any](r io.Reader) (val T, err error) {
	err = binary.Read(r, ByteOrder, &val)
	return val, err
}

func ReadSlice[T any](r io.Reader, n int) ([]T, error) {
	vals := make([]T, n)
	if n == 0 {
		return vals, nil
	}
	if err := binary.Read(r, ByteOrder, vals); err != nil {
		return nil, err
	}
	return vals, nil
}

func Write[T any](w io.Writer, val T) error {
	return binary.Write(w, ByteOrder, val)
}

// Assert panics when an internal invariant is broken. Input errors are
// returned, never asserted.
func Assert(condition bool, format string, args ...any) {
	if !condition {
		panic(fmt.Sprintf("assert failed: "+format, args...))
	}
}
