package lzw

import "errors"

var (
	// ErrIncorrectSrcValue is returned when the leading size byte does not
	// divide the remaining stream evenly, or names a width outside 1..4.
	ErrIncorrectSrcValue = errors.New("lzw: source stream has an invalid code width or length")

	// ErrDecompressCode is returned when a decoded code refers past the
	// dictionary as it stood at that point in the stream.
	ErrDecompressCode = errors.New("lzw: encountered a code beyond the current dictionary size")
)
