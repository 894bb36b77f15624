// Package lzw implements a self-describing LZW byte-stream compressor: the
// encoded dictionary codes are packed into a variable width derived from
// how large the dictionary grew, with a leading size byte, and the
// encoder falls back to returning the input verbatim when packing would
// make it longer.
package lzw

import (
	"encoding/binary"
	"math/bits"
)

// Codec compresses and decompresses byte streams with the dictionary
// seeded to the 256 single-byte strings. A Codec's zero value is ready
// to use — it carries no mutable state of its own.
type Codec struct{}

// New returns a ready-to-use LZW codec.
func New() *Codec {
	return &Codec{}
}

// Compress LZW-encodes src. An empty input compresses to empty output.
// If the packed code stream would be longer than src, Compress
// returns src verbatim (the identity fallback); the caller distinguishes
// the two cases out of band (the archive format's compressed flag).
func (c *Codec) Compress(src []byte) []byte {
	if len(src) == 0 {
		return nil
	}

	dict := make(map[string]uint32, 512)
	for i := 0; i < 256; i++ {
		dict[string([]byte{byte(i)})] = uint32(i)
	}

	codes := make([]uint32, 0, len(src))
	var key []byte

	for _, symbol := range src {
		word := append(append([]byte(nil), key...), symbol)
		if _, ok := dict[string(word)]; !ok {
			if code, ok := dict[string(key)]; ok {
				codes = append(codes, code)
			}
			dict[string(word)] = uint32(len(dict))
			key = []byte{symbol}
		} else {
			key = word
		}
	}
	if len(key) > 0 {
		if code, ok := dict[string(key)]; ok {
			codes = append(codes, code)
		}
	}

	size := codeWidth(len(dict))
	resultLen := 1 + len(codes)*size
	if resultLen > len(src) {
		return src
	}

	out := make([]byte, resultLen)
	out[0] = byte(size)
	var tmp [4]byte
	for i, code := range codes {
		binary.LittleEndian.PutUint32(tmp[:], code)
		copy(out[1+i*size:1+(i+1)*size], tmp[:size])
	}
	return out
}

// Decompress reverses Compress's packed-code form. It does not itself
// detect the identity-fallback case — callers must know from the
// archive's compressed flag whether the bytes are an LZW stream at all.
func (c *Codec) Decompress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}

	size := int(src[0])
	if size == 0 || size > 4 || (len(src)-1)%size != 0 {
		return nil, ErrIncorrectSrcValue
	}

	dict := make([][]byte, 256)
	for i := range dict {
		dict[i] = []byte{byte(i)}
	}

	body := src[1:]
	numCodes := len(body) / size
	codes := make([]uint32, numCodes)
	var tmp [4]byte
	for i := 0; i < numCodes; i++ {
		tmp = [4]byte{}
		copy(tmp[:], body[i*size:(i+1)*size])
		codes[i] = binary.LittleEndian.Uint32(tmp[:])
	}

	if int(codes[0]) >= len(dict) {
		return nil, ErrDecompressCode
	}
	prev := dict[codes[0]]
	result := append([]byte(nil), prev...)

	for _, code := range codes[1:] {
		var entry []byte
		switch {
		case int(code) < len(dict):
			entry = dict[code]
		case int(code) == len(dict):
			entry = append(append([]byte(nil), prev...), prev[0])
		default:
			return nil, ErrDecompressCode
		}

		result = append(result, entry...)

		newEntry := append(append([]byte(nil), prev...), entry[0])
		dict = append(dict, newEntry)
		prev = entry
	}

	return result, nil
}

// codeWidth computes how many bytes are needed to hold a code for a
// dictionary of the given size: ceil(ceil(log2(dictSize))/8).
func codeWidth(dictSize int) int {
	pow := bits.Len(uint(dictSize - 1))
	size := (pow + 7) / 8
	if size == 0 {
		size = 1
	}
	return size
}
