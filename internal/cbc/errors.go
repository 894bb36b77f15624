package cbc

import "errors"

var (
	ErrInvalidIVLength         = errors.New("cbc: iv length must equal the block size")
	ErrInvalidCiphertextLength = errors.New("cbc: ciphertext length is not a multiple of the block size or is too short for its padding")
	ErrInvalidIVArePassed      = errors.New("cbc: ciphertext's leading block does not match the configured iv")
	ErrInvalidPaddingSize      = errors.New("cbc: decoded padding size exceeds the available ciphertext")
)
