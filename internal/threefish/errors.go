package threefish

import "errors"

// Construction and per-block validation errors, named after the
// invariant they guard rather than wrapped in a generic struct — there
// is no extra context to carry beyond which precondition failed.
var (
	ErrInvalidKeyLength        = errors.New("threefish: key must be 32 bytes")
	ErrInvalidTweakLength      = errors.New("threefish: tweak must be 16 bytes")
	ErrInvalidPlaintextLength  = errors.New("threefish: plaintext block must be exactly 32 bytes")
	ErrInvalidCiphertextLength = errors.New("threefish: ciphertext block must be exactly 32 bytes")
)
