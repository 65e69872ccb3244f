package wordorder

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/mbkit/mbshm/pkg/types"
)

// Devices configured big-endian store string bytes with each adjacent pair
// transposed; a trailing odd byte stays in place.

// SwapPairs transposes each adjacent byte pair of b in place.
func SwapPairs(b []byte) {
	for i := 0; i+1 < len(b); i += 2 {
		b[i], b[i+1] = b[i+1], b[i]
	}
}

// PairSwapper is a transform.Transformer that transposes adjacent byte
// pairs, passing a trailing odd byte through unchanged.
type PairSwapper struct{}

// Transform implements transform.Transformer.
func (PairSwapper) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc+1 < len(src) {
		if nDst+1 >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst], dst[nDst+1] = src[nSrc+1], src[nSrc]
		nDst += 2
		nSrc += 2
	}
	if nSrc == len(src) {
		return nDst, nSrc, nil
	}
	// one byte left over
	if !atEOF {
		return nDst, nSrc, transform.ErrShortSrc
	}
	if nDst == len(dst) {
		return nDst, nSrc, transform.ErrShortDst
	}
	dst[nDst] = src[nSrc]
	return nDst + 1, nSrc + 1, nil
}

// Reset implements transform.Transformer.
func (PairSwapper) Reset() {}

// DecodeString converts stored string bytes into canonical UTF-8 text,
// undoing the pair swap for big-endian devices and validating the result.
func DecodeString(b []byte, bo types.ByteOrder) (string, error) {
	var t transform.Transformer = encoding.UTF8Validator
	if bo == types.BigEndian {
		t = transform.Chain(PairSwapper{}, encoding.UTF8Validator)
	}
	out, _, err := transform.Bytes(t, b)
	if err != nil {
		return "", fmt.Errorf("wordorder: decode string: %w", err)
	}
	return string(out), nil
}

// EncodeString converts s into the stored byte form for the given byte order.
func EncodeString(s string, bo types.ByteOrder) []byte {
	b := []byte(s)
	if bo == types.BigEndian {
		SwapPairs(b)
	}
	return b
}
