// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package bitio

import (
	"math/bits"

	"github.com/pkg/errors"
)

var (
	ErrInvalidMax = errors.New("minimal binary upper bound must be at least 1")
	ErrOutOfRange = errors.New("value is not below the minimal binary upper bound")
)

// minimalBinary returns the short code length l and the number of values
// coded with l bits. The remaining values take l+1 bits.
func minimalBinary(max uint64) (uint8, uint64) {
	l := uint8(bits.Len64(max) - 1)
	// wraps correctly when l == 63
	limit := (uint64(1) << (l + 1)) - max
	return l, limit
}

// LenMinimalBinary returns the length in bits of the minimal binary code of n
// in [0, max). It panics if max is zero.
func LenMinimalBinary(n, max uint64) int {
	if max == 0 {
		panic(ErrInvalidMax)
	}

	l, limit := minimalBinary(max)
	if n < limit {
		return int(l)
	}
	return int(l) + 1
}

// WriteMinimalBinary writes n in [0, max) with the minimal binary (truncated
// binary) code and returns the number of bits written.
//
// Long codes are written as their high bits followed by their lowest bit, so a
// reader can always start by reading the short length.
func (w *Writer) WriteMinimalBinary(n, max uint64) (int, error) {
	if max == 0 {
		return 0, ErrInvalidMax
	}
	if n >= max {
		return 0, errors.Wrapf(ErrOutOfRange, "%d >= %d", n, max)
	}

	l, limit := minimalBinary(max)
	if n < limit {
		return w.WriteBits(l, n)
	}

	long := n + limit
	written, err := w.WriteBits(l, long>>1)
	if err != nil {
		return written, err
	}
	last, err := w.WriteBits(1, long&1)
	return written + last, err
}

// ReadMinimalBinary reads a value in [0, max) written with WriteMinimalBinary.
func (r *Reader) ReadMinimalBinary(max uint64) (uint64, error) {
	if max == 0 {
		return 0, ErrInvalidMax
	}

	l, limit := minimalBinary(max)
	prefix, err := r.ReadBits(l)
	if err != nil {
		return 0, err
	}
	if prefix < limit {
		return prefix, nil
	}

	last, err := r.ReadBits(1)
	if err != nil {
		return 0, err
	}
	return (prefix<<1 | last) - limit, nil
}
