// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package golomb

import "math/bits"

// Rice codes are Golomb codes whose modulus is a power of two, 2^k. The
// remainder then always takes exactly k bits.

// LenRice returns the length of the Rice code of x with parameter k. It panics
// with ErrInvalidModulus if k >= 64.
func LenRice(x uint64, k uint) int {
	if k >= 64 {
		panic(ErrInvalidModulus)
	}
	return Len(x, 1<<k)
}

// WriteRice writes the Rice code of x with parameter k.
func WriteRice(w Writer, x uint64, k uint) (int, error) {
	if k >= 64 {
		return 0, ErrInvalidModulus
	}
	return Write(w, x, 1<<k)
}

// ReadRice reads a Rice code with parameter k.
func ReadRice(r Reader, k uint) (uint64, error) {
	if k >= 64 {
		return 0, ErrInvalidModulus
	}
	return Read(r, 1<<k)
}

// RiceK returns ⌊log2 B(p)⌋, the Rice parameter closest below the optimal
// Golomb modulus for success probability p.
func RiceK(p float64) (uint, error) {
	b, err := B(p)
	if err != nil {
		return 0, err
	}
	return uint(bits.Len64(b) - 1), nil
}
