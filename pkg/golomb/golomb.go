// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package golomb implements Golomb codes.
//
// Given a modulus b, the Golomb code of x is ⌊x / b⌋ in unary code followed by
// the minimal binary code of x mod b. For values following a geometric
// distribution with success probability p the optimal modulus is
// b = ⌈-ln(2 - p) / ln(1 - p)⌉, see B.
//
// The package only composes the two sub-codes. Any bit stream providing them
// gains Golomb support through Len, Write and Read; pkg/bitio provides one in
// both bit orders. The bit order is a property of the stream and applies to
// both sub-codes alike.
//
// References:
//
// S. Golomb, "Run-length encodings (Corresp.)", IEEE Transactions on
// Information Theory, vol. 12, no. 3, pp. 399-401, July 1966.
//
// R. Gallager and D. van Voorhis, "Optimal source codes for geometrically
// distributed integer alphabets (Corresp.)", IEEE Transactions on Information
// Theory, vol. 21, no. 2, pp. 228-230, March 1975.
package golomb

import (
	"math"

	"github.com/alvinbaena/golomb/pkg/bitio"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidModulus is returned for a modulus of zero.
	ErrInvalidModulus = errors.New("golomb modulus must be at least 1")
	// ErrInvalidParameter is returned for a geometric parameter outside (0, 1).
	ErrInvalidParameter = errors.New("geometric distribution parameter must be in (0, 1)")
	// ErrTooLong is returned for a code whose length in bits does not fit in
	// an int, see MaxQuotient.
	ErrTooLong = bitio.ErrTooLong
)

// MaxQuotient is the largest quotient x / b that can be coded. The unary part
// takes q + 1 bits and the minimal binary part at most 64.
const MaxQuotient = math.MaxInt - 65

type UnaryReader interface {
	ReadUnary() (uint64, error)
}

type UnaryWriter interface {
	WriteUnary(n uint64) (int, error)
}

type MinimalBinaryReader interface {
	ReadMinimalBinary(max uint64) (uint64, error)
}

type MinimalBinaryWriter interface {
	WriteMinimalBinary(n, max uint64) (int, error)
}

// Reader is a bit source able to read both sub-codes of a Golomb code.
type Reader interface {
	UnaryReader
	MinimalBinaryReader
}

// Writer is a bit sink able to write both sub-codes of a Golomb code.
type Writer interface {
	UnaryWriter
	MinimalBinaryWriter
}

// Check returns ErrInvalidModulus if b is zero and ErrTooLong if the code of x
// is too long to be counted in an int.
func Check(x, b uint64) error {
	if b == 0 {
		return ErrInvalidModulus
	}
	if x/b > MaxQuotient {
		return ErrTooLong
	}
	return nil
}

// Len returns the length in bits of the Golomb code of x with modulus b,
// without writing anything. It panics with the error of Check.
func Len(x, b uint64) int {
	if err := Check(x, b); err != nil {
		panic(err)
	}
	return bitio.LenUnary(x/b) + bitio.LenMinimalBinary(x%b, b)
}

// Write writes the Golomb code of x with modulus b and returns the number of
// bits written, which is Len(x, b).
//
// Errors of Check are returned before the sink is touched. Errors of the sink
// are returned unchanged together with the bits written before the failure.
// Nothing is undone.
func Write(w Writer, x, b uint64) (int, error) {
	if err := Check(x, b); err != nil {
		return 0, err
	}

	q, err := w.WriteUnary(x / b)
	if err != nil {
		return q, err
	}
	r, err := w.WriteMinimalBinary(x%b, b)
	return q + r, err
}

// Read reads a Golomb code with modulus b. Errors of the source are returned
// unchanged.
func Read(r Reader, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrInvalidModulus
	}

	q, err := r.ReadUnary()
	if err != nil {
		return 0, err
	}
	rem, err := r.ReadMinimalBinary(b)
	if err != nil {
		return 0, err
	}
	return q*b + rem, nil
}
