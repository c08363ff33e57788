// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package bitio

import (
	"math"
	"math/bits"

	"github.com/pkg/errors"
)

// MaxUnary is the largest n whose unary code length fits in an int.
const MaxUnary = math.MaxInt - 1

var ErrTooLong = errors.New("code length does not fit in an int")

// LenUnary returns the length in bits of the unary code of n. It panics with
// ErrTooLong if n > MaxUnary.
func LenUnary(n uint64) int {
	if n > MaxUnary {
		panic(ErrTooLong)
	}
	return int(n) + 1
}

// WriteUnary writes n zero bits followed by a one bit and returns the number
// of bits written.
func (w *Writer) WriteUnary(n uint64) (int, error) {
	if n > MaxUnary {
		return 0, ErrTooLong
	}

	written := 0
	for n >= 64 {
		wr, err := w.WriteBits(64, 0)
		written += wr
		if err != nil {
			return written, err
		}
		n -= 64
	}

	// the terminating one is the last bit to go out in both orders
	terminated := uint64(1)
	if w.order == LittleEndian {
		terminated <<= n
	}

	wr, err := w.WriteBits(uint8(n+1), terminated)
	return written + wr, err
}

// ReadUnary counts the zero bits before the next one bit.
func (r *Reader) ReadUnary() (uint64, error) {
	n := uint64(0)
	for {
		if r.cached == 0 {
			if err := r.fill(n > 0); err != nil {
				return 0, err
			}
		}

		// Skip whole runs of zeros without looking at single bits.
		if r.buffer == 0 {
			n += uint64(r.cached)
			r.consume(r.cached)
			continue
		}

		var zeros uint8
		if r.order == LittleEndian {
			zeros = uint8(bits.TrailingZeros8(r.buffer))
		} else {
			zeros = r.cached - uint8(bits.Len8(r.buffer))
		}
		r.consume(zeros + 1)

		return n + uint64(zeros), nil
	}
}
