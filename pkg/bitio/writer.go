// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package bitio

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

var ErrTooManyBits = errors.New("cannot transfer more than 64 bits at a time")

// An io.Writer and io.ByteWriter at the same time.
type writerAndByteWriter interface {
	io.Writer
	io.ByteWriter
}

// Writer adds bit-level writing to any io.Writer.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	inner   writerAndByteWriter
	wrapper *bufio.Writer // wrapper bufio.Writer if the target does not implement io.ByteWriter
	order   Endianness
	buffer  uint8  // unwritten bits are stored here
	cached  uint8  // number of unwritten bits in buffer, always < 8
	written uint64 // bits accepted so far, padding included
}

func NewWriter(out io.Writer, order Endianness) *Writer {
	w := &Writer{order: order}
	var ok bool
	w.inner, ok = out.(writerAndByteWriter)
	if !ok {
		w.wrapper = bufio.NewWriter(out)
		w.inner = w.wrapper
	}
	return w
}

// Order returns the bit order of the stream.
func (w *Writer) Order() Endianness {
	return w.order
}

// Written returns the number of bits written, including flush padding.
func (w *Writer) Written() uint64 {
	return w.written
}

// WriteBit writes a single bit, any non-zero value is a one.
func (w *Writer) WriteBit(bit uint8) (int, error) {
	if bit > 0 {
		bit = 1
	}
	return w.WriteBits(1, uint64(bit))
}

// WriteBits writes the n lowest bits of v. Bits of v at position n or higher are ignored.
func (w *Writer) WriteBits(n uint8, v uint64) (int, error) {
	if n > 64 {
		return 0, ErrTooManyBits
	}

	var err error
	if w.order == LittleEndian {
		err = w.writeBitsLE(n, v&mask(uint64(n)))
	} else {
		err = w.writeBitsBE(n, v&mask(uint64(n)))
	}
	if err != nil {
		return 0, err
	}

	w.written += uint64(n)
	return int(n), nil
}

// writeBitsBE writes the 'n' lowest bits of r, most significant first.
//
// r must not have bits set at n or higher positions (zero indexed).
func (w *Writer) writeBitsBE(n uint8, r uint64) error {
	newBits := w.cached + n
	if newBits < 8 {
		// r fits into buffer, no write will occur
		w.buffer |= byte(r) << (8 - newBits)
		w.cached = newBits
		return nil
	}
	if newBits > 8 {
		// "Fill buffer" and write it, then the whole bytes, then keep the rest
		free := 8 - w.cached
		if err := w.inner.WriteByte(w.buffer | uint8(r>>(n-free))); err != nil {
			return err
		}
		n -= free

		for n >= 8 {
			n -= 8
			// No need to mask r, converting to byte will mask higher bits
			if err := w.inner.WriteByte(uint8(r >> n)); err != nil {
				return err
			}
		}
		if n > 0 {
			// Note: n < 8 (in case of n=8, 1<<n would overflow byte)
			w.buffer, w.cached = (uint8(r)&((1<<n)-1))<<(8-n), n
		} else {
			w.buffer, w.cached = 0, 0
		}
		return nil
	}

	// buffer will be filled exactly with the bits to be written
	bb := w.buffer | uint8(r)
	w.buffer, w.cached = 0, 0
	return w.inner.WriteByte(bb)
}

// writeBitsLE writes the 'n' lowest bits of r, least significant first. Each byte
// is filled from its lowest bit.
func (w *Writer) writeBitsLE(n uint8, r uint64) error {
	for n > 0 {
		take := 8 - w.cached
		if take > n {
			take = n
		}

		w.buffer |= uint8(r&mask(uint64(take))) << w.cached
		w.cached += take
		r >>= take
		n -= take

		if w.cached == 8 {
			if err := w.inner.WriteByte(w.buffer); err != nil {
				return err
			}
			w.buffer, w.cached = 0, 0
		}
	}
	return nil
}

// FlushBits aligns the bit stream to a byte boundary,
// so next write will start/go into a new byte.
// If there are cached bits, they are first written to the output.
// Returns the number of skipped (unset but still written) bits.
func (w *Writer) FlushBits() (skipped uint64, err error) {
	if w.cached > 0 {
		if err = w.inner.WriteByte(w.buffer); err != nil {
			return 0, err
		}

		skipped = uint64(8 - w.cached)
		w.written += skipped
		w.buffer, w.cached = 0, 0
	}
	if w.wrapper != nil {
		err = w.wrapper.Flush()
	}
	return
}

// Flush any pending writes to the underlying writer, padding with zero bits
// up to the nearest byte if necessary, and returning the number of padding
// bits written. The sum of the bits reported by the writes and by Flush
// will be the total number of bits delivered, and will always end on a
// byte boundary.
func (w *Writer) Flush() (uint64, error) {
	return w.FlushBits()
}
