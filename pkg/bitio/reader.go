// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package bitio

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

var (
	ErrNotSeekable = errors.New("underlying reader does not implement io.Seeker")
	ErrBadSeek     = errors.New("seek to a negative bit position")
)

// Reader adds bit-level reading to any io.Reader.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	src     io.Reader
	inner   io.ByteReader
	wrapper *bufio.Reader // wrapper bufio.Reader if the source does not implement io.ByteReader
	order   Endianness
	buffer  uint8  // unread bits, kept in the low 'cached' bits
	cached  uint8  // number of unread bits in buffer
	read    uint64 // bit position of the next read
}

func NewReader(in io.Reader, order Endianness) *Reader {
	r := &Reader{src: in, order: order}
	var ok bool
	r.inner, ok = in.(io.ByteReader)
	if !ok {
		r.wrapper = bufio.NewReader(in)
		r.inner = r.wrapper
	}
	return r
}

// Order returns the bit order of the stream.
func (r *Reader) Order() Endianness {
	return r.order
}

// Position returns the bit position of the next read, relative to where the
// reader started or last seeked to.
func (r *Reader) Position() uint64 {
	return r.read
}

// Reset the internal state of the Reader. The next read will load fresh
// data from the current position of the underlying reader and start from
// the beginning of the first byte returned.
func (r *Reader) Reset() {
	r.buffer = 0
	r.cached = 0
}

// ReadBit reads a single bit.
func (r *Reader) ReadBit() (uint8, error) {
	bit, err := r.ReadBits(1)
	return uint8(bit), err
}

// ReadBits reads up to 64 bits. Hitting the end of the data before the first
// bit returns io.EOF, after it io.ErrUnexpectedEOF.
func (r *Reader) ReadBits(n uint8) (uint64, error) {
	if n > 64 {
		return 0, ErrTooManyBits
	}

	ret := uint64(0)
	got := uint8(0)
	for got < n {
		if r.cached == 0 {
			if err := r.fill(got > 0); err != nil {
				return 0, err
			}
		}

		take := n - got
		if take > r.cached {
			take = r.cached
		}

		if r.order == LittleEndian {
			ret |= uint64(r.buffer&uint8(mask(uint64(take)))) << got
		} else {
			ret = ret<<take | uint64(r.buffer>>(r.cached-take))
		}
		r.consume(take)
		got += take
	}

	return ret, nil
}

// fill loads the next byte into the empty buffer.
func (r *Reader) fill(partial bool) error {
	b, err := r.inner.ReadByte()
	if err != nil {
		if partial && err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}

	r.buffer, r.cached = b, 8
	return nil
}

// consume drops the next n cached bits.
func (r *Reader) consume(n uint8) {
	r.cached -= n
	if r.order == LittleEndian {
		r.buffer >>= n
	} else {
		r.buffer &= uint8(mask(uint64(r.cached)))
	}
	r.read += uint64(n)
}

// Seek to the given *bit* position. Seeking requires the underlying reader to
// implement io.Seeker. Returns the new bit position.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	seeker, ok := r.src.(io.Seeker)
	if !ok {
		return 0, ErrNotSeekable
	}

	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = int64(r.read) + offset
	case io.SeekEnd:
		end, err := seeker.Seek(0, io.SeekEnd)
		if err != nil {
			return 0, err
		}
		target = end*8 + offset
	default:
		return 0, errors.Errorf("invalid whence %d", whence)
	}
	if target < 0 {
		return 0, ErrBadSeek
	}

	r.Reset()
	if _, err := seeker.Seek(target/8, io.SeekStart); err != nil {
		return 0, err
	}
	if r.wrapper != nil {
		r.wrapper.Reset(r.src)
	}

	r.read = uint64(target - target%8)
	if _, err := r.ReadBits(uint8(target % 8)); err != nil {
		return 0, err
	}

	return target, nil
}
