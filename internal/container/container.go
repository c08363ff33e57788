// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package container frames a sequence of Golomb codes with the header needed
// to read them back: bit order, modulus, value count and payload length.
//
//	magic   8 bytes  "[GLB:v1]"
//	order   1 byte   0 = be, 1 = le
//	modulus 8 bytes  big endian
//	count   8 bytes  big endian
//	bits    8 bytes  big endian, payload length without padding
//	payload count Golomb codes, zero padded to a byte
package container

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"math/bits"

	"github.com/alvinbaena/golomb/pkg/bitio"
	"github.com/alvinbaena/golomb/pkg/golomb"
	"github.com/pkg/errors"
)

const (
	magic      = "[GLB:v1]"
	HeaderSize = len(magic) + 1 + 3*8
)

var (
	ErrBadMagic = errors.New("not a golomb container")
	ErrBadOrder = errors.New("unknown bit order in container header")
)

type Header struct {
	Order   bitio.Endianness
	Modulus uint64
	Count   uint64
	Bits    uint64
}

type Stats struct {
	Bits  uint64
	Bytes uint64
	// BitsPerValue is zero for an empty container.
	BitsPerValue float64
}

// EncodedLen returns the payload length in bits of values coded with modulus b.
// It fails with the error of golomb.Check, or with golomb.ErrTooLong if the
// total overflows.
func EncodedLen(values []uint64, b uint64) (uint64, error) {
	total := uint64(0)
	for i, v := range values {
		if err := golomb.Check(v, b); err != nil {
			return 0, errors.Wrapf(err, "value %d", i)
		}

		var carry uint64
		total, carry = bits.Add64(total, uint64(golomb.Len(v, b)), 0)
		if carry != 0 {
			return 0, errors.Wrapf(golomb.ErrTooLong, "payload length overflows at value %d", i)
		}
	}
	return total, nil
}

// SuggestModulus estimates the success probability of a geometric
// distribution from the sample mean, p = 1 / (1 + mean), and returns the
// optimal modulus for it. An empty or all zero sample gets a modulus of 1.
func SuggestModulus(values []uint64) uint64 {
	if len(values) == 0 {
		return 1
	}

	sum := 0.0
	for _, v := range values {
		sum += float64(v)
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return 1
	}

	b, err := golomb.B(1 / (1 + mean))
	if err != nil {
		// mean too large for a finite modulus
		return math.MaxUint64
	}
	return b
}

// Encode writes the header and the Golomb codes of values with modulus b.
func Encode(w io.Writer, order bitio.Endianness, b uint64, values []uint64) (Stats, error) {
	if !order.Valid() {
		return Stats{}, ErrBadOrder
	}
	if b == 0 {
		return Stats{}, golomb.ErrInvalidModulus
	}

	total, err := EncodedLen(values, b)
	if err != nil {
		return Stats{}, err
	}

	header := make([]byte, 0, HeaderSize)
	header = append(header, magic...)
	header = append(header, byte(order))
	header = binary.BigEndian.AppendUint64(header, b)
	header = binary.BigEndian.AppendUint64(header, uint64(len(values)))
	header = binary.BigEndian.AppendUint64(header, total)

	buffered := bufio.NewWriter(w)
	if _, err := buffered.Write(header); err != nil {
		return Stats{}, errors.Wrap(err, "error writing container header")
	}

	writer := bitio.NewWriter(buffered, order)
	for i, v := range values {
		wr, err := golomb.Write(writer, v, b)
		if err != nil {
			return Stats{}, errors.Wrapf(err, "error writing value %d", i)
		}
		if wr != golomb.Len(v, b) {
			return Stats{}, errors.Errorf("value %d took %d bits, expected %d", i, wr, golomb.Len(v, b))
		}
	}
	if _, err := writer.Flush(); err != nil {
		return Stats{}, errors.Wrap(err, "error flushing container payload")
	}
	if err := buffered.Flush(); err != nil {
		return Stats{}, errors.Wrap(err, "error flushing container payload")
	}

	stats := Stats{Bits: total, Bytes: uint64(HeaderSize) + (total+7)/8}
	if len(values) > 0 {
		stats.BitsPerValue = float64(total) / float64(len(values))
	}
	return stats, nil
}

// ReadHeader reads and validates a container header.
func ReadHeader(r io.Reader) (Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return Header{}, errors.Wrap(ErrBadMagic, "header is too short")
		}
		return Header{}, errors.Wrap(err, "error reading container header")
	}

	if string(buf[:len(magic)]) != magic {
		return Header{}, ErrBadMagic
	}

	h := Header{
		Order:   bitio.Endianness(buf[len(magic)]),
		Modulus: binary.BigEndian.Uint64(buf[len(magic)+1:]),
		Count:   binary.BigEndian.Uint64(buf[len(magic)+9:]),
		Bits:    binary.BigEndian.Uint64(buf[len(magic)+17:]),
	}
	if !h.Order.Valid() {
		return Header{}, errors.Wrapf(ErrBadOrder, "order byte %d", buf[len(magic)])
	}
	if h.Modulus == 0 {
		return Header{}, golomb.ErrInvalidModulus
	}
	return h, nil
}

// Decode reads a container written by Encode.
func Decode(r io.Reader) (Header, []uint64, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return Header{}, nil, err
	}

	// every code takes at least one bit
	if h.Count > h.Bits {
		return h, nil, errors.Errorf("container declares %d values in %d bits", h.Count, h.Bits)
	}

	reader := bitio.NewReader(r, h.Order)
	// the header is untrusted, grow past the first chunk as values arrive
	values := make([]uint64, 0, min(h.Count, 1<<16))
	for i := uint64(0); i < h.Count; i++ {
		v, err := golomb.Read(reader, h.Modulus)
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return h, values, errors.Wrapf(err, "error reading value %d of %d", i, h.Count)
		}
		values = append(values, v)
	}

	if reader.Position() != h.Bits {
		return h, values, errors.Errorf("payload is %d bits, header declares %d", reader.Position(), h.Bits)
	}
	return h, values, nil
}
