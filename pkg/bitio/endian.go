// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package bitio

import (
	"strings"

	"github.com/pkg/errors"
)

// Endianness is the order in which the bits of a value are laid out in the stream.
type Endianness uint8

const (
	// BigEndian writes the most significant bit first, filling each byte from its high bit.
	BigEndian Endianness = iota
	// LittleEndian writes the least significant bit first, filling each byte from its low bit.
	LittleEndian
)

var ErrBadEndianness = errors.New("unknown bit order, use one of: be, le")

func (e Endianness) String() string {
	switch e {
	case BigEndian:
		return "be"
	case LittleEndian:
		return "le"
	default:
		return "unknown"
	}
}

// Valid reports whether e is one of the supported bit orders.
func (e Endianness) Valid() bool {
	return e == BigEndian || e == LittleEndian
}

// ParseEndianness accepts "be"/"le" and the long forms "big"/"little", case-insensitive.
func ParseEndianness(s string) (Endianness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "be", "big", "bigendian", "big-endian":
		return BigEndian, nil
	case "le", "little", "littleendian", "little-endian":
		return LittleEndian, nil
	default:
		return 0, errors.Wrapf(ErrBadEndianness, "got %q", s)
	}
}

func mask(n uint64) uint64 {
	return (1 << n) - 1
}
