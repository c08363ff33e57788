// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package gcs builds and queries Golomb Coded Sets: a sorted set of hashes
// normalised to [0, N·P) stored as Golomb coded deltas with modulus P, plus a
// sparse index of bit positions for seeking.
//
// https://giovanni.bajo.it/post/47119962313/golomb-coded-sets-smaller-than-bloom-filters
// https://github.com/Freaky/gcstool
package gcs

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"os"
	"strconv"
	"strings"

	"github.com/dchest/siphash"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	gcsMagic   = "[GCS:v1]"
	footerSize = 5 * 8
)

var (
	ErrNotGCS       = errors.New("not a GCS file")
	ErrInvalidHash  = errors.New("input is not a valid hexadecimal hash")
	ErrTooManyItems = errors.New("items times probability overflows 64 bits")
)

// Keys for HashSip. Changing them invalidates every set built with HashSip.
const (
	sipK0 = 0x676f6c6f6d622d67
	sipK1 = 0x63732d6b65792d31
)

type HashMode uint8

const (
	// HashHex takes the first 16 hexadecimal characters of the input, as in
	// SHA1 hash dumps.
	HashHex HashMode = iota
	// HashSip hashes the whole input with SipHash-2-4.
	HashSip
)

func (m HashMode) String() string {
	switch m {
	case HashHex:
		return "hex"
	case HashSip:
		return "sip"
	}
	return "unknown"
}

func ParseHashMode(s string) (HashMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hex":
		return HashHex, nil
	case "sip", "siphash":
		return HashSip, nil
	}
	return 0, fmt.Errorf("unknown hash mode %q, use one of: hex, sip", s)
}

// Hash turns an input line into the 64-bit key stored in the set.
func Hash(line []byte, mode HashMode) (uint64, error) {
	switch mode {
	case HashHex:
		if len(line) < 16 {
			return 0, ErrInvalidHash
		}
		return U64FromHex(line[0:16])
	case HashSip:
		return siphash.Hash(sipK0, sipK1, line), nil
	}
	return 0, fmt.Errorf("unknown hash mode %d", mode)
}

func U64FromHex(src []byte) (uint64, error) {
	v, err := strconv.ParseUint(string(src), 16, 64)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidHash, err.Error())
	}
	return v, nil
}

type indexPair struct {
	value  uint64
	bitPos uint64
}

// normalisation range of a set, N·P
func setRange(num, probability uint64) (uint64, error) {
	hi, lo := bits.Mul64(num, probability)
	if hi != 0 {
		return 0, ErrTooManyItems
	}
	return lo, nil
}

func estimateFileLines(f *os.File) uint64 {
	// 16MiB
	const EstimateLimit = 1024 * 1024 * 16

	info, err := f.Stat()
	if err != nil {
		log.Warn().Err(err).Msg("error estimating lines of file")
		return 0
	}

	size := info.Size()
	if size == 0 {
		return 0
	}
	sampleSize := size
	if sampleSize > EstimateLimit {
		sampleSize = EstimateLimit
	}

	buffer := make([]byte, sampleSize)
	n, err := f.ReadAt(buffer, 0)
	if err != nil && n == 0 {
		log.Warn().Err(err).Msg("error estimating lines of file")
		return 0
	}

	sample := uint64(0)
	for _, b := range buffer[:n] {
		if b == '\n' {
			sample++
		}
	}

	return sample * uint64(size) / uint64(n)
}

func toFixedBytes(content uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, content)
	return buf
}

func dedup(slice []uint64) []uint64 {
	if len(slice) < 2 {
		return slice
	}

	var e = 1
	for i := 1; i < len(slice); i++ {
		if slice[i] == slice[i-1] {
			continue
		}
		slice[e] = slice[i]
		e++
	}

	return slice[:e]
}

// floorSearch returns the position of the last index pair whose value is not
// greater than value. The index always starts with the (0, 0) pair.
func floorSearch(index []indexPair, value uint64) int {
	start := 0
	end := len(index) - 1
	for start < end {
		mid := start + (end-start+1)/2
		if index[mid].value <= value {
			start = mid
		} else {
			end = mid - 1
		}
	}

	return start
}
