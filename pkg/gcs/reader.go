// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package gcs

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/alvinbaena/golomb/internal/util"
	"github.com/alvinbaena/golomb/pkg/bitio"
	"github.com/alvinbaena/golomb/pkg/golomb"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Reader struct {
	fileName    string
	num         uint64
	probability uint64
	endOfData   uint64
	index       []indexPair
}

func NewReader(fileName string) *Reader {
	return &Reader{
		fileName: fileName,
		index:    make([]indexPair, 0),
	}
}

// Num is the number of items the set was built from, duplicates included.
func (r *Reader) Num() uint64 {
	return r.num
}

// Probability is the false positive rate, 1-in-p.
func (r *Reader) Probability() uint64 {
	return r.probability
}

// Initialize only loads the footer and index into memory. This does not load
// the whole file in RAM.
func (r *Reader) Initialize() error {
	file, err := os.Open(r.fileName)
	if err != nil {
		return err
	}

	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			log.Error().Err(err).Msg("error closing GCS file")
		}
	}(file)

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < footerSize {
		return errors.Wrapf(ErrNotGCS, "%s is too small", r.fileName)
	}

	// Reads the footer that the file should have. 40 bytes.
	footer := make([]byte, footerSize)
	if _, err = file.ReadAt(footer, info.Size()-footerSize); err != nil {
		return err
	}
	if string(footer[32:]) != gcsMagic {
		return ErrNotGCS
	}

	r.num = binary.BigEndian.Uint64(footer[0:])
	r.probability = binary.BigEndian.Uint64(footer[8:])
	r.endOfData = binary.BigEndian.Uint64(footer[16:])
	indexLen := binary.BigEndian.Uint64(footer[24:])
	log.Debug().Msgf("Number of items: %d, Probability: %d, End of Data: %d, Index Length: %d",
		r.num, r.probability, r.endOfData, indexLen)

	if r.probability == 0 {
		return errors.Wrap(ErrNotGCS, "zero probability")
	}
	if _, err = setRange(r.num, r.probability); err != nil {
		return errors.Wrap(ErrNotGCS, err.Error())
	}
	if indexLen > (uint64(info.Size())-footerSize)/16 || r.endOfData+indexLen*16+footerSize != uint64(info.Size()) {
		return errors.Wrap(ErrNotGCS, "inconsistent index size")
	}

	// slurp in the index.
	raw := make([]byte, indexLen*16)
	if _, err = file.ReadAt(raw, int64(r.endOfData)); err != nil {
		return err
	}

	r.index = make([]indexPair, 0, 1+indexLen)
	r.index = append(r.index, indexPair{0, 0})
	for i := uint64(0); i < indexLen; i++ {
		r.index = append(r.index, indexPair{
			value:  binary.BigEndian.Uint64(raw[i*16:]),
			bitPos: binary.BigEndian.Uint64(raw[i*16+8:]),
		})
	}

	log.Info().Msgf("Ready for queries on %s items with a 1 in %s false-positive rate.",
		util.HumanCount(r.num), util.HumanCount(r.probability))
	return nil
}

// Exists reports whether target is probably in the set. False positives
// happen at a rate of 1-in-p, false negatives never.
func (r *Reader) Exists(target uint64) (bool, error) {
	if r.probability == 0 {
		return false, errors.New("reader is not initialized")
	}
	if r.num == 0 {
		return false, nil
	}

	// A file handle per query. Sharing one needs locking around every seek,
	// which serialises concurrent queries.
	file, err := os.Open(r.fileName)
	if err != nil {
		return false, err
	}

	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			log.Error().Err(err).Msg("error closing GCS file")
		}
	}(file)

	h := target % (r.num * r.probability)

	pos := floorSearch(r.index, h)
	entry := r.index[pos]
	// The head pair is not a set member, every other index value is.
	if pos > 0 && entry.value == h {
		return true, nil
	}

	reader := bitio.NewReader(io.NewSectionReader(file, 0, int64(r.endOfData)), bitio.BigEndian)
	if _, err = reader.Seek(int64(entry.bitPos), io.SeekStart); err != nil {
		return false, err
	}

	// Decode forward from the closest index point. From the head the first
	// code is the first value itself and may be zero, anywhere else a zero
	// delta marks the end of the data.
	last := entry.value
	for first := pos == 0; first || last < h; first = false {
		diff, err := golomb.Read(reader, r.probability)
		if err != nil {
			return false, err
		}

		if diff == 0 && !first {
			break
		}
		last += diff
	}

	return last == h, nil
}
