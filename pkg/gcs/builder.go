// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package gcs

import (
	"bufio"
	"io"
	"math/bits"
	"os"
	"sync"

	"github.com/alvinbaena/golomb/internal/util"
	"github.com/alvinbaena/golomb/pkg/bitio"
	"github.com/alvinbaena/golomb/pkg/golomb"
	"github.com/jfcg/sorty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Builder struct {
	in               *os.File
	out              io.Writer
	num              uint64
	probability      uint64
	indexGranularity uint64
	mode             HashMode
	values           []uint64
	stat             *status
}

// NewBuilder builder for a new GCS file.
//
// probability is the false positive rate for queries, 1-in-p, and the Golomb
// modulus of the deltas. indexGranularity is the entries per index point (16
// bytes each), zero disables the index.
func NewBuilder(in *os.File, out io.Writer, probability uint64, indexGranularity uint64, mode HashMode) *Builder {
	estimatedLines := estimateFileLines(in)

	return &Builder{
		in:               in,
		out:              out,
		num:              estimatedLines,
		probability:      probability,
		indexGranularity: indexGranularity,
		mode:             mode,
		values:           make([]uint64, 0, estimatedLines),
	}
}

// EstimateSize is the expected size in bytes of the GCS file built from in.
// Deltas of a set with rate 1-in-p average about log2(p) + 2 bits.
func EstimateSize(in *os.File, probability uint64, indexGranularity uint64) uint64 {
	num := estimateFileLines(in)
	size := num*uint64(bits.Len64(probability)+2)/8 + footerSize
	if indexGranularity > 0 {
		size += num / indexGranularity * 16
	}
	return size
}

// Process reads every line of the input and writes the GCS file.
// Concurrent file read inspired by https://marcellanz.com/post/file-read-challenge/
func (b *Builder) Process() error {
	if b.probability == 0 {
		return golomb.ErrInvalidModulus
	}

	// Stop the process if not enough ram to actually hold all the entries read.
	if err := util.CheckRam(b.num); err != nil {
		return err
	}

	s := util.Stats()
	defer s()

	b.stat = newStatus()
	log.Info().Msgf("starting process for about %s lines", util.HumanCount(b.num))

	scanner := bufio.NewScanner(b.in)

	// Pool to store the read lines from the file, in 64k line chunks
	linesChunkLen := 64 * 1024
	linesPool := sync.Pool{New: func() interface{} {
		return make([]string, 0, linesChunkLen)
	}}
	lines := linesPool.Get().([]string)[:0]

	recordsPool := sync.Pool{New: func() interface{} {
		return make([]uint64, 0, linesChunkLen)
	}}

	// Mutex needed to avoid resource contention between the goroutines
	mutex := &sync.Mutex{}
	wg := sync.WaitGroup{}
	skipped := uint64(0)

	b.stat.StageWork("Read", b.num)
	willScan := scanner.Scan()
	for willScan {
		lines = append(lines, scanner.Text())
		willScan = scanner.Scan()

		if len(lines) == linesChunkLen || !willScan {
			linesToProcess := lines
			wg.Add(1)

			go func() {
				defer wg.Done()
				records := recordsPool.Get().([]uint64)[:0]
				invalid := uint64(0)

				for _, line := range linesToProcess {
					hash, err := Hash([]byte(line), b.mode)
					if err != nil {
						log.Trace().Err(err).Msgf("skipping line %s", line)
						invalid++
						continue
					}
					records = append(records, hash)
				}

				linesPool.Put(linesToProcess[:0])

				mutex.Lock()
				for _, hash := range records {
					b.stat.Incr()
					b.values = append(b.values, hash)
				}
				skipped += invalid
				mutex.Unlock()

				recordsPool.Put(records[:0])
			}()

			lines = linesPool.Get().([]string)[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "error reading input")
	}
	wg.Wait()

	if skipped > 0 {
		log.Warn().Msgf("skipped %s invalid lines", util.HumanCount(skipped))
	}

	if err := b.finalize(); err != nil {
		return err
	}

	b.stat.Done()
	return nil
}

func (b *Builder) finalize() error {
	// Adjust with the actual number of items, not the estimate
	b.num = uint64(len(b.values))
	log.Debug().Msgf("set will have %d items", b.num)

	np, err := setRange(b.num, b.probability)
	if err != nil {
		return err
	}

	b.stat.Stage("Normalise")
	if np > 0 {
		for i, v := range b.values {
			b.values[i] = v % np
		}
	}

	b.stat.Stage("Sort")
	sorty.SortSlice(b.values)

	b.stat.Stage("Deduplicate")
	b.values = dedup(b.values)

	var index []indexPair
	if b.indexGranularity > 0 {
		index = make([]indexPair, 0, b.num/b.indexGranularity)
	}
	writer := bitio.NewWriter(b.out, bitio.BigEndian)
	b.stat.StageWork("Encode", uint64(len(b.values)))

	// The first value is coded against zero, the rest against their
	// predecessor. Deduplication keeps every later delta positive.
	totalBits := uint64(0)
	last := uint64(0)
	for i, v := range b.values {
		wr, err := golomb.Write(writer, v-last, b.probability)
		if err != nil {
			return err
		}
		totalBits += uint64(wr)
		last = v

		if b.indexGranularity > 0 && i > 0 && uint64(i)%b.indexGranularity == 0 {
			index = append(index, indexPair{value: v, bitPos: totalBits})
		}

		b.stat.Incr()
	}

	// encode a delimiting zero
	wr, err := golomb.Write(writer, 0, b.probability)
	if err != nil {
		return err
	}
	totalBits += uint64(wr)

	padding, err := writer.Flush()
	if err != nil {
		return err
	}

	endOfData := (totalBits + padding) / 8
	log.Debug().Msgf("end of data: %d", endOfData)
	b.stat.Stage("Write Index")
	log.Debug().Msgf("index will have %d items", len(index))

	// Write the index: pairs of u64's (value, bit index)
	for _, pair := range index {
		if _, err = b.out.Write(toFixedBytes(pair.value)); err != nil {
			return err
		}
		if _, err = b.out.Write(toFixedBytes(pair.bitPos)); err != nil {
			return err
		}
	}

	// Write our footer
	// N, P, index position in bytes, index size in entries [magic]
	// 5*8=40 bytes
	for _, v := range []uint64{b.num, b.probability, endOfData, uint64(len(index))} {
		if _, err = b.out.Write(toFixedBytes(v)); err != nil {
			return err
		}
	}
	if _, err = b.out.Write([]byte(gcsMagic)); err != nil {
		return err
	}

	return nil
}
