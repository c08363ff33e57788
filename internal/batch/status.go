// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package batch

import (
	"sync/atomic"
	"time"

	"github.com/alvinbaena/golomb/internal/util"
	"github.com/rs/zerolog/log"
)

type status struct {
	inputsDone  uint64
	inputsFail  uint64
	values      uint64
	bits        uint64
	start       time.Time
	ticker      *time.Ticker
	progress    chan bool
	totalInputs int
}

func newStatus(totalInputs int) *status {
	return &status{
		start:       time.Now(),
		ticker:      time.NewTicker(10 * time.Second),
		progress:    make(chan bool),
		totalInputs: totalInputs,
	}
}

// BeginProgress reports the progress every 10 seconds until Done.
func (s *status) BeginProgress() {
	go func() {
		for {
			select {
			case <-s.progress:
				return
			case <-s.ticker.C:
				done := atomic.LoadUint64(&s.inputsDone) + atomic.LoadUint64(&s.inputsFail)
				log.Info().Msgf("%.2f%% inputs encoded. %.0f values/s",
					float64(done)*100/float64(s.totalInputs), s.valuesPerSecond())
			}
		}
	}()
}

func (s *status) InputEncoded(values, bits uint64) {
	atomic.AddUint64(&s.inputsDone, 1)
	atomic.AddUint64(&s.values, values)
	atomic.AddUint64(&s.bits, bits)
}

func (s *status) InputFailed() {
	atomic.AddUint64(&s.inputsFail, 1)
}

func (s *status) valuesPerSecond() float64 {
	values := float64(atomic.LoadUint64(&s.values))
	if elapsed := time.Since(s.start); elapsed > 0 {
		return values / elapsed.Seconds()
	}
	return values
}

func (s *status) Done() {
	s.ticker.Stop()
	s.progress <- true

	values := atomic.LoadUint64(&s.values)
	bits := atomic.LoadUint64(&s.bits)
	log.Info().Msgf("encoded %d of %d inputs in %v. %.0f values/s",
		s.inputsDone, s.totalInputs, time.Since(s.start), s.valuesPerSecond())
	if values > 0 {
		log.Info().Msgf("%s values in %s bits, %.3f bits per value",
			util.HumanCount(values), util.HumanCount(bits), float64(bits)/float64(values))
	}
	if s.inputsFail > 0 {
		log.Warn().Msgf("%d inputs failed", s.inputsFail)
	}
}
