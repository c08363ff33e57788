// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package gcs

import (
	"time"

	"github.com/rs/zerolog/log"
)

// status logs the progress of the builder stages.
type status struct {
	stageName  string
	workCount  uint64
	doneCount  uint64
	step       uint64
	start      time.Time
	stageStart time.Time
}

func newStatus() *status {
	return &status{start: time.Now()}
}

func (s *status) Stage(stage string) {
	s.FinishStage()

	s.stageName = stage
	s.stageStart = time.Now()
	s.doneCount = 0
	s.workCount = 0
}

func (s *status) StageWork(name string, work uint64) {
	s.Stage(name)
	s.workCount = work
	s.step = work / 20
	if s.step == 0 {
		s.step = 1
	}
}

func (s *status) PrintStatus() {
	elapsed := time.Since(s.stageStart).Seconds()
	rate := float64(s.doneCount)
	if elapsed > 0 {
		rate /= elapsed
	}

	percent := 100.0
	if s.workCount > 0 {
		percent = float64(s.doneCount) / float64(s.workCount) * 100
	}
	log.Info().Msgf("%s: %d of %d, %.2f%%, %.0f/sec", s.stageName, s.doneCount, s.workCount, percent, rate)
}

func (s *status) Incr() {
	s.doneCount++
	if s.workCount > 0 && s.doneCount%s.step == 0 {
		s.PrintStatus()
	}
}

func (s *status) FinishStage() {
	if s.stageName != "" {
		log.Info().Msgf("%s complete in %v", s.stageName, time.Since(s.stageStart))
	}
	s.stageName = ""
}

func (s *status) Done() {
	s.FinishStage()
	log.Info().Msgf("Complete in %v", time.Since(s.start))
}
