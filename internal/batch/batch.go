// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package batch encodes many value inputs into containers concurrently on a
// bounded worker pool.
package batch

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/alvinbaena/golomb/internal/container"
	"github.com/alvinbaena/golomb/internal/source"
	"github.com/alvinbaena/golomb/internal/util"
	"github.com/alvinbaena/golomb/pkg/bitio"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/thinhdanggroup/executor"
)

const Extension = ".glb"

type Result struct {
	Input   string
	Output  string
	Modulus uint64
	Count   uint64
	Stats   container.Stats
	Err     error
}

type Encoder struct {
	order       bitio.Endianness
	modulus     uint64
	parallelism int
	outDir      string
	overwrite   bool

	ctx     context.Context
	stat    *status
	results []Result
}

// NewEncoder writes one container per input into outDir. A zero modulus is
// suggested from each input's values. A parallelism below 1 defaults to the
// number of logical processors.
func NewEncoder(outDir string, order bitio.Endianness, modulus uint64, parallelism int, overwrite bool) *Encoder {
	return &Encoder{
		order:       order,
		modulus:     modulus,
		parallelism: parallelism,
		outDir:      outDir,
		overwrite:   overwrite,
	}
}

// OutputName is the container file an input is written to.
func OutputName(outDir, input string) string {
	var base string
	if u, err := url.Parse(input); err == nil && source.IsRemote(input) {
		base = path.Base(u.Path)
	} else {
		base = filepath.Base(input)
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "values"
	}
	return filepath.Join(outDir, base+Extension)
}

// Run encodes every input and returns one result per input, in order. The
// error is set when at least one input failed.
func (e *Encoder) Run(ctx context.Context, inputs []string) ([]Result, error) {
	s := util.Stats()
	defer s()

	threads := e.parallelism
	if threads < 1 {
		threads = runtime.NumCPU()
	}
	if threads > len(inputs) {
		threads = len(inputs)
	}
	if threads == 0 {
		return nil, nil
	}

	// Outputs are claimed up front so two inputs never race for a file.
	seen := make(map[string]string, len(inputs))
	e.results = make([]Result, len(inputs))
	for i, in := range inputs {
		out := OutputName(e.outDir, in)
		if prev, ok := seen[out]; ok {
			return nil, fmt.Errorf("inputs %s and %s both write to %s", prev, in, out)
		}
		seen[out] = in
		e.results[i] = Result{Input: in, Output: out}
	}

	tasks, err := executor.New(executor.Config{
		ReqPerSeconds: 0,
		QueueSize:     2 * threads,
		NumWorkers:    threads,
	})
	if err != nil {
		return nil, err
	}
	defer tasks.Close()

	log.Info().Msgf("encoding %d inputs into %s with %d threads", len(inputs), e.outDir, threads)
	e.ctx = ctx
	e.stat = newStatus(len(inputs))
	e.stat.BeginProgress()

	for i := range inputs {
		if err = tasks.Publish(e.encodeInput, i); err != nil {
			log.Panic().Err(err).Msgf("there is a programming error here.")
		}
	}

	tasks.Wait()
	e.stat.Done()

	failed := 0
	for _, r := range e.results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return e.results, fmt.Errorf("%d of %d inputs failed", failed, len(inputs))
	}
	return e.results, nil
}

// encodeInput runs on the pool. Every task owns its slot in results.
func (e *Encoder) encodeInput(i int) {
	r := &e.results[i]
	if r.Err = e.encode(r); r.Err != nil {
		log.Error().Err(r.Err).Msgf("error encoding %s", r.Input)
		e.stat.InputFailed()
		return
	}

	log.Debug().Msgf("%s: %d values, b=%d, %d bits", r.Input, r.Count, r.Modulus, r.Stats.Bits)
	e.stat.InputEncoded(r.Count, r.Stats.Bits)
}

func (e *Encoder) encode(r *Result) error {
	if err := e.ctx.Err(); err != nil {
		return err
	}

	values, err := source.Load(e.ctx, r.Input)
	if err != nil {
		return err
	}

	r.Count = uint64(len(values))
	r.Modulus = e.modulus
	if r.Modulus == 0 {
		r.Modulus = container.SuggestModulus(values)
		log.Debug().Msgf("%s: suggested modulus %d", r.Input, r.Modulus)
	}

	payload, err := container.EncodedLen(values, r.Modulus)
	if err != nil {
		return errors.Wrapf(err, "error sizing %s", r.Input)
	}
	size := uint64(container.HeaderSize) + payload/8 + 1
	if err = util.CheckDiskSpace(r.Output, size); err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !e.overwrite {
		flags |= os.O_EXCL
	}
	out, err := os.OpenFile(r.Output, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return errors.Wrapf(err, "file %s exists and overwrite flag is not set", r.Output)
		}
		return err
	}

	r.Stats, err = container.Encode(out, e.order, r.Modulus, values)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}
