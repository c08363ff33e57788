// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package util

import (
	"fmt"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const MiB = 1024 * 1024

var (
	ErrNotEnoughRam   = errors.New("not enough RAM available")
	ErrNotEnoughSpace = errors.New("not enough disk space available")
)

func Stats() func() {
	return func() {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		log.Debug().Msgf("Alloc: %d MB, TotalAlloc: %d MB, Requested: %d MB",
			ms.Alloc/MiB, ms.TotalAlloc/MiB, ms.Sys/MiB)
		log.Debug().Msgf("Mallocs: %d, Frees: %d, GC: %d", ms.Mallocs, ms.Frees, ms.NumGC)
		log.Debug().Msgf("HeapAlloc: %d MB, HeapSys: %d MB, HeapIdle: %d MB",
			ms.HeapAlloc/MiB, ms.HeapSys/MiB, ms.HeapIdle/MiB)
		log.Debug().Msgf("HeapObjects: %d", ms.HeapObjects)
	}
}

func ApplyCliSettings(verbose bool, profile bool, pprofPort uint16) {
	if verbose {
		log.Warn().Msgf("Verbosity up")
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if profile {
		log.Info().Msgf("Profiling is enabled for this session. Server will listen on port %d", pprofPort)
		go func() {
			if err := http.ListenAndServe(fmt.Sprintf(":%d", pprofPort), nil); err != nil {
				log.Error().Err(err).Msgf("Error starting profiling server on port %d", pprofPort)
				return
			}
		}()
	}
}

// CheckRam fails when the system reports less available memory than items
// 64-bit values need. When memory can't be inspected it only warns.
func CheckRam(items uint64) error {
	required := items * 8
	memStat, err := mem.VirtualMemory()
	if err != nil {
		log.Warn().Msgf("Estimated memory use for %s items %d MiB", HumanCount(items), required/MiB)
		log.Warn().Msgf("This process will cause disk swapping and general slowness if your "+
			"current system memory is not at least %d MiB.", required/MiB)
		return nil
	}

	log.Debug().Msgf("System has %.2f MiB of RAM available", float64(memStat.Available)/MiB)
	if required > memStat.Available {
		return errors.Wrapf(ErrNotEnoughRam, "%d MiB required, %d MiB available", required/MiB, memStat.Available/MiB)
	}
	return nil
}

// CheckDiskSpace fails when the partition holding fileName has less than
// required bytes free. The longest matching mount point wins.
func CheckDiskSpace(fileName string, required uint64) error {
	abs, err := filepath.Abs(fileName)
	if err != nil {
		return errors.Wrapf(err, "could not get absolute path of %s", fileName)
	}

	parts, err := disk.Partitions(false)
	if err != nil {
		log.Debug().Err(err).Msgf("Error getting current storage sizes")
		return nil
	}

	mountpoint := ""
	for _, part := range parts {
		if strings.HasPrefix(abs, part.Mountpoint) && len(part.Mountpoint) > len(mountpoint) {
			mountpoint = part.Mountpoint
		}
	}
	if mountpoint == "" {
		log.Debug().Msgf("No partition found for %s", abs)
		return nil
	}

	usage, err := disk.Usage(mountpoint)
	if err != nil {
		log.Debug().Err(err).Msgf("Error getting current storage sizes")
		return nil
	}

	log.Debug().Msgf("%s has %.2f MiB free", mountpoint, float64(usage.Free)/MiB)
	if required > usage.Free {
		return errors.Wrapf(ErrNotEnoughSpace, "drive %s needs %d bytes free for %s", mountpoint, required, fileName)
	}
	return nil
}

// HumanCount formats n with English digit grouping.
func HumanCount(n uint64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// ToScreamingSnakeCase turns a Go identifier, or a space separated list of
// them, into environment variable style: TLSCert -> TLS_CERT.
func ToScreamingSnakeCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = screamingSnake(w)
	}
	return strings.Join(words, " ")
}

func screamingSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
