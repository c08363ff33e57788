// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"os"
	"path/filepath"

	"github.com/alvinbaena/golomb/internal/util"
	"github.com/alvinbaena/golomb/pkg/gcs"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	gcsCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a GCS file from a file of SHA1 hashes (hex) or plain text lines (sip)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return gcsCreateCommand()
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	gcsCreateCmd.Flags().Uint64VarP(&falsePositive, "false-positive-rate", "p", 16777216, "False positive rate for queries, 1-in-p. Also the Golomb modulus of the set.")
	gcsCreateCmd.Flags().Uint64VarP(&indexGranularity, "index-granularity", "g", 1024, "Entries per index point (16 bytes each).")
	gcsCreateCmd.Flags().StringVarP(&inputFile, "in-file", "i", "", "Input file path, one entry per line (required)")
	gcsCreateCmd.MarkFlagRequired("in-file")
	gcsCreateCmd.Flags().StringVarP(&gcsOutFile, "out-file", "o", "./set.gcs", "GCS file output path")
	gcsCreateCmd.Flags().StringVar(&hashMode, "hash-mode", "hex", "How lines become keys: hex (first 16 hex characters, for SHA1 dumps) or sip (SipHash of the line)")
	gcsCreateCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite any existing files while writing the results.")

	gcsCmd.AddCommand(gcsCreateCmd)
}

func gcsCreateCommand() error {
	util.ApplyCliSettings(verbose, profile, pprofPort)

	mode, err := gcs.ParseHashMode(hashMode)
	if err != nil {
		return err
	}

	file, err := os.Open(inputFile)
	if err != nil {
		return err
	}

	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			log.Error().Err(err).Msg("error closing input file")
		}
	}(file)

	abs, err := filepath.Abs(gcsOutFile)
	if err != nil {
		return errors.Wrap(err, "could not get absolute path of file")
	}

	if !overwrite {
		if _, err = os.Stat(abs); !os.IsNotExist(err) {
			return errors.Errorf("file %s exists and overwrite flag is not set", gcsOutFile)
		}
	}

	if err = util.CheckDiskSpace(abs, gcs.EstimateSize(file, falsePositive, indexGranularity)); err != nil {
		return err
	}

	out, err := os.Create(abs)
	if err != nil {
		return err
	}

	defer func(out *os.File) {
		if err := out.Close(); err != nil {
			log.Error().Err(err).Msg("error closing GCS file")
		}
	}(out)

	return gcs.NewBuilder(file, out, falsePositive, indexGranularity, mode).Process()
}
