// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alvinbaena/golomb/internal/batch"
	"github.com/alvinbaena/golomb/internal/util"
	"github.com/alvinbaena/golomb/pkg/bitio"
	"github.com/alvinbaena/golomb/pkg/golomb"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	encodeCmd = &cobra.Command{
		Use:   "encode [INPUT...]",
		Short: "Encode files or URLs of whitespace separated integers into Golomb containers",
		Long: "Encode every input into <out-dir>/<name>.glb. Inputs are local files or http(s) URLs and are " +
			"processed concurrently. Without a modulus or probability the modulus is estimated from each input.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return encodeCommand(cmd, args)
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	encodeCmd.Flags().Uint64VarP(&modulus, "modulus", "b", 0, "Golomb modulus. Takes precedence over the probability")
	encodeCmd.Flags().Float64VarP(&probability, "probability", "p", 0, "Success probability of the geometric distribution of the values, in (0, 1)")
	encodeCmd.Flags().StringVar(&order, "order", "be", "Bit order of the output: be (MSB first) or le (LSB first)")
	encodeCmd.Flags().StringVarP(&outDir, "out-dir", "o", ".", "Output directory")
	encodeCmd.Flags().IntVarP(&threads, "threads", "t", 0, "Number of inputs encoded at once. If omitted or less than 1, defaults to the number of logical processors of the machine.")
	encodeCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite any existing files while writing the results.")

	rootCmd.AddCommand(encodeCmd)
}

// resolveModulus returns the modulus from the flags, zero meaning it is
// estimated per input.
func resolveModulus(cmd *cobra.Command) (uint64, error) {
	if cmd.Flags().Changed("modulus") {
		if modulus == 0 {
			return 0, golomb.ErrInvalidModulus
		}
		return modulus, nil
	}
	if cmd.Flags().Changed("probability") {
		b, err := golomb.B(probability)
		if err != nil {
			return 0, errors.Wrapf(err, "probability %g", probability)
		}
		log.Info().Msgf("using modulus %d for probability %g", b, probability)
		return b, nil
	}
	return 0, nil
}

func encodeCommand(cmd *cobra.Command, inputs []string) error {
	util.ApplyCliSettings(verbose, profile, pprofPort)

	b, err := resolveModulus(cmd)
	if err != nil {
		return err
	}

	bitOrder, err := bitio.ParseEndianness(order)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrapf(err, "could not create output directory %s", outDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results, err := batch.NewEncoder(outDir, bitOrder, b, threads, overwrite).Run(ctx, inputs)
	for _, r := range results {
		if r.Err == nil {
			log.Info().Msgf("%s -> %s: %s values, b=%d, %.3f bits per value",
				r.Input, r.Output, util.HumanCount(r.Count), r.Modulus, r.Stats.BitsPerValue)
		}
	}
	return err
}
