// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/alvinbaena/golomb/internal/container"
	"github.com/alvinbaena/golomb/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	decodeCmd = &cobra.Command{
		Use:   "decode",
		Short: "Decode a Golomb container and print its values, one per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			return decodeCommand(cmd)
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	decodeCmd.Flags().StringVarP(&inputFile, "in-file", "i", "", "Container input file path (required)")
	decodeCmd.MarkFlagRequired("in-file")
	decodeCmd.Flags().StringVarP(&outFile, "out-file", "o", "", "Output file path. Prints to the standard output if omitted")

	rootCmd.AddCommand(decodeCmd)
}

func decodeCommand(cmd *cobra.Command) error {
	util.ApplyCliSettings(verbose, profile, pprofPort)

	file, err := os.Open(inputFile)
	if err != nil {
		return err
	}

	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			log.Error().Err(err).Msg("error closing container file")
		}
	}(file)

	h, values, err := container.Decode(bufio.NewReader(file))
	if err != nil {
		return err
	}
	log.Info().Msgf("%s values, b=%d, %s bit order, %s bits", util.HumanCount(h.Count), h.Modulus, h.Order, util.HumanCount(h.Bits))

	var out io.Writer = cmd.OutOrStdout()
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}

		defer func(f *os.File) {
			if err := f.Close(); err != nil {
				log.Error().Err(err).Msg("error closing output file")
			}
		}(f)
		out = f
	}

	return writeValues(out, values)
}

func writeValues(out io.Writer, values []uint64) error {
	w := bufio.NewWriter(out)
	buf := make([]byte, 0, 24)
	for _, v := range values {
		buf = strconv.AppendUint(buf[:0], v, 10)
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return w.Flush()
}
