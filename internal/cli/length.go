// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"strconv"

	"github.com/alvinbaena/golomb/internal/container"
	"github.com/alvinbaena/golomb/pkg/golomb"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	lenCmd = &cobra.Command{
		Use:   "len [VALUE...]",
		Short: "Print the Golomb code length in bits of each value, without encoding anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return lenCommand(cmd, args)
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	lenCmd.Flags().Uint64VarP(&modulus, "modulus", "b", 0, "Golomb modulus (required)")
	lenCmd.MarkFlagRequired("modulus")

	rootCmd.AddCommand(lenCmd)
}

func lenCommand(cmd *cobra.Command, args []string) error {
	if modulus == 0 {
		return golomb.ErrInvalidModulus
	}

	values := make([]uint64, 0, len(args))
	for _, arg := range args {
		x, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid value %s", arg)
		}
		values = append(values, x)
	}

	total, err := container.EncodedLen(values, modulus)
	if err != nil {
		return err
	}

	for _, x := range values {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d\n", x, golomb.Len(x, modulus))
	}
	if len(values) > 1 {
		fmt.Fprintf(cmd.OutOrStdout(), "total\t%d\n", total)
	}

	return nil
}
