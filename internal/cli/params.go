// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"

	"github.com/alvinbaena/golomb/pkg/golomb"
	"github.com/spf13/cobra"
)

var (
	paramCmd = &cobra.Command{
		Use:   "param",
		Short: "Map between geometric distribution parameters and Golomb moduli",
	}

	paramBCmd = &cobra.Command{
		Use:   "b",
		Short: "Print the optimal modulus, and Rice parameter, for a success probability",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := golomb.B(probability)
			if err != nil {
				return err
			}
			k, err := golomb.RiceK(probability)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "b\t%d\nrice_k\t%d\n", b, k)
			return nil
		},
	}

	paramPCmd = &cobra.Command{
		Use:   "p",
		Short: "Print the distribution ratio 1/2^(1/b), and the success probability, for a modulus",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := golomb.P(modulus)
			if err != nil {
				return err
			}
			success, err := golomb.SuccessProbability(modulus)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "p\t%g\nsuccess\t%g\n", p, success)
			return nil
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	paramBCmd.Flags().Float64VarP(&probability, "probability", "p", 0, "Success probability, in (0, 1) (required)")
	paramBCmd.MarkFlagRequired("probability")
	paramPCmd.Flags().Uint64VarP(&modulus, "modulus", "b", 0, "Golomb modulus (required)")
	paramPCmd.MarkFlagRequired("modulus")

	paramCmd.AddCommand(paramBCmd, paramPCmd)
	rootCmd.AddCommand(paramCmd)
}
