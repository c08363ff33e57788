// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	_ "net/http/pprof"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "golomb [COMMAND] [OPTIONS]",
		Short: "Encode and decode integers with Golomb codes",
		Long: "Encode, decode and measure integers with Golomb codes, map geometric distribution parameters to " +
			"moduli, and build or query GCS (Golomb Coded Set) files.",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print more information on the processing")
	rootCmd.PersistentFlags().BoolVar(&profile, "profile", false, "Enable the profiling server (pprof) when running commands")
	rootCmd.PersistentFlags().Uint16Var(&pprofPort, "profile-port", 6060, "The port to use for the pprof server. Only used if the profile flag is set")
}

func Execute() error {
	return rootCmd.Execute()
}
