// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"github.com/spf13/cobra"
)

var (
	gcsCmd = &cobra.Command{
		Use:   "gcs",
		Short: "Create and query GCS (Golomb Coded Set) files",
		Long: "A GCS stores a set of 64-bit hashes as Golomb coded deltas. Queries answer with a false " +
			"positive rate of 1-in-p and no false negatives.",
	}
)

func init() {
	rootCmd.AddCommand(gcsCmd)
}
