// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"io"
	"regexp"

	"github.com/alvinbaena/golomb/internal/util"
	"github.com/alvinbaena/golomb/pkg/gcs"
	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var hexHash = regexp.MustCompile(`^[a-fA-F\d]{16,}$`)

var (
	gcsQueryCmd = &cobra.Command{
		Use:   "query [ENTRY]",
		Short: "Query a GCS file",
		Args: func(cmd *cobra.Command, args []string) error {
			if !interactive {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				return gcsQueryCommand(cmd, "")
			}
			return gcsQueryCommand(cmd, args[0])
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	gcsQueryCmd.Flags().StringVarP(&inputFile, "in-file", "i", "", "GCS input file (required)")
	gcsQueryCmd.MarkFlagRequired("in-file")
	gcsQueryCmd.Flags().BoolVarP(&interactive, "interactive", "n", false, "Interactive mode.")
	gcsQueryCmd.Flags().BoolVarP(&hashed, "hashed", "s", false, "If the entry is already a hexadecimal hash instead of plain text.")
	gcsQueryCmd.Flags().StringVar(&hashMode, "hash-mode", "hex", "Hash mode the set was created with: hex (plain text is SHA1 hashed) or sip")

	gcsCmd.AddCommand(gcsQueryCmd)
}

func gcsQueryCommand(cmd *cobra.Command, entry string) error {
	util.ApplyCliSettings(verbose, profile, pprofPort)

	mode, err := gcs.ParseHashMode(hashMode)
	if err != nil {
		return err
	}
	if hashed && mode != gcs.HashHex {
		return errors.New("hashed entries only apply to sets created with the hex hash mode")
	}

	searcher := gcs.NewReader(inputFile)
	if err = searcher.Initialize(); err != nil {
		return err
	}

	if !interactive {
		key, err := entryKey(entry, mode)
		if err != nil {
			return err
		}
		return querySet(cmd.OutOrStdout(), searcher, entry, key)
	}

	label := "Entry"
	if hashed {
		label = "Hex hash"
	}

	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if len(input) == 0 {
				return errors.New("please enter a value")
			}
			if hashed && !hexHash.MatchString(input) {
				return errors.New("input is not a valid hexadecimal hash")
			}
			return nil
		},
	}
	if !hashed {
		prompt.Mask = '*'
	}

	log.Info().Msgf("Running interactive session. ^C to exit")
	if err = runInteractiveSession(cmd.OutOrStdout(), prompt, searcher, mode); err != nil {
		if err == promptui.ErrInterrupt || err == promptui.ErrEOF {
			log.Info().Msgf("Goodbye")
		} else {
			log.Error().Err(err).Msgf("Error during interactive session")
		}
	}
	// No error to avoid the default cobra error message
	return nil
}

func runInteractiveSession(out io.Writer, prompt promptui.Prompt, searcher *gcs.Reader, mode gcs.HashMode) error {
	for {
		result, err := prompt.Run()
		if err != nil {
			return err
		}

		key, err := entryKey(result, mode)
		if err != nil {
			log.Error().Err(err).Msg("Error processing input")
			continue
		}

		// plain text entries are not echoed
		shown := result
		if !hashed {
			shown = "entry"
		}
		if err = querySet(out, searcher, shown, key); err != nil {
			log.Error().Err(err).Msg("Error during query")
		}
	}
}

func querySet(out io.Writer, searcher *gcs.Reader, entry string, key uint64) error {
	exists, err := searcher.Exists(key)
	if err != nil {
		return err
	}

	if exists {
		fmt.Fprintf(out, "%s is present\n", entry)
	} else {
		fmt.Fprintf(out, "%s is not present\n", entry)
	}
	return nil
}

// entryKey maps an entry to the key the set stores for it.
func entryKey(entry string, mode gcs.HashMode) (uint64, error) {
	if hashed {
		if !hexHash.MatchString(entry) {
			return 0, errors.New("input is not a valid hexadecimal hash")
		}
		return gcs.Hash([]byte(entry), gcs.HashHex)
	}

	if mode == gcs.HashSip {
		return gcs.Hash([]byte(entry), gcs.HashSip)
	}

	// hex sets come from SHA1 dumps
	sum := sha1.Sum([]byte(entry))
	return binary.BigEndian.Uint64(sum[:]), nil
}
