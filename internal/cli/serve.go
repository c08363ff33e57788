// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"strconv"

	"github.com/alvinbaena/golomb/internal/api"
	"github.com/alvinbaena/golomb/internal/util"
	"github.com/spf13/cobra"
)

var (
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the Golomb API, and queries on a GCS file when one is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCommand()
		},
	}
)

func init() {
	serveCmd.Flags().StringVarP(&inputFile, "in-file", "i", "", "GCS input file. The set API is disabled if omitted")
	serveCmd.Flags().BoolVar(&selfTLS, "self-tls", false,
		"If the server should use a self-signed certificate when starting. The certificate is renewed on each server restart")
	serveCmd.Flags().StringVar(&tlsCert, "tls-cert", "", "Path to the PEM encoded TLS certificate to be used by the server")
	serveCmd.Flags().StringVar(&tlsKey, "tls-key", "", "Path to the PEM encoded TLS private key to be used by the server")
	serveCmd.Flags().Uint16VarP(&port, "port", "p", 3100, "Port to be used by the server")
	serveCmd.Flags().IntVar(&maxConns, "max-conns", 0, "Maximum concurrent connections, 0 for no limit")
	serveCmd.Flags().Uint64Var(&maxEncodedBits, "max-encoded-bits", api.DefaultMaxEncodedBits,
		"Largest payload in bits the encode endpoint produces")
	serveCmd.Flags().Int64Var(&cacheSize, "cache-size", 1<<16, "Number of set query answers kept in memory, 0 disables the cache")

	rootCmd.AddCommand(serveCmd)
}

func serveConfig() api.Config {
	return api.Config{
		Port:           strconv.Itoa(int(port)),
		GcsFile:        inputFile,
		SelfTLS:        selfTLS,
		TLSCert:        tlsCert,
		TLSKey:         tlsKey,
		Debug:          verbose,
		MaxConns:       maxConns,
		CacheSize:      cacheSize,
		MaxEncodedBits: maxEncodedBits,
	}
}

func serveCommand() error {
	util.ApplyCliSettings(verbose, profile, pprofPort)
	return api.Serve(serveConfig())
}
