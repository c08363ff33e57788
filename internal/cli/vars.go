// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

var (
	// root
	verbose bool
	// root
	profile bool
	// root
	pprofPort uint16
	// encode, len, param p
	modulus uint64
	// encode, param b
	probability float64
	// encode
	order string
	// encode
	outDir string
	// encode
	threads int
	// encode, gcs create
	overwrite bool
	// decode, gcs create, gcs query, serve
	inputFile string
	// decode
	outFile string
	// gcs create
	gcsOutFile string
	// gcs create
	falsePositive uint64
	// gcs create
	indexGranularity uint64
	// gcs create, gcs query
	hashMode string
	// gcs query
	interactive bool
	// gcs query
	hashed bool
	// serve
	selfTLS bool
	// serve
	tlsCert string
	// serve
	tlsKey string
	// serve
	port uint16
	// serve
	maxConns int
	// serve
	cacheSize int64
	// serve
	maxEncodedBits uint64
)
