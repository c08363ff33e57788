// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

type encodeRequest struct {
	Values  []uint64 `json:"values" binding:"required,max=1048576"` // payload bits are capped separately
	Modulus *uint64  `json:"modulus"`
	P       *float64 `json:"p"`
	Order   string   `json:"order"`
}

type encodeResponse struct {
	Modulus      uint64  `json:"modulus"`
	Order        string  `json:"order"`
	Count        int     `json:"count"`
	Bits         uint64  `json:"bits"`
	Bytes        uint64  `json:"bytes"`
	BitsPerValue float64 `json:"bits_per_value"`
	Lengths      []int   `json:"lengths"`
	Data         []byte  `json:"data"`
}

type decodeRequest struct {
	Data []byte `json:"data" binding:"required"`
}

type decodeResponse struct {
	Modulus uint64   `json:"modulus"`
	Order   string   `json:"order"`
	Count   uint64   `json:"count"`
	Bits    uint64   `json:"bits"`
	Values  []uint64 `json:"values"`
}

type lengthQuery struct {
	X *uint64 `form:"x" binding:"required"`
	B *uint64 `form:"b" binding:"required,min=1"`
}

type lengthResponse struct {
	Bits      int    `json:"bits"`
	Quotient  uint64 `json:"quotient"`
	Remainder uint64 `json:"remainder"`
	Unary     int    `json:"unary"`
	Binary    int    `json:"binary"`
}

type modulusQuery struct {
	P *float64 `form:"p" binding:"required"`
}

type modulusResponse struct {
	Modulus uint64 `json:"modulus"`
	RiceK   uint   `json:"rice_k"`
}

type parameterQuery struct {
	B *uint64 `form:"b" binding:"required,min=1"`
}

type parameterResponse struct {
	P       float64 `json:"p"`
	Success float64 `json:"success"`
}

type hashRequest struct {
	Hash string `json:"hash" binding:"required"`
}

type keyRequest struct {
	Key  string `json:"key" binding:"required"`
	Mode string `json:"mode"`
}

type queryResponse struct {
	Present bool `json:"present"`
}
