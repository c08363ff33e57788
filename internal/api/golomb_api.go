// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/alvinbaena/golomb/internal/container"
	"github.com/alvinbaena/golomb/pkg/bitio"
	"github.com/alvinbaena/golomb/pkg/golomb"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type golombApi struct {
	maxBits uint64
}

// modulus picks the explicit modulus, then the one for p, then a suggestion
// from the values.
func (g *golombApi) modulus(req encodeRequest) (uint64, error) {
	switch {
	case req.Modulus != nil:
		if *req.Modulus == 0 {
			return 0, golomb.ErrInvalidModulus
		}
		return *req.Modulus, nil
	case req.P != nil:
		return golomb.B(*req.P)
	}
	return container.SuggestModulus(req.Values), nil
}

func (g *golombApi) encode(c *gin.Context) {
	var req encodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order := bitio.BigEndian
	if req.Order != "" {
		var err error
		if order, err = bitio.ParseEndianness(req.Order); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	b, err := g.modulus(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	total, err := container.EncodedLen(req.Values, b)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if total > g.maxBits {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("values encode to %d bits, above the limit of %d bits", total, g.maxBits),
		})
		return
	}

	var buf bytes.Buffer
	stats, err := container.Encode(&buf, order, b, req.Values)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	lengths := make([]int, len(req.Values))
	for i, v := range req.Values {
		lengths[i] = golomb.Len(v, b)
	}

	c.JSON(http.StatusOK, encodeResponse{
		Modulus:      b,
		Order:        order.String(),
		Count:        len(req.Values),
		Bits:         stats.Bits,
		Bytes:        stats.Bytes,
		BitsPerValue: stats.BitsPerValue,
		Lengths:      lengths,
		Data:         buf.Bytes(),
	})
}

func (g *golombApi) decode(c *gin.Context) {
	var req decodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h, values, err := container.Decode(bytes.NewReader(req.Data))
	if err != nil {
		// every decode failure comes from the submitted data
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, decodeResponse{
		Modulus: h.Modulus,
		Order:   h.Order.String(),
		Count:   h.Count,
		Bits:    h.Bits,
		Values:  values,
	})
}

func (g *golombApi) length(c *gin.Context) {
	var q lengthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	x, b := *q.X, *q.B
	if err := golomb.Check(x, b); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, lengthResponse{
		Bits:      golomb.Len(x, b),
		Quotient:  x / b,
		Remainder: x % b,
		Unary:     bitio.LenUnary(x / b),
		Binary:    bitio.LenMinimalBinary(x%b, b),
	})
}

func (g *golombApi) modulusForP(c *gin.Context) {
	var q modulusQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := golomb.B(*q.P)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	k, err := golomb.RiceK(*q.P)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errors.Wrap(err, "rice parameter").Error()})
		return
	}

	c.JSON(http.StatusOK, modulusResponse{Modulus: b, RiceK: k})
}

func (g *golombApi) parameterForB(c *gin.Context) {
	var q parameterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := golomb.P(*q.B)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	success, err := golomb.SuccessProbability(*q.B)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, parameterResponse{P: p, Success: success})
}

// RegisterGolombApi serves the coding endpoints. Encode requests whose payload
// exceeds maxBits are rejected, zero means DefaultMaxEncodedBits.
func RegisterGolombApi(group *gin.RouterGroup, maxBits uint64) {
	if maxBits == 0 {
		maxBits = DefaultMaxEncodedBits
	}
	g := &golombApi{maxBits: maxBits}

	group.POST("/encode", g.encode)
	group.POST("/decode", g.decode)
	group.GET("/length", g.length)
	group.GET("/modulus", g.modulusForP)
	group.GET("/parameter", g.parameterForB)
}
