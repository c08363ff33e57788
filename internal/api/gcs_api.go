// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

import (
	"crypto/sha1"
	"encoding/binary"
	"net/http"
	"regexp"
	"strings"

	"github.com/alvinbaena/golomb/pkg/gcs"
	"github.com/dgraph-io/ristretto"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var hexHash = regexp.MustCompile(`^[a-fA-F\d]{16,}$`)

type setApi struct {
	searcher *gcs.Reader
	// nil when caching is disabled
	cache *ristretto.Cache
}

// exists answers from the cache when possible. Only successful lookups are
// cached.
func (s *setApi) exists(key uint64) (bool, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v.(bool), nil
		}
	}

	present, err := s.searcher.Exists(key)
	if err != nil {
		return false, err
	}

	if s.cache != nil {
		s.cache.Set(key, present, 1)
	}
	return present, nil
}

func (s *setApi) checkHash(c *gin.Context) {
	var req hashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !hexHash.MatchString(req.Hash) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "input is not a valid hexadecimal hash of at least 64 bits"})
		return
	}

	key, err := gcs.Hash([]byte(req.Hash), gcs.HashHex)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.respond(c, key)
}

func (s *setApi) checkKey(c *gin.Context) {
	var req keyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		key uint64
		err error
	)
	switch strings.ToLower(req.Mode) {
	case "sha1":
		// Sets built from SHA1 hash dumps store the first 64 bits of the hash.
		sum := sha1.Sum([]byte(req.Key))
		key = binary.BigEndian.Uint64(sum[:])
	case "", "sip":
		key, err = gcs.Hash([]byte(req.Key), gcs.HashSip)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown key mode, use one of: sha1, sip"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.respond(c, key)
}

func (s *setApi) respond(c *gin.Context, key uint64) {
	present, err := s.exists(key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, queryResponse{Present: present})
}

// RegisterSetApi serves membership queries on the GCS file. cacheSize is the
// number of answers kept in memory, zero disables the cache.
func RegisterSetApi(group *gin.RouterGroup, fileName string, cacheSize int64) error {
	searcher := gcs.NewReader(fileName)
	if err := searcher.Initialize(); err != nil {
		return err
	}

	s := &setApi{searcher: searcher}
	if cacheSize > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: 10 * cacheSize,
			MaxCost:     cacheSize,
			BufferItems: 64,
		})
		if err != nil {
			return err
		}
		s.cache = cache
		log.Debug().Msgf("caching up to %d answers", cacheSize)
	}

	group.POST("/hash", s.checkHash)
	group.POST("/key", s.checkKey)

	return nil
}
