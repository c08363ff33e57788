// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package source opens value inputs from local files or http(s) URLs and
// parses them into integers.
package source

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var client = newHttpClient()

func newHttpClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	// Too much garbage in the logs.
	c.Logger = nil
	// Retry on protocol errors and 5xx, anything else is reported.
	c.RetryMax = 5

	c.HTTPClient = &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       10 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			MaxIdleConnsPerHost:   runtime.GOMAXPROCS(0) + 1,
		},
	}

	return c
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Open returns the contents of a local file or an http(s) URL. The caller
// closes it.
func Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !IsRemote(location) {
		file, err := os.Open(location)
		if err != nil {
			return nil, errors.Wrapf(err, "error opening input %s", location)
		}
		return file, nil
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid input url %s", location)
	}
	req.Header.Set("User-Agent", "golang-golomb/1.0")

	timer := time.Now()
	res, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "error requesting %s", location)
	}

	if res.StatusCode >= 400 {
		if err = res.Body.Close(); err != nil {
			log.Warn().Err(err).Msgf("error closing body for %s", location)
		}
		return nil, fmt.Errorf("request [%s] failed with status [%d] %s", location, res.StatusCode, res.Status)
	}

	log.Debug().Msgf("%s answered in %dms", location, time.Since(timer).Milliseconds())
	return res.Body, nil
}

// ParseValues reads whitespace separated decimal unsigned integers. Lines
// starting with # are comments.
func ParseValues(r io.Reader) ([]uint64, error) {
	values := make([]uint64, 0, 1024)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		for _, field := range strings.Fields(text) {
			v, err := strconv.ParseUint(field, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", line)
			}
			values = append(values, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading values")
	}

	return values, nil
}

// Load opens location and parses its values.
func Load(ctx context.Context, location string) ([]uint64, error) {
	in, err := Open(ctx, location)
	if err != nil {
		return nil, err
	}

	defer func(in io.ReadCloser) {
		if err := in.Close(); err != nil {
			log.Warn().Err(err).Msgf("error closing input %s", location)
		}
	}(in)

	values, err := ParseValues(in)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid input %s", location)
	}
	return values, nil
}
