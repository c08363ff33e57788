// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package golomb

import (
	"bytes"
	"math"
	"testing"

	"github.com/alvinbaena/golomb/pkg/bitio"
	"github.com/pkg/errors"
)

func TestB(t *testing.T) {
	cases := []struct {
		p    float64
		want uint64
		fail bool
	}{
		{0.5, 1, false},
		{0.9, 1, false},
		{0.3, 2, false},
		{0.2, 3, false},
		{0.1, 7, false},
		{0.01, 69, false},
		{0, 0, true},
		{1, 0, true},
		{-0.5, 0, true},
		{1.5, 0, true},
		{math.NaN(), 0, true},
		{math.Inf(1), 0, true},
		{1e-300, 0, true},
	}

	for _, tc := range cases {
		got, err := B(tc.p)
		if tc.fail {
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("B(%g) should fail with ErrInvalidParameter, got: %d, %v", tc.p, got, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("B(%g) should not fail: %s", tc.p, err)
		}
		if got != tc.want {
			t.Errorf("B(%g): %d, want: %d", tc.p, got, tc.want)
		}
	}
}

func TestB_Positive(t *testing.T) {
	for p := 0.0005; p < 1; p += 0.0005 {
		b, err := B(p)
		if err != nil {
			t.Fatalf("B(%g) should not fail: %s", p, err)
		}
		if b < 1 {
			t.Errorf("B(%g): %d, want a positive modulus", p, b)
		}
	}

	for _, p := range []float64{1e-12, 1e-6, math.Nextafter(1, 0)} {
		if b, err := B(p); err != nil || b < 1 {
			t.Errorf("B(%g): %d, %v, want a positive modulus", p, b, err)
		}
	}
}

func TestP(t *testing.T) {
	cases := []struct {
		b    uint64
		want float64
	}{
		{1, 0.5},
		{2, 1 / math.Sqrt2},
		{4, 1 / math.Pow(2, 0.25)},
	}

	for _, tc := range cases {
		got, err := P(tc.b)
		if err != nil {
			t.Errorf("P(%d) should not fail: %s", tc.b, err)
		}
		if math.Abs(got-tc.want) > 1e-15 {
			t.Errorf("P(%d): %g, want: %g", tc.b, got, tc.want)
		}
	}

	if _, err := P(0); !errors.Is(err, ErrInvalidModulus) {
		t.Errorf("P(0) should fail with ErrInvalidModulus, got: %v", err)
	}
	if _, err := SuccessProbability(0); !errors.Is(err, ErrInvalidModulus) {
		t.Errorf("SuccessProbability(0) should fail with ErrInvalidModulus, got: %v", err)
	}
}

func TestInverseConsistency(t *testing.T) {
	bs := []uint64{1, 2, 3, 4, 5, 7, 8, 16, 100, 1000, 12345, 1 << 20, 1 << 32}

	for _, b0 := range bs {
		p, err := P(b0)
		if err != nil {
			t.Fatalf("P(%d) should not fail: %s", b0, err)
		}
		success, err := SuccessProbability(b0)
		if err != nil {
			t.Fatalf("SuccessProbability(%d) should not fail: %s", b0, err)
		}
		if math.Abs(success-(1-p)) > 1e-12 {
			t.Errorf("SuccessProbability(%d): %g, want 1 - P = %g", b0, success, 1-p)
		}

		got, err := B(success)
		if err != nil {
			t.Fatalf("B(%g) should not fail: %s", success, err)
		}
		if got != b0 {
			t.Errorf("B(SuccessProbability(%d)): %d, want: %d", b0, got, b0)
		}
	}

	// The round trip only holds through the success probability: P itself
	// returns the distribution ratio.
	if got, _ := B(0.5); got != 1 {
		t.Errorf("B(P(1)): %d, want: 1", got)
	}
}

func TestRice(t *testing.T) {
	for _, order := range []bitio.Endianness{bitio.BigEndian, bitio.LittleEndian} {
		for _, k := range []uint{0, 1, 3, 10, 31} {
			values := []uint64{0, 1, 7, 1023, 1 << 20, 1<<k + 3}

			var buf bytes.Buffer
			writer := bitio.NewWriter(&buf, order)
			for _, x := range values {
				wr, err := WriteRice(writer, x, k)
				if err != nil {
					t.Fatalf("WriteRice(%d, %d) should not fail: %s", x, k, err)
				}
				if want := int(x>>k) + 1 + int(k); wr != want || LenRice(x, k) != want {
					t.Errorf("WriteRice(%d, %d): %d bits, LenRice: %d, want: %d", x, k, wr, LenRice(x, k), want)
				}
			}
			if _, err := writer.Flush(); err != nil {
				t.Fatalf("Flush should not fail: %s", err)
			}

			reader := bitio.NewReader(bytes.NewReader(buf.Bytes()), order)
			for _, want := range values {
				got, err := ReadRice(reader, k)
				if err != nil {
					t.Fatalf("ReadRice(%d) should not fail: %s", k, err)
				}
				if got != want {
					t.Errorf("ReadRice(%d): %d, want: %d", k, got, want)
				}
			}
		}
	}

	if _, err := WriteRice(&stubCodec{}, 1, 64); !errors.Is(err, ErrInvalidModulus) {
		t.Errorf("WriteRice with k=64 should fail with ErrInvalidModulus, got: %v", err)
	}
	if _, err := ReadRice(&stubCodec{}, 64); !errors.Is(err, ErrInvalidModulus) {
		t.Errorf("ReadRice with k=64 should fail with ErrInvalidModulus, got: %v", err)
	}
}

func TestRiceK(t *testing.T) {
	cases := []struct {
		p    float64
		want uint
	}{
		{0.5, 0},
		{0.3, 1},
		{0.1, 2},
		{0.01, 6},
	}

	for _, tc := range cases {
		got, err := RiceK(tc.p)
		if err != nil {
			t.Errorf("RiceK(%g) should not fail: %s", tc.p, err)
		}
		if got != tc.want {
			t.Errorf("RiceK(%g): %d, want: %d", tc.p, got, tc.want)
		}
	}

	if _, err := RiceK(2); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("RiceK(2) should fail with ErrInvalidParameter, got: %v", err)
	}
}
